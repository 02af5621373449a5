package templates

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// parseFragment converts a Markdown override file into a Fragment. Bold
// (**x**) and italic (*x*) emphasis become inline runs; paragraphs are joined
// with a blank line. Block constructs other than paragraphs are rejected:
// boilerplate fragments are prose, never lists or headings.
func parseFragment(source []byte) (Fragment, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var runs []Run
	var sb strings.Builder

	appendRun := func(r Run) {
		if r.Text == "" {
			return
		}
		sb.WriteString(r.Text)
		// Merge with the previous run when emphasis matches.
		if n := len(runs); n > 0 && runs[n-1].Bold == r.Bold && runs[n-1].Italic == r.Italic {
			runs[n-1].Text += r.Text
			return
		}
		runs = append(runs, r)
	}

	first := true
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		para, ok := node.(*ast.Paragraph)
		if !ok {
			return Fragment{}, fmt.Errorf("unsupported block %s in fragment", node.Kind())
		}
		if !first {
			appendRun(Run{Text: "\n\n"})
		}
		first = false
		if err := walkInline(para, source, Run{}, appendRun); err != nil {
			return Fragment{}, err
		}
	}

	if sb.Len() == 0 {
		return Fragment{}, fmt.Errorf("empty fragment")
	}
	frag := Fragment{Text: sb.String()}
	// Only keep runs when emphasis is actually present.
	for _, r := range runs {
		if r.Bold || r.Italic {
			frag.Runs = runs
			break
		}
	}
	return frag, nil
}

func walkInline(node ast.Node, source []byte, state Run, emit func(Run)) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			r := state
			r.Text = string(n.Segment.Value(source))
			emit(r)
			if n.SoftLineBreak() || n.HardLineBreak() {
				sp := state
				sp.Text = " "
				emit(sp)
			}
		case *ast.Emphasis:
			inner := state
			if n.Level >= 2 {
				inner.Bold = true
			} else {
				inner.Italic = true
			}
			if err := walkInline(n, source, inner, emit); err != nil {
				return err
			}
		case *ast.String:
			r := state
			r.Text = string(n.Value)
			emit(r)
		default:
			return fmt.Errorf("unsupported inline %s in fragment", child.Kind())
		}
	}
	return nil
}
