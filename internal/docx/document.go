package docx

import (
	"fmt"
	"strings"

	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	"github.com/SandraS2611/agrimensores-sde/internal/style"
)

// Letter page size in twips, matching the house template.
const (
	pageWidth  = 12240
	pageHeight = 15840
)

// documentPart renders word/document.xml: every styled block as direct
// paragraph formatting, then the section properties with page geometry and
// header/footer references.
func documentPart(doc *style.Document) (string, error) {
	var body strings.Builder
	for _, sb := range doc.Blocks {
		xml, err := blockXML(sb)
		if err != nil {
			return "", err
		}
		body.WriteString(xml)
	}

	sectPr := `<w:sectPr>` +
		`<w:headerReference w:type="default" r:id="rId3"/>` +
		`<w:footerReference w:type="default" r:id="rId4"/>` +
		fmt.Sprintf(`<w:pgSz w:w="%d" w:h="%d"/>`, pageWidth, pageHeight) +
		fmt.Sprintf(`<w:pgMar w:top="%[1]d" w:right="%[1]d" w:bottom="%[1]d" w:left="%[1]d"/>`, doc.Margin) +
		`</w:sectPr>`

	return xmlHeader +
		`<w:document ` + wpmlNS + ` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body.String() + sectPr + `</w:body>` +
		`</w:document>`, nil
}

func blockXML(sb style.StyledBlock) (string, error) {
	switch sb.Block.Kind {
	case docmodel.KindPageBreak:
		return `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`, nil
	case docmodel.KindSignature:
		return signatureXML(sb), nil
	default:
		return paragraphXML(sb), nil
	}
}

func paragraphXML(sb style.StyledBlock) string {
	var p strings.Builder
	p.WriteString(`<w:p>`)
	p.WriteString(paragraphPropsXML(sb.Style))

	if len(sb.Block.Spans) > 0 {
		for _, span := range sb.Block.Spans {
			run := sb.Style.Run
			if span.Bold {
				run.Bold = true
			}
			if span.Italic {
				run.Italic = true
			}
			if span.Color != "" {
				run.Color = span.Color
			}
			p.WriteString(runXML(run, span.Text))
		}
	} else {
		p.WriteString(runXML(sb.Style.Run, sb.Block.Text))
	}

	p.WriteString(`</w:p>`)
	return p.String()
}

// signatureXML renders the signature block as the rule line followed by the
// role caption, both centered.
func signatureXML(sb style.StyledBlock) string {
	rule := sb
	rule.Block = docmodel.Paragraph("_______________________________")
	rule.Style.Run.Bold = false

	caption := sb
	caption.Block = docmodel.Paragraph(sb.Block.Text)
	caption.Style.SpacingBefore = 0

	return paragraphXML(rule) + paragraphXML(caption)
}

func paragraphPropsXML(s style.BlockStyle) string {
	var sb strings.Builder
	sb.WriteString(`<w:pPr>`)
	if s.Bullet {
		sb.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	}
	if s.SpacingBefore > 0 || s.SpacingAfter > 0 {
		sb.WriteString(`<w:spacing`)
		if s.SpacingBefore > 0 {
			fmt.Fprintf(&sb, ` w:before="%d"`, s.SpacingBefore)
		}
		if s.SpacingAfter > 0 {
			fmt.Fprintf(&sb, ` w:after="%d"`, s.SpacingAfter)
		}
		sb.WriteString(`/>`)
	}
	if s.OutlineLevel >= 0 {
		fmt.Fprintf(&sb, `<w:outlineLvl w:val="%d"/>`, s.OutlineLevel)
	}
	sb.WriteString(alignmentXML(s.Alignment))
	sb.WriteString(`</w:pPr>`)
	return sb.String()
}
