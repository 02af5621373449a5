// Package docmodel defines the intermediate document model of the memoria
// descriptiva: an ordered sequence of typed content blocks, and the builder
// that maps a survey record onto it. Blocks carry no presentation attributes
// beyond emphasis and spacing hints; the style resolver owns everything else.
package docmodel

// BlockKind discriminates the content block variants.
type BlockKind string

const (
	KindTitle     BlockKind = "title"
	KindHeading   BlockKind = "heading"
	KindParagraph BlockKind = "paragraph"
	KindBullet    BlockKind = "bullet"
	KindPageBreak BlockKind = "page_break"
	KindSignature BlockKind = "signature"
)

// Span is an inline run of text with optional emphasis.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Color  string // hex RRGGBB, empty for default
}

// Block is one unit of the document model. A block sequence is owned
// exclusively by the pipeline run that created it and is never mutated after
// style resolution; restyling derives new values instead.
type Block struct {
	Kind  BlockKind
	Level int // heading level (1 or 2), meaningful only for KindHeading

	// Text is the plain rendering of the block. When Spans is non-empty the
	// span texts concatenate to Text.
	Text  string
	Spans []Span

	// Spacing hints in twips. Zero means "use the variant default".
	SpacingBefore int
	SpacingAfter  int
}

// PlainText returns the block's text, assembling it from spans when present.
func (b Block) PlainText() string {
	if len(b.Spans) == 0 {
		return b.Text
	}
	var out string
	for _, s := range b.Spans {
		out += s.Text
	}
	return out
}

// Title creates a document title block.
func Title(text string) Block { return Block{Kind: KindTitle, Text: text} }

// Heading creates a section heading block at the given level.
func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph creates a body paragraph block.
func Paragraph(text string) Block { return Block{Kind: KindParagraph, Text: text} }

// Bullet creates a bulleted list item block.
func Bullet(text string) Block { return Block{Kind: KindBullet, Text: text} }

// PageBreak creates a page break marker.
func PageBreak() Block { return Block{Kind: KindPageBreak} }
