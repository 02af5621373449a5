// Package style resolves the document model into the fixed house style of
// the memoria descriptiva. Resolution is a pure mapping from block variant to
// presentation attributes; it never inspects block text.
package style

import (
	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
)

// Alignment values understood by the serializer.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// House style constants. Sizes are in half-points, spacing and indents in
// twips, colors in hex RRGGBB without the leading hash.
const (
	FontName = "Arial"

	SizeBody    = 24
	SizeTitle   = 56
	SizeH1      = 32
	SizeH2      = 28
	SizeFooter  = 20
	ColorPrimary   = "1F4788"
	ColorSecondary = "2E75B5"
	ColorFurniture = "666666"

	TitleSpacingBefore = 240
	TitleSpacingAfter  = 240
	H1SpacingBefore    = 480
	H1SpacingAfter     = 240
	H2SpacingBefore    = 360
	H2SpacingAfter     = 180

	BulletIndentLeft    = 720
	BulletIndentHanging = 360

	PageMargin = 1440
)

// Footer page-number placeholder tokens. The resolver only inserts these;
// live substitution happens in the serializer via field codes.
const (
	TokenCurrentPage = "{current}"
	TokenTotalPages  = "{total}"
)

// headerTemplate is the running header; {place} is substituted at resolve
// time from the record metadata.
const headerTemplate = "Memoria Descriptiva - "

// footerTemplate keeps the page tokens for the serializer.
const footerTemplate = "Página " + TokenCurrentPage + " de " + TokenTotalPages

// RunStyle describes character formatting.
type RunStyle struct {
	Font   string
	Size   int // half-points
	Bold   bool
	Italic bool
	Color  string // empty = default text color
}

// BlockStyle describes resolved paragraph formatting for one block.
type BlockStyle struct {
	Run           RunStyle
	Alignment     Alignment
	SpacingBefore int
	SpacingAfter  int
	OutlineLevel  int  // -1 when the block does not contribute to the outline
	Bullet        bool // single fixed indentation level, no nesting
}

// StyledBlock pairs a block with its resolved style. The underlying block is
// copied, not referenced: resolution derives, it never mutates.
type StyledBlock struct {
	Block docmodel.Block
	Style BlockStyle
}

// Furniture is a running header or footer line.
type Furniture struct {
	Text      string
	Alignment Alignment
	Run       RunStyle
}

// Document is the serializer's sole input: the styled block sequence plus
// page furniture and geometry.
type Document struct {
	Blocks []StyledBlock
	Header Furniture
	Footer Furniture
	Margin int // uniform on all four edges, twips
}

// Meta carries the record fields that page furniture interpolates.
type Meta struct {
	Place string
}
