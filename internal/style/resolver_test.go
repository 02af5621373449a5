package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
)

func TestResolveByVariant(t *testing.T) {
	blocks := []docmodel.Block{
		docmodel.Title("MEMORIA DESCRIPTIVA"),
		docmodel.Heading(1, "1. IDENTIFICACIÓN DEL INMUEBLE"),
		docmodel.Heading(2, "5.1. Instrumental Utilizado"),
		docmodel.Paragraph("Cuerpo."),
		docmodel.Bullet("LOTE U-1 - Area: 1 Ha 2 A 3 Ca"),
		docmodel.PageBreak(),
	}

	doc, err := Resolve(blocks, Meta{Place: "CARTAVIO"})
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 6)

	title := doc.Blocks[0].Style
	assert.Equal(t, AlignCenter, title.Alignment)
	assert.True(t, title.Run.Bold)
	assert.Equal(t, SizeTitle, title.Run.Size)
	assert.Equal(t, ColorPrimary, title.Run.Color)

	h1 := doc.Blocks[1].Style
	assert.Equal(t, 0, h1.OutlineLevel)
	assert.Equal(t, H1SpacingBefore, h1.SpacingBefore)
	assert.Equal(t, ColorPrimary, h1.Run.Color)

	h2 := doc.Blocks[2].Style
	assert.Equal(t, 1, h2.OutlineLevel)
	assert.Equal(t, ColorSecondary, h2.Run.Color)
	assert.Equal(t, SizeH2, h2.Run.Size)

	para := doc.Blocks[3].Style
	assert.Equal(t, AlignJustify, para.Alignment)
	assert.Equal(t, -1, para.OutlineLevel)
	assert.False(t, para.Bullet)

	bullet := doc.Blocks[4].Style
	assert.True(t, bullet.Bullet)
}

func TestResolvePageFurniture(t *testing.T) {
	doc, err := Resolve(nil, Meta{Place: "CARTAVIO"})
	require.NoError(t, err)

	assert.Equal(t, "Memoria Descriptiva - CARTAVIO", doc.Header.Text)
	assert.Equal(t, AlignRight, doc.Header.Alignment)
	assert.Equal(t, ColorFurniture, doc.Header.Run.Color)

	assert.Equal(t, "Página {current} de {total}", doc.Footer.Text)
	assert.Equal(t, AlignCenter, doc.Footer.Alignment)

	assert.Equal(t, PageMargin, doc.Margin)
}

func TestResolveSpacingHintsWin(t *testing.T) {
	block := docmodel.Heading(1, "4. ANTECEDENTES DOMINIALES")
	block.SpacingBefore = 480
	block.SpacingAfter = 0 // falls back to variant default

	doc, err := Resolve([]docmodel.Block{block}, Meta{})
	require.NoError(t, err)
	assert.Equal(t, 480, doc.Blocks[0].Style.SpacingBefore)
	assert.Equal(t, H1SpacingAfter, doc.Blocks[0].Style.SpacingAfter)
}

func TestResolveIsPure(t *testing.T) {
	blocks := []docmodel.Block{docmodel.Paragraph("x")}
	first, err := Resolve(blocks, Meta{Place: "A"})
	require.NoError(t, err)
	second, err := Resolve(blocks, Meta{Place: "A"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "x", blocks[0].Text) // input untouched
}

func TestResolveRejectsBadHeadingLevel(t *testing.T) {
	_, err := Resolve([]docmodel.Block{docmodel.Heading(3, "nested")}, Meta{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryStyle))
}

func TestResolveRejectsBadSpanColor(t *testing.T) {
	block := docmodel.Paragraph("x")
	block.Spans = []docmodel.Span{{Text: "x", Color: "not-a-color"}}

	_, err := Resolve([]docmodel.Block{block}, Meta{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryStyle))
}
