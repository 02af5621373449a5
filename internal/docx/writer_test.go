package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/style"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
	"github.com/SandraS2611/agrimensores-sde/internal/templates"
)

func styledFixture(t *testing.T) *style.Document {
	t.Helper()
	record := &survey.Record{
		Object:     "Mensura & división",
		Place:      "CARTAVIO",
		Department: "FIGUEROA",
		Date:       "16/02/2024",
		Owners: []survey.Owner{
			{Name: "Julian, Luis", NationalID: "07.203.770", TaxID: "20-07203770-8"},
		},
		ResultingLots: []survey.ResultingLot{
			{Label: "LOTE U-2", AreaHectares: "5", AreaAres: "43", AreaCentiares: "30.94"},
		},
	}
	blocks := docmodel.NewBuilder(templates.Default()).Build(record)
	doc, err := style.Resolve(blocks, style.Meta{Place: record.Place})
	require.NoError(t, err)
	return doc
}

func readPart(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestWriteProducesValidPackage(t *testing.T) {
	pkg, err := NewWriter().Write(styledFixture(t))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/_rels/document.xml.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/numbering.xml",
		"word/header1.xml",
		"word/footer1.xml",
	}, names)
}

func TestWriteIsDeterministic(t *testing.T) {
	doc := styledFixture(t)
	first, err := NewWriter().Write(doc)
	require.NoError(t, err)
	second, err := NewWriter().Write(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDocumentContent(t *testing.T) {
	pkg, err := NewWriter().Write(styledFixture(t))
	require.NoError(t, err)

	body := readPart(t, pkg, "word/document.xml")
	assert.Contains(t, body, "MEMORIA DESCRIPTIVA")
	assert.Contains(t, body, "1. IDENTIFICACIÓN DEL INMUEBLE")
	assert.Contains(t, body, "LOTE U-2 - Area: 5 Ha 43 A 30.94 Ca")
	assert.Contains(t, body, `<w:br w:type="page"/>`)
	assert.Contains(t, body, `<w:numId w:val="1"/>`)
	assert.Contains(t, body, `<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/>`)
	// XML escaping of data fields.
	assert.Contains(t, body, "Mensura &amp; división")
	assert.NotContains(t, body, "Mensura & división")
}

func TestHeaderAndFooterParts(t *testing.T) {
	pkg, err := NewWriter().Write(styledFixture(t))
	require.NoError(t, err)

	header := readPart(t, pkg, "word/header1.xml")
	assert.Contains(t, header, "Memoria Descriptiva - CARTAVIO")
	assert.Contains(t, header, `<w:jc w:val="right"/>`)
	assert.Contains(t, header, `<w:color w:val="666666"/>`)

	footer := readPart(t, pkg, "word/footer1.xml")
	assert.Contains(t, footer, `<w:instrText xml:space="preserve"> PAGE </w:instrText>`)
	assert.Contains(t, footer, `<w:instrText xml:space="preserve"> NUMPAGES </w:instrText>`)
	assert.Contains(t, footer, "Página ")
	assert.Contains(t, footer, `<w:jc w:val="center"/>`)
	// Placeholder tokens never leak into the output.
	assert.NotContains(t, footer, "{current}")
	assert.NotContains(t, footer, "{total}")
}

func TestWriteRejectsInvalidColor(t *testing.T) {
	doc := styledFixture(t)
	doc.Blocks[0].Style.Run.Color = "ZZZZZZ"

	_, err := NewWriter().Write(doc)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategorySerialize))
}

func TestSplitFooter(t *testing.T) {
	pieces := splitFooter("Página {current} de {total}")
	assert.Equal(t, []string{"Página ", "{current}", " de ", "{total}"}, pieces)

	assert.Equal(t, []string{"sin tokens"}, splitFooter("sin tokens"))
}

func TestPreviewRendering(t *testing.T) {
	preview := Preview(styledFixture(t))

	assert.True(t, strings.HasPrefix(preview, "MEMORIA DESCRIPTIVA"))
	assert.Contains(t, preview, "- Julian, Luis - ID: 07.203.770 - Tax ID: 20-07203770-8")
	assert.Contains(t, preview, "- LOTE U-2 - Area: 5 Ha 43 A 30.94 Ca")
	assert.Contains(t, preview, "11. CONCLUSIÓN")
	assert.NotContains(t, preview, "{current}")

	// Consecutive bullets are newline-delimited, not blank-line separated.
	record := &survey.Record{AdjoiningLots: []survey.AdjoiningLot{
		{LotLabel: "Lote 1", OwnerName: "A"},
		{LotLabel: "Lote 2", OwnerName: "B"},
	}}
	blocks := docmodel.NewBuilder(nil).Build(record)
	doc, err := style.Resolve(blocks, style.Meta{})
	require.NoError(t, err)
	assert.Contains(t, Preview(doc), "- Lote 1 - A\n- Lote 2 - B")
}
