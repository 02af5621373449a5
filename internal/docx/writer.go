// Package docx serializes a styled document into a WordprocessingML (OPC/zip)
// package. The output is deterministic: identical input produces identical
// bytes, which matters because the memoria is a legal instrument.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"

	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/style"
)

// Writer renders styled documents into .docx bytes.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer { return &Writer{} }

// Write serializes the document. Malformed style data (an invalid color or
// alignment reaching this point) is a programmer error in the resolver and
// fails the whole request with a serialize-classified error.
func (w *Writer) Write(doc *style.Document) ([]byte, error) {
	if doc == nil {
		return nil, derrors.SerializeError("nil styled document").Build()
	}
	if err := validateStyleData(doc); err != nil {
		return nil, err
	}

	documentXML, err := documentPart(doc)
	if err != nil {
		return nil, err
	}

	// Fixed part order keeps the zip byte-identical across runs.
	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentXML},
		{"word/styles.xml", stylesPart()},
		{"word/numbering.xml", numberingPart()},
		{"word/header1.xml", headerPart(doc.Header)},
		{"word/footer1.xml", footerPart(doc.Footer)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		// A bare FileHeader leaves the modification time zeroed, so the
		// archive bytes do not depend on the wall clock.
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate})
		if err != nil {
			_ = zw.Close()
			return nil, derrors.Wrap(err, derrors.CategorySerialize, "create package entry").
				WithContext("part", part.name).Build()
		}
		if _, err := fw.Write([]byte(part.data)); err != nil {
			_ = zw.Close()
			return nil, derrors.Wrap(err, derrors.CategorySerialize, "write package entry").
				WithContext("part", part.name).Build()
		}
	}
	if err := zw.Close(); err != nil {
		return nil, derrors.Wrap(err, derrors.CategorySerialize, "finalize package").Build()
	}
	return buf.Bytes(), nil
}

func validateStyleData(doc *style.Document) error {
	checkRun := func(r style.RunStyle, where string) error {
		if r.Color != "" && !isHexColor(r.Color) {
			return derrors.SerializeError("invalid color code").
				WithContext("color", r.Color).
				WithContext("where", where).Build()
		}
		return nil
	}
	if err := checkRun(doc.Header.Run, "header"); err != nil {
		return err
	}
	if err := checkRun(doc.Footer.Run, "footer"); err != nil {
		return err
	}
	for i, sb := range doc.Blocks {
		if err := checkRun(sb.Style.Run, fmt.Sprintf("block %d", i)); err != nil {
			return err
		}
		for _, span := range sb.Block.Spans {
			if span.Color != "" && !isHexColor(span.Color) {
				return derrors.SerializeError("invalid color code").
					WithContext("color", span.Color).
					WithContext("where", fmt.Sprintf("span in block %d", i)).Build()
			}
		}
		switch sb.Style.Alignment {
		case style.AlignLeft, style.AlignCenter, style.AlignRight, style.AlignJustify, "":
		default:
			return derrors.SerializeError("invalid alignment").
				WithContext("alignment", string(sb.Style.Alignment)).Build()
		}
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
