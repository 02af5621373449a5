package docx

import (
	"fmt"
	"strings"

	"github.com/SandraS2611/agrimensores-sde/internal/style"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const wpmlNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

const contentTypesXML = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>` +
	`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>` +
	`<Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>` +
	`</Relationships>`

// stylesPart emits document defaults only; all block formatting is direct,
// resolved ahead of time by the style package.
func stylesPart() string {
	return xmlHeader +
		`<w:styles ` + wpmlNS + `>` +
		`<w:docDefaults><w:rPrDefault><w:rPr>` +
		fmt.Sprintf(`<w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/>`, style.FontName) +
		fmt.Sprintf(`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, style.SizeBody, style.SizeBody) +
		`</w:rPr></w:rPrDefault></w:docDefaults>` +
		`</w:styles>`
}

// numberingPart defines the single bullet level used by list items.
func numberingPart() string {
	return xmlHeader +
		`<w:numbering ` + wpmlNS + `>` +
		`<w:abstractNum w:abstractNumId="0">` +
		`<w:lvl w:ilvl="0">` +
		`<w:numFmt w:val="bullet"/>` +
		`<w:lvlText w:val="•"/>` +
		`<w:lvlJc w:val="left"/>` +
		`<w:pPr>` +
		fmt.Sprintf(`<w:ind w:left="%d" w:hanging="%d"/>`, style.BulletIndentLeft, style.BulletIndentHanging) +
		`</w:pPr>` +
		`</w:lvl>` +
		`</w:abstractNum>` +
		`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>` +
		`</w:numbering>`
}

func headerPart(h style.Furniture) string {
	return xmlHeader +
		`<w:hdr ` + wpmlNS + `>` +
		`<w:p>` +
		`<w:pPr>` + alignmentXML(h.Alignment) + `</w:pPr>` +
		runXML(h.Run, h.Text) +
		`</w:p>` +
		`</w:hdr>`
}

// footerPart renders the footer line, replacing the page-number placeholder
// tokens with live PAGE/NUMPAGES fields so viewers substitute real values.
func footerPart(f style.Furniture) string {
	var runs strings.Builder
	for _, piece := range splitFooter(f.Text) {
		switch piece {
		case style.TokenCurrentPage:
			runs.WriteString(fieldXML(f.Run, "PAGE"))
		case style.TokenTotalPages:
			runs.WriteString(fieldXML(f.Run, "NUMPAGES"))
		default:
			runs.WriteString(runXML(f.Run, piece))
		}
	}
	return xmlHeader +
		`<w:ftr ` + wpmlNS + `>` +
		`<w:p>` +
		`<w:pPr>` + alignmentXML(f.Alignment) + `</w:pPr>` +
		runs.String() +
		`</w:p>` +
		`</w:ftr>`
}

// splitFooter cuts the footer template into literal pieces and placeholder
// tokens, preserving order.
func splitFooter(text string) []string {
	var out []string
	for text != "" {
		iCur := strings.Index(text, style.TokenCurrentPage)
		iTot := strings.Index(text, style.TokenTotalPages)
		next, token := -1, ""
		if iCur >= 0 && (iTot < 0 || iCur < iTot) {
			next, token = iCur, style.TokenCurrentPage
		} else if iTot >= 0 {
			next, token = iTot, style.TokenTotalPages
		}
		if next < 0 {
			out = append(out, text)
			break
		}
		if next > 0 {
			out = append(out, text[:next])
		}
		out = append(out, token)
		text = text[next+len(token):]
	}
	return out
}

func fieldXML(r style.RunStyle, instruction string) string {
	rpr := runPropsXML(r)
	return `<w:r>` + rpr + `<w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r>` + rpr + `<w:instrText xml:space="preserve"> ` + instruction + ` </w:instrText></w:r>` +
		`<w:r>` + rpr + `<w:fldChar w:fldCharType="end"/></w:r>`
}

func alignmentXML(a style.Alignment) string {
	if a == "" {
		return ""
	}
	return fmt.Sprintf(`<w:jc w:val="%s"/>`, a)
}

func runPropsXML(r style.RunStyle) string {
	var sb strings.Builder
	sb.WriteString(`<w:rPr>`)
	if r.Font != "" {
		fmt.Fprintf(&sb, `<w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/>`, r.Font)
	}
	if r.Bold {
		sb.WriteString(`<w:b/>`)
	}
	if r.Italic {
		sb.WriteString(`<w:i/>`)
	}
	if r.Color != "" {
		fmt.Fprintf(&sb, `<w:color w:val="%s"/>`, r.Color)
	}
	if r.Size > 0 {
		fmt.Fprintf(&sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size, r.Size)
	}
	sb.WriteString(`</w:rPr>`)
	return sb.String()
}

func runXML(r style.RunStyle, text string) string {
	return `<w:r>` + runPropsXML(r) +
		`<w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`
}

func escapeXML(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
