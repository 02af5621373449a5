package docx

import (
	"strings"

	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	"github.com/SandraS2611/agrimensores-sde/internal/style"
)

// Preview renders the plain-text body of the document in output order, for
// on-screen display before download. Bullets become newline-delimited "- "
// items; page breaks produce no output.
func Preview(doc *style.Document) string {
	var sb strings.Builder
	prevBullet := false
	for _, styled := range doc.Blocks {
		block := styled.Block
		if block.Kind == docmodel.KindPageBreak {
			continue
		}

		text := block.PlainText()
		if block.Kind == docmodel.KindBullet {
			if sb.Len() > 0 {
				if prevBullet {
					sb.WriteString("\n")
				} else {
					sb.WriteString("\n\n")
				}
			}
			sb.WriteString("- " + text)
			prevBullet = true
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
		prevBullet = false
	}
	return sb.String()
}
