package style

import (
	"fmt"
	"strings"

	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
)

// Resolve maps the block sequence onto the house style. It is deterministic
// and side-effect-free; the only failure mode is an invalid style constant or
// span color, which is a programmer error and fails the whole request.
func Resolve(blocks []docmodel.Block, meta Meta) (*Document, error) {
	doc := &Document{
		Blocks: make([]StyledBlock, 0, len(blocks)),
		Margin: PageMargin,
		Header: Furniture{
			Text:      headerTemplate + meta.Place,
			Alignment: AlignRight,
			Run:       RunStyle{Font: FontName, Size: SizeFooter, Color: ColorFurniture},
		},
		Footer: Furniture{
			Text:      footerTemplate,
			Alignment: AlignCenter,
			Run:       RunStyle{Font: FontName, Size: SizeFooter},
		},
	}

	for i, block := range blocks {
		styled, err := resolveBlock(block)
		if err != nil {
			return nil, derrors.Wrap(err, derrors.CategoryStyle, "resolve block style").
				WithContext("block_index", i).
				WithContext("block_kind", string(block.Kind)).
				Build()
		}
		doc.Blocks = append(doc.Blocks, styled)
	}

	if err := validateColors(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func resolveBlock(block docmodel.Block) (StyledBlock, error) {
	s := BlockStyle{
		Run:           RunStyle{Font: FontName, Size: SizeBody},
		Alignment:     AlignJustify,
		OutlineLevel:  -1,
		SpacingBefore: block.SpacingBefore,
		SpacingAfter:  block.SpacingAfter,
	}

	switch block.Kind {
	case docmodel.KindTitle:
		s.Run = RunStyle{Font: FontName, Size: SizeTitle, Bold: true, Color: ColorPrimary}
		s.Alignment = AlignCenter
		s.SpacingBefore = defaultSpacing(block.SpacingBefore, TitleSpacingBefore)
		s.SpacingAfter = defaultSpacing(block.SpacingAfter, TitleSpacingAfter)

	case docmodel.KindHeading:
		switch block.Level {
		case 1:
			s.Run = RunStyle{Font: FontName, Size: SizeH1, Bold: true, Color: ColorPrimary}
			s.Alignment = AlignLeft
			s.OutlineLevel = 0
			s.SpacingBefore = defaultSpacing(block.SpacingBefore, H1SpacingBefore)
			s.SpacingAfter = defaultSpacing(block.SpacingAfter, H1SpacingAfter)
		case 2:
			s.Run = RunStyle{Font: FontName, Size: SizeH2, Bold: true, Color: ColorSecondary}
			s.Alignment = AlignLeft
			s.OutlineLevel = 1
			s.SpacingBefore = defaultSpacing(block.SpacingBefore, H2SpacingBefore)
			s.SpacingAfter = defaultSpacing(block.SpacingAfter, H2SpacingAfter)
		default:
			return StyledBlock{}, fmt.Errorf("unsupported heading level %d", block.Level)
		}

	case docmodel.KindParagraph:
		// Defaults already set.

	case docmodel.KindBullet:
		s.Bullet = true
		s.Alignment = AlignLeft

	case docmodel.KindPageBreak:
		// No visible content; run style irrelevant.

	case docmodel.KindSignature:
		s.Run.Bold = true
		s.Alignment = AlignCenter

	default:
		return StyledBlock{}, fmt.Errorf("unknown block kind %q", block.Kind)
	}

	return StyledBlock{Block: block, Style: s}, nil
}

func defaultSpacing(hint, fallback int) int {
	if hint != 0 {
		return hint
	}
	return fallback
}

// validateColors rejects malformed color constants before serialization, so
// an encoder failure over style data surfaces as a style error, not a
// serializer one.
func validateColors(doc *Document) error {
	check := func(color, where string) error {
		if color == "" {
			return nil
		}
		if len(color) != 6 || !isHex(color) {
			return derrors.StyleError("invalid color code").
				WithContext("color", color).
				WithContext("where", where).
				Build()
		}
		return nil
	}

	if err := check(doc.Header.Run.Color, "header"); err != nil {
		return err
	}
	if err := check(doc.Footer.Run.Color, "footer"); err != nil {
		return err
	}
	for i, sb := range doc.Blocks {
		if err := check(sb.Style.Run.Color, fmt.Sprintf("block %d", i)); err != nil {
			return err
		}
		for _, span := range sb.Block.Spans {
			if err := check(span.Color, fmt.Sprintf("span in block %d", i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func isHex(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdefABCDEF", r)
	}) < 0
}
