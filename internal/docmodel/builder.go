package docmodel

import (
	"fmt"
	"strings"

	"github.com/SandraS2611/agrimensores-sde/internal/survey"
	"github.com/SandraS2611/agrimensores-sde/internal/templates"
)

// maxAdjoiningLots caps §8 for presentation. Plans in this region routinely
// list dozens of shared boundaries; the memoria only names the first ten.
const maxAdjoiningLots = 10

// accentColor is the inline emphasis color used for the cover object line.
const accentColor = "2E75B5"

// Builder maps a survey record onto the ordered block sequence of the
// memoria. Build is total: missing optional fields are substituted with the
// house placeholder, never dropped, and empty lists still produce their
// section heading and intro sentence.
type Builder struct {
	set *templates.Set
}

// NewBuilder creates a builder over the given boilerplate set.
func NewBuilder(set *templates.Set) *Builder {
	if set == nil {
		set = templates.Default()
	}
	return &Builder{set: set}
}

// TemplateVersion exposes the audit version of the boilerplate in use.
func (b *Builder) TemplateVersion() string { return b.set.Version() }

// Build produces the complete block sequence for one record. The section
// order is contractual: cover, then the eleven numbered sections with page
// breaks after the cover, §5 and §8, then the signature block.
func (b *Builder) Build(record *survey.Record) []Block {
	blocks := make([]Block, 0, 64)

	blocks = append(blocks, b.cover(record)...)
	blocks = append(blocks, PageBreak())

	blocks = append(blocks, b.identification(record)...)
	blocks = append(blocks, b.object(record)...)
	blocks = append(blocks, b.titleHolders(record)...)
	blocks = append(blocks, b.background()...)
	blocks = append(blocks, b.technicalDescription(record)...)
	blocks = append(blocks, PageBreak())

	blocks = append(blocks, b.unification()...)
	blocks = append(blocks, b.subdivision(record)...)
	blocks = append(blocks, b.adjoining(record)...)
	blocks = append(blocks, PageBreak())

	blocks = append(blocks, b.compliance()...)
	blocks = append(blocks, b.observations()...)
	blocks = append(blocks, b.conclusion()...)
	blocks = append(blocks, b.signature(record)...)

	return blocks
}

func (b *Builder) cover(record *survey.Record) []Block {
	object := b.orPlaceholder(record.Object)
	objectLine := Block{
		Kind:          KindParagraph,
		Text:          object,
		Spans:         []Span{{Text: object, Bold: true, Color: accentColor}},
		SpacingBefore: 120,
		SpacingAfter:  480,
	}
	province := "Provincia de " + b.set.Text(templates.FragProvincia)
	provinceLine := Block{
		Kind:         KindParagraph,
		Text:         province,
		Spans:        []Span{{Text: province, Italic: true}},
		SpacingAfter: 960,
	}
	return []Block{
		Title(b.set.Text(templates.FragTitulo)),
		objectLine,
		withSpacingAfter(Paragraph("Lugar: "+b.orPlaceholder(record.Place)), 240),
		withSpacingAfter(Paragraph("Departamento: "+b.orPlaceholder(record.Department)), 240),
		provinceLine,
		Paragraph("Fecha: " + b.orPlaceholder(record.Date)),
	}
}

func (b *Builder) identification(record *survey.Record) []Block {
	return []Block{
		Heading(1, "1. IDENTIFICACIÓN DEL INMUEBLE"),
		withSpacingAfter(Paragraph("Lugar: "+b.orPlaceholder(record.Place)), 120),
		withSpacingAfter(Paragraph("Departamento: "+b.orPlaceholder(record.Department)), 120),
		withSpacingAfter(Paragraph("Provincia: "+b.set.Text(templates.FragProvincia)), 120),
	}
}

func (b *Builder) object(record *survey.Record) []Block {
	return []Block{
		Heading(1, "2. OBJETO DEL TRÁMITE"),
		withSpacingAfter(Paragraph(b.orPlaceholder(record.Object)), 240),
	}
}

func (b *Builder) titleHolders(record *survey.Record) []Block {
	blocks := []Block{
		Heading(1, "3. TITULARES DEL DOMINIO"),
		withSpacingAfter(b.fragmentParagraph(templates.FragTitularesIntro), 120),
	}
	for _, owner := range record.Owners {
		blocks = append(blocks, Bullet(fmt.Sprintf("%s - ID: %s - Tax ID: %s",
			owner.Name, owner.NationalID, owner.TaxID)))
	}
	return blocks
}

func (b *Builder) background() []Block {
	heading := Heading(1, "4. ANTECEDENTES DOMINIALES")
	heading.SpacingBefore = 480
	return []Block{
		heading,
		withSpacingAfter(b.fragmentParagraph(templates.FragAntecedentes), 240),
	}
}

func (b *Builder) technicalDescription(record *survey.Record) []Block {
	return []Block{
		Heading(1, "5. DESCRIPCIÓN TÉCNICA"),
		Heading(2, "5.1. Instrumental Utilizado"),
		withSpacingAfter(Paragraph(b.orPlaceholder(record.Instrumentation)), 240),
		Heading(2, "5.2. Sistema de Coordenadas"),
		withSpacingAfter(b.fragmentParagraph(templates.FragSistemaCoordenadas), 240),
	}
}

func (b *Builder) unification() []Block {
	return []Block{
		Heading(1, "6. UNIFICACIÓN DE PARCELAS"),
		withSpacingAfter(b.fragmentParagraph(templates.FragUnificacion), 240),
	}
}

func (b *Builder) subdivision(record *survey.Record) []Block {
	blocks := []Block{
		Heading(1, "7. DIVISIÓN DE LA PARCELA UNIFICADA"),
		withSpacingAfter(b.fragmentParagraph(templates.FragDivisionIntro), 120),
	}
	for _, lot := range record.ResultingLots {
		blocks = append(blocks, Bullet(fmt.Sprintf("%s - Area: %s Ha %s A %s Ca",
			lot.Label, lot.AreaHectares, lot.AreaAres, lot.AreaCentiares)))
	}
	return blocks
}

func (b *Builder) adjoining(record *survey.Record) []Block {
	heading := Heading(1, "8. COLINDANCIAS")
	heading.SpacingBefore = 480
	blocks := []Block{
		heading,
		withSpacingAfter(b.fragmentParagraph(templates.FragColindanciasIntro), 120),
	}
	lots := record.AdjoiningLots
	if len(lots) > maxAdjoiningLots {
		lots = lots[:maxAdjoiningLots]
	}
	for _, lot := range lots {
		blocks = append(blocks, Bullet(fmt.Sprintf("%s - %s", lot.LotLabel, lot.OwnerName)))
	}
	return blocks
}

func (b *Builder) compliance() []Block {
	return []Block{
		Heading(1, "9. CUMPLIMIENTO NORMATIVO"),
		Heading(2, "9.1. Código de Aguas (Ley 4.869)"),
		withSpacingAfter(b.fragmentParagraph(templates.FragNormativaAguas), 120),
		Heading(2, "9.2. Código Rural (Ley 1.734)"),
		withSpacingAfter(b.fragmentParagraph(templates.FragNormativaRural), 120),
		Heading(2, "9.3. Normativa Catastral"),
		withSpacingAfter(b.fragmentParagraph(templates.FragNormativaCatastral), 240),
	}
}

func (b *Builder) observations() []Block {
	return []Block{
		Heading(1, "10. OBSERVACIONES"),
		withSpacingAfter(b.fragmentParagraph(templates.FragObservaciones), 120),
	}
}

func (b *Builder) conclusion() []Block {
	return []Block{
		Heading(1, "11. CONCLUSIÓN"),
		withSpacingAfter(b.fragmentParagraph(templates.FragConclusion), 480),
	}
}

func (b *Builder) signature(record *survey.Record) []Block {
	placeDate := Block{
		Kind: KindParagraph,
		Text: fmt.Sprintf("Lugar y fecha: %s, %s",
			b.orPlaceholder(record.Place), b.orPlaceholder(record.Date)),
		SpacingBefore: 960,
		SpacingAfter:  240,
	}
	return []Block{
		placeDate,
		{Kind: KindSignature, Text: b.set.Text(templates.FragFirma), SpacingBefore: 480},
	}
}

// fragmentParagraph converts a boilerplate fragment into a paragraph block,
// carrying through any emphasis runs from template overrides.
func (b *Builder) fragmentParagraph(id templates.FragmentID) Block {
	frag := b.set.Fragment(id)
	block := Paragraph(frag.Text)
	for _, run := range frag.Runs {
		block.Spans = append(block.Spans, Span{Text: run.Text, Bold: run.Bold, Italic: run.Italic})
	}
	return block
}

func (b *Builder) orPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return b.set.Text(templates.FragNoEspecificado)
	}
	return text
}

func withSpacingAfter(block Block, twips int) Block {
	block.SpacingAfter = twips
	return block
}
