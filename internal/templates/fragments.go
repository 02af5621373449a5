// Package templates holds the legal boilerplate of the memoria descriptiva as
// a versioned constants table keyed by fragment id. Layout logic never embeds
// legal wording: the builder interpolates data into these fragments, so legal
// text changes are auditable independent of code changes.
package templates

// FragmentID identifies a boilerplate fragment.
type FragmentID string

const (
	FragTitulo             FragmentID = "titulo"
	FragProvincia          FragmentID = "provincia"
	FragTitularesIntro     FragmentID = "titulares.intro"
	FragAntecedentes       FragmentID = "antecedentes"
	FragSistemaCoordenadas FragmentID = "sistema_coordenadas"
	FragUnificacion        FragmentID = "unificacion"
	FragDivisionIntro      FragmentID = "division.intro"
	FragColindanciasIntro  FragmentID = "colindancias.intro"
	FragNormativaAguas     FragmentID = "normativa.aguas"
	FragNormativaRural     FragmentID = "normativa.rural"
	FragNormativaCatastral FragmentID = "normativa.catastral"
	FragObservaciones      FragmentID = "observaciones"
	FragConclusion         FragmentID = "conclusion"
	FragFirma              FragmentID = "firma"
	FragNoEspecificado     FragmentID = "no_especificado"
)

// Run is a piece of fragment text with inline emphasis.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Fragment is one boilerplate unit: plain text plus optional emphasis runs.
// Runs, when present, concatenate to Text.
type Fragment struct {
	Text string
	Runs []Run
}

// The house fragments. This wording is regulatory boilerplate and must be
// byte-identical across documents; do not edit casually.
var defaultFragments = map[FragmentID]Fragment{
	FragTitulo:    {Text: "MEMORIA DESCRIPTIVA"},
	FragProvincia: {Text: "Santiago del Estero"},
	FragTitularesIntro: {
		Text: "Se identifican los siguientes propietarios condóminos:",
	},
	FragAntecedentes: {
		Text: "Los inmuebles a unificar y dividir cuentan con los siguientes antecedentes de dominio debidamente inscriptos en el Registro correspondiente.",
	},
	FragSistemaCoordenadas: {
		Text: "Sistema: POSGAR 2007 - Proyección Gauss-Krüger",
	},
	FragUnificacion: {
		Text: "Se unifican los inmuebles originales formando una única parcela denominada LOTE U, conforme a las medidas y superficies que se detallan en la documentación gráfica adjunta.",
	},
	FragDivisionIntro: {
		Text: "La parcela unificada (LOTE U) se divide en las siguientes fracciones:",
	},
	FragColindanciasIntro: {
		Text: "El inmueble colinda con las siguientes propiedades:",
	},
	FragNormativaAguas: {
		Text: "Se declara que el presente trabajo se ajusta a las disposiciones del Código de Aguas de la Provincia en lo referente a derechos de agua, concesiones y servidumbres hídricas.",
	},
	FragNormativaRural: {
		Text: "Se respetan las disposiciones del Código Rural en materia de alambrados, caminos vecinales y demás obligaciones establecidas.",
	},
	FragNormativaCatastral: {
		Text: "El presente trabajo se ajusta a las disposiciones de la Ley Provincial de Catastro N° 6.339 y sus reglamentaciones.",
	},
	FragObservaciones: {
		Text: "Se respetaron linderos y hechos antiguos, no afectándose inmuebles colindantes. Las medidas y superficies consignadas surgen de las operaciones de mensura realizadas en el terreno con el instrumental detallado.",
	},
	FragConclusion: {
		Text: "Se ha procedido a la mensura, unificación y división del inmueble conforme a lo solicitado por los titulares del dominio, respetando la normativa vigente y los derechos de terceros. La presente memoria descriptiva se presenta ante las autoridades competentes para su aprobación.",
	},
	FragFirma:          {Text: "Firma y Sello del Profesional"},
	FragNoEspecificado: {Text: "No especificado"},
}

// allFragmentIDs in stable order, used for version hashing.
var allFragmentIDs = []FragmentID{
	FragTitulo,
	FragProvincia,
	FragTitularesIntro,
	FragAntecedentes,
	FragSistemaCoordenadas,
	FragUnificacion,
	FragDivisionIntro,
	FragColindanciasIntro,
	FragNormativaAguas,
	FragNormativaRural,
	FragNormativaCatastral,
	FragObservaciones,
	FragConclusion,
	FragFirma,
	FragNoEspecificado,
}
