package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Plano Lote 12", "Memoria_Plano_Lote_12.docx"},
		{"Mensura José Pérez", "Memoria_Mensura_Jose_Perez.docx"},
		{"División Ñandú", "Memoria_Division_Nandu.docx"},
		{"Lote U-2 (anexo)", "Memoria_Lote_U-2_anexo.docx"},
		{"", "Memoria_memoria.docx"},
		{"¿?¡!", "Memoria_memoria.docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, downloadFilename(tt.title), "title %q", tt.title)
	}
}
