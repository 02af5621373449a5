package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSetComplete(t *testing.T) {
	set := Default()
	for _, id := range allFragmentIDs {
		assert.NotEmpty(t, set.Text(id), "fragment %s", id)
	}
}

func TestDefaultVersionStable(t *testing.T) {
	v1 := Default().Version()
	v2 := Default().Version()
	assert.Equal(t, v1, v2)
	assert.Contains(t, v1, "sha256:")
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	override := "Se respetaron **todos** los linderos existentes."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "observaciones.md"), []byte(override), 0o600))

	set, err := Load(dir)
	require.NoError(t, err)

	frag := set.Fragment(FragObservaciones)
	assert.Equal(t, "Se respetaron todos los linderos existentes.", frag.Text)
	require.Len(t, frag.Runs, 3)
	assert.False(t, frag.Runs[0].Bold)
	assert.True(t, frag.Runs[1].Bold)
	assert.Equal(t, "todos", frag.Runs[1].Text)

	// Untouched fragments keep the house wording.
	assert.Equal(t, Default().Text(FragConclusion), set.Text(FragConclusion))
}

func TestLoadRejectsUnknownFragment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "observacions.md"), []byte("typo"), 0o600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "unknown template fragment")
}

func TestOverrideChangesVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conclusion.md"), []byte("Texto nuevo."), 0o600))

	set, err := Load(dir)
	require.NoError(t, err)
	assert.NotEqual(t, Default().Version(), set.Version())
}

func TestParseFragmentItalicAndParagraphs(t *testing.T) {
	frag, err := parseFragment([]byte("Primer *párrafo*.\n\nSegundo párrafo."))
	require.NoError(t, err)
	assert.Equal(t, "Primer párrafo.\n\nSegundo párrafo.", frag.Text)

	var sawItalic bool
	for _, r := range frag.Runs {
		if r.Italic && r.Text == "párrafo" {
			sawItalic = true
		}
	}
	assert.True(t, sawItalic)
}

func TestParseFragmentRejectsLists(t *testing.T) {
	_, err := parseFragment([]byte("- item uno\n- item dos"))
	assert.Error(t, err)
}
