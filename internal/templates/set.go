package templates

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Set is an immutable boilerplate table plus its audit version.
type Set struct {
	fragments map[FragmentID]Fragment
	version   string
}

// Default returns the built-in house fragments.
func Default() *Set {
	s := &Set{fragments: defaultFragments}
	s.version = s.contentVersion()
	return s
}

// Load returns the house fragments with per-fragment overrides read from dir.
// Each override is a Markdown file named <fragment-id>.md; bold and italic
// emphasis in the file becomes inline runs. Unknown file names are rejected
// so a typo cannot silently leave the house wording in place.
func Load(dir string) (*Set, error) {
	merged := make(map[FragmentID]Fragment, len(defaultFragments))
	for id, f := range defaultFragments {
		merged[id] = f
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	known := make(map[FragmentID]bool, len(allFragmentIDs))
	for _, id := range allFragmentIDs {
		known[id] = true
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		id := FragmentID(strings.TrimSuffix(name, ".md"))
		if !known[id] {
			return nil, fmt.Errorf("unknown template fragment %q", name)
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read fragment %s: %w", name, err)
		}
		frag, err := parseFragment(data)
		if err != nil {
			return nil, fmt.Errorf("parse fragment %s: %w", name, err)
		}
		merged[id] = frag
	}

	s := &Set{fragments: merged}
	if v, ok := gitVersion(dir); ok {
		s.version = v
	} else {
		s.version = s.contentVersion()
	}
	return s, nil
}

// Fragment returns the fragment for id. Missing ids indicate corrupted
// wiring, not user input, so the lookup panics rather than degrading the
// legal text.
func (s *Set) Fragment(id FragmentID) Fragment {
	f, ok := s.fragments[id]
	if !ok {
		panic(fmt.Sprintf("templates: unknown fragment id %q", id))
	}
	return f
}

// Text is shorthand for Fragment(id).Text.
func (s *Set) Text(id FragmentID) string { return s.Fragment(id).Text }

// Version is the audit identifier for this exact wording: the git commit of
// the overrides directory when available, else a digest of the contents.
func (s *Set) Version() string { return s.version }

func (s *Set) contentVersion() string {
	h := sha256.New()
	for _, id := range allFragmentIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
		h.Write([]byte(s.fragments[id].Text))
		h.Write([]byte{0})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))[:12]
}
