package templates

import (
	git "github.com/go-git/go-git/v5"
)

// gitVersion returns the HEAD commit of the repository containing dir, when
// dir is inside a git work tree. Legal wording overrides are expected to live
// in a reviewed repository; the commit hash is the audit trail.
func gitVersion(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	head, err := repo.Head()
	if err != nil {
		return "", false
	}
	return "git:" + head.Hash().String()[:12], true
}
