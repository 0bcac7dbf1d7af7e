package pack

import (
	"os"
	"path/filepath"

	"github.com/lunii-encode/native-pack-encoder/models"
)

// ScratchDir is a temporary working tree guaranteed to be removed on any
// exit path, success or failure (§5). The orchestrator builds
// .content/<REF>/rf/000 and sf/000 directly under Root.
type ScratchDir struct {
	Root string
}

// NewScratchDir creates a fresh scratch directory under the OS temp root.
func NewScratchDir() (*ScratchDir, error) {
	dir, err := os.MkdirTemp("", "lunii-encode-*")
	if err != nil {
		return nil, &models.IOError{Op: "create scratch directory", Err: err}
	}
	return &ScratchDir{Root: dir}, nil
}

// Close removes the entire scratch tree. Callers should defer this
// immediately after NewScratchDir succeeds.
func (s *ScratchDir) Close() error {
	return os.RemoveAll(s.Root)
}

// ContentDir returns .content/<ref>/ under the scratch root, creating it
// (including rf/000 and sf/000) if it does not already exist (§4.6 step 5).
func (s *ScratchDir) ContentDir(ref string) (string, error) {
	contentDir := filepath.Join(s.Root, ".content", ref)
	for _, sub := range []string{filepath.Join("rf", "000"), filepath.Join("sf", "000")} {
		if err := os.MkdirAll(filepath.Join(contentDir, sub), 0o755); err != nil {
			return "", &models.IOError{Op: "create content directory", Err: err}
		}
	}
	return contentDir, nil
}
