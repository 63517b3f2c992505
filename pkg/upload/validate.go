package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxFileSize is the advisory client-side ceiling for any upload. The
// server remains the authority and enforces its own limit.
const MaxFileSize = 10 * 1024 * 1024

// Kind selects the extension allow-list for an upload context.
type Kind int

const (
	// PaymentProof accepts receipt images and PDFs.
	PaymentProof Kind = iota
	// ChatAttachment additionally accepts text, log and zip files.
	ChatAttachment
	// LockScreenPhoto accepts images only.
	LockScreenPhoto
)

var allowed = map[Kind][]string{
	PaymentProof:    {".jpg", ".jpeg", ".png", ".pdf"},
	ChatAttachment:  {".jpg", ".jpeg", ".png", ".pdf", ".txt", ".log", ".zip"},
	LockScreenPhoto: {".jpg", ".jpeg", ".png"},
}

// Validate checks a candidate upload before any network attempt: the
// file must exist, carry an allowed extension for the context and stay
// under MaxFileSize.
func Validate(path string, kind Kind) error {
	return ValidateLimit(path, kind, MaxFileSize)
}

// ValidateLimit is Validate with a caller-supplied size ceiling. A zero
// or negative limit falls back to MaxFileSize.
func ValidateLimit(path string, kind Kind, limit int64) error {
	if limit <= 0 {
		limit = MaxFileSize
	}
	if path == "" {
		return fmt.Errorf("no file selected")
	}
	ext := strings.ToLower(filepath.Ext(path))
	exts, ok := allowed[kind]
	if !ok {
		exts = allowed[PaymentProof]
	}
	found := false
	for _, e := range exts {
		if ext == e {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("file type %q not allowed, expected one of %s", ext, strings.Join(exts, "/"))
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat upload: %w", err)
	}
	if fi.Size() > limit {
		return fmt.Errorf("file too large: %s exceeds the %s limit",
			humanize.IBytes(uint64(fi.Size())), humanize.IBytes(uint64(limit)))
	}
	return nil
}
