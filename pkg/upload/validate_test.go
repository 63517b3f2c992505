package upload

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidateExtensions(t *testing.T) {
	cases := []struct {
		name string
		file string
		kind Kind
		ok   bool
	}{
		{"proof jpg", "receipt.jpg", PaymentProof, true},
		{"proof pdf", "receipt.PDF", PaymentProof, true},
		{"proof zip rejected", "receipt.zip", PaymentProof, false},
		{"chat zip", "logs.zip", ChatAttachment, true},
		{"chat log", "boot.log", ChatAttachment, true},
		{"chat exe rejected", "tool.exe", ChatAttachment, false},
		{"photo png", "screen.png", LockScreenPhoto, true},
		{"photo pdf rejected", "screen.pdf", LockScreenPhoto, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeFile(t, c.file, 64)
			err := Validate(path, c.kind)
			if c.ok && err != nil {
				t.Errorf("Validate(%s) = %v, want nil", c.file, err)
			}
			if !c.ok && err == nil {
				t.Errorf("Validate(%s) = nil, want error", c.file)
			}
		})
	}
}

func TestValidateSizeLimit(t *testing.T) {
	path := writeFile(t, "big.png", MaxFileSize+1)
	if err := Validate(path, ChatAttachment); err == nil {
		t.Fatal("oversized file accepted")
	}
	path = writeFile(t, "fits.png", 1024)
	if err := Validate(path, ChatAttachment); err != nil {
		t.Fatalf("small file rejected: %v", err)
	}
}

func TestValidateMissingFile(t *testing.T) {
	if err := Validate("", PaymentProof); err == nil {
		t.Fatal("empty path accepted")
	}
	if err := Validate(filepath.Join(t.TempDir(), "gone.png"), PaymentProof); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestValidateLimitOverride(t *testing.T) {
	p := writeFile(t, "receipt.jpg", 2048)
	if err := ValidateLimit(p, PaymentProof, 1024); err == nil {
		t.Fatal("expected error above the custom limit")
	}
	if err := ValidateLimit(p, PaymentProof, 4096); err != nil {
		t.Fatalf("under custom limit: %v", err)
	}
	// zero limit falls back to the built-in ceiling
	if err := ValidateLimit(p, PaymentProof, 0); err != nil {
		t.Fatalf("zero limit: %v", err)
	}
}
