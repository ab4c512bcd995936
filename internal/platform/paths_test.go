package platform

import (
	"path/filepath"
	"testing"
)

func TestContains(t *testing.T) {
	base := filepath.FromSlash("/data/source")

	tests := []struct {
		target string
		want   bool
	}{
		{"/data/source/replica", true},
		{"/data/source/a/b", true},
		{"/data/source", false},
		{"/data/source-copy", false},
		{"/data", false},
		{"/other", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if got := Contains(base, filepath.FromSlash(tt.target)); got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", base, tt.target, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	got, err := NormalizePath("relative/../dir/")
	if err != nil {
		t.Fatalf("NormalizePath() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("NormalizePath() = %q, want absolute path", got)
	}
	if filepath.Base(got) != "dir" {
		t.Errorf("NormalizePath() = %q, want cleaned path ending in dir", got)
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err == nil {
		t.Error("ValidatePath(\"\") should fail")
	}
	if err := ValidatePath("some/dir"); err != nil {
		t.Errorf("ValidatePath() error = %v", err)
	}
}
