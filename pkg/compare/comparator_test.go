package compare

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/syncreplica/pkg/storage"
)

// TestHelper provides utilities for comparator tests
type TestHelper struct {
	t       *testing.T
	tempDir string
	source  *storage.Local
	dest    *storage.Local
}

// NewTestHelper creates a new test helper with temporary directories
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "syncreplica-compare-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	sourceDir := filepath.Join(tempDir, "source")
	destDir := filepath.Join(tempDir, "dest")

	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatalf("failed to create dest dir: %v", err)
	}

	source, err := storage.NewLocal(sourceDir)
	if err != nil {
		t.Fatalf("failed to create source backend: %v", err)
	}

	dest, err := storage.NewLocal(destDir)
	if err != nil {
		t.Fatalf("failed to create dest backend: %v", err)
	}

	return &TestHelper{
		t:       t,
		tempDir: tempDir,
		source:  source,
		dest:    dest,
	}
}

// Cleanup removes all temporary files
func (h *TestHelper) Cleanup() {
	os.RemoveAll(h.tempDir)
}

// CreateSourceFile creates a file in the source directory
func (h *TestHelper) CreateSourceFile(name string, content []byte) {
	h.t.Helper()
	h.createFile("source", name, content)
}

// CreateDestFile creates a file in the destination directory
func (h *TestHelper) CreateDestFile(name string, content []byte) {
	h.t.Helper()
	h.createFile("dest", name, content)
}

func (h *TestHelper) createFile(side, name string, content []byte) {
	h.t.Helper()
	path := filepath.Join(h.tempDir, side, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create %s file: %v", side, err)
	}
}

// TestBinaryComparator tests byte-by-byte comparison
func TestBinaryComparator(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	comparator := NewBinaryComparator(4096)
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		if comparator.Name() != "binary" {
			t.Errorf("Name() = %s, want binary", comparator.Name())
		}
	})

	t.Run("IdenticalFiles", func(t *testing.T) {
		content := []byte("identical content for binary test")
		h.CreateSourceFile("binary_identical.txt", content)
		h.CreateDestFile("binary_identical.txt", content)

		result, err := comparator.Compare(ctx, h.source, h.dest, "binary_identical.txt", "binary_identical.txt")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Result != Same {
			t.Errorf("Result = %s, want %s", result.Result, Same)
		}
	})

	t.Run("EmptyFiles", func(t *testing.T) {
		h.CreateSourceFile("empty.txt", nil)
		h.CreateDestFile("empty.txt", nil)

		result, err := comparator.Compare(ctx, h.source, h.dest, "empty.txt", "empty.txt")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Result != Same {
			t.Errorf("Result = %s, want %s", result.Result, Same)
		}
	})

	t.Run("DifferentContent", func(t *testing.T) {
		h.CreateSourceFile("binary_diff.txt", []byte("aaaaaaaaaa"))
		h.CreateDestFile("binary_diff.txt", []byte("aaaaXaaaaa"))

		result, err := comparator.Compare(ctx, h.source, h.dest, "binary_diff.txt", "binary_diff.txt")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Result != Different {
			t.Errorf("Result = %s, want %s", result.Result, Different)
		}
		if result.Reason != "binary content differs at byte offset 4" {
			t.Errorf("Reason = %q", result.Reason)
		}
	})

	t.Run("SameSizeSameTimestampDifferentContent", func(t *testing.T) {
		h.CreateSourceFile("stamp.txt", []byte("hi"))
		h.CreateDestFile("stamp.txt", []byte("ho"))

		info, err := os.Stat(filepath.Join(h.tempDir, "source", "stamp.txt"))
		if err != nil {
			t.Fatalf("failed to stat: %v", err)
		}
		os.Chtimes(filepath.Join(h.tempDir, "dest", "stamp.txt"), info.ModTime(), info.ModTime())

		result, err := comparator.Compare(ctx, h.source, h.dest, "stamp.txt", "stamp.txt")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Result != Different {
			t.Errorf("Result = %s, want %s (timestamps must not be trusted)", result.Result, Different)
		}
	})

	t.Run("DifferenceBeyondFirstBuffer", func(t *testing.T) {
		src := bytes.Repeat([]byte("a"), 10000)
		dst := bytes.Repeat([]byte("a"), 10000)
		dst[9000] = 'b'
		h.CreateSourceFile("large.bin", src)
		h.CreateDestFile("large.bin", dst)

		result, err := comparator.Compare(ctx, h.source, h.dest, "large.bin", "large.bin")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Reason != "binary content differs at byte offset 9000" {
			t.Errorf("Reason = %q", result.Reason)
		}
	})

	t.Run("DifferentSizes", func(t *testing.T) {
		h.CreateSourceFile("binary_size.txt", []byte("short"))
		h.CreateDestFile("binary_size.txt", []byte("much longer content"))

		result, err := comparator.Compare(ctx, h.source, h.dest, "binary_size.txt", "binary_size.txt")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Result != Different {
			t.Errorf("Result = %s, want %s", result.Result, Different)
		}
	})

	t.Run("SourceDoesNotExist", func(t *testing.T) {
		h.CreateDestFile("binary_nodest.txt", []byte("content"))

		_, err := comparator.Compare(ctx, h.source, h.dest, "binary_nosource.txt", "binary_nodest.txt")
		if err == nil {
			t.Error("Compare() should fail when the source file is missing")
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		h.CreateSourceFile("cancel.txt", []byte("content"))
		h.CreateDestFile("cancel.txt", []byte("content"))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := comparator.Compare(cancelled, h.source, h.dest, "cancel.txt", "cancel.txt")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Compare() error = %v, want context.Canceled", err)
		}
	})

	t.Run("ReaderWrapper", func(t *testing.T) {
		h.CreateSourceFile("wrapped.txt", []byte("wrapped"))
		h.CreateDestFile("wrapped.txt", []byte("wrapped"))

		wrapped := 0
		c := NewBinaryComparator(1024)
		c.SetReaderWrapper(func(r io.Reader) io.Reader {
			wrapped++
			return r
		})

		result, err := c.Compare(ctx, h.source, h.dest, "wrapped.txt", "wrapped.txt")
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if result.Result != Same {
			t.Errorf("Result = %s, want %s", result.Result, Same)
		}
		if wrapped != 2 {
			t.Errorf("wrapper called %d times, want 2", wrapped)
		}
	})
}

// TestComparatorInterface verifies comparators implement the interface
func TestComparatorInterface(t *testing.T) {
	var _ Comparator = NewBinaryComparator(4096)
}
