package store

import (
	"path/filepath"
	"testing"

	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// sampleMetadata decodes the shared sample runtime.
func sampleMetadata(t *testing.T) (*ir.Metadata, int) {
	t.Helper()
	raw := testutil.SampleRuntimeBytes(t)
	md, err := compiler.DecodeMetadata(raw)
	if err != nil {
		t.Fatalf("DecodeMetadata() failed: %v", err)
	}
	return md, len(raw)
}

func mustHash(t *testing.T, md *ir.Metadata) string {
	t.Helper()
	h, err := ir.MetadataHash(md)
	if err != nil {
		t.Fatalf("MetadataHash() failed: %v", err)
	}
	return h
}
