package identify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/swhid/pkg/object"
	"github.com/odvcencio/swhid/pkg/swhid"
)

const (
	emptyBlobHex = "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
	emptyTreeHex = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
	helloBlobHex = "b45ef6fec89518d314f546fd6c3025367b721684"

	// git write-tree of fixtureTree.
	fixtureTreeHex = "35ec76059497b9297144b2b3e57b15d8f3a2b55c"
	fixtureSubHex  = "108aabee1ecf7ab27858b9b94edb90863ce0f006"
)

func writeTestFile(t *testing.T, path string, data string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("Chmod(%s): %v", path, err)
	}
}

func symlinkForTest(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

// fixtureTree lays out:
//
//	dir/inner.txt   "inner\n"
//	dir.txt         "x\n"
//	link -> target.txt
//	run.sh          executable
//	target.txt      "target content"
func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "dir", "inner.txt"), "inner\n", 0o644)
	writeTestFile(t, filepath.Join(root, "dir.txt"), "x\n", 0o644)
	writeTestFile(t, filepath.Join(root, "run.sh"), "#!/bin/sh\necho hi\n", 0o755)
	writeTestFile(t, filepath.Join(root, "target.txt"), "target content", 0o644)
	symlinkForTest(t, "target.txt", filepath.Join(root, "link"))
	return root
}

func mustHash(t *testing.T, s string) object.Hash {
	t.Helper()
	h, err := object.ParseHash(s)
	if err != nil {
		t.Fatalf("ParseHash(%q): %v", s, err)
	}
	return h
}

func newTestComputer(t *testing.T, opts ...Option) *Computer {
	t.Helper()
	c, err := NewComputer(opts...)
	if err != nil {
		t.Fatalf("NewComputer: %v", err)
	}
	return c
}

func wantKind(t *testing.T, err error, kind swhid.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !swhid.IsKind(err, kind) {
		t.Fatalf("error = %v (kind %v), want %v", err, swhid.KindOf(err), kind)
	}
}
