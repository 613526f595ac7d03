package identify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/odvcencio/swhid/pkg/codec"
	"github.com/odvcencio/swhid/pkg/swhid"
	"github.com/sirupsen/logrus"
)

func TestNewComputerDefaults(t *testing.T) {
	c := newTestComputer(t)
	if c.FollowSymlinks() {
		t.Error("FollowSymlinks() = true, want false")
	}
	if len(c.ExcludePatterns()) != 0 {
		t.Errorf("ExcludePatterns() = %v, want none", c.ExcludePatterns())
	}
}

func TestNewComputerOptions(t *testing.T) {
	patterns := []string{"*.tmp", ".git"}
	c := newTestComputer(t, WithFollowSymlinks(true), WithExcludePatterns(patterns))
	patterns[0] = "changed"
	if !c.FollowSymlinks() {
		t.Error("FollowSymlinks() = false, want true")
	}
	got := c.ExcludePatterns()
	if len(got) != 2 || got[0] != "*.tmp" || got[1] != ".git" {
		t.Errorf("ExcludePatterns() = %v", got)
	}
}

func TestNewComputerBadPattern(t *testing.T) {
	_, err := NewComputer(WithExcludePatterns([]string{"[oops"}))
	wantKind(t, err, swhid.KindInvalidInput)
}

func TestComputeContent(t *testing.T) {
	id, err := newTestComputer(t).ComputeContent([]byte("Hello, World!"))
	if err != nil {
		t.Fatalf("ComputeContent: %v", err)
	}
	if id.String() != "swh:1:cnt:"+helloBlobHex {
		t.Fatalf("ComputeContent = %s", id)
	}
}

func TestComputeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	writeTestFile(t, path, "test content", 0o644)

	id, err := newTestComputer(t).Compute(path)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if id.String() != "swh:1:cnt:08cf6101416f0ce0dda3c80e627f333854c4085c" {
		t.Fatalf("Compute = %s", id)
	}
}

func TestComputeDirectory(t *testing.T) {
	root := fixtureTree(t)
	id, err := newTestComputer(t).Compute(root)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if id.String() != "swh:1:dir:"+fixtureTreeHex {
		t.Fatalf("Compute = %s", id)
	}
	if id.Kind() != swhid.Directory {
		t.Fatalf("Kind() = %v", id.Kind())
	}
}

func TestComputeSymlinkNotFollowed(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "target.txt"), "target content", 0o644)
	link := filepath.Join(dir, "link")
	symlinkForTest(t, "target.txt", link)

	id, err := newTestComputer(t).Compute(link)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if id.String() != "swh:1:cnt:4cbb553f3f4ac2ee7b01ff6c951d6bf583c39c15" {
		t.Fatalf("Compute = %s, want blob of link target string", id)
	}
}

func TestComputeSymlinkFollowed(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "target.txt"), "target content", 0o644)
	link := filepath.Join(dir, "link")
	symlinkForTest(t, "target.txt", link)
	chain := filepath.Join(dir, "chain")
	symlinkForTest(t, "link", chain)

	c := newTestComputer(t, WithFollowSymlinks(true))
	for _, p := range []string{link, chain} {
		id, err := c.Compute(p)
		if err != nil {
			t.Fatalf("Compute(%s): %v", p, err)
		}
		if id.String() != "swh:1:cnt:ff141780889955c8c27979c282c9841f0ac6bd30" {
			t.Fatalf("Compute(%s) = %s, want target content", p, id)
		}
	}
}

func TestComputeSymlinkToDirectoryFollowed(t *testing.T) {
	root := fixtureTree(t)
	link := filepath.Join(t.TempDir(), "tree")
	symlinkForTest(t, root, link)

	id, err := newTestComputer(t, WithFollowSymlinks(true)).Compute(link)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if id.String() != "swh:1:dir:"+fixtureTreeHex {
		t.Fatalf("Compute = %s", id)
	}
}

func TestComputeSymlinkFollowedDotDotThroughSymlinkedDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "real", "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeTestFile(t, filepath.Join(root, "real", "x"), "real x\n", 0o644)
	writeTestFile(t, filepath.Join(root, "x"), "top x\n", 0o644)
	symlinkForTest(t, filepath.Join("real", "sub"), filepath.Join(root, "s"))
	link := filepath.Join(root, "link")
	symlinkForTest(t, "s/../x", link)

	// The kernel resolves s before applying "..", landing in real/.
	want, err := NewContent([]byte("real x\n"))
	if err != nil {
		t.Fatalf("NewContent: %v", err)
	}
	got, err := newTestComputer(t, WithFollowSymlinks(true)).Compute(link)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got != want.SWHID() {
		t.Fatalf("Compute = %s, want %s (content of real/x)", got, want.SWHID())
	}

	ok, err := newTestComputer(t, WithFollowSymlinks(true)).Verify(link, want.SWHID().String())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify = false for the kernel-resolved target")
	}
}

func TestComputeSymlinkLoopFollowed(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	symlinkForTest(t, "b", a)
	symlinkForTest(t, "a", filepath.Join(dir, "b"))

	_, err := newTestComputer(t, WithFollowSymlinks(true)).Compute(a)
	wantKind(t, err, swhid.KindInvalidInput)
	if !strings.Contains(err.Error(), "too many levels") {
		t.Fatalf("error = %v", err)
	}
}

func TestComputeDanglingSymlinkFollowed(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "dangling")
	symlinkForTest(t, "missing", link)

	_, err := newTestComputer(t, WithFollowSymlinks(true)).Compute(link)
	wantKind(t, err, swhid.KindInvalidInput)

	// Without following, the link itself is still identifiable.
	id, err := newTestComputer(t).Compute(link)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if id.Kind() != swhid.Content {
		t.Fatalf("Kind() = %v", id.Kind())
	}
}

func TestComputeMissingPath(t *testing.T) {
	_, err := newTestComputer(t).Compute(filepath.Join(t.TempDir(), "nonexistent"))
	wantKind(t, err, swhid.KindInvalidInput)
}

func TestComputeFileDecompressed(t *testing.T) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	if _, err := w.Write([]byte("Hello, World!")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	path := filepath.Join(t.TempDir(), "hello.zst")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for _, format := range []codec.Format{codec.Zstd, codec.Auto} {
		id, err := newTestComputer(t, WithDecompression(format)).Compute(path)
		if err != nil {
			t.Fatalf("Compute(%q): %v", format, err)
		}
		if id.String() != "swh:1:cnt:"+helloBlobHex {
			t.Fatalf("Compute(%q) = %s", format, id)
		}
	}

	raw, err := newTestComputer(t).Compute(path)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if raw.String() == "swh:1:cnt:"+helloBlobHex {
		t.Fatal("compressed bytes hashed as decompressed without WithDecompression")
	}
}

func TestComputeFileDecompressCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	writeTestFile(t, path, "definitely not zstd", 0o644)

	_, err := newTestComputer(t, WithDecompression(codec.Zstd)).Compute(path)
	if err == nil {
		t.Fatal("expected error for corrupt zstd input")
	}
}

func TestComputeLogsWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "keep.txt"), "k", 0o644)
	writeTestFile(t, filepath.Join(root, "drop.tmp"), "d", 0o644)

	c := newTestComputer(t, WithLogger(logger), WithExcludePatterns([]string{"*.tmp"}))
	if _, err := c.Compute(root); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !strings.Contains(buf.String(), "drop.tmp") {
		t.Fatalf("expected exclusion to be logged, got %q", buf.String())
	}
}

func TestVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	writeTestFile(t, path, "Hello, World!", 0o644)
	c := newTestComputer(t)

	ok, err := c.Verify(path, "swh:1:cnt:"+helloBlobHex)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify = false, want true")
	}

	ok, err = c.Verify(path, "swh:1:cnt:0000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify = true for wrong digest")
	}

	// Same digest, different object type.
	ok, err = c.Verify(path, "swh:1:dir:"+helloBlobHex)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify = true for wrong object type")
	}
}

func TestVerifyDirectory(t *testing.T) {
	root := fixtureTree(t)
	ok, err := newTestComputer(t).Verify(root, "swh:1:dir:"+fixtureTreeHex)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify = false, want true")
	}
}

func TestVerifyParseErrorFirst(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := newTestComputer(t).Verify(missing, "invalid:swhid")
	wantKind(t, err, swhid.KindInvalidFormat)

	_, err = newTestComputer(t).Verify(missing, "swh:1:cnt:"+helloBlobHex)
	wantKind(t, err, swhid.KindInvalidInput)

	var se *swhid.Error
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not *swhid.Error", err)
	}
}

func TestComputeContentDecompressed(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := enc.EncodeAll([]byte("Hello, World!"), nil)
	enc.Close()

	id, err := newTestComputer(t, WithDecompression(codec.Zstd)).ComputeContent(compressed)
	if err != nil {
		t.Fatalf("ComputeContent: %v", err)
	}
	if id.String() != "swh:1:cnt:"+helloBlobHex {
		t.Fatalf("ComputeContent = %s", id)
	}

	_, err = newTestComputer(t, WithDecompression(codec.Xz)).ComputeContent([]byte("plain text"))
	wantKind(t, err, swhid.KindInvalidInput)
}
