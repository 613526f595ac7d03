package identify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/swhid/pkg/object"
	"github.com/odvcencio/swhid/pkg/swhid"
)

// Content is a blob: raw bytes and their git blob id.
type Content struct {
	data []byte
	hash object.Hash
}

// NewContent builds a content object over data. The slice is retained; the
// caller must not modify it afterwards.
func NewContent(data []byte) (*Content, error) {
	h, err := object.HashBlob(&object.Blob{Data: data})
	if err != nil {
		return nil, hashError("content", err)
	}
	return &Content{data: data, hash: h}, nil
}

// ContentFromFile reads the whole file at path.
func ContentFromFile(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, swhid.Wrap(swhid.KindIo, "read file", err)
	}
	return NewContent(data)
}

// ContentFromReader reads r to EOF.
func ContentFromReader(r io.Reader) (*Content, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, swhid.Wrap(swhid.KindIo, "read content", err)
	}
	return NewContent(data)
}

// Data returns the content bytes.
func (c *Content) Data() []byte { return c.data }

// Length returns the content size in bytes.
func (c *Content) Length() int { return len(c.data) }

// Hash returns the git blob id.
func (c *Content) Hash() object.Hash { return c.hash }

// SWHID returns the swh:1:cnt identifier.
func (c *Content) SWHID() swhid.Identifier {
	return swhid.New(swhid.Content, c.hash)
}

// hashFile streams the file at path through the blob hasher without
// holding it in memory.
func hashFile(path string) (object.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return object.ZeroHash, swhid.Wrap(swhid.KindIo, "open file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return object.ZeroHash, swhid.Wrap(swhid.KindIo, "stat file", err)
	}
	oh, err := object.NewObjectHasher(object.TypeBlob, info.Size())
	if err != nil {
		return object.ZeroHash, swhid.Wrap(swhid.KindInvalidInput, path, err)
	}
	if _, err := io.Copy(oh, f); err != nil {
		return object.ZeroHash, swhid.Wrap(swhid.KindIo, "read file", err)
	}
	h, err := oh.Sum()
	if err != nil {
		return object.ZeroHash, hashError(path, err)
	}
	return h, nil
}

// hashError maps a hashing failure onto the error domain: a refused
// collision is bad input, a size change while reading is an I/O failure.
func hashError(what string, err error) error {
	switch {
	case errors.Is(err, object.ErrCollisionDetected):
		return swhid.Wrap(swhid.KindInvalidInput, what, err)
	case errors.Is(err, object.ErrSizeMismatch):
		return swhid.Wrap(swhid.KindIo, fmt.Sprintf("%s changed while reading", what), err)
	}
	return swhid.Wrap(swhid.KindInvalidInput, what, err)
}
