package object

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"

	"github.com/pjbgf/sha1cd"
)

// HashSize is the length in bytes of a SHA-1 digest.
const HashSize = 20

// Hash is a raw 20-byte SHA-1 digest.
type Hash [HashSize]byte

// ZeroHash is the all-zero digest.
var ZeroHash Hash

var (
	// ErrCollisionDetected is returned when the SHA-1 input carries one of the
	// disturbance vectors used by known collision attacks.
	ErrCollisionDetected = errors.New("sha1 collision attack detected")
	// ErrUnknownObjectType is returned for object types outside blob, tree,
	// commit and tag.
	ErrUnknownObjectType = errors.New("unknown object type")
	// ErrSizeMismatch is returned by ObjectHasher.Sum when the number of
	// payload bytes written differs from the size announced in the header.
	ErrSizeMismatch = errors.New("object size mismatch")
)

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash decodes a 40-character lowercase hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 2*HashSize {
		return h, fmt.Errorf("parse hash: length %d, want %d", len(s), 2*HashSize)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return h, fmt.Errorf("parse hash: invalid character %q at offset %d", c, i)
		}
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("parse hash: %w", err)
	}
	return h, nil
}

// collisionResistant is implemented by the sha1cd digest.
type collisionResistant interface {
	CollisionResistantSum(in []byte) ([]byte, bool)
}

func sumChecked(h hash.Hash) (Hash, error) {
	var out Hash
	cr, ok := h.(collisionResistant)
	if !ok {
		return out, fmt.Errorf("sha1: digest does not report collisions")
	}
	sum, collision := cr.CollisionResistantSum(nil)
	if collision {
		return out, ErrCollisionDetected
	}
	copy(out[:], sum)
	return out, nil
}

// HashBytes computes the collision-detecting SHA-1 of data.
func HashBytes(data []byte) (Hash, error) {
	h := sha1cd.New()
	h.Write(data)
	return sumChecked(h)
}

// ObjectHeader returns the git object envelope prefix "type len\0".
func ObjectHeader(objType ObjectType, size int64) []byte {
	header := make([]byte, 0, len(objType)+22)
	header = append(header, objType...)
	header = append(header, ' ')
	header = strconv.AppendInt(header, size, 10)
	return append(header, 0)
}

// HashObject computes the SHA-1 of the envelope "type len\0content", the
// git object id of data stored under objType.
func HashObject(objType ObjectType, data []byte) (Hash, error) {
	oh, err := NewObjectHasher(objType, int64(len(data)))
	if err != nil {
		return ZeroHash, err
	}
	oh.Write(data)
	return oh.Sum()
}

// ObjectHasher hashes a git object whose payload is streamed through Write.
// The payload size must be known up front since it is part of the header.
type ObjectHasher struct {
	h       hash.Hash
	size    int64
	written int64
}

// NewObjectHasher starts hashing an object of the given type and size.
func NewObjectHasher(objType ObjectType, size int64) (*ObjectHasher, error) {
	if !objType.IsGit() {
		return nil, fmt.Errorf("hash object %q: %w", objType, ErrUnknownObjectType)
	}
	if size < 0 {
		return nil, fmt.Errorf("hash object: negative size %d", size)
	}
	h := sha1cd.New()
	h.Write(ObjectHeader(objType, size))
	return &ObjectHasher{h: h, size: size}, nil
}

// Write feeds payload bytes. It never returns an error.
func (o *ObjectHasher) Write(p []byte) (int, error) {
	o.written += int64(len(p))
	return o.h.Write(p)
}

// Sum returns the object id. It fails if the payload length differs from
// the announced size or if a collision attack was detected.
func (o *ObjectHasher) Sum() (Hash, error) {
	if o.written != o.size {
		return ZeroHash, fmt.Errorf("%w: header %d, payload %d", ErrSizeMismatch, o.size, o.written)
	}
	return sumChecked(o.h)
}
