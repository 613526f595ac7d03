// Package swhid implements the Software Heritage persistent identifier
// grammar:
//
//	swh:1:<kind>:<40 lowercase hex digits>
//
// optionally followed by ";key=value" qualifiers (see ParseQualified).
package swhid

import (
	"strings"

	"github.com/odvcencio/swhid/pkg/object"
)

const (
	// Namespace is the fixed first field of every identifier.
	Namespace = "swh"
	// Version is the only supported scheme version.
	Version = 1

	hexLength = 2 * object.HashSize
)

// ObjectKind is the type of object an identifier names.
type ObjectKind int

const (
	Content ObjectKind = iota + 1
	Directory
	Revision
	Release
	Snapshot
)

var kindCodes = map[ObjectKind]string{
	Content:   "cnt",
	Directory: "dir",
	Revision:  "rev",
	Release:   "rel",
	Snapshot:  "snp",
}

// String returns the three-letter code of k.
func (k ObjectKind) String() string {
	if s, ok := kindCodes[k]; ok {
		return s
	}
	return "unknown"
}

// GitType returns the git object type whose id k shares.
func (k ObjectKind) GitType() object.ObjectType {
	switch k {
	case Content:
		return object.TypeBlob
	case Directory:
		return object.TypeTree
	case Revision:
		return object.TypeCommit
	case Release:
		return object.TypeTag
	}
	return ""
}

// ParseKind maps a three-letter code to its ObjectKind.
func ParseKind(code string) (ObjectKind, error) {
	for k, c := range kindCodes {
		if c == code {
			return k, nil
		}
	}
	return 0, Errorf(KindInvalidObjectType, "%q", code)
}

// Identifier is a core SWHID. The zero value is not a valid identifier.
// Identifiers are comparable; == is field-wise equality.
type Identifier struct {
	version int
	kind    ObjectKind
	digest  object.Hash
}

// New returns a version 1 identifier.
func New(kind ObjectKind, digest object.Hash) Identifier {
	return Identifier{version: Version, kind: kind, digest: digest}
}

// Version returns the scheme version.
func (id Identifier) Version() int { return id.version }

// Kind returns the object kind.
func (id Identifier) Kind() ObjectKind { return id.kind }

// Digest returns the 20-byte object digest.
func (id Identifier) Digest() object.Hash { return id.digest }

// Equal reports whether id and other name the same object.
func (id Identifier) Equal(other Identifier) bool {
	return id == other
}

// String renders the canonical form swh:1:<kind>:<hex>.
func (id Identifier) String() string {
	var b strings.Builder
	b.Grow(len(Namespace) + 7 + hexLength)
	b.WriteString(Namespace)
	b.WriteString(":1:")
	b.WriteString(id.kind.String())
	b.WriteByte(':')
	b.WriteString(id.digest.String())
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse parses a core identifier. Parsing is strict: surrounding whitespace,
// uppercase hex and qualifiers are all rejected.
func Parse(s string) (Identifier, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Identifier{}, Errorf(KindInvalidFormat, "%q: want 4 colon-separated fields, got %d", s, len(parts))
	}
	if parts[0] != Namespace {
		return Identifier{}, Errorf(KindInvalidNamespace, "%q", parts[0])
	}
	if parts[1] != "1" {
		return Identifier{}, Errorf(KindInvalidVersion, "%q", parts[1])
	}
	kind, err := ParseKind(parts[2])
	if err != nil {
		return Identifier{}, err
	}
	digest, err := parseDigest(parts[3])
	if err != nil {
		return Identifier{}, err
	}
	return New(kind, digest), nil
}

func parseDigest(s string) (object.Hash, error) {
	if len(s) != hexLength {
		return object.ZeroHash, Errorf(KindInvalidHashLength, "%d (expected %d)", len(s), hexLength)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return object.ZeroHash, Errorf(KindInvalidHash, "%q: invalid character %q at offset %d", s, c, i)
		}
	}
	h, err := object.ParseHash(s)
	if err != nil {
		return object.ZeroHash, Wrap(KindInvalidHash, s, err)
	}
	return h, nil
}
