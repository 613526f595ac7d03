package object

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateEntry is returned when two entries of one tree share a name.
var ErrDuplicateEntry = errors.New("duplicate tree entry")

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// HashBlob returns the git blob id of b.
func HashBlob(b *Blob) (Hash, error) {
	return HashObject(TypeBlob, b.Data)
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// CompareTreeEntries orders two entries the way git orders tree entries:
// names are compared bytewise as if every subdirectory name ended in '/'.
// Hence "dir.txt" < "dir" when "dir" is a directory ('.' < '/').
func CompareTreeEntries(a, b TreeEntry) int {
	n := len(a.Name)
	if len(b.Name) < n {
		n = len(b.Name)
	}
	if c := strings.Compare(a.Name[:n], b.Name[:n]); c != 0 {
		return c
	}
	ca := sortByteAt(a, n)
	cb := sortByteAt(b, n)
	switch {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	}
	return 0
}

// sortByteAt returns the byte at offset i of the entry's sort key, or 0 past
// its end. Names never contain NUL, so 0 sorts before every real byte.
func sortByteAt(e TreeEntry, i int) int {
	if i < len(e.Name) {
		return int(e.Name[i])
	}
	if i == len(e.Name) && e.IsDir() {
		return '/'
	}
	return 0
}

// SortTreeEntries sorts entries in place in git tree order.
func SortTreeEntries(entries []TreeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return CompareTreeEntries(entries[i], entries[j]) < 0
	})
}

// ValidateEntryName checks that name can be stored in a tree record.
func ValidateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("empty entry name")
	}
	if strings.IndexByte(name, '/') >= 0 {
		return fmt.Errorf("entry name %q contains '/'", name)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("entry name %q contains NUL", name)
	}
	return nil
}

// ValidateTreeEntries checks every name and rejects duplicates, including a
// file and a directory sharing one name.
func ValidateTreeEntries(entries []TreeEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := ValidateEntryName(e.Name); err != nil {
			return err
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// MarshalTree serializes a TreeObj into git's binary tree payload. Entries
// are sorted with CompareTreeEntries; each one is written as
//
//	<mode> SP <name> NUL <20-byte target>
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	SortTreeEntries(sorted)
	if err := ValidateTreeEntries(sorted); err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}

	size := 0
	for _, e := range sorted {
		size += len(e.Mode()) + 1 + len(e.Name) + 1 + HashSize
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	for _, e := range sorted {
		buf.WriteString(string(e.Mode()))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Target[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a binary tree payload.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		sp := bytes.IndexByte(data, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing mode separator")
		}
		kind, err := parseTreeMode(string(data[:sp]))
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		data = data[sp+1:]

		nul := bytes.IndexByte(data, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing name terminator")
		}
		name := string(data[:nul])
		data = data[nul+1:]

		if len(data) < HashSize {
			return nil, fmt.Errorf("unmarshal tree: truncated target for %q", name)
		}
		entry := TreeEntry{Name: name, Kind: kind}
		copy(entry.Target[:], data[:HashSize])
		data = data[HashSize:]

		tr.Entries = append(tr.Entries, entry)
	}
	if err := ValidateTreeEntries(tr.Entries); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return tr, nil
}

// HashTree returns the git tree id of tr.
func HashTree(tr *TreeObj) (Hash, error) {
	payload, err := MarshalTree(tr)
	if err != nil {
		return ZeroHash, err
	}
	return HashObject(TypeTree, payload)
}

func parseTreeMode(mode string) (EntryKind, error) {
	switch TreeMode(mode) {
	case TreeModeFile:
		return KindFile, nil
	case TreeModeExecutable:
		return KindExecutable, nil
	case TreeModeSymlink:
		return KindSymlink, nil
	case TreeModeDir:
		return KindDir, nil
	default:
		return KindFile, fmt.Errorf("unknown mode %q", mode)
	}
}
