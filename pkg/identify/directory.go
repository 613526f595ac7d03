package identify

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/odvcencio/swhid/pkg/object"
	"github.com/odvcencio/swhid/pkg/swhid"
	"github.com/sirupsen/logrus"
)

// Directory is a tree object: entries in git tree order plus the tree id,
// computed on first use.
type Directory struct {
	entries []object.TreeEntry
	path    string

	hash   object.Hash
	hashed bool
}

// NewDirectory builds a tree from in-memory entries. Entries are sorted
// with the git tree comparator; duplicate names are a DuplicateEntry error.
func NewDirectory(entries []object.TreeEntry) (*Directory, error) {
	sorted := make([]object.TreeEntry, len(entries))
	copy(sorted, entries)
	object.SortTreeEntries(sorted)
	if err := object.ValidateTreeEntries(sorted); err != nil {
		if errors.Is(err, object.ErrDuplicateEntry) {
			return nil, swhid.Wrap(swhid.KindDuplicateEntry, "directory", err)
		}
		return nil, swhid.Wrap(swhid.KindInvalidInput, "directory", err)
	}
	return &Directory{entries: sorted}, nil
}

// DirectoryFromDisk walks the directory at path and builds its tree.
//
// Children are classified by lstat: subdirectories recurse, symlinks are
// recorded with the blob id of their target string and never followed,
// regular files are hashed with mode 100755 when any execute bit is set.
// Excluded names and broken symlinks are left out. Any other failure aborts
// the whole walk.
func DirectoryFromDisk(path string, opts ...Option) (*Directory, error) {
	s := newSettings(opts)
	b, err := newTreeBuilder(s)
	if err != nil {
		return nil, err
	}
	return b.build(path, ".")
}

// Entries returns a copy of the sorted entries.
func (d *Directory) Entries() []object.TreeEntry {
	out := make([]object.TreeEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Path returns the directory the tree was read from, or "" for trees built
// with NewDirectory.
func (d *Directory) Path() string { return d.path }

// Payload returns the canonical tree payload (without the object header).
func (d *Directory) Payload() ([]byte, error) {
	payload, err := object.MarshalTree(&object.TreeObj{Entries: d.entries})
	if err != nil {
		return nil, swhid.Wrap(swhid.KindInvalidInput, "tree payload", err)
	}
	return payload, nil
}

// Hash returns the git tree id, computing it on the first call.
func (d *Directory) Hash() (object.Hash, error) {
	if d.hashed {
		return d.hash, nil
	}
	h, err := object.HashTree(&object.TreeObj{Entries: d.entries})
	if err != nil {
		return object.ZeroHash, hashError("tree", err)
	}
	d.hash = h
	d.hashed = true
	return h, nil
}

// SWHID returns the swh:1:dir identifier.
func (d *Directory) SWHID() (swhid.Identifier, error) {
	h, err := d.Hash()
	if err != nil {
		return swhid.Identifier{}, err
	}
	return swhid.New(swhid.Directory, h), nil
}

// visitFunc receives every object identified during a walk. rel uses
// forward slashes and is "." for the root.
type visitFunc func(rel string, id swhid.Identifier) error

type treeBuilder struct {
	excluder *Excluder
	log      logrus.FieldLogger
	visit    visitFunc
}

func newTreeBuilder(s settings) (*treeBuilder, error) {
	ex, err := NewExcluder(s.excludePatterns)
	if err != nil {
		return nil, err
	}
	return &treeBuilder{
		excluder: ex,
		log:      s.logger,
	}, nil
}

func (b *treeBuilder) build(dir, rel string) (*Directory, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, swhid.Wrap(swhid.KindIo, "read directory", err)
	}
	// Visit children depth-first in tree order.
	sort.SliceStable(children, func(i, j int) bool {
		return object.CompareTreeEntries(dirEntryKey(children[i]), dirEntryKey(children[j])) < 0
	})

	entries := make([]object.TreeEntry, 0, len(children))
	for _, child := range children {
		name := child.Name()
		childRel := joinRel(rel, name)
		if b.excluder.Excluded(name) {
			b.log.WithField("path", childRel).Debug("excluded")
			continue
		}

		childPath := filepath.Join(dir, name)
		info, err := os.Lstat(childPath)
		if err != nil {
			return nil, swhid.Wrap(swhid.KindIo, "lstat", err)
		}
		kind, err := kindFromFileInfo(info)
		if err != nil {
			return nil, err
		}

		entry := object.TreeEntry{Name: name, Kind: kind}
		switch kind {
		case object.KindDir:
			sub, err := b.build(childPath, childRel)
			if err != nil {
				return nil, err
			}
			entry.Target, err = sub.Hash()
			if err != nil {
				return nil, err
			}
		case object.KindSymlink:
			if isBrokenSymlink(childPath) {
				b.log.WithField("path", childRel).Debug("skipping broken symlink")
				continue
			}
			entry.Target, err = hashSymlink(childPath)
			if err != nil {
				return nil, err
			}
		default:
			entry.Target, err = hashFile(childPath)
			if err != nil {
				return nil, err
			}
		}

		if b.visit != nil && kind != object.KindDir {
			if err := b.visit(childRel, swhid.New(swhid.Content, entry.Target)); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}

	d, err := NewDirectory(entries)
	if err != nil {
		return nil, err
	}
	d.path = dir
	if b.visit != nil {
		id, err := d.SWHID()
		if err != nil {
			return nil, err
		}
		if err := b.visit(rel, id); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// hashSymlink returns the blob id of the raw link target bytes.
func hashSymlink(path string) (object.Hash, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return object.ZeroHash, swhid.Wrap(swhid.KindIo, "readlink", err)
	}
	h, err := object.HashObject(object.TypeBlob, []byte(target))
	if err != nil {
		return object.ZeroHash, hashError(path, err)
	}
	return h, nil
}

// isBrokenSymlink reports whether the link at path does not resolve.
// Other stat failures (e.g. permission denied on the target) do not make a
// link broken: its target string is still readable.
func isBrokenSymlink(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ELOOP) ||
		errors.Is(err, syscall.ENOTDIR)
}

func dirEntryKey(de fs.DirEntry) object.TreeEntry {
	if de.IsDir() {
		return object.TreeEntry{Name: de.Name(), Kind: object.KindDir}
	}
	return object.TreeEntry{Name: de.Name()}
}

func joinRel(rel, name string) string {
	if rel == "." || rel == "" {
		return name
	}
	return rel + "/" + name
}
