package object

// ObjectType identifies the git object type used in the hash envelope.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// IsGit reports whether t is one of the four git object types.
func (t ObjectType) IsGit() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return true
	}
	return false
}

// TreeMode is the ASCII mode written in a tree entry record.
type TreeMode string

const (
	// Tree mode constants in git's canonical form. Directories are written
	// without the leading zero.
	TreeModeFile       TreeMode = "100644"
	TreeModeExecutable TreeMode = "100755"
	TreeModeSymlink    TreeMode = "120000"
	TreeModeDir        TreeMode = "40000"
)

// EntryKind classifies a tree entry.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindExecutable
	KindSymlink
	KindDir
)

// String returns a short lowercase name for k.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindExecutable:
		return "executable"
	case KindSymlink:
		return "symlink"
	case KindDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Mode returns the tree mode associated with k.
func (k EntryKind) Mode() TreeMode {
	switch k {
	case KindExecutable:
		return TreeModeExecutable
	case KindSymlink:
		return TreeModeSymlink
	case KindDir:
		return TreeModeDir
	default:
		return TreeModeFile
	}
}

// ObjectType returns the type of the object an entry of kind k points to.
func (k EntryKind) ObjectType() ObjectType {
	if k == KindDir {
		return TypeTree
	}
	return TypeBlob
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Name holds the raw file name
// bytes as read from disk; Go strings carry non-UTF-8 bytes unchanged.
type TreeEntry struct {
	Name   string
	Kind   EntryKind
	Target Hash
}

// Mode returns the tree mode of the entry.
func (e TreeEntry) Mode() TreeMode {
	return e.Kind.Mode()
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Kind == KindDir
}

// TreeObj holds a list of tree entries in git tree order.
type TreeObj struct {
	Entries []TreeEntry
}
