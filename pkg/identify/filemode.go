package identify

import (
	"io/fs"

	"github.com/odvcencio/swhid/pkg/object"
	"github.com/odvcencio/swhid/pkg/swhid"
)

// kindFromFileInfo classifies lstat metadata into a tree entry kind.
func kindFromFileInfo(info fs.FileInfo) (object.EntryKind, error) {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return object.KindDir, nil
	case mode&fs.ModeSymlink != 0:
		return object.KindSymlink, nil
	case mode.IsRegular():
		if mode.Perm()&0o111 != 0 {
			return object.KindExecutable, nil
		}
		return object.KindFile, nil
	}
	return object.KindFile, swhid.Errorf(swhid.KindInvalidInput, "%s: unsupported file type %s", info.Name(), mode.Type())
}
