// Package identify computes SWHIDs for files, symlinks and directory trees
// on the local filesystem.
package identify

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/swhid/pkg/codec"
	"github.com/odvcencio/swhid/pkg/swhid"
	"github.com/sirupsen/logrus"
)

// maxSymlinkHops bounds top-level symlink resolution (Linux MAXSYMLINKS).
const maxSymlinkHops = 40

// Computer detects what a path is and dispatches to the content or
// directory builder. It holds no mutable state and may be shared.
type Computer struct {
	s settings
}

// NewComputer returns a Computer configured by opts. It fails only when an
// exclude pattern is malformed.
func NewComputer(opts ...Option) (*Computer, error) {
	s := newSettings(opts)
	if _, err := NewExcluder(s.excludePatterns); err != nil {
		return nil, err
	}
	return &Computer{s: s}, nil
}

// FollowSymlinks reports whether top-level symlinks are resolved.
func (c *Computer) FollowSymlinks() bool { return c.s.followSymlinks }

// ExcludePatterns returns the configured exclude patterns.
func (c *Computer) ExcludePatterns() []string {
	return append([]string(nil), c.s.excludePatterns...)
}

// ComputeContent identifies an in-memory buffer, decoding it first when the
// Computer was built WithDecompression.
func (c *Computer) ComputeContent(data []byte) (swhid.Identifier, error) {
	if c.s.decompress != codec.None {
		decoded, err := codec.Decode(c.s.decompress, data)
		if err != nil {
			return swhid.Identifier{}, swhid.Wrap(swhid.KindInvalidInput, "decompress content", err)
		}
		data = decoded
	}
	content, err := NewContent(data)
	if err != nil {
		return swhid.Identifier{}, err
	}
	return content.SWHID(), nil
}

// ComputeFile identifies the content of the file at path, decompressing it
// first when the Computer was built WithDecompression.
func (c *Computer) ComputeFile(path string) (swhid.Identifier, error) {
	if c.s.decompress == codec.None {
		h, err := hashFile(path)
		if err != nil {
			return swhid.Identifier{}, err
		}
		return swhid.New(swhid.Content, h), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return swhid.Identifier{}, swhid.Wrap(swhid.KindIo, "open file", err)
	}
	defer f.Close()
	rc, err := codec.NewReader(c.s.decompress, f)
	if err != nil {
		return swhid.Identifier{}, swhid.Wrap(swhid.KindInvalidInput, path, err)
	}
	defer rc.Close()
	content, err := ContentFromReader(rc)
	if err != nil {
		return swhid.Identifier{}, err
	}
	c.s.logger.WithFields(logrus.Fields{
		"path":   path,
		"format": string(c.s.decompress),
		"size":   content.Length(),
	}).Debug("decompressed content")
	return content.SWHID(), nil
}

// ComputeDirectory identifies the directory tree rooted at path.
func (c *Computer) ComputeDirectory(path string) (swhid.Identifier, error) {
	b, err := newTreeBuilder(c.s)
	if err != nil {
		return swhid.Identifier{}, err
	}
	d, err := b.build(path, ".")
	if err != nil {
		return swhid.Identifier{}, err
	}
	return d.SWHID()
}

// Compute identifies whatever path is: a symlink (its target string, or
// the resolved target when following symlinks), a regular file or a
// directory. Anything else, including a missing path, is InvalidInput.
func (c *Computer) Compute(path string) (swhid.Identifier, error) {
	path, info, err := c.resolve(path)
	if err != nil {
		return swhid.Identifier{}, err
	}

	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return swhid.Identifier{}, swhid.Wrap(swhid.KindIo, "readlink", err)
		}
		content, err := NewContent([]byte(target))
		if err != nil {
			return swhid.Identifier{}, err
		}
		return content.SWHID(), nil
	case mode.IsRegular():
		return c.ComputeFile(path)
	case mode.IsDir():
		return c.ComputeDirectory(path)
	}
	return swhid.Identifier{}, swhid.Errorf(swhid.KindInvalidInput, "%s: neither file nor directory (%s)", path, mode.Type())
}

// resolve lstats path. When following symlinks, links are resolved (relative
// targets against the link's parent) until a non-link is reached; otherwise
// a link is returned as is.
func (c *Computer) resolve(path string) (string, fs.FileInfo, error) {
	for hops := 0; ; hops++ {
		info, err := os.Lstat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", nil, swhid.Wrap(swhid.KindInvalidInput, "path does not exist", err)
			}
			return "", nil, swhid.Wrap(swhid.KindIo, "lstat", err)
		}
		if info.Mode()&fs.ModeSymlink == 0 || !c.s.followSymlinks {
			return path, info, nil
		}
		if hops >= maxSymlinkHops {
			return "", nil, swhid.Errorf(swhid.KindInvalidInput, "%s: too many levels of symbolic links", path)
		}

		target, err := os.Readlink(path)
		if err != nil {
			return "", nil, swhid.Wrap(swhid.KindIo, "readlink", err)
		}
		// Joined without cleaning: ".." must be applied by the kernel after
		// any symlinked directory before it is resolved.
		if !filepath.IsAbs(target) {
			target = filepath.Dir(path) + string(filepath.Separator) + target
		}
		c.s.logger.WithFields(logrus.Fields{"link": path, "target": target}).Debug("following symlink")
		path = target
	}
}

// Verify parses want, identifies path and reports whether they match.
// Parse failures are returned with their own kind before path is read.
func (c *Computer) Verify(path, want string) (bool, error) {
	expected, err := swhid.Parse(want)
	if err != nil {
		return false, err
	}
	actual, err := c.Compute(path)
	if err != nil {
		return false, err
	}
	c.s.logger.WithFields(logrus.Fields{
		"path":     path,
		"expected": expected.String(),
		"actual":   actual.String(),
	}).Debug("verify")
	return expected == actual, nil
}
