package identify

import (
	"io"

	"github.com/odvcencio/swhid/pkg/codec"
	"github.com/sirupsen/logrus"
)

// settings collects the knobs shared by the directory builder and Computer.
type settings struct {
	followSymlinks  bool
	excludePatterns []string
	logger          logrus.FieldLogger
	decompress      codec.Format
}

// Option configures DirectoryFromDisk and NewComputer.
type Option func(*settings)

// WithFollowSymlinks makes Computer.Compute resolve a symlink given as the
// top-level path instead of hashing its target string. Symlinks found
// inside a directory are always recorded as symlink entries.
func WithFollowSymlinks(follow bool) Option {
	return func(s *settings) { s.followSymlinks = follow }
}

// WithExcludePatterns sets shell-glob patterns matched against entry names.
// Matching entries, and everything beneath matching directories, are left
// out of directory trees.
func WithExcludePatterns(patterns []string) Option {
	return func(s *settings) {
		s.excludePatterns = append([]string(nil), patterns...)
	}
}

// WithLogger sets the logger used for debug traces. Without it nothing is
// logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) { s.logger = l }
}

// WithDecompression decodes top-level file content and ComputeContent
// buffers with format before hashing. Files inside directory trees and
// symlink targets are always hashed as stored.
func WithDecompression(format codec.Format) Option {
	return func(s *settings) { s.decompress = format }
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = discardLogger()
	}
	return s
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
