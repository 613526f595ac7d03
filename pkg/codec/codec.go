// Package codec decodes compressed content input so that identifiers can be
// computed over the decompressed byte stream.
package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Format names a compression format.
type Format string

const (
	None Format = ""
	Zstd Format = "zstd"
	Xz   Format = "xz"
	// Auto detects zstd or xz from the stream's magic bytes and passes
	// anything else through unchanged.
	Auto Format = "auto"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "zstd", "zst":
		return Zstd, nil
	case "xz":
		return Xz, nil
	case "auto":
		return Auto, nil
	}
	return None, fmt.Errorf("unknown compression format %q", s)
}

// Detect returns the format whose magic number prefixes header, or None.
func Detect(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd
	case bytes.HasPrefix(header, xzMagic):
		return Xz
	}
	return None
}

// NewReader wraps r with a decoder for format. The returned ReadCloser
// releases decoder resources; it does not close r.
func NewReader(format Format, r io.Reader) (io.ReadCloser, error) {
	if format == Auto {
		br := bufio.NewReader(r)
		header, err := br.Peek(len(xzMagic))
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, fmt.Errorf("detect compression: %w", err)
		}
		format = Detect(header)
		r = br
	}

	switch format {
	case None:
		return io.NopCloser(r), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case Xz:
		dec, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return io.NopCloser(dec), nil
	}
	return nil, fmt.Errorf("unknown compression format %q", string(format))
}

// Decode decompresses data in memory.
func Decode(format Format, data []byte) ([]byte, error) {
	rc, err := NewReader(format, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
