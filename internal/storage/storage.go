// Package storage persists uploaded recipe images and yields their public paths.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned when an upload does not sniff as an image.
var ErrNotImage = errors.New("uploaded file is not an image")

// sniffLen is how many leading bytes are inspected to detect the content type.
const sniffLen = 3072

// ObjectName derives the stored file name from the upload time and the client file name.
func ObjectName(now time.Time, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// DetectImage sniffs the content type of r. It returns a reader that replays
// the sniffed bytes followed by the rest of r.
func DetectImage(r io.Reader) (io.Reader, string, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	header = header[:n]

	mt := mimetype.Detect(header)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	// Seekable sources are rewound so object stores can compute the payload length.
	if rs, ok := r.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekStart); err == nil {
			return rs, mt.String(), nil
		}
	}
	return io.MultiReader(bytes.NewReader(header), r), mt.String(), nil
}
