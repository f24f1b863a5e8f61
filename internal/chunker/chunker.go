package chunker

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultMaxPages is the page-window size used when none is configured.
// 100 pages keeps each encoded unit under the Messages API per-request
// size ceiling.
const DefaultMaxPages = 100

// MediaTypePDF is the media type attached to every unit.
const MediaTypePDF = "application/pdf"

// Unit is one page-bounded slice of the source document, serialized as a
// standalone PDF and base64-encoded for transport. Units are immutable once
// produced and may be shared read-only across sessions.
type Unit struct {
	Data             string // base64-encoded sub-PDF bytes
	MediaType        string
	Title            string // "<filename> (pages A-B)", 1-based inclusive
	CitationsEnabled bool
	StartPage        int
	EndPage          int
}

// Fingerprint is a hex digest of the raw file bytes. It decides whether a
// previously computed chunk set is still valid for a path; it is not a
// security hash.
type Fingerprint string

// ProcessingError indicates the source file could not be opened or parsed
// as a PDF. Callers must not dispatch a model request on this path.
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process pdf %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Chunk reads the PDF at path and partitions its pages into windows of at
// most maxPages, emitting one Unit per window. The returned units cover
// every page exactly once, in ascending order.
func Chunk(path string, maxPages int) ([]Unit, Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &ProcessingError{Path: path, Err: err}
	}
	units, fp, err := chunkBytes(data, filepath.Base(path), maxPages)
	if err != nil {
		return nil, "", &ProcessingError{Path: path, Err: err}
	}
	return units, fp, nil
}

func chunkBytes(data []byte, name string, maxPages int) ([]Unit, Fingerprint, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	fp := FingerprintBytes(data)

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, "", fmt.Errorf("page count: %w", err)
	}
	if pages == 0 {
		return nil, "", fmt.Errorf("document has no pages")
	}

	windows := pageWindows(pages, maxPages)
	units := make([]Unit, 0, len(windows))
	for _, win := range windows {
		var buf bytes.Buffer
		sel := []string{fmt.Sprintf("%d-%d", win.start, win.end)}
		if err := api.Trim(bytes.NewReader(data), &buf, sel, nil); err != nil {
			return nil, "", fmt.Errorf("extract pages %d-%d: %w", win.start, win.end, err)
		}
		units = append(units, Unit{
			Data:             base64.StdEncoding.EncodeToString(buf.Bytes()),
			MediaType:        MediaTypePDF,
			Title:            fmt.Sprintf("%s (pages %d-%d)", name, win.start, win.end),
			CitationsEnabled: true,
			StartPage:        win.start,
			EndPage:          win.end,
		})
	}
	return units, fp, nil
}

// window is a 1-based inclusive page range.
type window struct {
	start, end int
}

// pageWindows partitions pages [1..n] into consecutive ranges of at most w
// pages, ascending, with no gaps or overlaps.
func pageWindows(n, w int) []window {
	var windows []window
	for start := 1; start <= n; start += w {
		end := start + w - 1
		if end > n {
			end = n
		}
		windows = append(windows, window{start: start, end: end})
	}
	return windows
}

// FingerprintBytes computes the SHA-256 digest of data as a hex string.
func FingerprintBytes(data []byte) Fingerprint {
	h := sha256.Sum256(data)
	return Fingerprint(fmt.Sprintf("%x", h[:]))
}
