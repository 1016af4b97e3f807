// Package archive extracts ordered page images from an uploaded ZIP.
//
// Entries are filtered down to raster images, ordered by their full
// in-archive name, and returned fully decoded so the caller can persist
// them as numbered pages. Ordering is natural-number aware: "page2.jpg"
// sorts before "page10.jpg".
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// ErrNotArchive indicates the upload could not be opened as a ZIP archive.
var ErrNotArchive = errors.New("upload is not a valid zip archive")

// DefaultExt is assigned to page images whose source name carries no extension.
const DefaultExt = ".jpg"

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Page is one extracted image in reading order.
type Page struct {
	Name string // full in-archive name
	Ext  string // lowercased extension including the dot
	Data []byte
}

// ExtractPages reads a ZIP archive and returns its image entries in page
// order. Directory entries, platform resource forks (__MACOSX) and dotfiles
// are skipped. A malformed archive returns ErrNotArchive; a failure while
// reading any entry aborts the whole extraction.
func ExtractPages(r io.ReaderAt, size int64) ([]Page, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotArchive, err)
	}

	var candidates []*zip.File
	for _, f := range zr.File {
		if qualifies(f) {
			candidates = append(candidates, f)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return naturalLess(candidates[i].Name, candidates[j].Name)
	})

	pages := make([]Page, 0, len(candidates))
	for _, f := range candidates {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive entry %s: %w", f.Name, err)
		}
		pages = append(pages, Page{
			Name: f.Name,
			Ext:  NormalizeExt(f.Name),
			Data: data,
		})
	}
	return pages, nil
}

// NormalizeExt returns the lowercased extension of name, falling back to
// DefaultExt when there is none.
func NormalizeExt(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return DefaultExt
	}
	return ext
}

func qualifies(f *zip.File) bool {
	if f.FileInfo().IsDir() {
		return false
	}
	name := f.Name
	if strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") {
		return false
	}
	if strings.HasPrefix(path.Base(name), ".") {
		return false
	}
	return imageExts[strings.ToLower(path.Ext(name))]
}

// naturalLess compares two names treating digit runs as numbers, so
// "p2" < "p10". Ties on numeric value fall back to byte order.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, ra := splitNumber(a)
			nb, rb := splitNumber(b)
			if na != nb {
				// Compare as numbers; strip leading zeros first so the
				// string comparison below is length-then-lexicographic.
				ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
				if len(ta) != len(tb) {
					return len(ta) < len(tb)
				}
				if ta != tb {
					return ta < tb
				}
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitNumber(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
