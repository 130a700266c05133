// Package images writes the check images embedded in an X9 document to disk.
package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

// extensions maps image view format indicators to file extensions.
var extensions = map[string]string{
	"00": "tif",
	"20": "png",
	"21": "jpg",
	"22": "spf",
	"23": "jbg",
	"24": "jp2",
}

// Extension returns the file extension for an image view format indicator.
func Extension(format string) string {
	if ext, ok := extensions[strings.TrimSpace(format)]; ok {
		return ext
	}
	return "bin"
}

// Writer writes image views to a directory.
type Writer struct {
	Logger zerolog.Logger
}

// WriteAll writes every image view that carries data to dir, creating dir
// if needed, and returns the number of files written.
//
// Files are named B{bundle}_I{item}_{side}{n}.{ext}; credit record images
// use C{bundle} and item 0000.
func (w *Writer) WriteAll(doc *x9.Document, dir string) (int, error) {
	if doc == nil || doc.CashLetter == nil {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create image directory: %w", err)
	}

	written := 0
	for i, b := range doc.CashLetter.Bundles {
		seq := bundleSequence(b, i)

		if b.Credit != nil {
			n, err := w.writeViews(dir, "C"+seq+"_I0000", b.Credit.ImageViews)
			written += n
			if err != nil {
				return written, err
			}
		}

		for j, item := range b.CheckItems {
			prefix := fmt.Sprintf("B%s_I%04d", seq, j+1)
			n, err := w.writeViews(dir, prefix, item.ImageViews)
			written += n
			if err != nil {
				return written, err
			}
		}
	}

	w.Logger.Debug().Str("dir", dir).Int("images", written).Msg("images written")
	return written, nil
}

func (w *Writer) writeViews(dir, prefix string, views []*x9.ImageView) (int, error) {
	written := 0
	counts := map[string]int{}
	for _, v := range views {
		if len(v.Data) == 0 {
			continue
		}
		side := sideName(v.ViewSideIndicator)
		counts[side]++

		name := fmt.Sprintf("%s_%s%d.%s", prefix, side, counts[side], Extension(v.FormatIndicator))
		if err := os.WriteFile(filepath.Join(dir, name), v.Data, 0644); err != nil {
			return written, fmt.Errorf("failed to write image %s: %w", name, err)
		}
		written++
	}
	return written, nil
}

func sideName(indicator string) string {
	switch strings.TrimSpace(indicator) {
	case x9.ViewSideFront:
		return "front"
	case x9.ViewSideBack:
		return "back"
	default:
		return "view"
	}
}

// bundleSequence returns the bundle sequence number without leading zeros,
// or the bundle's position when the header has none.
func bundleSequence(b *x9.Bundle, index int) string {
	if b.Header != nil {
		s := strings.TrimSpace(b.Header.SequenceNumber)
		if n, err := strconv.Atoi(s); err == nil {
			return strconv.Itoa(n)
		}
		if s != "" {
			return s
		}
	}
	return strconv.Itoa(index + 1)
}
