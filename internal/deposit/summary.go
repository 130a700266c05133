// Package deposit builds the deposit confirmation summary sent to customers
// after a file is received.
package deposit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/x9-check-image-validator/internal/convert"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

// Display layouts for the file creation date and time.
const (
	DateLayout = "01/02/2006"
	TimeLayout = "15:04"
)

// ErrIncomplete is returned when the document lacks a record the summary
// is built from.
var ErrIncomplete = errors.New("document is missing records needed for the summary")

// Summary is what a customer is told about a received file. Counts and
// totals are the values the file declares in its control records.
type Summary struct {
	CustomerName string
	FileName     string
	FileDate     time.Time
	FileTime     convert.TimeOfDay
	Bundles      []BundleRow
	ItemCount    int
	ImageCount   int
	Total        decimal.Decimal
}

// BundleRow summarises one bundle.
type BundleRow struct {
	CreditAccount string
	Sequence      int
	ItemCount     int
	ImageCount    int
	Total         decimal.Decimal
}

// DateText returns the file creation date as MM/DD/YYYY.
func (s *Summary) DateText() string {
	return s.FileDate.Format(DateLayout)
}

// TimeText returns the file creation time as HH:MM.
func (s *Summary) TimeText() string {
	return s.FileTime.String()
}

// BuildSummary builds the summary for doc. fileName may be a path; only its
// base name is kept.
func BuildSummary(doc *x9.Document, fileName string) (*Summary, error) {
	if doc == nil || doc.FileHeader == nil {
		return nil, fmt.Errorf("%w: file header", ErrIncomplete)
	}
	if doc.CashLetter == nil || doc.CashLetter.Control == nil {
		return nil, fmt.Errorf("%w: cash letter control", ErrIncomplete)
	}
	if doc.FileControl == nil {
		return nil, fmt.Errorf("%w: file control", ErrIncomplete)
	}

	header := doc.FileHeader
	date, err := convert.ParseDate(header.FileCreationDate)
	if err != nil {
		return nil, fmt.Errorf("file creation date: %w", err)
	}
	tod, err := convert.ParseTime24h(header.FileCreationTime)
	if err != nil {
		return nil, fmt.Errorf("file creation time: %w", err)
	}

	s := &Summary{
		CustomerName: strings.TrimSpace(header.ImmediateOriginName),
		FileName:     filepath.Base(fileName),
		FileDate:     date,
		FileTime:     tod,
	}

	for i, b := range doc.CashLetter.Bundles {
		if b.Header == nil || b.Control == nil {
			return nil, fmt.Errorf("%w: bundle %d header or control", ErrIncomplete, i+1)
		}
		row, err := bundleRow(b)
		if err != nil {
			return nil, fmt.Errorf("bundle %d: %w", i+1, err)
		}
		s.Bundles = append(s.Bundles, row)
	}

	if s.ItemCount, err = convert.ParseInt(doc.FileControl.TotalItemCount); err != nil {
		return nil, fmt.Errorf("file control item count: %w", err)
	}
	if s.ImageCount, err = convert.ParseInt(doc.CashLetter.Control.ImageViewCount); err != nil {
		return nil, fmt.Errorf("cash letter control image view count: %w", err)
	}
	if s.Total, err = convert.ParseAmount(doc.FileControl.FileTotalAmount); err != nil {
		return nil, fmt.Errorf("file control total amount: %w", err)
	}

	return s, nil
}

func bundleRow(b *x9.Bundle) (BundleRow, error) {
	row := BundleRow{CreditAccount: strings.TrimSpace(b.Header.RoutingNumber)}

	var err error
	if row.Sequence, err = convert.ParseInt(b.Header.SequenceNumber); err != nil {
		return BundleRow{}, fmt.Errorf("sequence number: %w", err)
	}
	if row.ItemCount, err = convert.ParseInt(b.Control.ItemCount); err != nil {
		return BundleRow{}, fmt.Errorf("item count: %w", err)
	}
	if row.ImageCount, err = convert.ParseInt(b.Control.ImageViewCount); err != nil {
		return BundleRow{}, fmt.Errorf("image view count: %w", err)
	}
	if row.Total, err = convert.ParseAmount(b.Control.TotalAmount); err != nil {
		return BundleRow{}, fmt.Errorf("total amount: %w", err)
	}
	return row, nil
}
