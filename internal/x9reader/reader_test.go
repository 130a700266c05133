package x9reader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9/x9test"
)

func sampleDocument() *x9.Document {
	first := x9test.Bundle("1", "0000012550",
		x9test.Item("0000010050", 2),
		x9test.Item("0000002000", 2),
		x9test.Item("0000000500", 2),
	)
	first.CheckItems[0].ImageViews[0].ImageReferenceKey = "KEY-0001"
	second := x9test.Bundle("2", "0000001000", x9test.Item("0000001000", 1))
	return x9test.Document(first, second)
}

func TestReadRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		opts x9test.Options
		enc  Encoding
	}{
		{name: "ascii length prefixed", opts: x9test.Options{}, enc: EncodingASCII},
		{name: "ebcdic length prefixed", opts: x9test.Options{EBCDIC: true}, enc: EncodingEBCDIC},
		{name: "ascii line delimited", opts: x9test.Options{LineDelimited: true}, enc: EncodingASCII},
		{name: "ebcdic line delimited", opts: x9test.Options{EBCDIC: true, LineDelimited: true}, enc: EncodingEBCDIC},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := sampleDocument()
			r := NewReader(bytes.NewReader(x9test.Encode(want, tc.opts)))

			doc, err := r.Read()
			require.NoError(t, err)
			assert.Equal(t, tc.enc, r.encoding)

			require.NotNil(t, doc.FileHeader)
			assert.Equal(t, x9test.OriginName, strings.TrimSpace(doc.FileHeader.ImmediateOriginName))
			assert.Equal(t, x9test.CreationDate, doc.FileHeader.FileCreationDate)
			assert.Equal(t, x9test.CreationTime, doc.FileHeader.FileCreationTime)

			require.NotNil(t, doc.CashLetter)
			require.Len(t, doc.CashLetter.Bundles, 2)
			assert.Equal(t, want.CashLetter.Control.ItemCount, doc.CashLetter.Control.ItemCount)
			assert.Equal(t, want.CashLetter.Control.TotalAmount, doc.CashLetter.Control.TotalAmount)
			assert.Equal(t, want.FileControl.FileTotalAmount, doc.FileControl.FileTotalAmount)

			b := doc.CashLetter.Bundles[0]
			assert.Equal(t, "1", b.ID())
			assert.True(t, b.HasCredit())
			assert.Equal(t, "0000012550", b.Credit.Amount)
			require.Len(t, b.CheckItems, 3)
			assert.Equal(t, "0000010050", b.CheckItems[0].Detail.ItemAmount)
			assert.Equal(t, "0003", b.Control.ItemCount)
			assert.Equal(t, "00006", b.Control.ImageViewCount)

			views := b.CheckItems[0].ImageViews
			require.Len(t, views, 2)
			assert.Equal(t, x9.ViewSideFront, views[0].ViewSideIndicator)
			assert.Equal(t, x9.ViewSideBack, views[1].ViewSideIndicator)
			assert.Equal(t, "KEY-0001", views[0].ImageReferenceKey)
			assert.Equal(t, want.CashLetter.Bundles[0].CheckItems[0].ImageViews[1].Data, views[1].Data)

			assert.Len(t, doc.CashLetter.Bundles[1].CheckItems, 1)
		})
	}
}

func TestReadSkipsAddendaAndUserRecords(t *testing.T) {
	doc := x9test.Document(x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 2)))
	records := x9test.Records(doc, false)

	// Insert an addendum after the check detail and a user record before
	// the file control.
	var out [][]byte
	for i, rec := range records {
		if i == len(records)-1 {
			out = append(out, x9test.Text("68"+strings.Repeat(" ", 78), false))
		}
		out = append(out, rec)
		if bytes.HasPrefix(rec, []byte("25")) {
			out = append(out, x9test.Text("26"+strings.Repeat("0", 78), false))
		}
	}

	r := NewReader(bytes.NewReader(x9test.Frame(out, false)))
	got, err := r.Read()
	require.NoError(t, err)

	item := got.CashLetter.Bundles[0].CheckItems[0]
	assert.Len(t, item.ImageViews, 2)
	assert.Equal(t, map[string]int{"26": 1, "68": 1}, r.skipped)
}

func TestReadCreditImagesStayWithCredit(t *testing.T) {
	b := x9test.Bundle("7", "0000005000", x9test.Item("0000005000", 2))
	b.Credit.ImageViews = []*x9.ImageView{x9test.View(0)}
	doc := x9test.Document(b)

	got, err := NewReader(bytes.NewReader(x9test.Encode(doc, x9test.Options{}))).Read()
	require.NoError(t, err)

	bundle := got.CashLetter.Bundles[0]
	require.NotNil(t, bundle.Credit)
	assert.Len(t, bundle.Credit.ImageViews, 1)
	assert.Len(t, bundle.CheckItems[0].ImageViews, 2)
}

func TestReadMissingControlsLeftNil(t *testing.T) {
	first := x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 1))
	second := x9test.Bundle("2", "0000001000", x9test.Item("0000001000", 1))
	doc := x9test.Document(first, second)
	first.Control = nil
	doc.CashLetter.Control = nil

	got, err := NewReader(bytes.NewReader(x9test.Encode(doc, x9test.Options{}))).Read()
	require.NoError(t, err)

	require.Len(t, got.CashLetter.Bundles, 2)
	assert.Nil(t, got.CashLetter.Bundles[0].Control)
	assert.NotNil(t, got.CashLetter.Bundles[1].Control)
	assert.Nil(t, got.CashLetter.Control)
	assert.NotNil(t, got.FileControl)
}

func TestReadStopsAfterFileControl(t *testing.T) {
	doc := x9test.Document(x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 1)))
	data := x9test.Encode(doc, x9test.Options{})
	data = append(data, []byte("trailing garbage")...)

	got, err := NewReader(bytes.NewReader(data)).Read()
	require.NoError(t, err)
	assert.NotNil(t, got.FileControl)
}

func TestReadStructuralErrors(t *testing.T) {
	doc := x9test.Document(x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 1)))
	records := x9test.Records(doc, false)

	// records: 01, 10, 20, 61, 25, 50, 52, 70, 90, 99
	cases := []struct {
		name    string
		records [][]byte
		typ     string
		reason  string
	}{
		{
			name:    "unsupported record type",
			records: insertAfter(records, 1, x9test.Text("77"+strings.Repeat(" ", 78), false)),
			typ:     "77",
			reason:  "unsupported record type",
		},
		{
			name:    "check detail outside a bundle",
			records: [][]byte{records[0], records[1], records[4]},
			typ:     "25",
			reason:  "check detail outside a bundle",
		},
		{
			name:    "short fixed record",
			records: [][]byte{records[0], []byte("10ABC")},
			typ:     "10",
			reason:  "expected 80",
		},
		{
			name:    "second cash letter",
			records: insertAfter(records, 1, records[1]),
			typ:     "10",
			reason:  "more than one cash letter",
		},
		{
			name:    "image data without detail",
			records: [][]byte{records[0], records[1], records[2], records[4], records[6]},
			typ:     "52",
			reason:  "without an image view detail",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(x9test.Frame(tc.records, false))).Read()
			require.Error(t, err)

			var recErr *RecordError
			require.True(t, errors.As(err, &recErr), "got %T: %v", err, err)
			assert.Equal(t, tc.typ, recErr.Type)
			assert.Contains(t, recErr.Reason, tc.reason)
		})
	}
}

func TestReadTruncatedImageData(t *testing.T) {
	doc := x9test.Document(x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 1)))
	records := x9test.Records(doc, false)

	// records: 01, 10, 20, 61, 25, 50, 52, ...
	image := records[6]
	records[6] = image[:len(image)-3]

	_, err := NewReader(bytes.NewReader(x9test.Frame(records, false))).Read()
	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, "52", recErr.Type)
	assert.Contains(t, recErr.Reason, "image data length")
}

func TestReadNotX9(t *testing.T) {
	for _, input := range []string{"", "hello world, this is not a check file"} {
		_, err := NewReader(strings.NewReader(input)).Read()
		assert.ErrorIs(t, err, ErrNotX9)
	}
}

func TestReadTruncatedLengthPrefix(t *testing.T) {
	doc := x9test.Document(x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 1)))
	data := x9test.Encode(doc, x9test.Options{})

	_, err := NewReader(bytes.NewReader(data[:len(data)-10])).Read()
	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Contains(t, recErr.Reason, "truncated")
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deposit.x9")
	require.NoError(t, os.WriteFile(path, x9test.Encode(sampleDocument(), x9test.Options{EBCDIC: true}), 0o644))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.CashLetter.Bundles, 2)

	_, err = ReadFile(filepath.Join(dir, "missing.x9"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func insertAfter(records [][]byte, i int, rec []byte) [][]byte {
	out := make([][]byte, 0, len(records)+1)
	out = append(out, records[:i+1]...)
	out = append(out, rec)
	return append(out, records[i+1:]...)
}

func TestReadEBCDICNonASCIIKeepsFieldPositions(t *testing.T) {
	doc := x9test.Document(x9test.Bundle("1", "0000001000", x9test.Item("0000001000", 1)))
	records := x9test.Records(doc, true)

	patched := false
	for _, rec := range records {
		// F2 F5 is "25" in code page 037.
		if rec[0] == 0xF2 && rec[1] == 0xF5 {
			rec[2] = 0x4A // cent sign, first character of Auxiliary On-Us
			patched = true
		}
	}
	require.True(t, patched)

	got, err := NewReader(bytes.NewReader(x9test.Frame(records, false))).Read()
	require.NoError(t, err)

	detail := got.CashLetter.Bundles[0].CheckItems[0].Detail
	assert.Equal(t, "¢", strings.TrimSpace(detail.AuxiliaryOnUs))
	assert.Equal(t, "0000001000", detail.ItemAmount)
	assert.Equal(t, "G", detail.DocumentationType)
}
