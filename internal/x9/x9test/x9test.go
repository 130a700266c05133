// Package x9test builds X9 documents and encodes them to X9.100-187 bytes
// for tests. Builders produce documents whose control records match their
// contents; tests then break individual fields.
package x9test

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

const (
	OriginName   = "ACME WIDGETS"
	CreationDate = "20240315"
	CreationTime = "1405"
	RoutingNo    = "061000104"
)

// Item returns a check item with a raw amount field and the given number of
// image views, alternating front and back.
func Item(amount string, images int) *x9.CheckItem {
	item := &x9.CheckItem{
		Detail: &x9.CheckDetail{
			PayorBankRoutingNumber: "06100010",
			PayorBankCheckDigit:    "4",
			OnUs:                   "123456789/",
			ItemAmount:             amount,
			ItemSequenceNumber:     "000000000000001",
			DocumentationType:      "G",
			BOFDIndicator:          "Y",
			AddendumCount:          "00",
		},
	}
	for i := 0; i < images; i++ {
		item.ImageViews = append(item.ImageViews, View(i))
	}
	return item
}

// View returns a TIFF image view with a small payload. Even n is the front.
func View(n int) *x9.ImageView {
	side := x9.ViewSideFront
	if n%2 == 1 {
		side = x9.ViewSideBack
	}
	return &x9.ImageView{
		ImageIndicator:       "1",
		CreatorRoutingNumber: RoutingNo,
		CreatorDate:          CreationDate,
		FormatIndicator:      "00",
		CompressionAlgorithm: "00",
		ViewSideIndicator:    side,
		ViewDescriptor:       "00",
		DigitalSignature:     "0",
		Data:                 []byte(fmt.Sprintf("II*\x00view-%d", n)),
	}
}

// Bundle returns a bundle whose control record matches its items. A blank
// credit amount leaves the bundle without a credit record.
func Bundle(id, credit string, items ...*x9.CheckItem) *x9.Bundle {
	b := &x9.Bundle{
		Header: &x9.BundleHeader{
			CollectionTypeIndicator:  "01",
			DestinationRoutingNumber: RoutingNo,
			RoutingNumber:            RoutingNo,
			BusinessDate:             CreationDate,
			CreationDate:             CreationDate,
			BundleID:                 id,
			SequenceNumber:           pad(id, 4),
			CycleNumber:              "01",
		},
		CheckItems: items,
	}
	if credit != "" {
		b.Credit = &x9.CreditRecord{
			PayorBankRoutingNumber: RoutingNo,
			AccountNumberOnUs:      "987654321/",
			Amount:                 credit,
			ItemSequenceNumber:     "000000000000000",
			DocumentationType:      "G",
		}
	}

	count, images, cents := totals(b)
	b.Control = &x9.BundleControl{
		ItemCount:       num(count, 4),
		TotalAmount:     num(cents, 12),
		MICRValidAmount: num(cents, 12),
		ImageViewCount:  num(images, 5),
	}
	return b
}

// Document wraps bundles in a single cash letter and computes matching cash
// letter and file control records.
func Document(bundles ...*x9.Bundle) *x9.Document {
	var items, images, cents, records int64
	for _, b := range bundles {
		i, v, c := totals(b)
		items += i
		images += v
		cents += c
		records += 2 + i + 2*v
		if b.Credit != nil {
			records += 1 + 2*int64(len(b.Credit.ImageViews))
		}
	}
	records += 4

	return &x9.Document{
		FileHeader: &x9.FileHeader{
			StandardLevel:               "03",
			TestFileIndicator:           "T",
			ImmediateDestinationRouting: RoutingNo,
			ImmediateOriginRouting:      RoutingNo,
			FileCreationDate:            CreationDate,
			FileCreationTime:            CreationTime,
			ResendIndicator:             "N",
			ImmediateDestinationName:    "FIRST BANK",
			ImmediateOriginName:         OriginName,
			FileIDModifier:              "A",
			CountryCode:                 "US",
		},
		CashLetter: &x9.CashLetter{
			Header: &x9.CashLetterHeader{
				CollectionTypeIndicator:     "01",
				DestinationRoutingNumber:    RoutingNo,
				ECEInstitutionRoutingNumber: RoutingNo,
				BusinessDate:                CreationDate,
				CreationDate:                CreationDate,
				CreationTime:                CreationTime,
				RecordTypeIndicator:         "I",
				DocumentationTypeIndicator:  "G",
				CashLetterID:                "CL000001",
			},
			Bundles: bundles,
			Control: &x9.CashLetterControl{
				BundleCount:    num(int64(len(bundles)), 6),
				ItemCount:      num(items, 8),
				TotalAmount:    num(cents, 14),
				ImageViewCount: num(images, 9),
				SettlementDate: CreationDate,
			},
		},
		FileControl: &x9.FileControl{
			CashLetterCount:  num(1, 6),
			TotalRecordCount: num(records, 8),
			TotalItemCount:   num(items, 8),
			FileTotalAmount:  num(cents, 16),
		},
	}
}

// totals counts check items and their image views and sums item amounts in
// cents. Amount text must be digits.
func totals(b *x9.Bundle) (items, images, cents int64) {
	for _, item := range b.CheckItems {
		items++
		images += int64(len(item.ImageViews))
		n, err := strconv.ParseInt(strings.TrimSpace(item.Detail.ItemAmount), 10, 64)
		if err != nil {
			panic(fmt.Sprintf("x9test: item amount %q: %v", item.Detail.ItemAmount, err))
		}
		cents += n
	}
	return items, images, cents
}

func num(n int64, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[len(s)-width:]
	}
	return strings.Repeat("0", width-len(s)) + s
}

// =============================================================================
// ENCODING
// =============================================================================

// Options selects the byte representation produced by Encode.
type Options struct {
	EBCDIC        bool
	LineDelimited bool
}

// Encode renders doc as an X9 byte stream.
func Encode(doc *x9.Document, opts Options) []byte {
	return Frame(Records(doc, opts.EBCDIC), opts.LineDelimited)
}

// Frame joins records with 4-byte length prefixes, or with newlines when
// lineDelimited is set.
func Frame(records [][]byte, lineDelimited bool) []byte {
	var out []byte
	for _, rec := range records {
		if lineDelimited {
			out = append(out, rec...)
			out = append(out, '\n')
			continue
		}
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], uint32(len(rec)))
		out = append(out, prefix[:]...)
		out = append(out, rec...)
	}
	return out
}

// Records renders every record of doc in file order.
func Records(doc *x9.Document, ebcdic bool) [][]byte {
	var out [][]byte
	add := func(r *record) { out = append(out, r.bytes(ebcdic)) }
	addViews := func(views []*x9.ImageView) {
		for _, v := range views {
			add(imageViewDetail(v))
			out = append(out, imageViewData(v, ebcdic))
		}
	}

	if h := doc.FileHeader; h != nil {
		add(newRecord("01").
			put(3, h.StandardLevel).put(5, h.TestFileIndicator).
			put(6, h.ImmediateDestinationRouting).put(15, h.ImmediateOriginRouting).
			put(24, h.FileCreationDate).put(32, h.FileCreationTime).
			put(36, h.ResendIndicator).put(37, h.ImmediateDestinationName).
			put(55, h.ImmediateOriginName).put(73, h.FileIDModifier).
			put(74, h.CountryCode).put(76, h.UserField).put(80, h.CompanionDocumentIndicator))
	}

	if cl := doc.CashLetter; cl != nil {
		if h := cl.Header; h != nil {
			add(newRecord("10").
				put(3, h.CollectionTypeIndicator).put(5, h.DestinationRoutingNumber).
				put(14, h.ECEInstitutionRoutingNumber).put(23, h.BusinessDate).
				put(31, h.CreationDate).put(39, h.CreationTime).
				put(43, h.RecordTypeIndicator).put(44, h.DocumentationTypeIndicator).
				put(45, h.CashLetterID).put(53, h.OriginatorContactName).
				put(67, h.OriginatorContactPhone))
		}

		for _, b := range cl.Bundles {
			h := b.Header
			add(newRecord("20").
				put(3, h.CollectionTypeIndicator).put(5, h.DestinationRoutingNumber).
				put(14, h.RoutingNumber).put(23, h.BusinessDate).
				put(31, h.CreationDate).put(39, h.BundleID).
				put(49, h.SequenceNumber).put(53, h.CycleNumber).
				put(55, h.ReturnLocationRoutingNumber))

			if c := b.Credit; c != nil {
				add(newRecord("61").
					put(3, c.AuxiliaryOnUs).put(18, c.ExternalProcessingCode).
					put(19, c.PayorBankRoutingNumber).put(28, c.AccountNumberOnUs).
					put(48, c.Amount).put(58, c.ItemSequenceNumber).
					put(73, c.DocumentationType).put(74, c.AccountTypeCode).
					put(75, c.SourceWorkCode).put(77, c.WorkType).
					put(78, c.DebitCreditIndicator))
				addViews(c.ImageViews)
			}

			for _, item := range b.CheckItems {
				d := item.Detail
				add(newRecord("25").
					put(3, d.AuxiliaryOnUs).put(18, d.ExternalProcessingCode).
					put(19, d.PayorBankRoutingNumber).put(27, d.PayorBankCheckDigit).
					put(28, d.OnUs).put(48, d.ItemAmount).
					put(58, d.ItemSequenceNumber).put(73, d.DocumentationType).
					put(74, d.ReturnAcceptance).put(75, d.MICRValidIndicator).
					put(76, d.BOFDIndicator).put(77, d.AddendumCount).
					put(79, d.CorrectionIndicator).put(80, d.ArchiveTypeIndicator))
				addViews(item.ImageViews)
			}

			if c := b.Control; c != nil {
				add(newRecord("70").
					put(3, c.ItemCount).put(7, c.TotalAmount).
					put(19, c.MICRValidAmount).put(31, c.ImageViewCount).
					put(36, c.UserField))
			}
		}

		if c := cl.Control; c != nil {
			add(newRecord("90").
				put(3, c.BundleCount).put(9, c.ItemCount).
				put(17, c.TotalAmount).put(31, c.ImageViewCount).
				put(40, c.ECEInstitutionName).put(58, c.SettlementDate).
				put(66, c.CreditTotalIndicator))
		}
	}

	if c := doc.FileControl; c != nil {
		add(newRecord("99").
			put(3, c.CashLetterCount).put(9, c.TotalRecordCount).
			put(17, c.TotalItemCount).put(25, c.FileTotalAmount).
			put(41, c.ImmediateOriginContactName).put(55, c.ImmediateOriginContactPhone).
			put(65, c.CreditTotalIndicator))
	}

	return out
}

// Text encodes an arbitrary fixed record, for tests that need records the
// builders do not produce.
func Text(s string, ebcdic bool) []byte {
	return encodeText(s, ebcdic)
}

func imageViewDetail(v *x9.ImageView) *record {
	return newRecord("50").
		put(3, v.ImageIndicator).put(4, v.CreatorRoutingNumber).
		put(13, v.CreatorDate).put(21, v.FormatIndicator).
		put(23, v.CompressionAlgorithm).put(25, "0000000").
		put(32, v.ViewSideIndicator).put(33, v.ViewDescriptor).
		put(35, v.DigitalSignature)
}

func imageViewData(v *x9.ImageView, ebcdic bool) []byte {
	fixed := make([]byte, 105)
	for i := range fixed {
		fixed[i] = ' '
	}
	copy(fixed, "52")
	copy(fixed[2:], RoutingNo)
	copy(fixed[101:], fmt.Sprintf("%04d", len(v.ImageReferenceKey)))

	text := string(fixed) + v.ImageReferenceKey + "00000" + fmt.Sprintf("%07d", len(v.Data))
	out := encodeText(text, ebcdic)
	return append(out, v.Data...)
}

type record struct {
	buf []byte
}

func newRecord(recordType string) *record {
	buf := make([]byte, 80)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf, recordType)
	return &record{buf: buf}
}

// put writes value at the 1-based position start.
func (r *record) put(start int, value string) *record {
	copy(r.buf[start-1:], value)
	return r
}

func (r *record) bytes(ebcdic bool) []byte {
	return encodeText(string(r.buf), ebcdic)
}

func encodeText(s string, ebcdic bool) []byte {
	if !ebcdic {
		return []byte(s)
	}
	out, err := charmap.CodePage037.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("x9test: encode EBCDIC: %v", err))
	}
	return out
}
