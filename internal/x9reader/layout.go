package x9reader

import (
	"strings"

	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

// Record type codes (positions 1-2 of every record).
const (
	typeFileHeader        = "01"
	typeCashLetterHeader  = "10"
	typeBundleHeader      = "20"
	typeCheckDetail       = "25"
	typeImageViewDetail   = "50"
	typeImageViewData     = "52"
	typeCredit            = "61"
	typeBundleControl     = "70"
	typeCashLetterControl = "90"
	typeFileControl       = "99"
)

// skippedTypes are records that carry nothing the document model needs.
var skippedTypes = map[string]string{
	"26": "check detail addendum A",
	"27": "check detail addendum B",
	"28": "check detail addendum C",
	"31": "return",
	"32": "return addendum A",
	"33": "return addendum B",
	"34": "return addendum C",
	"35": "return addendum D",
	"40": "account totals detail",
	"41": "non-hit totals detail",
	"62": "credit item",
	"68": "user record",
	"85": "box summary",
}

// fixedRecordLength is the length of every fixed-layout record.
const fixedRecordLength = 80

// imageDataFixedLength covers the type 52 fields up to and including the
// length of the image reference key (positions 1-105).
const imageDataFixedLength = 105

// fields gives 1-based positional access to a decoded record, the way the
// standard documents its layouts. Positions count characters, not UTF-8
// bytes: a code page 037 byte above 0x7F decodes to a multi-byte rune.
type fields []rune

// at returns length characters starting at the 1-based position start.
// Positions past the end of the record yield blanks.
func (f fields) at(start, length int) string {
	from := start - 1
	if from >= len(f) {
		return ""
	}
	to := from + length
	if to > len(f) {
		to = len(f)
	}
	return string(f[from:to])
}

func parseFileHeader(f fields) *x9.FileHeader {
	return &x9.FileHeader{
		StandardLevel:               f.at(3, 2),
		TestFileIndicator:           f.at(5, 1),
		ImmediateDestinationRouting: f.at(6, 9),
		ImmediateOriginRouting:      f.at(15, 9),
		FileCreationDate:            f.at(24, 8),
		FileCreationTime:            f.at(32, 4),
		ResendIndicator:             f.at(36, 1),
		ImmediateDestinationName:    f.at(37, 18),
		ImmediateOriginName:         f.at(55, 18),
		FileIDModifier:              f.at(73, 1),
		CountryCode:                 f.at(74, 2),
		UserField:                   f.at(76, 4),
		CompanionDocumentIndicator:  f.at(80, 1),
	}
}

func parseCashLetterHeader(f fields) *x9.CashLetterHeader {
	return &x9.CashLetterHeader{
		CollectionTypeIndicator:     f.at(3, 2),
		DestinationRoutingNumber:    f.at(5, 9),
		ECEInstitutionRoutingNumber: f.at(14, 9),
		BusinessDate:                f.at(23, 8),
		CreationDate:                f.at(31, 8),
		CreationTime:                f.at(39, 4),
		RecordTypeIndicator:         f.at(43, 1),
		DocumentationTypeIndicator:  f.at(44, 1),
		CashLetterID:                f.at(45, 8),
		OriginatorContactName:       f.at(53, 14),
		OriginatorContactPhone:      f.at(67, 10),
	}
}

func parseBundleHeader(f fields) *x9.BundleHeader {
	return &x9.BundleHeader{
		CollectionTypeIndicator:     f.at(3, 2),
		DestinationRoutingNumber:    f.at(5, 9),
		RoutingNumber:               f.at(14, 9),
		BusinessDate:                f.at(23, 8),
		CreationDate:                f.at(31, 8),
		BundleID:                    f.at(39, 10),
		SequenceNumber:              f.at(49, 4),
		CycleNumber:                 f.at(53, 2),
		ReturnLocationRoutingNumber: f.at(55, 9),
	}
}

func parseCheckDetail(f fields) *x9.CheckDetail {
	return &x9.CheckDetail{
		AuxiliaryOnUs:          f.at(3, 15),
		ExternalProcessingCode: f.at(18, 1),
		PayorBankRoutingNumber: f.at(19, 8),
		PayorBankCheckDigit:    f.at(27, 1),
		OnUs:                   f.at(28, 20),
		ItemAmount:             f.at(48, 10),
		ItemSequenceNumber:     f.at(58, 15),
		DocumentationType:      f.at(73, 1),
		ReturnAcceptance:       f.at(74, 1),
		MICRValidIndicator:     f.at(75, 1),
		BOFDIndicator:          f.at(76, 1),
		AddendumCount:          f.at(77, 2),
		CorrectionIndicator:    f.at(79, 1),
		ArchiveTypeIndicator:   f.at(80, 1),
	}
}

func parseImageViewDetail(f fields) *x9.ImageView {
	return &x9.ImageView{
		ImageIndicator:       f.at(3, 1),
		CreatorRoutingNumber: f.at(4, 9),
		CreatorDate:          f.at(13, 8),
		FormatIndicator:      f.at(21, 2),
		CompressionAlgorithm: f.at(23, 2),
		ViewSideIndicator:    f.at(32, 1),
		ViewDescriptor:       f.at(33, 2),
		DigitalSignature:     f.at(35, 1),
	}
}

func parseCredit(f fields) *x9.CreditRecord {
	return &x9.CreditRecord{
		AuxiliaryOnUs:          f.at(3, 15),
		ExternalProcessingCode: f.at(18, 1),
		PayorBankRoutingNumber: f.at(19, 9),
		AccountNumberOnUs:      f.at(28, 20),
		Amount:                 f.at(48, 10),
		ItemSequenceNumber:     f.at(58, 15),
		DocumentationType:      f.at(73, 1),
		AccountTypeCode:        f.at(74, 1),
		SourceWorkCode:         f.at(75, 2),
		WorkType:               f.at(77, 1),
		DebitCreditIndicator:   f.at(78, 1),
	}
}

func parseBundleControl(f fields) *x9.BundleControl {
	return &x9.BundleControl{
		ItemCount:       f.at(3, 4),
		TotalAmount:     f.at(7, 12),
		MICRValidAmount: f.at(19, 12),
		ImageViewCount:  f.at(31, 5),
		UserField:       f.at(36, 20),
	}
}

func parseCashLetterControl(f fields) *x9.CashLetterControl {
	return &x9.CashLetterControl{
		BundleCount:          f.at(3, 6),
		ItemCount:            f.at(9, 8),
		TotalAmount:          f.at(17, 14),
		ImageViewCount:       f.at(31, 9),
		ECEInstitutionName:   f.at(40, 18),
		SettlementDate:       f.at(58, 8),
		CreditTotalIndicator: f.at(66, 1),
	}
}

func parseFileControl(f fields) *x9.FileControl {
	return &x9.FileControl{
		CashLetterCount:             f.at(3, 6),
		TotalRecordCount:            f.at(9, 8),
		TotalItemCount:              f.at(17, 8),
		FileTotalAmount:             f.at(25, 16),
		ImmediateOriginContactName:  f.at(41, 14),
		ImmediateOriginContactPhone: f.at(55, 10),
		CreditTotalIndicator:        f.at(65, 1),
	}
}

// lengthField reads a variable-length size field; blanks mean zero.
func lengthField(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
