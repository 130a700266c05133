// =============================================================================
// X9 Check Image Validator - Document Model
// =============================================================================
//
// In-memory representation of a parsed X9.100-187 file:
//
//   Document
//   ├── FileHeader              (type 01)
//   ├── CashLetter
//   │   ├── CashLetterHeader    (type 10)
//   │   ├── Bundles
//   │   │   ├── BundleHeader    (type 20)
//   │   │   ├── CreditRecord    (type 61, optional)
//   │   │   ├── CheckItems
//   │   │   │   ├── CheckDetail (type 25)
//   │   │   │   └── ImageViews  (type 50 + 52)
//   │   │   └── BundleControl   (type 70)
//   │   └── CashLetterControl   (type 90)
//   └── FileControl             (type 99)
//
// Control and amount fields hold the raw fixed-width text exactly as read;
// conversion happens in the consumers (see internal/convert) so that a bad
// field is reported under the consumer's own error handling.
//
// A Document is built once per file and treated as read-only afterwards.
//
// =============================================================================

package x9

import "strings"

// Document is a complete X9 file.
type Document struct {
	FileHeader  *FileHeader
	CashLetter  *CashLetter
	FileControl *FileControl
}

// FileHeader is the type 01 record.
type FileHeader struct {
	StandardLevel               string
	TestFileIndicator           string
	ImmediateDestinationRouting string
	ImmediateOriginRouting      string
	FileCreationDate            string
	FileCreationTime            string
	ResendIndicator             string
	ImmediateDestinationName    string
	ImmediateOriginName         string
	FileIDModifier              string
	CountryCode                 string
	UserField                   string
	CompanionDocumentIndicator  string
}

// FileControl is the type 99 record: declared totals for the whole file.
type FileControl struct {
	CashLetterCount             string
	TotalRecordCount            string
	TotalItemCount              string
	FileTotalAmount             string
	ImmediateOriginContactName  string
	ImmediateOriginContactPhone string
	CreditTotalIndicator        string
}

// CashLetter groups the bundles deposited together.
type CashLetter struct {
	Header  *CashLetterHeader
	Bundles []*Bundle
	Control *CashLetterControl
}

// CashLetterHeader is the type 10 record.
type CashLetterHeader struct {
	CollectionTypeIndicator     string
	DestinationRoutingNumber    string
	ECEInstitutionRoutingNumber string
	BusinessDate                string
	CreationDate                string
	CreationTime                string
	RecordTypeIndicator         string
	DocumentationTypeIndicator  string
	CashLetterID                string
	OriginatorContactName       string
	OriginatorContactPhone      string
}

// CashLetterControl is the type 90 record.
type CashLetterControl struct {
	BundleCount          string
	ItemCount            string
	TotalAmount          string
	ImageViewCount       string
	ECEInstitutionName   string
	SettlementDate       string
	CreditTotalIndicator string
}

// Bundle is a sub-grouping of check items with its own control totals.
type Bundle struct {
	Header     *BundleHeader
	Credit     *CreditRecord
	CheckItems []*CheckItem
	Control    *BundleControl
}

// ID returns the trimmed bundle identifier, falling back to the sequence
// number when the identifier field is blank.
func (b *Bundle) ID() string {
	if b == nil || b.Header == nil {
		return ""
	}
	if id := strings.TrimSpace(b.Header.BundleID); id != "" {
		return id
	}
	return strings.TrimSpace(b.Header.SequenceNumber)
}

// HasCredit reports whether the bundle carries a credit record with an amount.
func (b *Bundle) HasCredit() bool {
	return b != nil && b.Credit != nil && strings.TrimSpace(b.Credit.Amount) != ""
}

// BundleHeader is the type 20 record.
type BundleHeader struct {
	CollectionTypeIndicator     string
	DestinationRoutingNumber    string
	RoutingNumber               string
	BusinessDate                string
	CreationDate                string
	BundleID                    string
	SequenceNumber              string
	CycleNumber                 string
	ReturnLocationRoutingNumber string
}

// BundleControl is the type 70 record.
type BundleControl struct {
	ItemCount       string
	TotalAmount     string
	MICRValidAmount string
	ImageViewCount  string
	UserField       string
}

// CreditRecord is the type 61 record: an offsetting credit for the bundle.
type CreditRecord struct {
	AuxiliaryOnUs          string
	ExternalProcessingCode string
	PayorBankRoutingNumber string
	AccountNumberOnUs      string
	Amount                 string
	ItemSequenceNumber     string
	DocumentationType      string
	AccountTypeCode        string
	SourceWorkCode         string
	WorkType               string
	DebitCreditIndicator   string
	ImageViews             []*ImageView
}

// CheckItem is one deposited check with its images.
type CheckItem struct {
	Detail     *CheckDetail
	ImageViews []*ImageView
}

// CheckDetail is the type 25 record.
type CheckDetail struct {
	AuxiliaryOnUs          string
	ExternalProcessingCode string
	PayorBankRoutingNumber string
	PayorBankCheckDigit    string
	OnUs                   string
	ItemAmount             string
	ItemSequenceNumber     string
	DocumentationType      string
	ReturnAcceptance       string
	MICRValidIndicator     string
	BOFDIndicator          string
	AddendumCount          string
	CorrectionIndicator    string
	ArchiveTypeIndicator   string
}

// View side indicator values from the image view detail record.
const (
	ViewSideFront = "0"
	ViewSideBack  = "1"
)

// ImageView is one scanned image: the type 50 detail plus the type 52 data.
type ImageView struct {
	ImageIndicator       string
	CreatorRoutingNumber string
	CreatorDate          string
	FormatIndicator      string
	CompressionAlgorithm string
	ViewSideIndicator    string
	ViewDescriptor       string
	DigitalSignature     string
	ImageReferenceKey    string
	Data                 []byte
}
