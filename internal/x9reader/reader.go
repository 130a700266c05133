// =============================================================================
// X9 Check Image Validator - X9.100-187 Reader
// =============================================================================
//
// This module turns an X9.100-187 byte stream into an x9.Document.
//
// FRAMING:
//   - Length-prefixed: every record is preceded by a 4-byte big-endian length
//     (the common interchange format).
//   - Line-delimited: one record per line (LF or CRLF). Only suitable for
//     files whose image data contains no newline bytes.
//
// ENCODING:
//   Record text is either ASCII or EBCDIC (code page 037). Both framing and
//   encoding are detected from the leading type 01 record unless set with
//   options. Image data in type 52 records is always kept as raw bytes.
//
// STRUCTURE:
//   The reader only enforces ownership (an item needs a bundle, a bundle needs
//   a cash letter, ...). Missing control records are left nil and reported by
//   the validation engine.
//
// =============================================================================

package x9reader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Framing selects how records are delimited.
type Framing int

const (
	FramingAuto Framing = iota
	FramingLengthPrefixed
	FramingLineDelimited
)

// Encoding selects the character set of record text.
type Encoding int

const (
	EncodingAuto Encoding = iota
	EncodingASCII
	EncodingEBCDIC
)

// String returns the encoding name used in logs.
func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingEBCDIC:
		return "ebcdic"
	default:
		return "auto"
	}
}

// maxRecordLength guards against reading a garbage length prefix.
const maxRecordLength = 64 << 20

// Option configures a Reader.
type Option func(*Reader)

// WithFraming forces the record framing instead of detecting it.
func WithFraming(f Framing) Option {
	return func(r *Reader) { r.framing = f }
}

// WithEncoding forces the record encoding instead of detecting it.
func WithEncoding(e Encoding) Option {
	return func(r *Reader) { r.encoding = e }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotX9 is returned when the stream does not start with a file header.
var ErrNotX9 = errors.New("stream does not start with an X9 file header record")

// RecordError reports a record that could not be placed in the document.
type RecordError struct {
	// Record is the 1-based record number in the stream.
	Record int

	// Type is the two-character record type, if it could be read.
	Type string

	// Reason describes the problem.
	Reason string
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("record %d: %s", e.Record, e.Reason)
	}
	return fmt.Sprintf("record %d (type %s): %s", e.Record, e.Type, e.Reason)
}

// =============================================================================
// READER
// =============================================================================

// Reader decodes one X9 document from a stream.
type Reader struct {
	br       *bufio.Reader
	framing  Framing
	encoding Encoding
	decoder  *encoding.Decoder
	logger   zerolog.Logger

	record  int
	skipped map[string]int

	doc    *x9.Document
	bundle *x9.Bundle
	views  *[]*x9.ImageView
	view   *x9.ImageView
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	reader := &Reader{
		br:      bufio.NewReaderSize(r, 64*1024),
		logger:  zerolog.Nop(),
		skipped: make(map[string]int),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// ReadFile opens path and reads the document it contains. Errors opening the
// file are returned as-is so callers can tell I/O failures from bad content.
func ReadFile(path string, opts ...Option) (*x9.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewReader(f, opts...).Read()
}

// Read consumes the stream and returns the document. Reading stops after the
// file control record.
func (r *Reader) Read() (*x9.Document, error) {
	if err := r.detect(); err != nil {
		return nil, err
	}

	r.doc = &x9.Document{}
	for {
		raw, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		done, err := r.handle(raw)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	if r.doc.FileHeader == nil {
		return nil, ErrNotX9
	}

	r.logger.Debug().
		Int("records", r.record).
		Str("encoding", r.encoding.String()).
		Interface("skipped", r.skipped).
		Msg("x9 document read")

	return r.doc, nil
}

// detect determines framing and encoding from the first bytes of the stream.
func (r *Reader) detect() error {
	head, err := r.br.Peek(6)
	if err != nil && len(head) < 2 {
		if err == io.EOF {
			return ErrNotX9
		}
		return fmt.Errorf("peek stream: %w", err)
	}

	if r.framing == FramingAuto {
		switch {
		case fileHeaderEncoding(head[0:2]) != EncodingAuto:
			r.framing = FramingLineDelimited
		case len(head) >= 6 && fileHeaderEncoding(head[4:6]) != EncodingAuto:
			r.framing = FramingLengthPrefixed
		default:
			return ErrNotX9
		}
	}

	if r.encoding == EncodingAuto {
		typeBytes := head[0:2]
		if r.framing == FramingLengthPrefixed {
			if len(head) < 6 {
				return ErrNotX9
			}
			typeBytes = head[4:6]
		}
		r.encoding = fileHeaderEncoding(typeBytes)
		if r.encoding == EncodingAuto {
			return ErrNotX9
		}
	}

	if r.encoding == EncodingEBCDIC {
		r.decoder = charmap.CodePage037.NewDecoder()
	}
	return nil
}

// fileHeaderEncoding recognises the "01" type code in either character set.
func fileHeaderEncoding(b []byte) Encoding {
	switch {
	case b[0] == '0' && b[1] == '1':
		return EncodingASCII
	case b[0] == 0xF0 && b[1] == 0xF1:
		return EncodingEBCDIC
	default:
		return EncodingAuto
	}
}

// next returns the raw bytes of the next record.
func (r *Reader) next() ([]byte, error) {
	if r.framing == FramingLengthPrefixed {
		return r.nextPrefixed()
	}
	return r.nextLine()
}

func (r *Reader) nextPrefixed() ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r.br, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &RecordError{Record: r.record + 1, Reason: "truncated record length prefix"}
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 || length > maxRecordLength {
		return nil, &RecordError{Record: r.record + 1, Reason: fmt.Sprintf("invalid record length %d", length)}
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(r.br, raw); err != nil {
		return nil, &RecordError{Record: r.record + 1, Reason: fmt.Sprintf("record truncated, expected %d bytes", length)}
	}

	r.record++
	return raw, nil
}

func (r *Reader) nextLine() ([]byte, error) {
	for {
		line, err := r.br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read record %d: %w", r.record+1, err)
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 {
			r.record++
			return line, nil
		}
		if err == io.EOF {
			return nil, io.EOF
		}
	}
}

// text decodes record bytes into a string.
func (r *Reader) text(b []byte) (string, error) {
	if r.decoder == nil {
		return string(b), nil
	}
	decoded, err := r.decoder.Bytes(b)
	if err != nil {
		return "", &RecordError{Record: r.record, Reason: fmt.Sprintf("decode EBCDIC: %v", err)}
	}
	return string(decoded), nil
}

// =============================================================================
// RECORD DISPATCH
// =============================================================================

// handle places one record into the document. It reports true once the file
// control record has been read.
func (r *Reader) handle(raw []byte) (bool, error) {
	if len(raw) < 2 {
		return false, &RecordError{Record: r.record, Reason: "record shorter than its type code"}
	}
	recordType, err := r.text(raw[:2])
	if err != nil {
		return false, err
	}

	if r.doc.FileHeader == nil && recordType != typeFileHeader {
		return false, r.fail(recordType, "record appears before the file header")
	}

	if recordType == typeImageViewData {
		return false, r.imageViewData(raw)
	}

	if _, skip := skippedTypes[recordType]; skip {
		r.skipped[recordType]++
		return false, nil
	}

	if len(raw) < fixedRecordLength {
		return false, r.fail(recordType, fmt.Sprintf("record is %d bytes, expected %d", len(raw), fixedRecordLength))
	}

	decoded, err := r.text(raw[:fixedRecordLength])
	if err != nil {
		return false, err
	}
	f := fields(decoded)

	switch recordType {
	case typeFileHeader:
		if r.doc.FileHeader != nil {
			return false, r.fail(recordType, "duplicate file header")
		}
		r.doc.FileHeader = parseFileHeader(f)

	case typeCashLetterHeader:
		if r.doc.CashLetter != nil {
			return false, r.fail(recordType, "more than one cash letter in file")
		}
		r.doc.CashLetter = &x9.CashLetter{Header: parseCashLetterHeader(f)}

	case typeBundleHeader:
		if r.doc.CashLetter == nil || r.doc.CashLetter.Control != nil {
			return false, r.fail(recordType, "bundle header outside a cash letter")
		}
		if r.bundle != nil {
			r.logger.Debug().Int("record", r.record).Str("bundle", r.bundle.ID()).Msg("bundle closed without a control record")
		}
		r.bundle = &x9.Bundle{Header: parseBundleHeader(f)}
		r.doc.CashLetter.Bundles = append(r.doc.CashLetter.Bundles, r.bundle)
		r.views, r.view = nil, nil

	case typeCheckDetail:
		if r.bundle == nil {
			return false, r.fail(recordType, "check detail outside a bundle")
		}
		item := &x9.CheckItem{Detail: parseCheckDetail(f)}
		r.bundle.CheckItems = append(r.bundle.CheckItems, item)
		r.views, r.view = &item.ImageViews, nil

	case typeCredit:
		if r.bundle == nil {
			return false, r.fail(recordType, "credit record outside a bundle")
		}
		if r.bundle.Credit != nil {
			return false, r.fail(recordType, "more than one credit record in bundle")
		}
		r.bundle.Credit = parseCredit(f)
		r.views, r.view = &r.bundle.Credit.ImageViews, nil

	case typeImageViewDetail:
		if r.views == nil {
			return false, r.fail(recordType, "image view detail without a check or credit")
		}
		r.view = parseImageViewDetail(f)
		*r.views = append(*r.views, r.view)

	case typeBundleControl:
		if r.bundle == nil {
			return false, r.fail(recordType, "bundle control without a bundle header")
		}
		r.bundle.Control = parseBundleControl(f)
		r.bundle, r.views, r.view = nil, nil, nil

	case typeCashLetterControl:
		if r.doc.CashLetter == nil {
			return false, r.fail(recordType, "cash letter control without a cash letter header")
		}
		r.doc.CashLetter.Control = parseCashLetterControl(f)
		r.bundle, r.views, r.view = nil, nil, nil

	case typeFileControl:
		r.doc.FileControl = parseFileControl(f)
		return true, nil

	default:
		return false, r.fail(recordType, "unsupported record type")
	}

	return false, nil
}

// imageViewData attaches a type 52 record to the preceding image view detail.
func (r *Reader) imageViewData(raw []byte) error {
	if r.view == nil {
		return r.fail(typeImageViewData, "image view data without an image view detail")
	}
	if r.view.Data != nil {
		return r.fail(typeImageViewData, "image view already has data")
	}
	if len(raw) < imageDataFixedLength {
		return r.fail(typeImageViewData, fmt.Sprintf("record is %d bytes, expected at least %d", len(raw), imageDataFixedLength))
	}

	fixed, err := r.text(raw[:imageDataFixedLength])
	if err != nil {
		return err
	}

	pos := imageDataFixedLength
	keyLen, ok := lengthField(fields(fixed).at(102, 4))
	if !ok || pos+keyLen > len(raw) {
		return r.fail(typeImageViewData, "invalid image reference key length")
	}
	key, err := r.text(raw[pos : pos+keyLen])
	if err != nil {
		return err
	}
	pos += keyLen

	sigLen, err := r.sizeAt(raw, pos, 5, "digital signature")
	if err != nil {
		return err
	}
	pos += 5 + sigLen

	dataLen, err := r.sizeAt(raw, pos, 7, "image data")
	if err != nil {
		return err
	}
	pos += 7

	r.view.ImageReferenceKey = key
	r.view.Data = raw[pos : pos+dataLen]
	return nil
}

// sizeAt reads a width-character length field at pos and checks that the
// sized payload that follows fits in the record.
func (r *Reader) sizeAt(raw []byte, pos, width int, what string) (int, error) {
	if pos+width > len(raw) {
		return 0, r.fail(typeImageViewData, fmt.Sprintf("record ends before the %s length", what))
	}
	s, err := r.text(raw[pos : pos+width])
	if err != nil {
		return 0, err
	}
	n, ok := lengthField(s)
	if !ok || pos+width+n > len(raw) {
		return 0, r.fail(typeImageViewData, fmt.Sprintf("invalid %s length %q", what, s))
	}
	return n, nil
}

func (r *Reader) fail(recordType, reason string) error {
	return &RecordError{Record: r.record, Type: recordType, Reason: reason}
}
