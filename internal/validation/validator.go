// =============================================================================
// X9 Check Image Validator - Reconciliation Engine
// =============================================================================
//
// This module reconciles the control records of an X9 document against the
// records they summarise. Every level declares its own totals:
//
//   - Bundle control (type 70): item count and total amount
//   - Cash letter control (type 90): item count, image view count and amount
//   - File control (type 99): item count and amount
//
// VALIDATION STRATEGY:
//   The walk is bottom-up and does not touch the document:
//   1. Bundle level: count items and image views, sum item amounts, compare
//      with the bundle control, flag a missing credit record.
//   2. Cash letter level: sum the bundle actuals and compare with the cash
//      letter control.
//   3. File level: compare the same totals with the file control.
//   Each level is a pure function that returns its own result value; the
//   levels are composed by Validate.
//
// ERROR HANDLING:
//   - Mismatches are collected as findings and never stop the walk, so one
//     pass reports every discrepancy.
//   - A field that cannot be converted, or a missing required record, stops
//     the walk with a *MalformedFileError and no result.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/x9-check-image-validator/internal/convert"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator reconciles documents. The zero value is not usable; use
// NewValidator.
type Validator struct {
	logger zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for per-level debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// NewValidator creates a Validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reconciles doc with a default Validator.
func Validate(doc *x9.Document) (*ValidationResult, error) {
	return NewValidator().Validate(doc)
}

// Validate reconciles doc and returns the findings.
//
// PARAMETERS:
//   - doc: A parsed document. It is only read.
//
// RETURNS:
//   - The validation result, or a *MalformedFileError if the document could
//     not be reconciled.
func (v *Validator) Validate(doc *x9.Document) (*ValidationResult, error) {
	if errs := checkStructure(doc); len(errs) > 0 {
		return nil, malformed(errs...)
	}

	bundles := make([]bundleResult, 0, len(doc.CashLetter.Bundles))
	var findings []Finding

	for i, b := range doc.CashLetter.Bundles {
		res, err := checkBundle(b, i)
		if err != nil {
			return nil, malformed(err)
		}

		v.logger.Debug().
			Str("bundle", res.id).
			Int("items", res.items).
			Int("images", res.images).
			Str("amount", convert.FormatAmount(res.amount)).
			Bool("credit", res.hasCredit).
			Int("findings", len(res.findings)).
			Msg("bundle reconciled")

		bundles = append(bundles, res)
		findings = append(findings, res.findings...)
	}

	cashLetter, err := checkCashLetter(doc.CashLetter.Control, bundles)
	if err != nil {
		return nil, malformed(err)
	}
	findings = append(findings, cashLetter.findings...)

	fileFindings, err := checkFile(doc.FileControl, cashLetter)
	if err != nil {
		return nil, malformed(err)
	}
	findings = append(findings, fileFindings...)

	result := newResult(findings)

	v.logger.Debug().
		Int("bundles", len(bundles)).
		Int("items", cashLetter.items).
		Int("images", cashLetter.images).
		Str("amount", convert.FormatAmount(cashLetter.amount)).
		Bool("status", result.Status).
		Int("hard", result.Count(SeverityHard)).
		Int("soft", result.Count(SeveritySoft)).
		Msg("document reconciled")

	return result, nil
}

// =============================================================================
// STRUCTURE
// =============================================================================

// checkStructure collects every missing record the walk depends on.
func checkStructure(doc *x9.Document) []error {
	if doc == nil {
		return []error{errors.New("no document")}
	}

	var errs []error
	missing := func(where, what string) {
		errs = append(errs, fmt.Errorf("%s: %w: %s", where, ErrMissingRecord, what))
	}

	if doc.CashLetter == nil {
		missing("file", "cash letter header (type 10)")
	} else {
		for i, b := range doc.CashLetter.Bundles {
			if b == nil || b.Header == nil {
				missing(fmt.Sprintf("bundle %d", i+1), "bundle header (type 20)")
				continue
			}
			where := "bundle " + bundleID(b, i)
			if b.Control == nil {
				missing(where, "bundle control (type 70)")
			}
			for j, item := range b.CheckItems {
				if item == nil || item.Detail == nil {
					missing(fmt.Sprintf("%s item %d", where, j+1), "check detail (type 25)")
				}
			}
		}
		if doc.CashLetter.Control == nil {
			missing("cash letter", "cash letter control (type 90)")
		}
	}

	if doc.FileControl == nil {
		missing("file", "file control (type 99)")
	}
	return errs
}

// bundleID names a bundle in messages, falling back to its position when
// the header carries no identifier.
func bundleID(b *x9.Bundle, index int) string {
	if id := b.ID(); id != "" {
		return id
	}
	return strconv.Itoa(index + 1)
}

// =============================================================================
// BUNDLE LEVEL
// =============================================================================

// bundleResult holds the recomputed totals of one bundle and its findings.
type bundleResult struct {
	id        string
	items     int
	images    int
	amount    decimal.Decimal
	hasCredit bool
	findings  []Finding
}

func checkBundle(b *x9.Bundle, index int) (bundleResult, error) {
	res := bundleResult{
		id:        bundleID(b, index),
		items:     len(b.CheckItems),
		amount:    decimal.Zero,
		hasCredit: b.HasCredit(),
	}

	for i, item := range b.CheckItems {
		res.images += len(item.ImageViews)

		amount, err := convert.ParseAmount(item.Detail.ItemAmount)
		if err != nil {
			return bundleResult{}, fmt.Errorf("bundle %s item %d amount: %w", res.id, i+1, err)
		}
		res.amount = res.amount.Add(amount)
	}

	declaredItems, err := convert.ParseInt(b.Control.ItemCount)
	if err != nil {
		return bundleResult{}, fmt.Errorf("bundle %s control item count: %w", res.id, err)
	}
	declaredAmount, err := convert.ParseAmount(b.Control.TotalAmount)
	if err != nil {
		return bundleResult{}, fmt.Errorf("bundle %s control total amount: %w", res.id, err)
	}

	hard := func(format string, args ...any) {
		res.findings = append(res.findings, Finding{
			Scope:    ScopeBundle,
			BundleID: res.id,
			Severity: SeverityHard,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if res.items != declaredItems {
		hard("Bundle control record for bundle %s is incorrect. The bundle contains %d check items, but record says there should be %d items.",
			res.id, res.items, declaredItems)
	}
	if !res.amount.Equal(declaredAmount) {
		hard("Bundle control record for bundle %s is incorrect. The bundle contains items with a total value of %s, but record says the total amount should be %s.",
			res.id, money(res.amount), money(declaredAmount))
	}
	if !res.hasCredit {
		res.findings = append(res.findings, Finding{
			Scope:    ScopeBundle,
			BundleID: res.id,
			Severity: SeveritySoft,
			Message:  fmt.Sprintf("Bundle control record for bundle %s is possibly incorrect. The bundle is missing a Credit Record.", res.id),
		})
	}

	return res, nil
}

// =============================================================================
// CASH LETTER LEVEL
// =============================================================================

// cashLetterResult holds the totals across all bundles.
type cashLetterResult struct {
	items    int
	images   int
	amount   decimal.Decimal
	findings []Finding
}

func checkCashLetter(ctrl *x9.CashLetterControl, bundles []bundleResult) (cashLetterResult, error) {
	res := cashLetterResult{amount: decimal.Zero}
	for _, b := range bundles {
		res.items += b.items
		res.images += b.images
		res.amount = res.amount.Add(b.amount)
	}

	declaredItems, err := convert.ParseInt(ctrl.ItemCount)
	if err != nil {
		return cashLetterResult{}, fmt.Errorf("cash letter control item count: %w", err)
	}
	declaredImages, err := convert.ParseInt(ctrl.ImageViewCount)
	if err != nil {
		return cashLetterResult{}, fmt.Errorf("cash letter control image view count: %w", err)
	}
	declaredAmount, err := convert.ParseAmount(ctrl.TotalAmount)
	if err != nil {
		return cashLetterResult{}, fmt.Errorf("cash letter control total amount: %w", err)
	}

	add := func(severity Severity, format string, args ...any) {
		res.findings = append(res.findings, Finding{
			Scope:    ScopeCashLetter,
			Severity: severity,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if res.items != declaredItems {
		add(SeverityHard, "Cash letter control record is incorrect. The cash letter contains %d check items, but record says there should be %d items.",
			res.items, declaredItems)
	}
	if res.images != declaredImages {
		if hasUniformCreditRecords(bundles) {
			add(SeveritySoft, "Cash letter control record is possibly incorrect due to existence of Credit Records. The cash letter contains %d image views, but record says there should be %d image views.",
				res.images, declaredImages)
		} else {
			add(SeverityHard, "Cash letter control record is incorrect. The cash letter contains %d image views, but record says there should be %d image views.",
				res.images, declaredImages)
		}
	}
	if !res.amount.Equal(declaredAmount) {
		add(SeverityHard, "Cash letter control record is incorrect. The cash letter contains items with a total value of %s, but record says the total amount should be %s.",
			money(res.amount), money(declaredAmount))
	}

	return res, nil
}

// hasUniformCreditRecords reports whether every bundle carries a credit
// amount. A cash letter without bundles has none.
func hasUniformCreditRecords(bundles []bundleResult) bool {
	if len(bundles) == 0 {
		return false
	}
	for _, b := range bundles {
		if !b.hasCredit {
			return false
		}
	}
	return true
}

// =============================================================================
// FILE LEVEL
// =============================================================================

func checkFile(ctrl *x9.FileControl, cashLetter cashLetterResult) ([]Finding, error) {
	declaredItems, err := convert.ParseInt(ctrl.TotalItemCount)
	if err != nil {
		return nil, fmt.Errorf("file control total item count: %w", err)
	}
	declaredAmount, err := convert.ParseAmount(ctrl.FileTotalAmount)
	if err != nil {
		return nil, fmt.Errorf("file control total amount: %w", err)
	}

	var findings []Finding
	if cashLetter.items != declaredItems {
		findings = append(findings, Finding{
			Scope:    ScopeFile,
			Severity: SeverityHard,
			Message: fmt.Sprintf("File control record is incorrect. The file contains %d check items, but record says there should be %d items.",
				cashLetter.items, declaredItems),
		})
	}
	if !cashLetter.amount.Equal(declaredAmount) {
		findings = append(findings, Finding{
			Scope:    ScopeFile,
			Severity: SeverityHard,
			Message: fmt.Sprintf("File control record is incorrect. The file contains items with a total value of %s, but record says the total amount should be %s.",
				money(cashLetter.amount), money(declaredAmount)),
		})
	}
	return findings, nil
}

// money renders an amount the way messages show it: currency symbol and
// exactly two fractional digits, no grouping.
func money(d decimal.Decimal) string {
	return convert.CurrencySymbol + convert.FormatAmount(d)
}
