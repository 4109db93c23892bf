// =============================================================================
// EDI 850 Converter - Validation Engine
// =============================================================================
//
// This module checks a parsed purchase order for conditions that do not stop
// the pipeline but are worth reporting:
//   - Missing header fields (PO number, buyer, seller)
//   - Documents without line items
//   - Line items read before any seller was known
//   - Line items dropped by the normalizer
//   - Duplicate line numbers
//   - Zero total spend
//
// VALIDATION STRATEGY:
//   Validation runs at two levels:
//   1. Document-level: header fields and overall totals
//   2. Line-level: each raw line item and each normalizer drop
//
// ERROR HANDLING:
//   - Findings are collected, not returned as the first error
//   - Each finding records the line it concerns, if any
//   - Findings are warnings unless TreatWarningsAsErrors is set
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/EDI850-converter/internal/normalize"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleMissingPONumber = "missing_po_number"
	RuleMissingBuyer    = "missing_buyer"
	RuleMissingSeller   = "missing_seller"
	RuleNoLineItems     = "no_line_items"
	RuleLineNoSeller    = "line_without_seller"
	RuleLineDropped     = "line_dropped"
	RuleDuplicateLine   = "duplicate_line_number"
	RuleZeroTotal       = "zero_total_spend"
)

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity indicates the severity of the finding.
	// "error" = the document should not be exported
	// "warning" = non-fatal, processing can continue
	Severity string

	// Field is the name of the field the finding concerns.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable message.
	Message string

	// LineNumber is the PO1 line number, empty for document-level findings.
	LineNumber string

	// ItemIndex is the position of the line item in the document, or -1.
	ItemIndex int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.ItemIndex < 0 {
		return fmt.Sprintf("[%s] Document, Field '%s': %s",
			strings.ToUpper(e.Severity),
			e.Field,
			e.Message,
		)
	}
	return fmt.Sprintf("[%s] LineItem %d (line '%s'), Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.ItemIndex+1,
		e.LineNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// LinesValidated is the number of raw line items checked.
	LinesValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors turns every warning into an error.
	// Default: false
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// Validator performs validation on parsed documents.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a new Validator with default options.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateDocument validates doc with default options.
func ValidateDocument(doc types.Document, lines []types.NormalizedLine, drops []*normalize.DropError) *ValidationResult {
	return NewValidator().Validate(doc, lines, drops)
}

// Validate runs every document and line check.
//
// PARAMETERS:
//   - doc: The document returned by the builder.
//   - lines: The lines that normalized.
//   - drops: The lines that did not.
func (v *Validator) Validate(doc types.Document, lines []types.NormalizedLine, drops []*normalize.DropError) *ValidationResult {
	result := &ValidationResult{
		IsValid:        true,
		Errors:         make([]*ValidationError, 0),
		LinesValidated: len(doc.Items),
	}

	findings := v.validateHeader(doc)
	findings = append(findings, v.validateItems(doc.Items)...)
	findings = append(findings, v.validateDrops(drops)...)
	findings = append(findings, v.validateTotals(lines)...)

	for _, f := range findings {
		if v.options.TreatWarningsAsErrors && f.Severity == SeverityWarning {
			f.Severity = SeverityError
		}
		result.Errors = append(result.Errors, f)

		if f.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
		} else {
			result.WarningCount++
		}
	}

	return result
}

// =============================================================================
// DOCUMENT-LEVEL CHECKS
// =============================================================================

func (v *Validator) validateHeader(doc types.Document) []*ValidationError {
	var errors []*ValidationError

	if !doc.HasPONumber() {
		errors = append(errors, documentWarning("PO_Number", RuleMissingPONumber, "No BEG segment set the PO number"))
	}
	if !doc.HasBuyer() {
		errors = append(errors, documentWarning("Buyer", RuleMissingBuyer, "No N1*BY segment set the buyer"))
	}
	if !doc.HasSeller() {
		errors = append(errors, documentWarning("Seller", RuleMissingSeller, "No N1*ST segment set the seller"))
	}
	if len(doc.Items) == 0 {
		errors = append(errors, documentWarning("Items", RuleNoLineItems, "Document contains no PO1 line items"))
	}

	return errors
}

func (v *Validator) validateTotals(lines []types.NormalizedLine) []*ValidationError {
	if len(lines) == 0 || types.TotalAmount(lines) != 0 {
		return nil
	}
	return []*ValidationError{
		documentWarning("LineTotal", RuleZeroTotal, "Total spend is zero; seller percentages are reported as 0"),
	}
}

// =============================================================================
// LINE-LEVEL CHECKS
// =============================================================================

func (v *Validator) validateItems(items []types.LineItem) []*ValidationError {
	var errors []*ValidationError
	seen := make(map[string]int, len(items))

	for i, item := range items {
		if item.Seller == "" {
			errors = append(errors, &ValidationError{
				Severity:   SeverityWarning,
				Field:      "Seller",
				Rule:       RuleLineNoSeller,
				Message:    "Line item appears before any N1*ST segment",
				LineNumber: item.LineNumber,
				ItemIndex:  i,
			})
		}

		if item.LineNumber == "" {
			continue
		}
		if first, dup := seen[item.LineNumber]; dup {
			errors = append(errors, &ValidationError{
				Severity:   SeverityWarning,
				Field:      "Line",
				Value:      item.LineNumber,
				Rule:       RuleDuplicateLine,
				Message:    fmt.Sprintf("Line number already used by line item %d", first+1),
				LineNumber: item.LineNumber,
				ItemIndex:  i,
			})
			continue
		}
		seen[item.LineNumber] = i
	}

	return errors
}

func (v *Validator) validateDrops(drops []*normalize.DropError) []*ValidationError {
	errors := make([]*ValidationError, 0, len(drops))

	for _, d := range drops {
		field, value := "Qty", d.Item.Qty
		switch d.Reason {
		case normalize.ReasonEmptyPrice, normalize.ReasonInvalidPrice:
			field, value = "Price", d.Item.Price
		case normalize.ReasonOverflow:
			field, value = "LineTotal", d.Item.Qty+" * "+d.Item.Price
		}
		errors = append(errors, &ValidationError{
			Severity:   SeverityWarning,
			Field:      field,
			Value:      value,
			Rule:       RuleLineDropped,
			Message:    fmt.Sprintf("Line item dropped (%s)", d.Reason),
			LineNumber: d.Item.LineNumber,
			ItemIndex:  d.Index,
		})
	}

	return errors
}

func documentWarning(field, rule, message string) *ValidationError {
	return &ValidationError{
		Severity:  SeverityWarning,
		Field:     field,
		Rule:      rule,
		Message:   message,
		ItemIndex: -1,
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to filePath with a timestamped
// header naming the source document.
func WriteErrorLog(errors []*ValidationError, source, filePath string) error {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Source: %s\n", source))
	builder.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC3339)))
	builder.WriteString(FormatErrors(errors))

	if err := os.WriteFile(filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
