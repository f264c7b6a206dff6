package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced catalog row or order does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is a caller-recoverable input problem, always raised before
// anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func validationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Reason distinguishes why a line could not be added to a cart.
type Reason string

const (
	ReasonUnavailable        Reason = "unavailable"
	ReasonOutOfStock         Reason = "out_of_stock"
	ReasonIngredientShortage Reason = "ingredient_shortage"
)

// AvailabilityError rejects a cart line at build time. ProductID/Name refer to
// the product that is short: the sold product itself for unavailable and
// out_of_stock, the ingredient or modifier-linked product otherwise.
type AvailabilityError struct {
	Reason    Reason
	ProductID uuid.UUID
	Name      string
	Available int
	Required  int
}

func (e *AvailabilityError) Error() string {
	switch e.Reason {
	case ReasonUnavailable:
		return fmt.Sprintf("%s is currently unavailable", e.Name)
	case ReasonOutOfStock:
		return fmt.Sprintf("%s is out of stock", e.Name)
	default:
		return fmt.Sprintf("not enough %s: %d available, %d required", e.Name, e.Available, e.Required)
	}
}

func IsAvailability(err error) bool {
	var a *AvailabilityError
	return errors.As(err, &a)
}

// AvailabilityReason returns the sub-reason of an availability error, or ""
// when err is not one.
func AvailabilityReason(err error) Reason {
	var a *AvailabilityError
	if errors.As(err, &a) {
		return a.Reason
	}
	return ""
}

// CommitError reports that an order was not completed. Nothing from the
// attempt was persisted.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string { return "order not completed: " + e.Err.Error() }

func (e *CommitError) Unwrap() error { return e.Err }

func IsCommit(err error) bool {
	var c *CommitError
	return errors.As(err, &c)
}

// CatalogIntegrityError is raised when the bill of materials contains a cycle.
// Path lists the product names along the offending cycle.
type CatalogIntegrityError struct {
	ProductID uuid.UUID
	Path      []string
}

func (e *CatalogIntegrityError) Error() string {
	return "ingredient cycle: " + strings.Join(e.Path, " -> ")
}

func IsCatalogIntegrity(err error) bool {
	var c *CatalogIntegrityError
	return errors.As(err, &c)
}

// DataFormatWarning is a non-fatal problem found while reconstructing usage
// from stored orders. Reports collect these instead of failing.
type DataFormatWarning struct {
	OrderID uuid.UUID `json:"order_id"`
	LineID  uuid.UUID `json:"line_id"`
	Raw     string    `json:"raw"`
	Reason  string    `json:"reason"`
}

func (w DataFormatWarning) String() string {
	return fmt.Sprintf("order %s line %s: %s", w.OrderID, w.LineID, w.Reason)
}
