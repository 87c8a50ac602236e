// Package filter applies the data-quality predicates that decide which raw
// retail_sales rows enter the analytical pipeline. It is a pure function
// over its input: rejected rows are counted by reason, never mutated or
// deleted in place.
package filter

import (
	"time"

	"github.com/go-playground/validator/v10"

	"retail-dashboard/internal/models"
)

type Reason string

const (
	ReasonMissingDate     Reason = "Missing date"
	ReasonFutureDate      Reason = "Future date"
	ReasonInvalidAge      Reason = "Invalid age"
	ReasonInvalidQuantity Reason = "Invalid quantity"
	ReasonInvalidPrice    Reason = "Invalid price"
	ReasonInvalidCOGS     Reason = "Invalid COGS"
)

// Reasons lists every rejection reason in report order.
var Reasons = []Reason{
	ReasonMissingDate,
	ReasonFutureDate,
	ReasonInvalidAge,
	ReasonInvalidQuantity,
	ReasonInvalidPrice,
	ReasonInvalidCOGS,
}

// Breakdown counts rejected records per reason. A record is counted once,
// under the first failing check.
type Breakdown map[Reason]int

func (b Breakdown) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

type Filter struct {
	validate *validator.Validate
	now      func() time.Time
}

func New() *Filter {
	return &Filter{
		validate: validator.New(),
		now:      time.Now,
	}
}

// Apply returns the valid subset of records plus a rejection breakdown.
// Applying it to an already-filtered set yields the same set.
func (f *Filter) Apply(records []models.RawTransaction) ([]models.Transaction, Breakdown) {
	valid := make([]models.Transaction, 0, len(records))
	rejected := make(Breakdown)

	for _, rec := range records {
		if reason, ok := f.reject(rec); ok {
			rejected[reason]++
			continue
		}
		valid = append(valid, models.Transaction{
			TransactionID: rec.TransactionID,
			SaleDate:      rec.SaleDate,
			SaleTime:      rec.SaleTime,
			CustomerID:    rec.CustomerID,
			Gender:        normalizeGender(rec.Gender),
			Age:           rec.Age,
			Category:      rec.Category,
			Quantity:      rec.Quantity,
			PricePerUnit:  rec.PricePerUnit,
			COGS:          rec.COGS,
		})
	}

	return valid, rejected
}

func (f *Filter) reject(rec models.RawTransaction) (Reason, bool) {
	if rec.SaleDate.IsZero() {
		return ReasonMissingDate, true
	}
	if rec.SaleDate.After(f.now()) {
		return ReasonFutureDate, true
	}

	// Struct tags cover the integer range checks; decimal fields need the
	// explicit positivity checks below.
	if err := f.validate.Struct(rec); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Age":
					return ReasonInvalidAge, true
				case "Quantity":
					return ReasonInvalidQuantity, true
				}
			}
		}
		return ReasonInvalidAge, true
	}

	if !rec.PricePerUnit.IsPositive() {
		return ReasonInvalidPrice, true
	}
	if !rec.COGS.IsPositive() {
		return ReasonInvalidCOGS, true
	}

	return "", false
}

func normalizeGender(g string) models.Gender {
	switch g {
	case string(models.GenderMale):
		return models.GenderMale
	case string(models.GenderFemale):
		return models.GenderFemale
	default:
		return models.GenderOther
	}
}
