// Package installment expands a purchase paid in monthly parts into one
// expense per part.
package installment

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/model"
)

// MaxCount is the largest number of installments a plan may have.
const MaxCount = 360

// Plan describes an expense split into Count monthly installments of Amount
// each, the first one due on FirstDue.
type Plan struct {
	FirstDue    time.Time
	Description string
	Category    string
	Amount      float64
	Count       int
}

// Validate checks the plan without expanding it.
func (p Plan) Validate() error {
	if p.Count <= 1 {
		return common.NewValidationError("count", "installments must be more than one")
	}
	if p.Count > MaxCount {
		return common.NewValidationError("count", fmt.Sprintf("installments must be at most %d", MaxCount))
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount <= 0 {
		return common.NewValidationError("amount", "must be a positive number")
	}
	if strings.TrimSpace(p.Description) == "" {
		return common.NewValidationError("description", "must not be empty")
	}
	if strings.TrimSpace(p.Category) == "" {
		return common.NewConstraintError("category", "expenses require a category")
	}
	if p.FirstDue.IsZero() {
		return common.NewValidationError("first_due", "must be set")
	}
	return nil
}

// Total is the sum of every installment.
func (p Plan) Total() float64 {
	return p.Amount * float64(p.Count)
}

// Expand returns one expense request per installment, in due order.
func Expand(p Plan) ([]model.NewTransaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	txns := make([]model.NewTransaction, p.Count)
	for i := range txns {
		txns[i] = model.NewTransaction{
			Kind:        model.KindExpense,
			Description: Label(p.Description, i+1, p.Count),
			Amount:      p.Amount,
			Category:    p.Category,
			RecordedAt:  DueDate(p.FirstDue, i),
		}
	}
	return txns, nil
}

// Label formats the description of installment n of count.
func Label(description string, n, count int) string {
	return fmt.Sprintf("%s (Parcela %d/%d)", description, n, count)
}

// DueDate returns the date offset months after first. The day of month is
// clamped to the last day of the target month, so Jan 31 becomes Feb 29 in a
// leap year and Mar 31 the month after.
func DueDate(first time.Time, offset int) time.Time {
	month0 := int(first.Month()) - 1 + offset
	year := first.Year() + month0/12
	month := time.Month(month0%12 + 1)

	day := first.Day()
	if last := daysIn(year, month, first.Location()); day > last {
		day = last
	}

	return time.Date(year, month, day,
		first.Hour(), first.Minute(), first.Second(), first.Nanosecond(), first.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
