package license

import (
	"errors"
	"fmt"
	"time"

	"github.com/ogunkayacan/lisans/core"
)

// Expiry date bounds. The day is deliberately not checked against the
// month's real length: day=31 in February is accepted and produces a
// nominally impossible calendar date.
const (
	MinYear = 2024
	MaxYear = 2100
)

var (
	errYearOutOfRange  = fmt.Sprintf("must be between %d and %d", MinYear, MaxYear)
	errMonthOutOfRange = "must be between 1 and 12"
	errDayOutOfRange   = "must be between 1 and 31"

	ErrInvalidDateComponent = errors.New("invalid expiry date")
)

// ExpiryDate is a validated license expiry date. Immutable once constructed.
type ExpiryDate struct {
	Year  int
	Month int
	Day   int
}

// NewExpiryDate validates the date component ranges and rejects any
// out-of-range value before it can reach key derivation.
func NewExpiryDate(year, month, day int) (ExpiryDate, error) {
	var flds []core.FieldError
	if year < MinYear || year > MaxYear {
		flds = append(flds, core.FieldError{Field: "year", Error: errYearOutOfRange})
	}
	if month < 1 || month > 12 {
		flds = append(flds, core.FieldError{Field: "month", Error: errMonthOutOfRange})
	}
	if day < 1 || day > 31 {
		flds = append(flds, core.FieldError{Field: "day", Error: errDayOutOfRange})
	}
	if flds != nil {
		return ExpiryDate{}, core.NewValidationError(ErrInvalidDateComponent, flds...)
	}
	return ExpiryDate{Year: year, Month: month, Day: day}, nil
}

// MonthDay returns the zero-padded 4-digit month-day string hashed into the key.
func (d ExpiryDate) MonthDay() string {
	return fmt.Sprintf("%02d%02d", d.Month, d.Day)
}

func (d ExpiryDate) String() string {
	return fmt.Sprintf("%02d/%02d/%d", d.Day, d.Month, d.Year)
}

// Time returns the end of the expiry day in UTC. Calendar-impossible dates
// are normalized by time.Date (e.g. Feb 31 rolls over into March).
func (d ExpiryDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 23, 59, 59, 0, time.UTC)
}

// License is an issued license key record.
type License struct {
	ID        string    `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Year      int       `json:"year" db:"year"`
	Month     int       `json:"month" db:"month"`
	Day       int       `json:"day" db:"day"`
	Note      string    `json:"note,omitempty" db:"note"`
	SendTo    string    `json:"send_to,omitempty" db:"send_to"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (l License) ExpiryDate() ExpiryDate {
	return ExpiryDate{Year: l.Year, Month: l.Month, Day: l.Day}
}

// IsActive reports whether the license has not expired yet.
func (l License) IsActive(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}
