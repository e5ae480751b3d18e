package license

import (
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrMalformedKey = errors.New("malformed license key")
	ErrCodeMismatch = errors.New("license key failed verification")
	ErrKeyExpired   = errors.New("license key expired")
)

// ParseKey splits a presented key into its expiry date and verification
// code segments without checking the code. The school code segment must
// match the configured context.
func (kg Keygen) ParseKey(key string) (ExpiryDate, string, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	school, yearStr, monthDay, code := parts[0], parts[1], parts[2], parts[3]

	if school != kg.ctx.SchoolCode {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || len(yearStr) != 4 {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	if len(monthDay) != 4 {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	month, err := strconv.Atoi(monthDay[:2])
	if err != nil {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	day, err := strconv.Atoi(monthDay[2:])
	if err != nil {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	if len(code) != codeLen {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return ExpiryDate{}, "", ErrMalformedKey
		}
	}

	date, err := NewExpiryDate(year, month, day)
	if err != nil {
		return ExpiryDate{}, "", ErrMalformedKey
	}
	return date, code, nil
}

// VerifyKey re-derives the verification code for the date embedded in the
// presented key, compares it to the embedded code and checks expiry.
// Returns the embedded expiry date on success.
func (kg Keygen) VerifyKey(key string) (ExpiryDate, error) {
	date, code, err := kg.ParseKey(key)
	if err != nil {
		return ExpiryDate{}, err
	}

	// check that the code has not been tampered with
	expected := kg.DeriveCode(strconv.Itoa(date.Year), date.MonthDay())
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 0 {
		return ExpiryDate{}, ErrCodeMismatch
	}

	if !nowFunc().Before(date.Time()) {
		return date, ErrKeyExpired
	}
	return date, nil
}
