package license

import (
	"fmt"
	"strconv"
)

// Alphabet is the 32-symbol code alphabet. It excludes the visually
// ambiguous 0/O and 1/I so codes stay human-typeable; 32 symbols means
// each code character carries exactly 5 bits of the hash.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLen = 4

// SecretContext is the shared symmetric secret of the key scheme.
// Both values are part of the external contract: previously issued keys
// only verify against the context they were derived with.
type SecretContext struct {
	SchoolCode string
	SecretKey  string
}

// Keygen derives license keys for a fixed secret context. The zero value
// is not usable; construct with NewKeygen. Keygen is stateless and safe
// for concurrent use.
type Keygen struct {
	ctx SecretContext
}

func NewKeygen(ctx SecretContext) Keygen {
	return Keygen{ctx: ctx}
}

// DeriveCode computes the 4-character verification code for the given
// year and month-day decimal strings.
//
// The concatenation schoolCode+year+monthDay+secret is hashed as its
// UTF-8 bytes with a x31 polynomial rolling hash in a wrapping 32-bit
// accumulator. Output position i takes hash bits [i*5, i*5+5) as an
// index into Alphabet; bits above 19 are unused, so distinct dates may
// collide. That is accepted: the code is an obfuscation checksum, not a
// unique identifier.
func (kg Keygen) DeriveCode(year, monthDay string) string {
	input := kg.ctx.SchoolCode + year + monthDay + kg.ctx.SecretKey

	var hash uint32
	for _, b := range []byte(input) {
		hash = hash*31 + uint32(b)
	}

	code := make([]byte, codeLen)
	for i := range code {
		code[i] = Alphabet[(hash>>(i*5))&0x1F]
	}
	return string(code)
}

// GenerateKey formats the full license key for a validated expiry date:
// SCHOOL-YEAR-MMDD-CODE. Deterministic: the same date always yields the
// same key for a fixed secret context.
func (kg Keygen) GenerateKey(date ExpiryDate) string {
	monthDay := date.MonthDay()
	code := kg.DeriveCode(strconv.Itoa(date.Year), monthDay)
	return fmt.Sprintf("%s-%d-%s-%s", kg.ctx.SchoolCode, date.Year, monthDay, code)
}
