package license

import (
	"testing"
	"time"
)

func TestVerifyKey(t *testing.T) {
	kg := NewKeygen(testCtx)

	nowFunc = func() time.Time { return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	validKey := kg.GenerateKey(mustDate(t, 2027, 1, 15))
	expiredKey := kg.GenerateKey(mustDate(t, 2025, 12, 24))

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "valid key", key: validKey},
		{name: "generated and verified on expiry day", key: kg.GenerateKey(mustDate(t, 2026, 6, 1))},
		{name: "expired key", key: expiredKey, wantErr: ErrKeyExpired},
		{name: "empty", key: "", wantErr: ErrMalformedKey},
		{name: "not a key", key: "lmaooolol", wantErr: ErrMalformedKey},
		{name: "wrong school code", key: "XXXX-2027-0115-4QTM", wantErr: ErrMalformedKey},
		{name: "missing segment", key: "KBOA-2027-0115", wantErr: ErrMalformedKey},
		{name: "non-numeric year", key: "KBOA-20X7-0115-4QTM", wantErr: ErrMalformedKey},
		{name: "short month-day", key: "KBOA-2027-115-4QTM", wantErr: ErrMalformedKey},
		{name: "embedded year out of range", key: "KBOA-2023-0115-4QTM", wantErr: ErrMalformedKey},
		{name: "embedded month out of range", key: "KBOA-2027-1315-4QTM", wantErr: ErrMalformedKey},
		{name: "code too short", key: "KBOA-2027-0115-4QT", wantErr: ErrMalformedKey},
		{name: "code outside alphabet", key: "KBOA-2027-0115-4QT0", wantErr: ErrMalformedKey},
		{name: "tampered code", key: "KBOA-2027-0115-MMMM", wantErr: ErrCodeMismatch},
		{name: "tampered date", key: "KBOA-2027-0116-4QTM", wantErr: ErrCodeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := kg.VerifyKey(tt.key); err != tt.wantErr {
				t.Errorf("VerifyKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyKeyRoundTrip(t *testing.T) {
	kg := NewKeygen(testCtx)

	nowFunc = func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	for year := MinYear; year <= MaxYear; year += 11 {
		for month := 1; month <= 12; month += 5 {
			date := mustDate(t, year, month, 17)
			key := kg.GenerateKey(date)
			got, err := kg.VerifyKey(key)
			if err != nil {
				t.Fatalf("VerifyKey(%q): %v", key, err)
			}
			if got != date {
				t.Fatalf("VerifyKey(%q) date = %v, want %v", key, got, date)
			}
		}
	}
}

func TestVerifyKeyExpiredReturnsDate(t *testing.T) {
	kg := NewKeygen(testCtx)

	nowFunc = func() time.Time { return time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	date := mustDate(t, 2025, 12, 24)
	got, err := kg.VerifyKey(kg.GenerateKey(date))
	if err != ErrKeyExpired {
		t.Fatalf("VerifyKey() error = %v, want %v", err, ErrKeyExpired)
	}
	if got != date {
		t.Errorf("VerifyKey() date = %v, want %v", got, date)
	}
}
