package license

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ogunkayacan/lisans/core"
)

var (
	// errors
	ErrNotFound  = errors.New("license not found")
	ErrKeyExists = errors.New("a license with this key has already been issued")
)

type (
	Repository interface {
		CheckKeyUniqueness(ctx context.Context, key string) error
		CreateLicense(ctx context.Context, lic License) (License, error)
		QueryAllLicenses(ctx context.Context) ([]License, error)
		// FilterLicenses applies AND operation on available QueryFilter fields.
		FilterLicenses(ctx context.Context, filter QueryFilter) ([]License, error)
		GetLicenseByKey(ctx context.Context, key string) (License, error)
		DeleteLicensesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		keygen  Keygen
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(keygen Keygen, repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		keygen:  keygen,
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Keygen exposes the configured key generator for callers that only derive
// keys without persisting them.
func (svc *Service) Keygen() Keygen {
	return svc.keygen
}

// NewLicense contains information needed to issue a new License.
type NewLicense struct {
	Year   int    `json:"year" validate:"required,min=2024,max=2100"`
	Month  int    `json:"month" validate:"required,min=1,max=12"`
	Day    int    `json:"day" validate:"required,min=1,max=31"`
	Note   string `json:"note"`
	SendTo string `json:"send_to" validate:"omitempty,email"`
}

func (nl *NewLicense) Validate(validate *validator.Validate) error {
	nl.Note = core.CleanString(nl.Note)
	nl.SendTo = core.CleanString(nl.SendTo, true /* lower */)
	return validate.Struct(nl)
}

type QueryFilter struct {
	Year   int
	Active *bool
}

// Verification is the outcome of checking a presented license key.
type Verification struct {
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"`
	ExpiresOn string `json:"expires_on,omitempty"`
}

// Issue derives the key for the given expiry date, persists it and, when a
// recipient is set, emails it. Since derivation is deterministic, issuing
// the same date twice is rejected as a duplicate.
func (svc *Service) Issue(ctx context.Context, nl NewLicense) (License, error) {
	date, err := NewExpiryDate(nl.Year, nl.Month, nl.Day)
	if err != nil {
		return License{}, err
	}
	key := svc.keygen.GenerateKey(date)

	if err := svc.repo.CheckKeyUniqueness(ctx, key); err != nil {
		if err == ErrKeyExists {
			return License{}, core.NewValidationError(err, core.FieldError{Field: "key", Error: err.Error()})
		}
		return License{}, err
	}

	lic := License{
		ID:        uuid.New().String(),
		Key:       key,
		Year:      date.Year,
		Month:     date.Month,
		Day:       date.Day,
		Note:      nl.Note,
		SendTo:    nl.SendTo,
		ExpiresAt: date.Time(),
		CreatedAt: time.Now().UTC(),
	}
	lic, err = svc.repo.CreateLicense(ctx, lic)
	if err != nil {
		return License{}, err
	}

	if lic.SendTo != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Address: lic.SendTo}},
			Subject: "Your license key",
			Body: fmt.Sprintf(
				"Expiry date: %s\nLicense key: %s\n",
				date, lic.Key,
			),
		})
	}
	return lic, nil
}

// Verify checks a presented key and reports the outcome. It never returns
// an error: every failure mode maps to an invalid Verification.
func (svc *Service) Verify(key string) Verification {
	date, err := svc.keygen.VerifyKey(core.CleanString(key))
	if err == ErrKeyExpired {
		return Verification{Valid: false, Reason: err.Error(), ExpiresOn: date.String()}
	}
	if err != nil {
		return Verification{Valid: false, Reason: err.Error()}
	}
	return Verification{Valid: true, ExpiresOn: date.String()}
}

func (svc *Service) QueryAll(ctx context.Context) ([]License, error) {
	return svc.repo.QueryAllLicenses(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]License, error) {
	return svc.repo.FilterLicenses(ctx, filter)
}

func (svc *Service) GetByKey(ctx context.Context, key string) (License, error) {
	return svc.repo.GetLicenseByKey(ctx, core.CleanString(key))
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteLicensesByID(ctx, ids...)
}
