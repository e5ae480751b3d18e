package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ogunkayacan/lisans/core"
	"github.com/ogunkayacan/lisans/core/license"
)

// newest first
var licenseOrdering = core.DBOrdering{Field: "created_at"}

type licenseRepository struct {
	db *sqlx.DB
}

var _ license.Repository = (*licenseRepository)(nil) // interface compliance check

func NewLicenseRepository(db *sqlx.DB) *licenseRepository {
	return &licenseRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to license.ErrNotFound
func (repo licenseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return license.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo licenseRepository) CheckKeyUniqueness(ctx context.Context, key string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM licenses WHERE key = $1)`, key)
	if err != nil {
		return errors.Wrap(err, "checking license key uniqueness")
	}
	if exists {
		return license.ErrKeyExists
	}
	return nil
}

func (repo licenseRepository) CreateLicense(ctx context.Context, lic license.License) (license.License, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO licenses (id, key, year, month, day, note, send_to, expires_at, created_at)
		VALUES (:id, :key, :year, :month, :day, :note, :send_to, :expires_at, :created_at)`,
		lic,
	)
	if err != nil {
		return license.License{}, errors.Wrap(err, "inserting license")
	}
	return lic, nil
}

func (repo licenseRepository) QueryAllLicenses(ctx context.Context) ([]license.License, error) {
	lics := make([]license.License, 0)
	err := repo.db.SelectContext(ctx, &lics, `SELECT * FROM licenses ORDER BY `+licenseOrdering.String())
	if err != nil {
		return nil, errors.Wrap(err, "querying licenses")
	}
	return lics, nil
}

func (repo licenseRepository) FilterLicenses(ctx context.Context, filter license.QueryFilter) ([]license.License, error) {
	query := `SELECT * FROM licenses WHERE 1=1`
	var args []interface{}

	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += ` AND year = ?`
	}
	if filter.Active != nil {
		args = append(args, time.Now().UTC())
		if *filter.Active {
			query += ` AND expires_at > ?`
		} else {
			query += ` AND expires_at <= ?`
		}
	}
	query += ` ORDER BY ` + licenseOrdering.String()

	lics := make([]license.License, 0)
	if err := repo.db.SelectContext(ctx, &lics, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering licenses")
	}
	return lics, nil
}

func (repo licenseRepository) GetLicenseByKey(ctx context.Context, key string) (license.License, error) {
	var lic license.License
	err := repo.db.GetContext(ctx, &lic, `SELECT * FROM licenses WHERE key = $1`, key)
	if err != nil {
		return license.License{}, repo.trapNoRowsErr(err, "finding license by key")
	}
	return lic, nil
}

func (repo licenseRepository) DeleteLicensesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM licenses WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building license delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting licenses")
	}
	return nil
}
