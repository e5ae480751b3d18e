package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/ogunkayacan/lisans/core/license"
)

type licenseRepository struct {
	db *licenseTable
}

var _ license.Repository = (*licenseRepository)(nil)

func NewLicenseRepository(db *DB) *licenseRepository {
	return &licenseRepository{db: db.license}
}

// query returns all licenses ordered by creation time, newest first.
func (repo *licenseRepository) query() []license.License {
	lics := make([]license.License, 0, len(repo.db.table))
	for _, lic := range repo.db.table {
		lics = append(lics, *lic)
	}
	sort.Slice(lics, func(i, j int) bool { return lics[i].CreatedAt.After(lics[j].CreatedAt) })
	return lics
}

func (repo *licenseRepository) CheckKeyUniqueness(_ context.Context, key string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, lic := range repo.db.table {
		if lic.Key == key {
			return license.ErrKeyExists
		}
	}
	return nil
}

func (repo *licenseRepository) CreateLicense(_ context.Context, lic license.License) (license.License, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[lic.ID] = &lic
	return lic, nil
}

func (repo *licenseRepository) QueryAllLicenses(_ context.Context) ([]license.License, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *licenseRepository) FilterLicenses(_ context.Context, filter license.QueryFilter) ([]license.License, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	now := time.Now().UTC()
	lics := make([]license.License, 0)
	for _, lic := range repo.query() {
		if filter.Year != 0 && lic.Year != filter.Year {
			continue
		}
		if filter.Active != nil && lic.IsActive(now) != *filter.Active {
			continue
		}
		lics = append(lics, lic)
	}
	return lics, nil
}

func (repo *licenseRepository) GetLicenseByKey(_ context.Context, key string) (license.License, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, lic := range repo.db.table {
		if lic.Key == key {
			return *lic, nil
		}
	}
	return license.License{}, license.ErrNotFound
}

func (repo *licenseRepository) DeleteLicensesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
