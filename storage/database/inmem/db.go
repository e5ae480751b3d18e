package inmemdb

import (
	"sync"

	"github.com/ogunkayacan/lisans/core/license"
	"github.com/ogunkayacan/lisans/core/user"
)

type (
	DB struct {
		user    *userTable
		license *licenseTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	licenseTable struct {
		sync.RWMutex
		table map[string]*license.License
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		license: &licenseTable{table: make(map[string]*license.License)},
	}
	return db, nil
}
