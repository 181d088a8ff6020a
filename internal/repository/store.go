package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store hands out repositories and runs units of work in a transaction.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Repositories returns repositories bound to the shared connection pool.
func (s *Store) Repositories() Repositories {
	return newRepositories(s.db)
}

// Transaction runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise, including when ctx
// is cancelled mid-flight.
func (s *Store) Transaction(ctx context.Context, fn func(r Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Tenants: NewTenantRepository(db),
		Users:   NewUserRepository(db),
		Tasks:   NewTaskRepository(db),
	}
}

