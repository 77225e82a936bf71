package domain

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent stores payment unless its external id is already taken.
	// It reports false, with no error, when the row was not inserted.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)
	// FindByExternalID returns nil, nil when no row matches.
	FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*Payment, error)
	ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]*Payment, error)
}
