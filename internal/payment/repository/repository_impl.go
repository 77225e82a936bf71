package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/payrecord/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertIfAbsent relies on the unique index on external_id; a conflicting row
// leaves the table untouched and reports zero affected rows.
func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, payment *domain.Payment) (bool, error) {
	res := db.WithContext(ctx).
		Omit("CreatedAt").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(payment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]*domain.Payment, error) {
	var items []*domain.Payment
	err := db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
