package main

import (
	"context"

	"rashan/models"

	"gorm.io/gorm"
)

// DBStore is the Postgres-backed ledger. The unique index on transaction_id
// carries duplicate detection, so concurrent writers need no process-level
// locking.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore { return &DBStore{db: db} }

func (s *DBStore) Append(ctx context.Context, d models.Donation) error {
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *DBStore) All(ctx context.Context) ([]models.Donation, error) {
	var out []models.Donation
	if err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var _ DonationStore = (*DBStore)(nil)
