package main

import (
	"context"
	"errors"

	"rashan/models"
)

// ErrDuplicate reports a transaction id already present in the ledger.
var ErrDuplicate = errors.New("duplicate transaction")

// DonationStore persists the append-only donation ledger.
type DonationStore interface {
	// Append records a donation; ErrDuplicate when the transaction id exists.
	Append(ctx context.Context, d models.Donation) error
	// All returns every recorded donation in insertion order.
	All(ctx context.Context) ([]models.Donation, error)
}
