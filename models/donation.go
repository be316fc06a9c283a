package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation represents one recorded transfer. TransactionID is the business
// key and must be unique across the ledger.
type Donation struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	TransactionID string          `gorm:"size:64;not null;uniqueIndex" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	// Display strings served to the dashboard; Date also drives same-day
	// counting.
	Time string `gorm:"size:16;not null" json:"time"`
	Date string `gorm:"size:16;not null" json:"date"`
	// ReceivedAt orders "recent donations". The 12-hour Time string above is
	// not a usable sort key.
	ReceivedAt time.Time `gorm:"index;not null" json:"received_at"`
}

// NewDonation stamps a donation with both the display strings and the
// machine timestamp.
func NewDonation(transactionID string, amount decimal.Decimal, name string, at time.Time) Donation {
	return Donation{
		TransactionID: transactionID,
		Amount:        amount,
		Name:          name,
		Time:          at.Format("03:04 PM"),
		Date:          at.Format("2006-01-02"),
		ReceivedAt:    at,
	}
}
