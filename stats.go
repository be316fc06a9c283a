package main

import (
	"sort"
	"time"

	"rashan/models"

	"github.com/shopspring/decimal"
)

const recentLimit = 10

// Stats is the read-side projection served to the dashboard.
type Stats struct {
	Success        bool             `json:"success"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	TotalDonations int              `json:"total_donations"`
	TotalBags      int64            `json:"total_bags"`
	AvgDonation    decimal.Decimal  `json:"avg_donation"`
	TodayCount     int              `json:"today_count"`
	Recent         []RecentDonation `json:"recent_donations"`
}

// RecentDonation is one row of the dashboard's recent list.
type RecentDonation struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Time   string          `json:"time"`
}

// ComputeStats aggregates the full ledger. bagCost is the price of one ration
// bag; the average is rounded to whole rupees for display.
func ComputeStats(donations []models.Donation, bagCost decimal.Decimal, now time.Time) Stats {
	st := Stats{
		Success:     true,
		TotalAmount: decimal.Zero,
		AvgDonation: decimal.Zero,
		Recent:      []RecentDonation{},
	}
	if len(donations) == 0 {
		return st
	}

	today := now.Format("2006-01-02")
	for _, d := range donations {
		st.TotalAmount = st.TotalAmount.Add(d.Amount)
		if d.Date == today {
			st.TodayCount++
		}
	}
	st.TotalDonations = len(donations)
	if bagCost.IsPositive() {
		st.TotalBags = st.TotalAmount.Div(bagCost).IntPart()
	}
	st.AvgDonation = st.TotalAmount.Div(decimal.NewFromInt(int64(len(donations)))).Round(0)

	sorted := make([]models.Donation, len(donations))
	copy(sorted, donations)
	// Sort on ReceivedAt: the display Time string is a 12-hour clock, where
	// "09:00 PM" would order above "11:00 AM" lexicographically.
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ReceivedAt.After(sorted[j].ReceivedAt) })
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	for _, d := range sorted {
		st.Recent = append(st.Recent, RecentDonation{Name: d.Name, Amount: d.Amount, Time: d.Time})
	}
	return st
}
