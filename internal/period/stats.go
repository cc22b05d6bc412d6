package period

import (
	"slices"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultRecent is the number of receipts listed as recent activity.
const DefaultRecent = 3

// Stats are the all-time figures shown above the period summaries.
type Stats struct {
	TotalSpend   decimal.Decimal
	Recent       []model.Receipt // newest first
	ReceiptCount int
	ThisMonth    int // receipts dated in now's calendar month
}

// DashboardStats sums every receipt, dated or not, counts the receipts of
// now's month in now's location and keeps the recent newest dated receipts.
// Receipts with equal timestamps keep their input order. A non-positive
// recent uses DefaultRecent.
func DashboardStats(receipts []model.Receipt, now time.Time, recent int) Stats {
	if recent <= 0 {
		recent = DefaultRecent
	}

	s := Stats{TotalSpend: decimal.Zero, ReceiptCount: len(receipts), Recent: []model.Receipt{}}
	year, month, _ := now.Date()
	dated := make([]model.Receipt, 0, len(receipts))
	for _, r := range receipts {
		s.TotalSpend = s.TotalSpend.Add(r.TotalAmount)
		if r.Timestamp == nil {
			continue
		}
		dated = append(dated, r)
		if y, m, _ := r.Timestamp.In(now.Location()).Date(); y == year && m == month {
			s.ThisMonth++
		}
	}

	slices.SortStableFunc(dated, func(a, b model.Receipt) int {
		return b.Timestamp.Compare(*a.Timestamp)
	})
	s.Recent = append(s.Recent, dated[:min(recent, len(dated))]...)
	return s
}
