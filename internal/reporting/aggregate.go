package reporting

import (
	"cmp"
	"slices"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// DailyWindow is the length of the trailing per-day panel, today included.
const DailyWindow = 7

// Report is the derived contribution view of one snapshot.
type Report struct {
	// PerUser holds successful deposits matched by the period predicate,
	// largest total first.
	PerUser []domain.UserContribution
	// PerDay covers the trailing DailyWindow days, most recent first.
	PerDay []domain.DailyTotal
	// Contributors is the set of users with a contributing event in the
	// period. A successful status_change counts even though it moves no money.
	Contributors map[string]struct{}

	GrandTotal     int64
	TodayTotal     int64
	YesterdayTotal int64
	WeekTotal      int64
}

// Contributed reports whether userID is in the contributor set.
func (r Report) Contributed(userID string) bool {
	_, ok := r.Contributors[userID]
	return ok
}

// IsContribution reports whether tx counts as a member having paid in.
func IsContribution(tx domain.Transaction) bool {
	return tx.Succeeded() && (tx.Type == domain.TxDeposit || tx.Type == domain.TxStatusChange)
}

// IsDeposit reports whether tx adds money to the pool.
func IsDeposit(tx domain.Transaction) bool {
	return tx.Succeeded() && tx.Type == domain.TxDeposit
}

// Aggregate builds the contribution report for the transactions matched by
// match. Headline totals and the per-day panel are always relative to the
// calendar, whatever the predicate.
func Aggregate(txns []domain.Transaction, cal Calendar, match func(domain.Transaction) bool) Report {
	r := Report{Contributors: make(map[string]struct{})}

	userIdx := make(map[string]int)
	dayIdx := make(map[string]int)

	for _, tx := range txns {
		if !tx.Succeeded() {
			continue
		}
		r.GrandTotal += tx.Amount

		matched := match(tx)
		if matched && IsContribution(tx) {
			r.Contributors[tx.UserID] = struct{}{}
		}
		if tx.Type != domain.TxDeposit {
			continue
		}

		b := cal.Buckets(tx.Date)
		if b.Today {
			r.TodayTotal += tx.Amount
		}
		if b.Yesterday {
			r.YesterdayTotal += tx.Amount
		}
		if b.ThisWeek {
			r.WeekTotal += tx.Amount
		}

		if matched {
			i, ok := userIdx[tx.UserID]
			if !ok {
				i = len(r.PerUser)
				userIdx[tx.UserID] = i
				r.PerUser = append(r.PerUser, domain.UserContribution{
					UserID:      tx.UserID,
					DisplayName: tx.UserName,
				})
			}
			r.PerUser[i].Total += tx.Amount
			r.PerUser[i].Count++
		}

		if day, ok := cal.ParseDay(tx.Date); ok && cal.InWindow(tx.Date, DailyWindow) {
			key := day.Format(dayLayout)
			i, ok := dayIdx[key]
			if !ok {
				i = len(r.PerDay)
				dayIdx[key] = i
				r.PerDay = append(r.PerDay, domain.DailyTotal{Date: key})
			}
			r.PerDay[i].Total += tx.Amount
			r.PerDay[i].Count++
		}
	}

	slices.SortStableFunc(r.PerUser, func(a, b domain.UserContribution) int {
		return cmp.Compare(b.Total, a.Total)
	})
	// YYYY-MM-DD keys order lexically.
	slices.SortFunc(r.PerDay, func(a, b domain.DailyTotal) int {
		return cmp.Compare(b.Date, a.Date)
	})

	if r.PerUser == nil {
		r.PerUser = []domain.UserContribution{}
	}
	if r.PerDay == nil {
		r.PerDay = []domain.DailyTotal{}
	}
	return r
}

// ContributorsOn returns the users with a contributing event matched by
// match, without building the rest of the report.
func ContributorsOn(txns []domain.Transaction, match func(domain.Transaction) bool) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tx := range txns {
		if IsContribution(tx) && match(tx) {
			set[tx.UserID] = struct{}{}
		}
	}
	return set
}
