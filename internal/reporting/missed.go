package reporting

import (
	"slices"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// Missed returns the active users absent from contributed, ordered by full
// name. Users with equal names keep their input order.
func Missed(users []domain.User, contributed map[string]struct{}) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if !u.IsActive() {
			continue
		}
		if _, ok := contributed[u.ID]; ok {
			continue
		}
		out = append(out, u)
	}

	col := newCollator()
	slices.SortStableFunc(out, func(a, b domain.User) int {
		return col.CompareString(a.FullName, b.FullName)
	})
	return out
}

// detectionSource maps each at-risk period onto the transactions that
// clear a member for it. No payment schedule exists in the data, so
// "tomorrow" and "week" are cleared by the same contributions as today.
var detectionSource = map[Period]Period{
	PeriodToday:    PeriodToday,
	PeriodTomorrow: PeriodToday,
	PeriodWeek:     PeriodToday,
}

// MissedFor is the detector behind the "missed today", "at risk tomorrow"
// and "at risk this week" lists. Periods without a detection source return
// nil.
func MissedFor(period Period, users []domain.User, txns []domain.Transaction, cal Calendar) []domain.User {
	source, ok := detectionSource[period]
	if !ok {
		return nil
	}
	return Missed(users, ContributorsOn(txns, cal.Matcher(source)))
}
