package reporting

import (
	"math"
	"strings"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dayLayout,
}

// Timestamp orders transaction dates, time of day included. Malformed dates
// map to math.MinInt64 so they sort before every valid one.
func Timestamp(date string) int64 {
	date = strings.TrimSpace(date)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Unix()
		}
	}
	return math.MinInt64
}

// UserTable backs the members screen.
var UserTable = NewTable(
	Field[domain.User]{Name: "name", Kind: TextField, Searchable: true, Text: func(u domain.User) string { return u.FullName }},
	Field[domain.User]{Name: "email", Kind: TextField, Searchable: true, Text: func(u domain.User) string { return u.Email }},
	Field[domain.User]{Name: "phone", Kind: TextField, Searchable: true, Text: func(u domain.User) string { return u.Phone }},
	Field[domain.User]{Name: "status", Kind: TextField, Text: func(u domain.User) string { return string(u.Status) }},
	Field[domain.User]{Name: "kycStatus", Kind: TextField, Text: func(u domain.User) string { return string(u.KYCStatus) }},
	Field[domain.User]{Name: "joinDate", Kind: NumberField, Number: func(u domain.User) int64 { return Timestamp(u.JoinDate) }},
	Field[domain.User]{Name: "beneficiary", Kind: BoolField, Bool: func(u domain.User) bool { return u.TontineBeneficiary }},
)

// GroupTable backs the groups screen.
var GroupTable = NewTable(
	Field[domain.Group]{Name: "name", Kind: TextField, Searchable: true, Text: func(g domain.Group) string { return g.Name }},
	Field[domain.Group]{Name: "description", Kind: TextField, Searchable: true, Text: func(g domain.Group) string { return g.Description }},
	Field[domain.Group]{Name: "targetAmount", Kind: NumberField, Searchable: true, Number: func(g domain.Group) int64 { return g.TargetAmount }},
	Field[domain.Group]{Name: "memberCount", Kind: NumberField, Number: func(g domain.Group) int64 { return int64(g.MemberCount) }},
	Field[domain.Group]{Name: "createdAt", Kind: NumberField, Number: func(g domain.Group) int64 { return Timestamp(g.CreatedAt) }},
)

// TransactionTable backs the transactions screen.
var TransactionTable = NewTable(
	Field[domain.Transaction]{Name: "userName", Kind: TextField, Searchable: true, Text: func(t domain.Transaction) string { return t.UserName }},
	Field[domain.Transaction]{Name: "amount", Kind: NumberField, Searchable: true, Number: func(t domain.Transaction) int64 { return t.Amount }},
	Field[domain.Transaction]{Name: "type", Kind: TextField, Searchable: true, Text: func(t domain.Transaction) string { return string(t.Type) }},
	Field[domain.Transaction]{Name: "status", Kind: TextField, Text: func(t domain.Transaction) string { return string(t.Status) }},
	Field[domain.Transaction]{Name: "date", Kind: NumberField, Number: func(t domain.Transaction) int64 { return Timestamp(t.Date) }},
)

// ContributionTable backs the per-member contributions table.
var ContributionTable = NewTable(
	Field[domain.UserContribution]{Name: "name", Kind: TextField, Searchable: true, Text: func(c domain.UserContribution) string { return c.DisplayName }},
	Field[domain.UserContribution]{Name: "total", Kind: NumberField, Searchable: true, Number: func(c domain.UserContribution) int64 { return c.Total }},
	Field[domain.UserContribution]{Name: "count", Kind: NumberField, Number: func(c domain.UserContribution) int64 { return int64(c.Count) }},
)
