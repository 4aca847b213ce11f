package domain

// ============================================================
// Derived aggregates
// ============================================================

// DailyTotal is the sum of successful deposits on one calendar day.
type DailyTotal struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Total int64  `json:"total"`
	Count int    `json:"count"`
}

// UserContribution is a member's deposit total over a period.
type UserContribution struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Total       int64  `json:"total"`
	Count       int    `json:"count"`
}

// DashboardStats is the typed statistics block of the overview screen.
type DashboardStats struct {
	TotalUsers          int   `json:"totalUsers"`
	ActiveUsers         int   `json:"activeUsers"`
	InactiveUsers       int   `json:"inactiveUsers"`
	SuspendedUsers      int   `json:"suspendedUsers"`
	PendingKYC          int   `json:"pendingKyc"`
	TotalGroups         int   `json:"totalGroups"`
	TotalTransactions   int   `json:"totalTransactions"`
	PendingTransactions int   `json:"pendingTransactions"`
	FailedTransactions  int   `json:"failedTransactions"`
	GrandTotal          int64 `json:"grandTotal"`
	TodayTotal          int64 `json:"todayTotal"`
	YesterdayTotal      int64 `json:"yesterdayTotal"`
	WeekTotal           int64 `json:"weekTotal"`
	ContributorsToday   int   `json:"contributorsToday"`
	MissedToday         int   `json:"missedToday"`
}

// Overview is returned by GET /v1/admin/overview.
type Overview struct {
	GeneratedAt        string         `json:"generatedAt"`
	Stats              DashboardStats `json:"stats"`
	RecentTransactions []Transaction  `json:"recentTransactions"`
}

// ContributionsView is returned by GET /v1/admin/contributions.
type ContributionsView struct {
	Period         string                 `json:"period"`
	TodayTotal     int64                  `json:"todayTotal"`
	YesterdayTotal int64                  `json:"yesterdayTotal"`
	WeekTotal      int64                  `json:"weekTotal"`
	GrandTotal     int64                  `json:"grandTotal"`
	Contributors   int                    `json:"contributors"`
	Table          Page[UserContribution] `json:"table"`
}

// DailyContributionsView is returned by GET /v1/admin/contributions/daily.
type DailyContributionsView struct {
	Days              []DailyTotal       `json:"days"`
	WeekTotal         int64              `json:"weekTotal"`
	TodayContributors []UserContribution `json:"todayContributors"`
	MissedToday       []User             `json:"missedToday"`
}

// MissedView is returned by GET /v1/admin/contributions/missed.
type MissedView struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
	Users  []User `json:"users"`
}
