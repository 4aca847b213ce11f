package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/reporting"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	overviewRecentLimit = 5
	maxRecentLimit      = 100
)

// ============================================================
// Overview: GET /v1/admin/overview
// ============================================================

func (s *AdminService) Overview(ctx context.Context) (*domain.Overview, error) {
	ctx, span := tracer.Start(ctx, "AdminService.Overview")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cal := s.calendar()
	report := reporting.Aggregate(snap.Transactions, cal, cal.Matcher(reporting.PeriodToday))
	missed := reporting.Missed(snap.Users, report.Contributors)

	stats := domain.DashboardStats{
		TotalUsers:        len(snap.Users),
		TotalGroups:       len(snap.Groups),
		TotalTransactions: len(snap.Transactions),
		GrandTotal:        report.GrandTotal,
		TodayTotal:        report.TodayTotal,
		YesterdayTotal:    report.YesterdayTotal,
		WeekTotal:         report.WeekTotal,
		ContributorsToday: len(report.Contributors),
		MissedToday:       len(missed),
	}
	for _, u := range snap.Users {
		switch u.Status {
		case domain.UserActive:
			stats.ActiveUsers++
		case domain.UserInactive:
			stats.InactiveUsers++
		case domain.UserSuspended:
			stats.SuspendedUsers++
		}
		if u.KYCStatus == domain.KYCPending {
			stats.PendingKYC++
		}
	}
	for _, tx := range snap.Transactions {
		switch tx.Status {
		case domain.TxPending:
			stats.PendingTransactions++
		case domain.TxFailed:
			stats.FailedTransactions++
		}
	}

	s.metrics.SetDepositTotals(report.TodayTotal, report.YesterdayTotal, report.WeekTotal)
	s.metrics.SetMissed(string(reporting.PeriodToday), len(missed))

	return &domain.Overview{
		GeneratedAt:        cal.Now().Format(time.RFC3339),
		Stats:              stats,
		RecentTransactions: newestFirst(snap.Transactions, overviewRecentLimit),
	}, nil
}

// ============================================================
// Contributions: GET /v1/admin/contributions[/daily|/missed]
// ============================================================

// Contributions returns the headline tiles and the per-member table for
// period. An empty period means today.
func (s *AdminService) Contributions(ctx context.Context, period string, q reporting.Query) (*domain.ContributionsView, error) {
	ctx, span := tracer.Start(ctx, "AdminService.Contributions")
	defer span.End()
	span.SetAttributes(attribute.String("period", period))

	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cal := s.calendar()
	report := reporting.Aggregate(snap.Transactions, cal, cal.Matcher(p))

	return &domain.ContributionsView{
		Period:         string(p),
		TodayTotal:     report.TodayTotal,
		YesterdayTotal: report.YesterdayTotal,
		WeekTotal:      report.WeekTotal,
		GrandTotal:     report.GrandTotal,
		Contributors:   len(report.Contributors),
		Table:          reporting.ContributionTable.Apply(report.PerUser, q),
	}, nil
}

// DailyContributions returns the trailing-week panel: per-day totals,
// today's contributors and the members who have not contributed today.
func (s *AdminService) DailyContributions(ctx context.Context) (*domain.DailyContributionsView, error) {
	ctx, span := tracer.Start(ctx, "AdminService.DailyContributions")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cal := s.calendar()
	report := reporting.Aggregate(snap.Transactions, cal, cal.Matcher(reporting.PeriodToday))
	missed := reporting.Missed(snap.Users, report.Contributors)
	s.metrics.SetMissed(string(reporting.PeriodToday), len(missed))

	return &domain.DailyContributionsView{
		Days:              report.PerDay,
		WeekTotal:         report.WeekTotal,
		TodayContributors: report.PerUser,
		MissedToday:       missed,
	}, nil
}

// MissedContributions lists active members at risk for period (today,
// tomorrow or week). An empty period means today.
func (s *AdminService) MissedContributions(ctx context.Context, period string) (*domain.MissedView, error) {
	ctx, span := tracer.Start(ctx, "AdminService.MissedContributions")
	defer span.End()
	span.SetAttributes(attribute.String("period", period))

	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	if p != reporting.PeriodToday && p != reporting.PeriodTomorrow && p != reporting.PeriodWeek {
		return nil, &domain.ErrValidation{Field: "period", Message: "must be one of today, tomorrow, week"}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	users := reporting.MissedFor(p, snap.Users, snap.Transactions, s.calendar())
	s.metrics.SetMissed(string(p), len(users))
	s.logger.Debug("missed contributions computed",
		zap.String("period", string(p)),
		zap.Int("count", len(users)),
	)

	return &domain.MissedView{
		Period: string(p),
		Count:  len(users),
		Users:  users,
	}, nil
}

// ============================================================
// Tables: GET /v1/admin/{users,groups,transactions}
// ============================================================

func (s *AdminService) ListUsers(ctx context.Context, q reporting.Query) (*domain.Page[domain.User], error) {
	ctx, span := tracer.Start(ctx, "AdminService.ListUsers")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	page := reporting.UserTable.Apply(snap.Users, q)
	return &page, nil
}

func (s *AdminService) ListGroups(ctx context.Context, q reporting.Query) (*domain.Page[domain.Group], error) {
	ctx, span := tracer.Start(ctx, "AdminService.ListGroups")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	page := reporting.GroupTable.Apply(snap.Groups, q)
	return &page, nil
}

func (s *AdminService) ListTransactions(ctx context.Context, q reporting.Query) (*domain.Page[domain.Transaction], error) {
	ctx, span := tracer.Start(ctx, "AdminService.ListTransactions")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	page := reporting.TransactionTable.Apply(snap.Transactions, q)
	return &page, nil
}

// RecentTransactions returns up to limit transactions, newest first.
func (s *AdminService) RecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "AdminService.RecentTransactions")
	defer span.End()

	if limit <= 0 {
		limit = overviewRecentLimit
	}
	limit = min(limit, maxRecentLimit)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(snap.Transactions, limit), nil
}

// MemberCandidates lists the active members who can still join groupID,
// filtered by search and ordered by name.
func (s *AdminService) MemberCandidates(ctx context.Context, groupID, search string) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "AdminService.MemberCandidates")
	defer span.End()
	span.SetAttributes(attribute.String("group.id", groupID))

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(snap.Groups, func(g domain.Group) bool { return g.ID == groupID })
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "group", ID: groupID}
	}
	group := snap.Groups[i]

	candidates := make([]domain.User, 0, len(snap.Users))
	for _, u := range snap.Users {
		if u.IsActive() && !group.HasMember(u.ID) {
			candidates = append(candidates, u)
		}
	}

	filtered := reporting.UserTable.Filter(candidates, search)
	return reporting.UserTable.Sort(filtered, "name", false), nil
}

// ============================================================
// helpers
// ============================================================

func parsePeriod(period string) (reporting.Period, error) {
	if period == "" {
		return reporting.PeriodToday, nil
	}
	p, ok := reporting.ParsePeriod(period)
	if !ok {
		return "", &domain.ErrValidation{Field: "period", Message: "must be one of today, yesterday, tomorrow, week, all"}
	}
	return p, nil
}

// newestFirst returns the limit most recent transactions. Malformed dates
// sort last; equal timestamps keep ledger order.
func newestFirst(txns []domain.Transaction, limit int) []domain.Transaction {
	sorted := slices.Clone(txns)
	slices.SortStableFunc(sorted, func(a, b domain.Transaction) int {
		return cmp.Compare(reporting.Timestamp(b.Date), reporting.Timestamp(a.Date))
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []domain.Transaction{}
	}
	return sorted
}
