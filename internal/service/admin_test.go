package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/cache"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/memstore"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/observability"
	"github.com/tontinehub/tontine-admin-bfa/internal/reporting"
	"github.com/tontinehub/tontine-admin-bfa/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockStore struct {
	users        []domain.User
	groups       []domain.Group
	transactions []domain.Transaction

	listErr     error
	mutationErr error

	listCalls    atomic.Int32
	depositCalls atomic.Int32
}

func (m *mockStore) ListUsers(_ context.Context) ([]domain.User, error) {
	m.listCalls.Add(1)
	return m.users, m.listErr
}

func (m *mockStore) ListGroups(_ context.Context) ([]domain.Group, error) {
	return m.groups, m.listErr
}

func (m *mockStore) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	return m.transactions, m.listErr
}

func (m *mockStore) AddGroup(_ context.Context, g *domain.Group) (*domain.Group, error) {
	if m.mutationErr != nil {
		return nil, m.mutationErr
	}
	out := *g
	out.ID = "g-new"
	return &out, nil
}

func (m *mockStore) UpdateGroup(_ context.Context, g *domain.Group) (*domain.Group, error) {
	return g, m.mutationErr
}

func (m *mockStore) DeleteGroup(_ context.Context, _ string) error {
	return m.mutationErr
}

func (m *mockStore) AddMemberToGroup(_ context.Context, groupID, userID string) (*domain.Group, error) {
	return &domain.Group{ID: groupID, Members: []string{userID}, MemberCount: 1}, m.mutationErr
}

func (m *mockStore) RemoveMemberFromGroup(_ context.Context, groupID, _ string) (*domain.Group, error) {
	return &domain.Group{ID: groupID, Members: []string{}}, m.mutationErr
}

func (m *mockStore) MakeDeposit(_ context.Context, userID string, amount int64) (*domain.Transaction, error) {
	m.depositCalls.Add(1)
	if m.mutationErr != nil {
		return nil, m.mutationErr
	}
	return &domain.Transaction{ID: "t-new", UserID: userID, Amount: amount, Type: domain.TxDeposit, Status: domain.TxSuccess}, nil
}

func (m *mockStore) ToggleTontineBeneficiaryStatus(_ context.Context, userID string) (*domain.User, error) {
	return &domain.User{ID: userID, TontineBeneficiary: true}, m.mutationErr
}

func (m *mockStore) AddMessage(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	out := *msg
	out.ID = "m-new"
	return &out, m.mutationErr
}

// --- Fixtures ---

// 2024-06-12 is a Wednesday; the week started on Sunday 2024-06-09.
var fixedNow = time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

func fixtureStore() *mockStore {
	return &mockStore{
		users: []domain.User{
			{ID: "1", FullName: "Alice", Status: domain.UserActive, KYCStatus: domain.KYCVerified},
			{ID: "2", FullName: "Bob", Status: domain.UserActive, KYCStatus: domain.KYCPending},
			{ID: "3", FullName: "Chantal", Status: domain.UserInactive, KYCStatus: domain.KYCVerified},
			{ID: "4", FullName: "Didier", Status: domain.UserSuspended, KYCStatus: domain.KYCRejected},
		},
		groups: []domain.Group{
			{ID: "g1", Name: "Market", Members: []string{"1"}, MemberCount: 1},
		},
		transactions: []domain.Transaction{
			{ID: "t1", UserID: "1", UserName: "Alice", Type: domain.TxDeposit, Amount: 100, Status: domain.TxSuccess, Date: "2024-06-12"},
			{ID: "t2", UserID: "2", UserName: "Bob", Type: domain.TxDeposit, Amount: 50, Status: domain.TxSuccess, Date: "2024-06-11 09:00"},
			{ID: "t3", UserID: "1", UserName: "Alice", Type: domain.TxDeposit, Amount: 30, Status: domain.TxPending, Date: "2024-06-12 10:00"},
			{ID: "t4", UserID: "2", UserName: "Bob", Type: domain.TxWithdrawal, Amount: 20, Status: domain.TxSuccess, Date: "2024-06-10 08:00"},
			{ID: "t5", UserID: "1", UserName: "Alice", Type: domain.TxDeposit, Amount: 10, Status: domain.TxFailed, Date: "bad-date"},
		},
	}
}

func newService(store *mockStore) *service.AdminService {
	return service.NewAdminService(
		store,
		cache.New[any](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		service.WithClock(func() time.Time { return fixedNow }),
	)
}

// --- Tests ---

func TestOverview(t *testing.T) {
	svc := newService(fixtureStore())

	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	st := ov.Stats
	if st.TotalUsers != 4 || st.ActiveUsers != 2 || st.InactiveUsers != 1 || st.SuspendedUsers != 1 {
		t.Errorf("unexpected user counts: %+v", st)
	}
	if st.PendingKYC != 1 {
		t.Errorf("expected 1 pending KYC, got %d", st.PendingKYC)
	}
	if st.PendingTransactions != 1 || st.FailedTransactions != 1 {
		t.Errorf("unexpected transaction status counts: %+v", st)
	}
	if st.GrandTotal != 170 {
		t.Errorf("expected grand total 170 (all successful), got %d", st.GrandTotal)
	}
	if st.TodayTotal != 100 || st.YesterdayTotal != 50 || st.WeekTotal != 150 {
		t.Errorf("unexpected bucket totals: today=%d yesterday=%d week=%d", st.TodayTotal, st.YesterdayTotal, st.WeekTotal)
	}
	if st.ContributorsToday != 1 || st.MissedToday != 1 {
		t.Errorf("expected 1 contributor and 1 missed today, got %d/%d", st.ContributorsToday, st.MissedToday)
	}

	if len(ov.RecentTransactions) != 5 {
		t.Fatalf("expected 5 recent transactions, got %d", len(ov.RecentTransactions))
	}
	if ov.RecentTransactions[0].ID != "t3" {
		t.Errorf("expected newest transaction first, got %s", ov.RecentTransactions[0].ID)
	}
	if ov.RecentTransactions[4].ID != "t5" {
		t.Errorf("expected malformed date last, got %s", ov.RecentTransactions[4].ID)
	}
}

func TestContributions_Period(t *testing.T) {
	svc := newService(fixtureStore())

	view, err := svc.Contributions(context.Background(), "week", reporting.Query{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Period != "week" {
		t.Errorf("expected period week, got %q", view.Period)
	}
	if view.Table.Total != 2 {
		t.Fatalf("expected 2 contributors in table, got %d", view.Table.Total)
	}
	if view.Table.Items[0].UserID != "1" || view.Table.Items[0].Total != 100 {
		t.Errorf("expected Alice first with 100, got %+v", view.Table.Items[0])
	}
	if view.GrandTotal != 170 {
		t.Errorf("expected footer grand total 170, got %d", view.GrandTotal)
	}
}

func TestContributions_DefaultsToToday(t *testing.T) {
	svc := newService(fixtureStore())

	view, err := svc.Contributions(context.Background(), "", reporting.Query{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Period != "today" || view.Contributors != 1 {
		t.Errorf("unexpected view: period=%q contributors=%d", view.Period, view.Contributors)
	}
}

func TestContributions_InvalidPeriod(t *testing.T) {
	svc := newService(fixtureStore())

	_, err := svc.Contributions(context.Background(), "fortnight", reporting.Query{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDailyContributions(t *testing.T) {
	svc := newService(fixtureStore())

	view, err := svc.DailyContributions(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(view.Days) != 2 || view.Days[0].Date != "2024-06-12" {
		t.Errorf("unexpected days: %+v", view.Days)
	}
	if len(view.MissedToday) != 1 || view.MissedToday[0].ID != "2" {
		t.Errorf("expected Bob missed today, got %+v", view.MissedToday)
	}
	if len(view.TodayContributors) != 1 || view.TodayContributors[0].UserID != "1" {
		t.Errorf("expected Alice as today's contributor, got %+v", view.TodayContributors)
	}
}

func TestMissedContributions(t *testing.T) {
	svc := newService(fixtureStore())
	ctx := context.Background()

	for _, period := range []string{"today", "tomorrow", "week"} {
		view, err := svc.MissedContributions(ctx, period)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", period, err)
		}
		if view.Count != 1 || view.Users[0].FullName != "Bob" {
			t.Errorf("%s: expected Bob only, got %+v", period, view.Users)
		}
	}

	_, err := svc.MissedContributions(ctx, "yesterday")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Errorf("expected ErrValidation for yesterday, got %v", err)
	}
}

func TestListUsers_Query(t *testing.T) {
	svc := newService(fixtureStore())

	page, err := svc.ListUsers(context.Background(), reporting.Query{SortKey: "name", Descending: true, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 4 || page.TotalPages != 2 || !page.HasMore {
		t.Errorf("unexpected page metadata: %+v", page)
	}
	if page.Items[0].FullName != "Didier" {
		t.Errorf("expected Didier first, got %s", page.Items[0].FullName)
	}
}

func TestMemberCandidates(t *testing.T) {
	svc := newService(fixtureStore())
	ctx := context.Background()

	users, err := svc.MemberCandidates(ctx, "g1", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(users) != 1 || users[0].ID != "2" {
		t.Errorf("expected only Bob as candidate, got %+v", users)
	}

	users, _ = svc.MemberCandidates(ctx, "g1", "zzz")
	if len(users) != 0 {
		t.Errorf("expected no candidates for unmatched search, got %d", len(users))
	}

	_, err = svc.MemberCandidates(ctx, "missing", "")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshot_CachedUntilMutation(t *testing.T) {
	store := fixtureStore()
	svc := newService(store)
	ctx := context.Background()

	_, _ = svc.Overview(ctx)
	_, _ = svc.DailyContributions(ctx)
	if store.listCalls.Load() != 1 {
		t.Fatalf("expected 1 snapshot fetch, got %d", store.listCalls.Load())
	}

	if _, err := svc.MakeDeposit(ctx, &domain.DepositRequest{UserID: "2", Amount: 10}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, _ = svc.Overview(ctx)
	if store.listCalls.Load() != 2 {
		t.Errorf("expected snapshot refetched after mutation, got %d fetches", store.listCalls.Load())
	}
}

func TestSnapshot_StoreError(t *testing.T) {
	store := fixtureStore()
	store.listErr = &domain.ErrExternalService{Service: "data-api", Err: errors.New("boom")}
	metrics := observability.NewMetrics()
	svc := service.NewAdminService(store, cache.New[any](time.Minute), metrics, zap.NewNop())

	_, err := svc.Overview(context.Background())
	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if metrics.Snapshot().StoreErrors == 0 {
		t.Error("expected store errors to be recorded")
	}
}

func TestMakeDeposit_Validation(t *testing.T) {
	store := fixtureStore()
	svc := newService(store)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   domain.DepositRequest
		field string
	}{
		{"missing user", domain.DepositRequest{Amount: 10}, "userId"},
		{"zero amount", domain.DepositRequest{UserID: "1"}, "amount"},
		{"negative amount", domain.DepositRequest{UserID: "1", Amount: -5}, "amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.MakeDeposit(ctx, &tc.req)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
	if store.depositCalls.Load() != 0 {
		t.Errorf("expected invalid deposits not to reach the store, got %d calls", store.depositCalls.Load())
	}
}

func TestMutation_FailureRecorded(t *testing.T) {
	store := fixtureStore()
	store.mutationErr = &domain.ErrConflict{Message: "already a member"}
	metrics := observability.NewMetrics()
	svc := service.NewAdminService(store, cache.New[any](time.Minute), metrics, zap.NewNop())

	_, err := svc.AddMember(context.Background(), "g1", "1")
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	snap := metrics.Snapshot()
	if snap.Mutations != 1 || snap.FailedMutations != 1 {
		t.Errorf("expected 1 failed mutation, got %+v", snap)
	}
	if snap.StoreErrors != 0 {
		t.Errorf("expected caller errors not counted as store errors, got %d", snap.StoreErrors)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	svc := newService(fixtureStore())
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, &domain.GroupRequest{Name: "   ", TargetAmount: 100})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Errorf("expected name validation error, got %v", err)
	}

	_, err = svc.CreateGroup(ctx, &domain.GroupRequest{Name: "Likelemba"})
	if !errors.As(err, &verr) || verr.Field != "targetAmount" {
		t.Errorf("expected targetAmount validation error, got %v", err)
	}

	g, err := svc.CreateGroup(ctx, &domain.GroupRequest{Name: "  Likelemba ", TargetAmount: 100})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if g.Name != "Likelemba" || g.ID == "" {
		t.Errorf("unexpected group: %+v", g)
	}
}

func TestSendMessage_Validation(t *testing.T) {
	svc := newService(fixtureStore())

	_, err := svc.SendMessage(context.Background(), "1", &domain.MessageRequest{Subject: "Rappel"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "body" {
		t.Errorf("expected body validation error, got %v", err)
	}
}

// TestEndToEnd_WithMemStore drives the service against the in-memory store:
// a deposit made today moves a member out of the missed list, and toggling
// beneficiary status counts as contributing without adding to any total.
func TestEndToEnd_WithMemStore(t *testing.T) {
	users := []domain.User{
		{ID: "1", FullName: "Alice", Status: domain.UserActive},
		{ID: "2", FullName: "Bob", Status: domain.UserActive},
		{ID: "3", FullName: "Chantal", Status: domain.UserActive},
	}
	store := memstore.New(
		memstore.WithClock(func() time.Time { return fixedNow }),
		memstore.WithData(users, nil, nil),
	)
	svc := service.NewAdminService(
		store,
		cache.New[any](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		service.WithClock(func() time.Time { return fixedNow }),
	)
	ctx := context.Background()

	view, err := svc.MissedContributions(ctx, "today")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Count != 3 {
		t.Fatalf("expected all 3 missed, got %d", view.Count)
	}

	if _, err := svc.MakeDeposit(ctx, &domain.DepositRequest{UserID: "1", Amount: 100}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.ToggleBeneficiary(ctx, "2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	view, _ = svc.MissedContributions(ctx, "today")
	if view.Count != 1 || view.Users[0].ID != "3" {
		t.Errorf("expected only Chantal missed, got %+v", view.Users)
	}

	ov, _ := svc.Overview(ctx)
	if ov.Stats.TodayTotal != 100 || ov.Stats.GrandTotal != 100 {
		t.Errorf("expected totals of 100, got today=%d grand=%d", ov.Stats.TodayTotal, ov.Stats.GrandTotal)
	}
	if ov.Stats.ContributorsToday != 2 {
		t.Errorf("expected 2 contributors today, got %d", ov.Stats.ContributorsToday)
	}
}

// stallingStore returns the first transactions listing only once the test
// releases it, after the data has already been read.
type stallingStore struct {
	*memstore.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *stallingStore) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.Store.ListTransactions(ctx)
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return txns, err
}

func TestSnapshot_FetchRacingMutationIsNotCached(t *testing.T) {
	users := []domain.User{
		{ID: "1", FullName: "Alice", Status: domain.UserActive},
		{ID: "2", FullName: "Bob", Status: domain.UserActive},
	}
	store := &stallingStore{
		Store: memstore.New(
			memstore.WithClock(func() time.Time { return fixedNow }),
			memstore.WithData(users, nil, nil),
		),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := service.NewAdminService(
		store,
		cache.New[any](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		service.WithClock(func() time.Time { return fixedNow }),
	)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Overview(ctx)
		done <- err
	}()

	<-store.entered
	if _, err := svc.MakeDeposit(ctx, &domain.DepositRequest{UserID: "2", Amount: 500}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("overview during deposit: %v", err)
	}

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ov.Stats.TodayTotal != 500 {
		t.Errorf("expected today total 500, got %d", ov.Stats.TodayTotal)
	}
	if ov.Stats.MissedToday != 1 {
		t.Errorf("expected 1 missed today, got %d", ov.Stats.MissedToday)
	}
}
