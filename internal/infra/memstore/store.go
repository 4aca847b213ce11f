// Package memstore is the in-memory data collaborator: a single-process
// stand-in for the tontine back office that owns Users, Groups,
// Transactions and Messages.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/port"
)

var _ port.AdminStore = (*Store)(nil)

const (
	dayLayout       = "2006-01-02"
	timestampLayout = "2006-01-02 15:04"
)

// Store is a thread-safe in-memory implementation of port.AdminStore.
// Reads return deep copies; callers never share state with the store.
type Store struct {
	mu           sync.RWMutex
	users        []domain.User
	groups       []domain.Group
	transactions []domain.Transaction
	messages     []domain.Message

	now   func() time.Time
	newID func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp deposits, groups and messages.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithData preloads the store.
func WithData(users []domain.User, groups []domain.Group, txns []domain.Transaction) Option {
	return func(s *Store) {
		s.users = slices.Clone(users)
		s.groups = make([]domain.Group, len(groups))
		for i, g := range groups {
			s.groups[i] = cloneGroup(g)
		}
		s.transactions = slices.Clone(txns)
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================
// Snapshot reads
// ============================================================

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users), nil
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = cloneGroup(g)
	}
	return out, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions), nil
}

// ListMessages returns the messages sent to userID, oldest first.
func (s *Store) ListMessages(ctx context.Context, userID string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Message
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ============================================================
// Groups
// ============================================================

func (s *Store) AddGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groupNameTaken(group.Name, "") {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("group %q already exists", group.Name)}
	}

	g := domain.Group{
		ID:           s.newID(),
		Name:         group.Name,
		Description:  group.Description,
		TargetAmount: group.TargetAmount,
		CreatedAt:    s.now().Format(dayLayout),
		Members:      []string{},
	}
	s.groups = append(s.groups, g)

	out := cloneGroup(g)
	return &out, nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(group.ID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "group", ID: group.ID}
	}
	if s.groupNameTaken(group.Name, group.ID) {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("group %q already exists", group.Name)}
	}

	s.groups[i].Name = group.Name
	s.groups[i].Description = group.Description
	s.groups[i].TargetAmount = group.TargetAmount

	out := cloneGroup(s.groups[i])
	return &out, nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(groupID)
	if i < 0 {
		return &domain.ErrNotFound{Resource: "group", ID: groupID}
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	return nil
}

// ============================================================
// Membership
// ============================================================

func (s *Store) AddMemberToGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(groupID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "group", ID: groupID}
	}
	if s.userIndex(userID) < 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	if s.groups[i].HasMember(userID) {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("user %s is already a member of %s", userID, s.groups[i].Name)}
	}

	s.groups[i].Members = append(s.groups[i].Members, userID)
	s.groups[i].MemberCount = len(s.groups[i].Members)

	out := cloneGroup(s.groups[i])
	return &out, nil
}

func (s *Store) RemoveMemberFromGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(groupID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "group", ID: groupID}
	}
	j := slices.Index(s.groups[i].Members, userID)
	if j < 0 {
		return nil, &domain.ErrNotFound{Resource: "member", ID: userID}
	}

	s.groups[i].Members = slices.Delete(s.groups[i].Members, j, j+1)
	s.groups[i].MemberCount = len(s.groups[i].Members)

	out := cloneGroup(s.groups[i])
	return &out, nil
}

// ============================================================
// Money & status
// ============================================================

// MakeDeposit records a settled deposit stamped with the current minute.
func (s *Store) MakeDeposit(ctx context.Context, userID string, amount int64) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}

	tx := domain.Transaction{
		ID:       s.newID(),
		UserID:   userID,
		UserName: s.users[i].FullName,
		Type:     domain.TxDeposit,
		Amount:   amount,
		Status:   domain.TxSuccess,
		Date:     s.now().Format(timestampLayout),
	}
	s.transactions = append(s.transactions, tx)
	return &tx, nil
}

// ToggleTontineBeneficiaryStatus flips the member's beneficiary flag and
// records the change as a settled status_change transaction.
func (s *Store) ToggleTontineBeneficiaryStatus(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}

	s.users[i].TontineBeneficiary = !s.users[i].TontineBeneficiary
	reason := "tontine beneficiary revoked"
	if s.users[i].TontineBeneficiary {
		reason = "tontine beneficiary granted"
	}

	s.transactions = append(s.transactions, domain.Transaction{
		ID:       s.newID(),
		UserID:   userID,
		UserName: s.users[i].FullName,
		Type:     domain.TxStatusChange,
		Status:   domain.TxSuccess,
		Date:     s.now().Format(timestampLayout),
		Reason:   reason,
	})

	u := s.users[i]
	return &u, nil
}

// ============================================================
// Messaging
// ============================================================

func (s *Store) AddMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(msg.UserID) < 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: msg.UserID}
	}

	m := domain.Message{
		ID:        s.newID(),
		UserID:    msg.UserID,
		Subject:   msg.Subject,
		Body:      msg.Body,
		CreatedAt: s.now().Format(time.RFC3339),
	}
	s.messages = append(s.messages, m)
	return &m, nil
}

// ============================================================
// helpers (callers hold the lock)
// ============================================================

func (s *Store) groupIndex(id string) int {
	return slices.IndexFunc(s.groups, func(g domain.Group) bool { return g.ID == id })
}

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
}

func (s *Store) groupNameTaken(name, exceptID string) bool {
	return slices.ContainsFunc(s.groups, func(g domain.Group) bool {
		return g.ID != exceptID && strings.EqualFold(g.Name, name)
	})
}

func cloneGroup(g domain.Group) domain.Group {
	g.Members = slices.Clone(g.Members)
	if g.Members == nil {
		g.Members = []string{}
	}
	return g
}
