// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// SnapshotReader returns full-list snapshots from the data collaborator.
// There is no pagination at this layer.
type SnapshotReader interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// AdminStore is the full data collaborator contract: snapshot reads plus
// the admin-initiated mutations. Implemented by the in-memory mock store
// and by the remote data API client.
type AdminStore interface {
	SnapshotReader

	// Groups
	AddGroup(ctx context.Context, group *domain.Group) (*domain.Group, error)
	UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error

	// Membership
	AddMemberToGroup(ctx context.Context, groupID, userID string) (*domain.Group, error)
	RemoveMemberFromGroup(ctx context.Context, groupID, userID string) (*domain.Group, error)

	// Money & status
	MakeDeposit(ctx context.Context, userID string, amount int64) (*domain.Transaction, error)
	ToggleTontineBeneficiaryStatus(ctx context.Context, userID string) (*domain.User, error)

	// Messaging
	AddMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
