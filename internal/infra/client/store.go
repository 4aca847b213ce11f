package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// ============================================================
// Reads
// ============================================================

// ListUsers fetches every member.
func (d *DataClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := d.do(ctx, call{op: "ListUsers", method: http.MethodGet, path: "/users", resource: "users", out: &users})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListGroups fetches every tontine group with its member ids.
func (d *DataClient) ListGroups(ctx context.Context) ([]domain.Group, error) {
	groups := []domain.Group{}
	err := d.do(ctx, call{op: "ListGroups", method: http.MethodGet, path: "/groups", resource: "groups", out: &groups})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListTransactions fetches the full ledger.
func (d *DataClient) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txns := []domain.Transaction{}
	err := d.do(ctx, call{op: "ListTransactions", method: http.MethodGet, path: "/transactions", resource: "transactions", out: &txns})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ============================================================
// Groups
// ============================================================

func (d *DataClient) AddGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	var out domain.Group
	err := d.do(ctx, call{
		op:       "AddGroup",
		method:   http.MethodPost,
		path:     "/groups",
		resource: "group",
		body:     group,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DataClient) UpdateGroup(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	var out domain.Group
	err := d.do(ctx, call{
		op:       "UpdateGroup",
		method:   http.MethodPut,
		path:     "/groups/" + url.PathEscape(group.ID),
		resource: "group",
		id:       group.ID,
		body:     group,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DataClient) DeleteGroup(ctx context.Context, groupID string) error {
	return d.do(ctx, call{
		op:       "DeleteGroup",
		method:   http.MethodDelete,
		path:     "/groups/" + url.PathEscape(groupID),
		resource: "group",
		id:       groupID,
	})
}

// ============================================================
// Membership
// ============================================================

func (d *DataClient) AddMemberToGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	var out domain.Group
	err := d.do(ctx, call{
		op:       "AddMemberToGroup",
		method:   http.MethodPost,
		path:     "/groups/" + url.PathEscape(groupID) + "/members",
		resource: "group",
		id:       groupID,
		body:     domain.MemberRequest{UserID: userID},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DataClient) RemoveMemberFromGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	var out domain.Group
	err := d.do(ctx, call{
		op:       "RemoveMemberFromGroup",
		method:   http.MethodDelete,
		path:     "/groups/" + url.PathEscape(groupID) + "/members/" + url.PathEscape(userID),
		resource: "member",
		id:       userID,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Money & status
// ============================================================

func (d *DataClient) MakeDeposit(ctx context.Context, userID string, amount int64) (*domain.Transaction, error) {
	var out domain.Transaction
	err := d.do(ctx, call{
		op:       "MakeDeposit",
		method:   http.MethodPost,
		path:     "/deposits",
		resource: "user",
		id:       userID,
		body:     domain.DepositRequest{UserID: userID, Amount: amount},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DataClient) ToggleTontineBeneficiaryStatus(ctx context.Context, userID string) (*domain.User, error) {
	var out domain.User
	err := d.do(ctx, call{
		op:       "ToggleTontineBeneficiaryStatus",
		method:   http.MethodPost,
		path:     "/users/" + url.PathEscape(userID) + "/beneficiary/toggle",
		resource: "user",
		id:       userID,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Messaging
// ============================================================

func (d *DataClient) AddMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	var out domain.Message
	err := d.do(ctx, call{
		op:       "AddMessage",
		method:   http.MethodPost,
		path:     "/users/" + url.PathEscape(msg.UserID) + "/messages",
		resource: "user",
		id:       msg.UserID,
		body:     domain.MessageRequest{Subject: msg.Subject, Body: msg.Body},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
