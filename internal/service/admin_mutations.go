package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	maxGroupNameLen = 120
	maxSubjectLen   = 200
	maxBodyLen      = 4000
)

// mutate relays one admin action to the collaborator, records its outcome
// and drops the cached snapshot on success.
func (s *AdminService) mutate(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.RecordRequestDuration(op, time.Since(start))
	s.metrics.IncrMutation(op, err == nil)

	if err != nil {
		if resilience.IsCallerError(err) {
			s.logger.Warn("admin mutation rejected", zap.String("operation", op), zap.Error(err))
		} else {
			s.storeFailed(op, err)
		}
		return err
	}

	s.invalidate()
	s.logger.Info("admin mutation applied", zap.String("operation", op))
	return nil
}

// ============================================================
// Groups: POST/PUT/DELETE /v1/admin/groups
// ============================================================

func (s *AdminService) CreateGroup(ctx context.Context, req *domain.GroupRequest) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "AdminService.CreateGroup")
	defer span.End()

	group, err := validateGroup(req)
	if err != nil {
		return nil, err
	}

	var created *domain.Group
	err = s.mutate("create_group", func() error {
		var err error
		created, err = s.store.AddGroup(ctx, group)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return created, nil
}

func (s *AdminService) UpdateGroup(ctx context.Context, groupID string, req *domain.GroupRequest) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "AdminService.UpdateGroup")
	defer span.End()
	span.SetAttributes(attribute.String("group.id", groupID))

	group, err := validateGroup(req)
	if err != nil {
		return nil, err
	}
	group.ID = groupID

	var updated *domain.Group
	err = s.mutate("update_group", func() error {
		var err error
		updated, err = s.store.UpdateGroup(ctx, group)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return updated, nil
}

func (s *AdminService) DeleteGroup(ctx context.Context, groupID string) error {
	ctx, span := tracer.Start(ctx, "AdminService.DeleteGroup")
	defer span.End()
	span.SetAttributes(attribute.String("group.id", groupID))

	err := s.mutate("delete_group", func() error {
		return s.store.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// ============================================================
// Membership: /v1/admin/groups/{groupId}/members
// ============================================================

func (s *AdminService) AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "AdminService.AddMember")
	defer span.End()
	span.SetAttributes(
		attribute.String("group.id", groupID),
		attribute.String("user.id", userID),
	)

	if strings.TrimSpace(userID) == "" {
		return nil, &domain.ErrValidation{Field: "userId", Message: "required"}
	}

	var group *domain.Group
	err := s.mutate("add_member", func() error {
		var err error
		group, err = s.store.AddMemberToGroup(ctx, groupID, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	return group, nil
}

func (s *AdminService) RemoveMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "AdminService.RemoveMember")
	defer span.End()
	span.SetAttributes(
		attribute.String("group.id", groupID),
		attribute.String("user.id", userID),
	)

	var group *domain.Group
	err := s.mutate("remove_member", func() error {
		var err error
		group, err = s.store.RemoveMemberFromGroup(ctx, groupID, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}
	return group, nil
}

// ============================================================
// Deposits & status: POST /v1/admin/deposits, /users/{id}/beneficiary
// ============================================================

func (s *AdminService) MakeDeposit(ctx context.Context, req *domain.DepositRequest) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "AdminService.MakeDeposit")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", req.UserID),
		attribute.Int64("amount", req.Amount),
	)

	if strings.TrimSpace(req.UserID) == "" {
		return nil, &domain.ErrValidation{Field: "userId", Message: "required"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	var tx *domain.Transaction
	err := s.mutate("make_deposit", func() error {
		var err error
		tx, err = s.store.MakeDeposit(ctx, req.UserID, req.Amount)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("make deposit: %w", err)
	}
	return tx, nil
}

// ToggleBeneficiary flips the member's tontine beneficiary flag.
func (s *AdminService) ToggleBeneficiary(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "AdminService.ToggleBeneficiary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var user *domain.User
	err := s.mutate("toggle_beneficiary", func() error {
		var err error
		user, err = s.store.ToggleTontineBeneficiaryStatus(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("toggle beneficiary: %w", err)
	}
	return user, nil
}

// ============================================================
// Messaging: POST /v1/admin/users/{userId}/messages
// ============================================================

func (s *AdminService) SendMessage(ctx context.Context, userID string, req *domain.MessageRequest) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "AdminService.SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	switch {
	case subject == "":
		return nil, &domain.ErrValidation{Field: "subject", Message: "required"}
	case len(subject) > maxSubjectLen:
		return nil, &domain.ErrValidation{Field: "subject", Message: fmt.Sprintf("at most %d characters", maxSubjectLen)}
	case body == "":
		return nil, &domain.ErrValidation{Field: "body", Message: "required"}
	case len(body) > maxBodyLen:
		return nil, &domain.ErrValidation{Field: "body", Message: fmt.Sprintf("at most %d characters", maxBodyLen)}
	}

	var msg *domain.Message
	err := s.mutate("send_message", func() error {
		var err error
		msg, err = s.store.AddMessage(ctx, &domain.Message{UserID: userID, Subject: subject, Body: body})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}

func validateGroup(req *domain.GroupRequest) (*domain.Group, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	case len(name) > maxGroupNameLen:
		return nil, &domain.ErrValidation{Field: "name", Message: fmt.Sprintf("at most %d characters", maxGroupNameLen)}
	case req.TargetAmount <= 0:
		return nil, &domain.ErrValidation{Field: "targetAmount", Message: "must be positive"}
	}
	return &domain.Group{
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		TargetAmount: req.TargetAmount,
	}, nil
}
