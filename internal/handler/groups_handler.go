package handler

import (
	"net/http"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Groups: /v1/admin/groups
// ============================================================

func createGroupHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/groups")
		defer span.End()

		var req domain.GroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		group, err := svc.CreateGroup(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeMutation(w, http.StatusCreated, "group created", group.ID, group)
	}
}

func updateGroupHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/groups/{groupId}")
		defer span.End()

		groupID := chi.URLParam(r, "groupId")
		span.SetAttributes(attribute.String("group.id", groupID))

		var req domain.GroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		group, err := svc.UpdateGroup(ctx, groupID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeMutation(w, http.StatusOK, "group updated", group.ID, group)
	}
}

func deleteGroupHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/groups/{groupId}")
		defer span.End()

		groupID := chi.URLParam(r, "groupId")
		span.SetAttributes(attribute.String("group.id", groupID))

		if err := svc.DeleteGroup(ctx, groupID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeMutation(w, http.StatusOK, "group deleted", groupID, nil)
	}
}

// ============================================================
// Membership: /v1/admin/groups/{groupId}/members
// ============================================================

func memberCandidatesHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/groups/{groupId}/candidates")
		defer span.End()

		users, err := svc.MemberCandidates(ctx, chi.URLParam(r, "groupId"), r.URL.Query().Get("search"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func addMemberHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/groups/{groupId}/members")
		defer span.End()

		var req domain.MemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		group, err := svc.AddMember(ctx, chi.URLParam(r, "groupId"), req.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeMutation(w, http.StatusOK, "member added", group.ID, group)
	}
}

func removeMemberHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/groups/{groupId}/members/{userId}")
		defer span.End()

		group, err := svc.RemoveMember(ctx, chi.URLParam(r, "groupId"), chi.URLParam(r, "userId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeMutation(w, http.StatusOK, "member removed", group.ID, group)
	}
}

// ============================================================
// Members & ledger
// ============================================================

func makeDepositHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/deposits")
		defer span.End()

		var req domain.DepositRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tx, err := svc.MakeDeposit(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		logger.Info("deposit recorded",
			zap.String("admin", AdminFromContext(ctx)),
			zap.String("user_id", tx.UserID),
			zap.Int64("amount", tx.Amount),
		)
		writeMutation(w, http.StatusCreated, "deposit recorded", tx.ID, tx)
	}
}

func toggleBeneficiaryHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users/{userId}/beneficiary")
		defer span.End()

		user, err := svc.ToggleBeneficiary(ctx, chi.URLParam(r, "userId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		msg := "beneficiary status revoked"
		if user.TontineBeneficiary {
			msg = "beneficiary status granted"
		}
		writeMutation(w, http.StatusOK, msg, user.ID, user)
	}
}

func sendMessageHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users/{userId}/messages")
		defer span.End()

		var req domain.MessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		msg, err := svc.SendMessage(ctx, chi.URLParam(r, "userId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeMutation(w, http.StatusCreated, "message sent", msg.ID, msg)
	}
}
