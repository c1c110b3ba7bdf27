// Package audit provides the status history trail and audit field enrichment.
package audit

import (
	"context"

	"docflow/internal/core/apperror"
	appctx "docflow/internal/core/context"
)

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the context user.
// Use in BeforeCreate hooks. No-op without an authenticated user.
func EnrichCreatedBy(ctx context.Context, entity any) error {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return nil
	}

	if e, ok := entity.(interface{ SetCreatedBy(string) }); ok {
		e.SetCreatedBy(userID)
	}
	return nil
}

// EnrichUpdatedBy sets only UpdatedBy. Use in BeforeUpdate hooks.
func EnrichUpdatedBy(ctx context.Context, entity any) error {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return nil
	}

	if e, ok := entity.(interface{ SetUpdatedBy(string) }); ok {
		e.SetUpdatedBy(userID)
	}
	return nil
}

// ActorFromContext returns the authenticated user as an Actor. Scheduled
// jobs pass SystemActor explicitly and never go through here.
func ActorFromContext(ctx context.Context) (Actor, error) {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return "", apperror.NewUnauthorized("authenticated user required")
	}
	if IsReservedUserID(userID) {
		return "", apperror.NewForbidden("user id is reserved").WithDetail("userId", userID)
	}
	return Actor(userID), nil
}
