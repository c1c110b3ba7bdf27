package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/apperror"
	appctx "docflow/internal/core/context"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
)

func TestNewStatusHistoryEntry(t *testing.T) {
	docID := id.New()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))

	e := NewStatusHistoryEntry(KindInvoice, docID, entity.StatusDraft, entity.StatusPending, "u-1", "ready", now)

	assert.False(t, id.IsNil(e.ID))
	assert.Equal(t, docID, e.DocumentID)
	assert.Equal(t, entity.StatusPending, e.Status)
	assert.Equal(t, entity.StatusDraft, e.PreviousStatus)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.True(t, e.CreatedAt.Equal(now))
}

func TestActorFromContext(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u-42"})
	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, Actor("u-42"), actor)
	assert.False(t, actor.IsSystem())
}

func TestActorFromContext_NoUser(t *testing.T) {
	actor, err := ActorFromContext(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	assert.Empty(t, actor)
}

func TestActorFromContext_ReservedUserID(t *testing.T) {
	for _, userID := range []string{"system", "SYSTEM", " system "} {
		ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID})
		actor, err := ActorFromContext(ctx)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), userID)
		assert.False(t, actor.IsSystem(), userID)
	}
}

func TestIsReservedUserID(t *testing.T) {
	assert.True(t, IsReservedUserID("system"))
	assert.True(t, IsReservedUserID("System"))
	assert.False(t, IsReservedUserID("systems"))
	assert.False(t, IsReservedUserID("u-1"))
}

func TestEnrichCreatedBy(t *testing.T) {
	doc := entity.NewDocument(id.New(), time.Now())
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u-7"})

	assert.NoError(t, EnrichCreatedBy(ctx, &doc))
	assert.Equal(t, "u-7", doc.CreatedBy)
	assert.Equal(t, "u-7", doc.UpdatedBy)

	assert.NoError(t, EnrichUpdatedBy(appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-8"}), &doc))
	assert.Equal(t, "u-7", doc.CreatedBy)
	assert.Equal(t, "u-8", doc.UpdatedBy)
}
