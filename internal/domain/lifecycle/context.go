package lifecycle

import (
	"context"
	"time"

	"docflow/internal/core/entity"
	"docflow/internal/domain/audit"
)

// Transition describes the change being applied. Hooks read it from context.
type Transition struct {
	Kind    audit.DocumentKind
	From    entity.Status
	To      entity.Status
	Actor   audit.Actor
	Comment string
	Payment *PaymentData
	At      time.Time
}

type transitionKey struct{}

// WithTransition stores t in ctx.
func WithTransition(ctx context.Context, t *Transition) context.Context {
	return context.WithValue(ctx, transitionKey{}, t)
}

// TransitionFromContext returns the transition being applied, if any.
func TransitionFromContext(ctx context.Context) (*Transition, bool) {
	t, ok := ctx.Value(transitionKey{}).(*Transition)
	return t, ok
}
