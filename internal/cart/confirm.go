package cart

import "context"

// Confirmer gates destructive cart operations. Clearing the cart asks the
// confirmer first and aborts when it declines.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// AutoConfirm approves every prompt. API callers express consent explicitly
// in the request, so by the time Clear runs the question is already answered.
var AutoConfirm Confirmer = ConfirmerFunc(func(context.Context, string) bool { return true })
