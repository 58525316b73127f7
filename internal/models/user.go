package models

import "context"

// CurrentUser is the authenticated caller, used as cashier name on receipts
type CurrentUser struct {
	ID          string
	DisplayName string
}

type userContextKey struct{}

// WithUser returns a context carrying the user
func WithUser(ctx context.Context, u CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFrom returns the user stored in ctx
func UserFrom(ctx context.Context) (CurrentUser, bool) {
	u, ok := ctx.Value(userContextKey{}).(CurrentUser)
	return u, ok
}
