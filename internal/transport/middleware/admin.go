package middleware

import (
	"context"

	"github.com/serenvoice/backend/internal/domain"
	"github.com/serenvoice/backend/pkg/ctxutil"
)

// RequireAdmin returns domain.ErrForbidden if the context user is not admin.
// Use inside REST handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	if ctxutil.UserRoleFromCtx(ctx) != "admin" {
		return domain.ErrForbidden
	}
	return nil
}
