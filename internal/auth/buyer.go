package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmehra2102/eventia/internal/user/domain"
)

// UserHeader carries the user id asserted by the upstream session provider.
const UserHeader = "X-User-Id"

type buyerKey struct{}

// Directory resolves a session user id to the stored user.
type Directory interface {
	Get(ctx context.Context, id string) (domain.User, error)
}

// Middleware attaches the signed-in buyer to the request context. Requests
// without a known user continue anonymously; handlers decide whether that
// is acceptable.
func Middleware(log *slog.Logger, dir Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(UserHeader))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := dir.Get(r.Context(), id)
			if err != nil {
				if !errors.Is(err, domain.ErrUserNotFound) {
					log.Error("resolve session user failed", "user_id", id, "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithBuyer(r.Context(), u)))
		})
	}
}

func WithBuyer(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, buyerKey{}, u)
}

// BuyerFrom returns the signed-in buyer, if any.
func BuyerFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(buyerKey{}).(domain.User)
	return u, ok
}
