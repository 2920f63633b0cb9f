package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/eventia/internal/user/domain"
)

type directoryFunc func(ctx context.Context, id string) (domain.User, error)

func (f directoryFunc) Get(ctx context.Context, id string) (domain.User, error) { return f(ctx, id) }

func TestMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := directoryFunc(func(ctx context.Context, id string) (domain.User, error) {
		switch id {
		case "user-1":
			return domain.User{ID: "user-1", Email: "asha@example.com"}, nil
		case "broken":
			return domain.User{}, errors.New("db down")
		}
		return domain.User{}, domain.ErrUserNotFound
	})

	cases := []struct {
		name   string
		header string
		wantOK bool
	}{
		{"no header", "", false},
		{"known user", "user-1", true},
		{"unknown user", "ghost", false},
		{"directory error", "broken", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotOK bool
			var got domain.User
			h := Middleware(log, dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, gotOK = BuyerFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(UserHeader, tc.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tc.wantOK, gotOK)
			if tc.wantOK {
				assert.Equal(t, "asha@example.com", got.Email)
			}
		})
	}
}
