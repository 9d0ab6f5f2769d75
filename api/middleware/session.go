package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/arkfood/ordering-backend/api/responses"
	"github.com/arkfood/ordering-backend/pkg/config"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"github.com/arkfood/ordering-backend/pkg/logger"
	"github.com/arkfood/ordering-backend/pkg/session"
)

const (
	sessionHeader = "X-Cart-Session"
	sessionCookie = "ark_cart_session"
)

type sessionCtxKey struct{}

// WithSessionID attaches a cart session id to the context, the same way
// the Session middleware does.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sessionID)
}

// SessionIDFromContext returns the cart session id attached by Session.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// Session identifies the guest cart session. A valid token in the header or
// cookie keeps its session; anything else gets a fresh session minted
// transparently, so a first-time visitor never sees an auth error.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(sessionHeader)
			if token == "" {
				if cookie, err := r.Cookie(sessionCookie); err == nil {
					token = cookie.Value
				}
			}

			var sessionID string
			if token != "" {
				claims, err := session.Parse(cfg, token)
				if err == nil {
					sessionID = claims.SessionID
				} else if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "rejecting cart session token")
				}
			}

			if sessionID == "" {
				minted, id, err := session.Mint(cfg, time.Now())
				if err != nil {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting cart session failed"))
					return
				}
				sessionID = id

				w.Header().Set(sessionHeader, minted)
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    minted,
					Path:     "/",
					MaxAge:   int(cfg.TTL() / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
