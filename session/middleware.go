package session

import (
	"context"
	"log"
	"net/http"

	"github.com/user/miniweb-go/apperror"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Flash header names. Page routes serve static HTML, so pending flash
// messages surface as headers on the next page response.
const (
	HeaderFlashSuccess = "X-Flash-Success"
	HeaderFlashError   = "X-Flash-Error"
)

// FromContext extracts the request's session.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok
}

// UserID returns the authenticated user's id from the request session.
func UserID(ctx context.Context) (int64, bool) {
	sess, ok := FromContext(ctx)
	if !ok || !sess.Authenticated() {
		return 0, false
	}
	return *sess.UserID, true
}

// Middleware loads the caller's session from the cookie, creating a fresh
// anonymous session when the cookie is absent, unknown, or expired, and
// stashes it in the request context.
func Middleware(store Store, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session

			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				existing, err := store.Get(r.Context(), c.Value)
				switch {
				case err == nil:
					sess = existing
				case apperror.IsNotFound(err):
					// Stale cookie; fall through and mint a new session.
				default:
					log.Printf("session load failed: %v", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
			}

			if sess == nil {
				created, err := store.Create(r.Context())
				if err != nil {
					log.Printf("session create failed: %v", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				sess = created
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  sess.ExpiresAt,
				})
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth gates a route behind an authenticated session. Unauthenticated
// callers are redirected to the login page rather than given a 401; these
// are browser-facing flows.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		if !ok || !sess.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExpireCookie tells the browser to drop the session cookie.
func ExpireCookie(w http.ResponseWriter, cookieName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// EmitFlashes pops the session's pending flash messages onto the response
// headers. A failure here only loses a notice, so it is logged and ignored.
func EmitFlashes(w http.ResponseWriter, r *http.Request, store Store) {
	sess, ok := FromContext(r.Context())
	if !ok {
		return
	}
	success, errMsg, err := store.PopFlashes(r.Context(), sess.ID)
	if err != nil {
		log.Printf("flash pop failed: %v", err)
		return
	}
	if success != "" {
		w.Header().Set(HeaderFlashSuccess, success)
	}
	if errMsg != "" {
		w.Header().Set(HeaderFlashError, errMsg)
	}
}
