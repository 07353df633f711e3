package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/miniweb-go/apperror"
	"github.com/user/miniweb-go/session"
)

// Handlers exposes the auth HTTP surface shared by the blog and money
// tracker apps.
type Handlers struct {
	service       *Service
	sessions      session.Store
	cookieName    string
	loginRedirect string // where a successful login lands
}

// NewHandlers creates the auth handlers. loginRedirect is app-specific:
// "/" for the blog, "/dashboard" for the money tracker.
func NewHandlers(service *Service, sessions session.Store, cookieName, loginRedirect string) *Handlers {
	return &Handlers{
		service:       service,
		sessions:      sessions,
		cookieName:    cookieName,
		loginRedirect: loginRedirect,
	}
}

// HandleRegister accepts the registration form, creates the user, and
// redirects with a flash notice.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.flashAndRedirect(w, r, session.FlashError, MsgRegisterError, "/register")
			return
		}
		form := RegisterForm{
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}

		if _, err := h.service.Register(r.Context(), form); err != nil {
			if appErr, ok := apperror.FromError(err); ok && appErr.Type == apperror.InternalError {
				// Hashing failure is not a user problem; fail the request.
				log.Printf("register failed: %v", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			h.flashAndRedirect(w, r, session.FlashError, MsgRegisterError, "/register")
			return
		}

		h.flashAndRedirect(w, r, session.FlashSuccess, MsgRegistered, "/login")
	}
}

// HandleLogin checks credentials and authenticates the session.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.flashAndRedirect(w, r, session.FlashError, MsgNoUser, "/login")
			return
		}
		form := LoginForm{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}

		user, err := h.service.Login(r.Context(), form)
		if err != nil {
			if apperror.IsAuthError(err) {
				appErr, _ := apperror.FromError(err)
				h.flashAndRedirect(w, r, session.FlashError, appErr.Message, "/login")
				return
			}
			log.Printf("login failed: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		sess, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if err := h.sessions.SetUser(r.Context(), sess.ID, user.ID); err != nil {
			log.Printf("session bind failed: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, h.loginRedirect, http.StatusSeeOther)
	}
}

// HandleLogout destroys the session and drops the cookie.
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := session.FromContext(r.Context()); ok {
			if err := h.sessions.Destroy(r.Context(), sess.ID); err != nil {
				log.Printf("session destroy failed: %v", err)
			}
		}
		session.ExpireCookie(w, h.cookieName)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (h *Handlers) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, msg, target string) {
	if sess, ok := session.FromContext(r.Context()); ok {
		if err := h.sessions.AddFlash(r.Context(), sess.ID, kind, msg); err != nil {
			log.Printf("flash store failed: %v", err)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// WriteJSON serializes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized JSON error response for data routes.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
