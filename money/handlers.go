package money

import (
	"log"
	"net/http"
	"strconv"

	"github.com/user/miniweb-go/apperror"
	"github.com/user/miniweb-go/auth"
	"github.com/user/miniweb-go/session"
)

// MsgTransactionInvalid is flashed when a submitted transaction fails
// validation.
const MsgTransactionInvalid = "Error saving transaction."

// Handlers exposes the money tracker's transaction routes.
type Handlers struct {
	service  *Service
	sessions session.Store
}

// NewHandlers creates the money tracker handlers.
func NewHandlers(service *Service, sessions session.Store) *Handlers {
	return &Handlers{service: service, sessions: sessions}
}

// HandleCreate records a transaction for the session user and redirects to
// the dashboard. Invalid input flashes an error and redirects back;
// persistence failure is a 500.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := session.UserID(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			h.flashInvalid(w, r)
			return
		}

		amount, err := strconv.ParseFloat(r.PostFormValue("amount"), 64)
		if err != nil {
			h.flashInvalid(w, r)
			return
		}
		form := CreateForm{
			Type:        r.PostFormValue("type"),
			Amount:      amount,
			Description: r.PostFormValue("description"),
		}

		if _, err := h.service.Create(r.Context(), form, userID); err != nil {
			if apperror.IsValidationError(err) {
				h.flashInvalid(w, r)
				return
			}
			http.Error(w, "Error saving transaction.", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// HandleList serves the session user's transactions as JSON, newest first.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := session.UserID(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		txs, err := h.service.ListByUser(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, txs)
	}
}

func (h *Handlers) flashInvalid(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		if err := h.sessions.AddFlash(r.Context(), sess.ID, session.FlashError, MsgTransactionInvalid); err != nil {
			log.Printf("flash store failed: %v", err)
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
