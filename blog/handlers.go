package blog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/miniweb-go/apperror"
	"github.com/user/miniweb-go/auth"
	"github.com/user/miniweb-go/session"
)

// Handlers exposes the blog's post and comment routes.
type Handlers struct {
	store Store
	users *auth.Service
}

// NewHandlers creates the blog handlers.
func NewHandlers(store Store, users *auth.Service) *Handlers {
	return &Handlers{store: store, users: users}
}

// HandleListPosts serves the public feed: every post with its author
// resolved.
func (h *Handlers) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.store.ListPosts(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, posts)
	}
}

// HandleGetPost serves one post fully hydrated: author plus each comment's
// author.
func (h *Handlers) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid post id", err))
			return
		}
		post, err := h.store.GetPost(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleCreatePost creates a post authored by the session user and
// redirects home.
func (h *Handlers) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := session.UserID(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error saving post.", http.StatusInternalServerError)
			return
		}
		post := &Post{
			Title:    r.PostFormValue("title"),
			Content:  r.PostFormValue("content"),
			AuthorID: userID,
		}
		if _, err := h.store.CreatePost(r.Context(), post); err != nil {
			http.Error(w, "Error saving post.", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// HandleAddComment appends a comment by the session user to the post in the
// URL and redirects back to it.
func (h *Handlers) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := session.UserID(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Error finding post.", http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error saving comment.", http.StatusInternalServerError)
			return
		}
		comment := &Comment{
			PostID:   postID,
			AuthorID: userID,
			Content:  r.PostFormValue("content"),
		}
		if _, err := h.store.AddComment(r.Context(), comment); err != nil {
			if apperror.IsNotFound(err) {
				http.Error(w, "Error finding post.", http.StatusNotFound)
				return
			}
			http.Error(w, "Error saving comment.", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/post/"+strconv.FormatInt(postID, 10), http.StatusSeeOther)
	}
}

// HandleProfile serves the session user's own record and posts.
func (h *Handlers) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := session.UserID(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		user, err := h.users.UserByID(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		posts, err := h.store.PostsByAuthor(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, ProfileView{User: user, Posts: posts})
	}
}
