package blog

import (
	"time"

	"github.com/user/miniweb-go/auth"
)

// Post is a blog entry. AuthorID is a non-owning reference: the user may be
// deleted afterwards, leaving it dangling.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment belongs to a post. AuthorID is a non-owning reference like
// Post.AuthorID.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView is a comment with its author reference resolved. Author is
// null when the referenced user no longer exists.
type CommentView struct {
	ID        int64      `json:"id"`
	Author    *auth.User `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

// PostView is a post with its author resolved, and on single-post reads its
// comments resolved as well.
type PostView struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    *auth.User    `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
	Comments  []CommentView `json:"comments,omitempty"`
}

// ProfileView is the authenticated user's own record together with their
// posts.
type ProfileView struct {
	*auth.User
	Posts []Post `json:"posts"`
}
