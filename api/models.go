package api

import (
	"bytes"
	"encoding/json"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is an ISO-8601 instant as sent by the API.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(timestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Like is one user's like on a post.
type Like struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Comment is a comment on a post.
type Comment struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt Timestamp `json:"createdAt"`
	Body      string    `json:"body"`
}

// Post is a post with its likes and comments.
type Post struct {
	ID           string    `json:"id"`
	Body         string    `json:"body"`
	CreatedAt    Timestamp `json:"createdAt"`
	Username     string    `json:"username"`
	LikeCount    int       `json:"likeCount"`
	Likes        []Like    `json:"likes"`
	CommentCount int       `json:"commentCount"`
	Comments     []Comment `json:"comments"`
}

// LikedBy reports whether username has liked the post.
func (p *Post) LikedBy(username string) bool {
	if p == nil || username == "" {
		return false
	}
	for _, l := range p.Likes {
		if l.Username == username {
			return true
		}
	}
	return false
}

// Comment returns the comment with id.
func (p *Post) Comment(id string) (Comment, bool) {
	if p == nil {
		return Comment{}, false
	}
	for _, c := range p.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// LikeResult is the part of a post returned by likePost.
type LikeResult struct {
	ID        string `json:"id"`
	Likes     []Like `json:"likes"`
	LikeCount int    `json:"likeCount"`
}

// CommentsResult is the part of a post returned by comment mutations.
type CommentsResult struct {
	ID           string    `json:"id"`
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"commentCount"`
}

// User is returned by login and register. Token is the credential to persist.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt Timestamp `json:"createdAt"`
	Token     string    `json:"token"`
}

// RegisterInput carries the fields of the register mutation.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
