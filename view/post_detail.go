// Package view holds presentation state for goSocial screens.
//
// Views read the session but never change it. Everything a view fetches goes
// through an [async.Request], so a caller can render the pending state and
// re-render when the request settles.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSocial/api"
	"github.com/MrEthical07/goSocial/async"
	"github.com/MrEthical07/goSocial/session"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated is returned by mutations attempted without a session.
	ErrNotAuthenticated = errors.New("view: not authenticated")
	// ErrEmptyComment is returned by SubmitComment when the draft is blank.
	ErrEmptyComment = errors.New("view: empty comment")
	// ErrNotLoaded is returned by mutations before the post has loaded.
	ErrNotLoaded = errors.New("view: post not loaded")
	// ErrNotAllowed is returned when the session user does not own the target.
	ErrNotAllowed = errors.New("view: action not allowed")
)

// Session is the read-only view of the session a view depends on.
type Session interface {
	Current() session.State
}

// PostAPI is the subset of the API client the post detail view calls.
type PostAPI interface {
	GetPost(ctx context.Context, postID string) (*api.Post, error)
	LikePost(ctx context.Context, postID string) (*api.LikeResult, error)
	DeletePost(ctx context.Context, postID string) error
	CreateComment(ctx context.Context, postID, body string) (*api.CommentsResult, error)
	DeleteComment(ctx context.Context, postID, commentID string) (*api.CommentsResult, error)
}

// Option configures a [PostDetail].
type Option func(*PostDetail)

// WithClock sets the reference time for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *PostDetail) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *PostDetail) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithTheme overrides the default rendering theme.
func WithTheme(theme Theme) Option {
	return func(v *PostDetail) { v.theme = theme }
}

// PostDetail is the single-post screen: the post, its likes and comments, and the
// comment draft.
type PostDetail struct {
	postID  string
	session Session
	api     PostAPI
	now     func() time.Time
	logger  *zap.Logger
	theme   Theme

	mu      sync.Mutex
	req     *async.Request[*api.Post]
	post    *api.Post
	draft   string
	deleted bool
}

// NewPostDetail returns a view for postID. Nothing is fetched until Load.
func NewPostDetail(postID string, sess Session, client PostAPI, opts ...Option) *PostDetail {
	v := &PostDetail{
		postID:  postID,
		session: sess,
		api:     client,
		now:     time.Now,
		logger:  zap.NewNop(),
		theme:   DefaultTheme(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// PostID returns the ID the view was created for.
func (v *PostDetail) PostID() string { return v.postID }

// Load starts fetching the post and returns the request. Calling Load again
// refetches and replaces any local edits once the new request succeeds.
func (v *PostDetail) Load(ctx context.Context) *async.Request[*api.Post] {
	req := async.Start(ctx, func(ctx context.Context) (*api.Post, error) {
		return v.api.GetPost(ctx, v.postID)
	})

	v.mu.Lock()
	v.req = req
	v.mu.Unlock()

	req.Subscribe(func(snap async.Snapshot[*api.Post]) {
		if snap.Status == async.Failed {
			v.logger.Debug("post load failed", zap.String("post_id", v.postID), zap.Error(snap.Err))
			return
		}
		if snap.Data == nil {
			return
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.req == req {
			p := *snap.Data
			v.post = &p
		}
	})
	return req
}

// Status reports the state of the most recent Load. Before Load it is Pending.
func (v *PostDetail) Status() (async.Status, error) {
	v.mu.Lock()
	req := v.req
	v.mu.Unlock()
	if req == nil {
		return async.Pending, nil
	}
	snap := req.Snapshot()
	return snap.Status, snap.Err
}

// Post returns a copy of the loaded post, or false while it is not available.
func (v *PostDetail) Post() (api.Post, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.post == nil || v.deleted {
		return api.Post{}, false
	}
	return copyPost(v.post), true
}

// Deleted reports whether DeletePost succeeded.
func (v *PostDetail) Deleted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deleted
}

func (v *PostDetail) username() string {
	return v.session.Current().Username()
}

// CanComment reports whether the comment form is available.
func (v *PostDetail) CanComment() bool {
	return v.session.Current().Authenticated()
}

// CanDeletePost reports whether the session user authored the post.
func (v *PostDetail) CanDeletePost() bool {
	user := v.username()
	v.mu.Lock()
	defer v.mu.Unlock()
	return user != "" && v.post != nil && !v.deleted && v.post.Username == user
}

// CanDeleteComment reports whether the session user authored c.
func (v *PostDetail) CanDeleteComment(c api.Comment) bool {
	user := v.username()
	return user != "" && c.Username == user
}

// Liked reports whether the session user has liked the post.
func (v *PostDetail) Liked() bool {
	user := v.username()
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.post.LikedBy(user)
}

// SetDraft replaces the comment draft.
func (v *PostDetail) SetDraft(body string) {
	v.mu.Lock()
	v.draft = body
	v.mu.Unlock()
}

// Draft returns the comment draft.
func (v *PostDetail) Draft() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// CanSubmit reports whether SubmitComment would send the draft.
func (v *PostDetail) CanSubmit() bool {
	return v.CanComment() && strings.TrimSpace(v.Draft()) != ""
}

// SubmitComment posts the draft. On success the post's comments are replaced by
// the server's list and the draft is cleared; on failure the draft is kept so it
// can be retried.
func (v *PostDetail) SubmitComment(ctx context.Context) error {
	if !v.CanComment() {
		return ErrNotAuthenticated
	}
	body := v.Draft()
	if strings.TrimSpace(body) == "" {
		return ErrEmptyComment
	}

	res, err := v.api.CreateComment(ctx, v.postID, body)
	if err != nil {
		v.logger.Debug("comment submit failed", zap.String("post_id", v.postID), zap.Error(err))
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.applyComments(res)
	if v.draft == body {
		v.draft = ""
	}
	return nil
}

// ToggleLike likes or unlikes the post as the session user.
func (v *PostDetail) ToggleLike(ctx context.Context) error {
	if !v.CanComment() {
		return ErrNotAuthenticated
	}
	res, err := v.api.LikePost(ctx, v.postID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.post != nil && res != nil {
		v.post.Likes = append([]api.Like(nil), res.Likes...)
		v.post.LikeCount = res.LikeCount
	}
	return nil
}

// DeletePost deletes the post. Only its author may do so.
func (v *PostDetail) DeletePost(ctx context.Context) error {
	if !v.CanComment() {
		return ErrNotAuthenticated
	}
	if _, loaded := v.Post(); !loaded {
		return ErrNotLoaded
	}
	if !v.CanDeletePost() {
		return ErrNotAllowed
	}
	if err := v.api.DeletePost(ctx, v.postID); err != nil {
		return err
	}

	v.mu.Lock()
	v.deleted = true
	v.mu.Unlock()
	return nil
}

// DeleteComment deletes one of the session user's comments.
func (v *PostDetail) DeleteComment(ctx context.Context, commentID string) error {
	if !v.CanComment() {
		return ErrNotAuthenticated
	}
	post, loaded := v.Post()
	if !loaded {
		return ErrNotLoaded
	}
	c, ok := post.Comment(commentID)
	if !ok || !v.CanDeleteComment(c) {
		return ErrNotAllowed
	}

	res, err := v.api.DeleteComment(ctx, v.postID, commentID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.applyComments(res)
	return nil
}

// applyComments must be called with mu held.
func (v *PostDetail) applyComments(res *api.CommentsResult) {
	if v.post == nil || res == nil {
		return
	}
	v.post.Comments = append([]api.Comment(nil), res.Comments...)
	v.post.CommentCount = res.CommentCount
}

func copyPost(p *api.Post) api.Post {
	out := *p
	out.Likes = append([]api.Like(nil), p.Likes...)
	out.Comments = append([]api.Comment(nil), p.Comments...)
	return out
}
