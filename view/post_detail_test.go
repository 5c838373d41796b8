package view

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSocial/api"
	"github.com/MrEthical07/goSocial/async"
	"github.com/MrEthical07/goSocial/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type staticSession struct{ state session.State }

func (s staticSession) Current() session.State { return s.state }

func as(username string) staticSession {
	if username == "" {
		return staticSession{state: session.AnonymousState()}
	}
	return staticSession{state: session.AuthenticatedState("tok-"+username, session.Identity{Username: username})}
}

type stubAPI struct {
	mu         sync.Mutex
	post       *api.Post
	getErr     error
	commentErr error
	gate       chan struct{}
	calls      []string
}

func (s *stubAPI) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *stubAPI) GetPost(ctx context.Context, _ string) (*api.Post, error) {
	s.record("getPost")
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.getErr != nil {
		return nil, s.getErr
	}
	p := *s.post
	return &p, nil
}

func (s *stubAPI) LikePost(_ context.Context, _ string) (*api.LikeResult, error) {
	s.record("likePost")
	return &api.LikeResult{ID: s.post.ID, Likes: []api.Like{{Username: "bob"}}, LikeCount: 1}, nil
}

func (s *stubAPI) DeletePost(_ context.Context, _ string) error {
	s.record("deletePost")
	return nil
}

func (s *stubAPI) CreateComment(_ context.Context, _ string, body string) (*api.CommentsResult, error) {
	s.record("createComment")
	if s.commentErr != nil {
		return nil, s.commentErr
	}
	comments := append([]api.Comment{{ID: "c-new", Username: "bob", Body: body}}, s.post.Comments...)
	return &api.CommentsResult{ID: s.post.ID, Comments: comments, CommentCount: len(comments)}, nil
}

func (s *stubAPI) DeleteComment(_ context.Context, _ string, commentID string) (*api.CommentsResult, error) {
	s.record("deleteComment")
	var kept []api.Comment
	for _, c := range s.post.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	return &api.CommentsResult{ID: s.post.ID, Comments: kept, CommentCount: len(kept)}, nil
}

func samplePost() *api.Post {
	return &api.Post{
		ID:           "p1",
		Body:         "hello world",
		Username:     "alice",
		CreatedAt:    api.Timestamp{Time: testNow.Add(-5 * time.Minute)},
		CommentCount: 2,
		Comments: []api.Comment{
			{ID: "c1", Username: "alice", Body: "first", CreatedAt: api.Timestamp{Time: testNow.Add(-2 * time.Hour)}},
			{ID: "c2", Username: "bob", Body: "second", CreatedAt: api.Timestamp{Time: testNow.Add(-time.Hour)}},
		},
	}
}

func loaded(t *testing.T, user string, stub *stubAPI) *PostDetail {
	t.Helper()
	v := NewPostDetail("p1", as(user), stub, WithClock(func() time.Time { return testNow }))
	_, err := v.Load(context.Background()).Wait(context.Background())
	require.NoError(t, err)
	return v
}

func TestRenderShowsLoadingUntilPostArrives(t *testing.T) {
	stub := &stubAPI{post: samplePost(), gate: make(chan struct{})}
	v := NewPostDetail("p1", as(""), stub, WithClock(func() time.Time { return testNow }))

	assert.Equal(t, LoadingText+"\n", v.String())

	req := v.Load(context.Background())
	assert.Equal(t, async.Pending, req.Snapshot().Status)
	assert.Equal(t, LoadingText+"\n", v.String())

	close(stub.gate)
	_, err := req.Wait(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "5 minutes ago")
	assert.Contains(t, out, "0 likes")
	assert.Contains(t, out, "2 comments")
	assert.NotContains(t, out, "Post a comment")
	assert.NotContains(t, out, "[delete")
}

func TestRenderFailure(t *testing.T) {
	stub := &stubAPI{getErr: errors.New("network down")}
	v := NewPostDetail("p1", as(""), stub)
	_, err := v.Load(context.Background()).Wait(context.Background())
	require.Error(t, err)

	status, loadErr := v.Status()
	assert.Equal(t, async.Failed, status)
	assert.EqualError(t, loadErr, "network down")
	assert.Contains(t, v.String(), "Could not load post: network down")
}

func TestPermissionsFollowSessionUser(t *testing.T) {
	post := samplePost()

	anon := loaded(t, "", &stubAPI{post: post})
	assert.False(t, anon.CanComment())
	assert.False(t, anon.CanDeletePost())
	assert.False(t, anon.CanDeleteComment(post.Comments[0]))

	author := loaded(t, "alice", &stubAPI{post: post})
	assert.True(t, author.CanComment())
	assert.True(t, author.CanDeletePost())
	assert.True(t, author.CanDeleteComment(post.Comments[0]))
	assert.False(t, author.CanDeleteComment(post.Comments[1]))

	other := loaded(t, "bob", &stubAPI{post: post})
	assert.True(t, other.CanComment())
	assert.False(t, other.CanDeletePost())
	assert.True(t, other.CanDeleteComment(post.Comments[1]))

	out := author.String()
	assert.Contains(t, out, "Post a comment")
	assert.Contains(t, out, "[delete c1]")
	assert.NotContains(t, out, "[delete c2]")
}

func TestSubmitCommentClearsDraftOnSuccess(t *testing.T) {
	stub := &stubAPI{post: samplePost()}
	v := loaded(t, "bob", stub)

	assert.False(t, v.CanSubmit())
	v.SetDraft("nice post")
	assert.True(t, v.CanSubmit())

	require.NoError(t, v.SubmitComment(context.Background()))
	assert.Empty(t, v.Draft())

	p, ok := v.Post()
	require.True(t, ok)
	assert.Equal(t, 3, p.CommentCount)
	assert.Equal(t, "nice post", p.Comments[0].Body)
}

func TestSubmitCommentKeepsDraftOnFailure(t *testing.T) {
	stub := &stubAPI{post: samplePost(), commentErr: errors.New("boom")}
	v := loaded(t, "bob", stub)
	v.SetDraft("nice post")

	require.Error(t, v.SubmitComment(context.Background()))
	assert.Equal(t, "nice post", v.Draft())
	p, _ := v.Post()
	assert.Equal(t, 2, p.CommentCount)
}

func TestSubmitCommentGuards(t *testing.T) {
	stub := &stubAPI{post: samplePost()}

	anon := loaded(t, "", stub)
	anon.SetDraft("hi")
	assert.ErrorIs(t, anon.SubmitComment(context.Background()), ErrNotAuthenticated)

	bob := loaded(t, "bob", stub)
	bob.SetDraft("   ")
	assert.False(t, bob.CanSubmit())
	assert.ErrorIs(t, bob.SubmitComment(context.Background()), ErrEmptyComment)

	assert.Equal(t, []string{"getPost", "getPost"}, stub.calls)
}

func TestToggleLike(t *testing.T) {
	v := loaded(t, "bob", &stubAPI{post: samplePost()})
	assert.False(t, v.Liked())
	require.NoError(t, v.ToggleLike(context.Background()))
	assert.True(t, v.Liked())
	assert.True(t, strings.Contains(v.String(), "1 like (liked)"))
}

func TestDeletePost(t *testing.T) {
	stub := &stubAPI{post: samplePost()}

	bob := loaded(t, "bob", stub)
	assert.ErrorIs(t, bob.DeletePost(context.Background()), ErrNotAllowed)

	alice := loaded(t, "alice", stub)
	require.NoError(t, alice.DeletePost(context.Background()))
	assert.True(t, alice.Deleted())
	_, ok := alice.Post()
	assert.False(t, ok)
	assert.Equal(t, "Post deleted.\n", alice.String())
}

func TestDeleteComment(t *testing.T) {
	stub := &stubAPI{post: samplePost()}
	v := loaded(t, "bob", stub)

	assert.ErrorIs(t, v.DeleteComment(context.Background(), "c1"), ErrNotAllowed)
	assert.ErrorIs(t, v.DeleteComment(context.Background(), "missing"), ErrNotAllowed)

	require.NoError(t, v.DeleteComment(context.Background(), "c2"))
	p, _ := v.Post()
	assert.Equal(t, 1, p.CommentCount)
	_, still := p.Comment("c2")
	assert.False(t, still)
}

func TestMutationsBeforeLoad(t *testing.T) {
	v := NewPostDetail("p1", as("alice"), &stubAPI{post: samplePost()})
	assert.ErrorIs(t, v.DeletePost(context.Background()), ErrNotLoaded)
	assert.ErrorIs(t, v.DeleteComment(context.Background(), "c1"), ErrNotLoaded)
}
