package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphqlError             `json:"errors"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New([]byte("fakeapi-test-secret"))
	require.NoError(t, err)
	require.NoError(t, s.AddUser("alice", "alice@example.com", "correct-horse"))
	require.NoError(t, s.AddUser("bob", "bob@example.com", "battery-staple"))
	return s
}

func call(t *testing.T, s *Server, token, query string, variables map[string]interface{}) (int, response) {
	t.Helper()
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	s := newTestServer(t)

	code, out := call(t, s, "", "mutation login($u: String!) { login }", map[string]interface{}{
		"username": "alice", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, out.Errors)

	var u struct {
		Username string `json:"username"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(out.Data["login"], &u))
	assert.Equal(t, "alice", u.Username)

	claims, err := s.tokens.Parse(u.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	code, out := call(t, s, "", "mutation login { login }", map[string]interface{}{
		"username": "alice", "password": "nope",
	})
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Wrong credentials", out.Errors[0].Message)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	s := newTestServer(t)
	_, out := call(t, s, "", "mutation register { register }", map[string]interface{}{
		"username": "alice", "email": "a@b.c", "password": "x", "confirmPassword": "x",
	})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "This username is taken", out.Errors[0].Message)
}

func TestMutationsRequireBearer(t *testing.T) {
	s := newTestServer(t)
	id := s.AddPost("alice", "hello")

	_, out := call(t, s, "", "mutation likePost { likePost }", map[string]interface{}{"postId": id})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Authorization header must be provided", out.Errors[0].Message)

	_, out = call(t, s, "garbage", "mutation likePost { likePost }", map[string]interface{}{"postId": id})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Invalid/Expired token", out.Errors[0].Message)
}

func TestLikeToggles(t *testing.T) {
	s := newTestServer(t)
	id := s.AddPost("alice", "hello")
	token, err := s.IssueToken("bob")
	require.NoError(t, err)

	call(t, s, token, "mutation likePost { likePost }", map[string]interface{}{"postId": id})
	p, _ := s.Post(id)
	assert.Equal(t, 1, p.LikeCount)
	assert.True(t, p.LikedBy("bob"))

	call(t, s, token, "mutation likePost { likePost }", map[string]interface{}{"postId": id})
	p, _ = s.Post(id)
	assert.Equal(t, 0, p.LikeCount)
	assert.False(t, p.LikedBy("bob"))
}

func TestCommentOwnership(t *testing.T) {
	s := newTestServer(t)
	id := s.AddPost("alice", "hello")
	commentID := s.AddComment(id, "alice", "first")
	bob, err := s.IssueToken("bob")
	require.NoError(t, err)

	_, out := call(t, s, bob, "mutation createComment { createComment }", map[string]interface{}{"postId": id, "body": "  "})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Empty comment", out.Errors[0].Message)

	_, out = call(t, s, bob, "mutation deleteComment { deleteComment }", map[string]interface{}{"postId": id, "commentId": commentID})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Action not allowed", out.Errors[0].Message)

	_, out = call(t, s, bob, "mutation createComment { createComment }", map[string]interface{}{"postId": id, "body": "nice"})
	require.Empty(t, out.Errors)
	p, _ := s.Post(id)
	require.Equal(t, 2, p.CommentCount)
	assert.Equal(t, "nice", p.Comments[0].Body, "new comments are listed first")
}

func TestDeletePost(t *testing.T) {
	s := newTestServer(t)
	id := s.AddPost("alice", "hello")
	alice, err := s.IssueToken("alice")
	require.NoError(t, err)
	bob, err := s.IssueToken("bob")
	require.NoError(t, err)

	_, out := call(t, s, bob, "mutation deletePost { deletePost }", map[string]interface{}{"postId": id})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Action not allowed", out.Errors[0].Message)

	_, out = call(t, s, alice, "mutation deletePost { deletePost }", map[string]interface{}{"postId": id})
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `"Post deleted successfully"`, string(out.Data["deletePost"]))
	_, ok := s.Post(id)
	assert.False(t, ok)
}

func TestFailNextAndRequests(t *testing.T) {
	s := newTestServer(t)
	s.FailNext("getPosts", "boom")

	_, out := call(t, s, "", "query getPosts { getPosts }", nil)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "boom", out.Errors[0].Message)

	_, out = call(t, s, "", "query getPosts { getPosts }", nil)
	assert.Empty(t, out.Errors)
	assert.JSONEq(t, `[]`, string(out.Data["getPosts"]))

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "getPosts", reqs[1].Operation)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	code, _ := call(t, s, "", "{ getPosts }", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("correct-horse")
	require.NoError(t, err)
	ok, err := verifyPassword("correct-horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = verifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = verifyPassword("x", "$bcrypt$nope")
	assert.Error(t, err)
}
