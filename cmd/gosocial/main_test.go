package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	goSocial "github.com/MrEthical07/goSocial"
	"github.com/MrEthical07/goSocial/internal/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCLIEnv(t *testing.T) *fakeapi.Server {
	t.Helper()

	fake, err := fakeapi.New([]byte("cli-test-secret"))
	require.NoError(t, err)
	require.NoError(t, fake.AddUser("alice", "alice@example.com", "correct-horse"))
	require.NoError(t, fake.AddUser("bob", "bob@example.com", "battery-staple"))

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv(goSocial.EnvEndpoint, srv.URL)
	t.Setenv(goSocial.EnvStorage, "file")
	t.Setenv(goSocial.EnvStoragePath, filepath.Join(t.TempDir(), "storage.json"))
	return fake
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	newCLIEnv(t)

	out, err := run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	out, err = run(t, "correct-horse\n", "login", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	out, err = run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice <alice@example.com>")
	assert.Contains(t, out, "storage: file")

	out, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestLoginWrongPassword(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "", "login", "alice", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wrong credentials")
}

func TestRegisterReadsConfirmation(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "pw-one\npw-two\n", "register", "carol", "carol@example.com")
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "passwords must match")

	out, err := run(t, "pw-one\npw-one\n", "register", "carol", "carol@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as carol")
}

func TestPostCommands(t *testing.T) {
	fake := newCLIEnv(t)
	postID := fake.AddPost("bob", "hello from bob")

	out, err := run(t, "", "posts")
	require.NoError(t, err)
	assert.Contains(t, out, postID)
	assert.Contains(t, out, "hello from bob")

	_, err = run(t, "", "login", "alice", "-p", "correct-horse")
	require.NoError(t, err)

	out, err = run(t, "", "comment", postID, "nice", "post")
	require.NoError(t, err)
	assert.Contains(t, out, "nice post")
	assert.Contains(t, out, "1 comment")

	out, err = run(t, "", "like", postID)
	require.NoError(t, err)
	assert.Contains(t, out, "1 like (liked)")

	_, err = run(t, "", "delete", postID)
	assert.Error(t, err, "alice must not delete bob's post")

	post, ok := fake.Post(postID)
	require.True(t, ok)
	require.Len(t, post.Comments, 1)

	out, err = run(t, "", "delete", postID, post.Comments[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "0 comments")

	out, err = run(t, "", "publish", "my", "own", "post")
	require.NoError(t, err)
	assert.Contains(t, out, "Published ")
	ownID := strings.TrimSpace(strings.TrimPrefix(out, "Published "))

	out, err = run(t, "", "delete", ownID)
	require.NoError(t, err)
	assert.Contains(t, out, "Post deleted.")
	_, ok = fake.Post(ownID)
	assert.False(t, ok)
}

func TestPublishRequiresLogin(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "", "publish", "anonymous")
	assert.ErrorIs(t, err, goSocial.ErrNotAuthenticated)
}

func TestPostNotFound(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "", "post", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Post not found")
}

func TestConfigFileAndMetricsFlag(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "whoami")
	require.Error(t, err)

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--metrics", "posts"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, errOut.String(), "gosocial_query_success_total 1")
}
