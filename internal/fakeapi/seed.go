package fakeapi

import (
	"errors"
	"strings"

	"github.com/MrEthical07/goSocial/api"
	"github.com/MrEthical07/goSocial/jwt"
	"github.com/google/uuid"
)

// AddUser creates an account directly, bypassing the register operation.
func (s *Server) AddUser(username, email, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.New("username and password are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[username]; taken {
		return errors.New("username is taken")
	}
	_, err := s.addUser(username, email, password)
	return err
}

// AddPost publishes a post as username and returns its ID.
func (s *Server) AddPost(username, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPost(username, body).ID
}

// AddComment appends a comment to a post and returns its ID, or "" when the post
// does not exist.
func (s *Server) AddComment(postID, username, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPost(postID)
	if p == nil {
		return ""
	}
	c := api.Comment{ID: uuid.NewString(), Username: username, CreatedAt: api.Timestamp{Time: s.now().UTC()}, Body: body}
	p.Comments = append([]api.Comment{c}, p.Comments...)
	p.CommentCount = len(p.Comments)
	return c.ID
}

// Post returns a copy of a stored post.
func (s *Server) Post(id string) (api.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPost(id)
	if p == nil {
		return api.Post{}, false
	}
	return clonePost(p), true
}

func (s *Server) addUser(username, email, password string) (*user, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user{
		id:           uuid.NewString(),
		email:        email,
		username:     username,
		passwordHash: hash,
		createdAt:    s.now().UTC(),
	}
	s.users[username] = u
	return u, nil
}

// addPost prepends so posts stay newest first.
func (s *Server) addPost(username, body string) *api.Post {
	p := &api.Post{
		ID:        uuid.NewString(),
		Body:      body,
		CreatedAt: api.Timestamp{Time: s.now().UTC()},
		Username:  username,
	}
	s.posts = append([]*api.Post{p}, s.posts...)
	return p
}

func subjectOf(u *user) jwt.Subject {
	return jwt.Subject{UserID: u.id, Email: u.email, Username: u.username}
}
