package fakeapi

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/goSocial/api"
	"github.com/google/uuid"
)

// resolve runs one operation. Resolver failures that the API reports to clients
// are errGraphQL; anything else is an internal error.
func (s *Server) resolve(op, auth string, v vars) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op {
	case "login":
		return s.login(v.str("username"), v.str("password"))
	case "register":
		return s.register(api.RegisterInput{
			Username:        v.str("username"),
			Email:           v.str("email"),
			Password:        v.str("password"),
			ConfirmPassword: v.str("confirmPassword"),
		})
	case "getPosts":
		out := make([]api.Post, 0, len(s.posts))
		for _, p := range s.posts {
			out = append(out, clonePost(p))
		}
		return out, nil
	case "getPost":
		p := s.findPost(v.str("postId"))
		if p == nil {
			return nil, errGraphQL("Post not found")
		}
		return clonePost(p), nil
	}

	u, err := s.authenticate(auth)
	if err != nil {
		return nil, err
	}

	switch op {
	case "createPost":
		body := strings.TrimSpace(v.str("body"))
		if body == "" {
			return nil, errGraphQL("Post body must not be empty")
		}
		p := s.addPost(u.username, body)
		return clonePost(p), nil
	case "deletePost":
		return s.deletePost(u, v.str("postId"))
	case "likePost":
		return s.likePost(u, v.str("postId"))
	case "createComment":
		return s.createComment(u, v.str("postId"), v.str("body"))
	case "deleteComment":
		return s.deleteComment(u, v.str("postId"), v.str("commentId"))
	default:
		return nil, errGraphQL(fmt.Sprintf("Cannot query field %q on type \"Query\"", op))
	}
}

func (s *Server) login(username, password string) (*api.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, errGraphQL("Errors")
	}
	u, ok := s.users[username]
	if !ok {
		return nil, errGraphQL("Wrong credentials")
	}
	match, err := verifyPassword(password, u.passwordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, errGraphQL("Wrong credentials")
	}
	return s.userResult(u)
}

func (s *Server) register(in api.RegisterInput) (*api.User, error) {
	switch {
	case strings.TrimSpace(in.Username) == "":
		return nil, errGraphQL("Username must not be empty")
	case strings.TrimSpace(in.Email) == "":
		return nil, errGraphQL("Email must not be empty")
	case in.Password == "":
		return nil, errGraphQL("Password must not be empty")
	case in.Password != in.ConfirmPassword:
		return nil, errGraphQL("Passwords must match")
	}
	if _, taken := s.users[in.Username]; taken {
		return nil, errGraphQL("This username is taken")
	}
	u, err := s.addUser(in.Username, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return s.userResult(u)
}

func (s *Server) userResult(u *user) (*api.User, error) {
	token, err := s.tokens.Issue(subjectOf(u))
	if err != nil {
		return nil, err
	}
	return &api.User{
		ID:        u.id,
		Email:     u.email,
		Username:  u.username,
		CreatedAt: api.Timestamp{Time: u.createdAt},
		Token:     token,
	}, nil
}

func (s *Server) deletePost(u *user, postID string) (string, error) {
	for i, p := range s.posts {
		if p.ID != postID {
			continue
		}
		if p.Username != u.username {
			return "", errGraphQL("Action not allowed")
		}
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
		return "Post deleted successfully", nil
	}
	return "", errGraphQL("Post not found")
}

func (s *Server) likePost(u *user, postID string) (*api.LikeResult, error) {
	p := s.findPost(postID)
	if p == nil {
		return nil, errGraphQL("Post not found")
	}
	liked := false
	for i, l := range p.Likes {
		if l.Username == u.username {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			liked = true
			break
		}
	}
	if !liked {
		p.Likes = append(p.Likes, api.Like{
			ID:        uuid.NewString(),
			Username:  u.username,
			CreatedAt: api.Timestamp{Time: s.now().UTC()},
		})
	}
	p.LikeCount = len(p.Likes)

	out := clonePost(p)
	return &api.LikeResult{ID: out.ID, Likes: out.Likes, LikeCount: out.LikeCount}, nil
}

func (s *Server) createComment(u *user, postID, body string) (*api.CommentsResult, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errGraphQL("Empty comment")
	}
	p := s.findPost(postID)
	if p == nil {
		return nil, errGraphQL("Post not found")
	}
	c := api.Comment{
		ID:        uuid.NewString(),
		Username:  u.username,
		CreatedAt: api.Timestamp{Time: s.now().UTC()},
		Body:      body,
	}
	p.Comments = append([]api.Comment{c}, p.Comments...)
	p.CommentCount = len(p.Comments)
	return commentsOf(p), nil
}

func (s *Server) deleteComment(u *user, postID, commentID string) (*api.CommentsResult, error) {
	p := s.findPost(postID)
	if p == nil {
		return nil, errGraphQL("Post not found")
	}
	for i, c := range p.Comments {
		if c.ID != commentID {
			continue
		}
		if c.Username != u.username {
			return nil, errGraphQL("Action not allowed")
		}
		p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
		p.CommentCount = len(p.Comments)
		return commentsOf(p), nil
	}
	return nil, errGraphQL("Comment not found")
}

func (s *Server) findPost(id string) *api.Post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func commentsOf(p *api.Post) *api.CommentsResult {
	out := clonePost(p)
	return &api.CommentsResult{ID: out.ID, Comments: out.Comments, CommentCount: out.CommentCount}
}

// clonePost copies p so responses never alias server state. Empty lists encode as [].
func clonePost(p *api.Post) api.Post {
	out := *p
	out.Likes = append(make([]api.Like, 0, len(p.Likes)), p.Likes...)
	out.Comments = append(make([]api.Comment, 0, len(p.Comments)), p.Comments...)
	return out
}
