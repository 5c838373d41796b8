package api

import (
	"context"
	"strings"
)

// GetPosts lists every post, newest first.
func (c *Client) GetPosts(ctx context.Context) ([]Post, error) {
	var out struct {
		GetPosts []Post `json:"getPosts"`
	}
	if err := c.Run(ctx, OpGetPosts, nil, &out); err != nil {
		return nil, err
	}
	return out.GetPosts, nil
}

// GetPost fetches one post with its likes and comments.
func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	if err := requireID(OpGetPost, "postId", postID); err != nil {
		return nil, err
	}
	var out struct {
		GetPost *Post `json:"getPost"`
	}
	if err := c.Run(ctx, OpGetPost, map[string]interface{}{"postId": postID}, &out); err != nil {
		return nil, err
	}
	if out.GetPost == nil {
		return nil, &OperationError{Operation: OpGetPost.Name, Message: "post not found", Err: ErrRemote}
	}
	return out.GetPost, nil
}

// CreatePost publishes a post as the authenticated user.
func (c *Client) CreatePost(ctx context.Context, body string) (*Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &OperationError{Operation: OpCreatePost.Name, Message: "post body must not be empty", Err: ErrInvalidInput}
	}
	var out struct {
		CreatePost Post `json:"createPost"`
	}
	if err := c.Run(ctx, OpCreatePost, map[string]interface{}{"body": body}, &out); err != nil {
		return nil, err
	}
	return &out.CreatePost, nil
}

// DeletePost deletes a post owned by the authenticated user.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := requireID(OpDeletePost, "postId", postID); err != nil {
		return err
	}
	var out struct {
		DeletePost string `json:"deletePost"`
	}
	return c.Run(ctx, OpDeletePost, map[string]interface{}{"postId": postID}, &out)
}

// LikePost toggles the authenticated user's like on a post.
func (c *Client) LikePost(ctx context.Context, postID string) (*LikeResult, error) {
	if err := requireID(OpLikePost, "postId", postID); err != nil {
		return nil, err
	}
	var out struct {
		LikePost LikeResult `json:"likePost"`
	}
	if err := c.Run(ctx, OpLikePost, map[string]interface{}{"postId": postID}, &out); err != nil {
		return nil, err
	}
	return &out.LikePost, nil
}

// CreateComment adds a comment and returns the post's updated comment list.
func (c *Client) CreateComment(ctx context.Context, postID, body string) (*CommentsResult, error) {
	if err := requireID(OpCreateComment, "postId", postID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, &OperationError{Operation: OpCreateComment.Name, Message: "comment body must not be empty", Err: ErrInvalidInput}
	}
	var out struct {
		CreateComment CommentsResult `json:"createComment"`
	}
	vars := map[string]interface{}{"postId": postID, "body": body}
	if err := c.Run(ctx, OpCreateComment, vars, &out); err != nil {
		return nil, err
	}
	return &out.CreateComment, nil
}

// DeleteComment removes a comment and returns the post's updated comment list.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) (*CommentsResult, error) {
	if err := requireID(OpDeleteComment, "postId", postID); err != nil {
		return nil, err
	}
	if err := requireID(OpDeleteComment, "commentId", commentID); err != nil {
		return nil, err
	}
	var out struct {
		DeleteComment CommentsResult `json:"deleteComment"`
	}
	vars := map[string]interface{}{"postId": postID, "commentId": commentID}
	if err := c.Run(ctx, OpDeleteComment, vars, &out); err != nil {
		return nil, err
	}
	return &out.DeleteComment, nil
}
