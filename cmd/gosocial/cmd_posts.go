package main

import (
	"context"
	"fmt"
	"strings"

	goSocial "github.com/MrEthical07/goSocial"
	"github.com/MrEthical07/goSocial/view"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) postsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "List recent posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			posts, err := client.API().GetPosts(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(posts) == 0 {
				fmt.Fprintln(out, "No posts yet")
				return nil
			}
			for _, p := range posts {
				fmt.Fprintf(out, "%s  %s  %s  likes:%d comments:%d\n",
					p.ID, p.Username, humanize.Time(p.CreatedAt.Time), p.LikeCount, p.CommentCount)
				fmt.Fprintf(out, "    %s\n", firstLine(p.Body))
			}
			return nil
		},
	}
}

func (a *app) postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post [post-id]",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return v.Render(cmd.OutOrStdout())
		},
	}
}

func (a *app) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish [body]",
		Short: "Create a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if !client.Current().Authenticated() {
				return goSocial.ErrNotAuthenticated
			}
			post, err := client.API().CreatePost(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", post.ID)
			return nil
		},
	}
}

func (a *app) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment [post-id] [body]",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v.SetDraft(strings.Join(args[1:], " "))
			if err := v.SubmitComment(cmd.Context()); err != nil {
				return err
			}
			return v.Render(cmd.OutOrStdout())
		},
	}
}

func (a *app) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [post-id]",
		Short: "Like a post, or unlike it if already liked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := v.ToggleLike(cmd.Context()); err != nil {
				return err
			}
			return v.Render(cmd.OutOrStdout())
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [post-id] [comment-id]",
		Short: "Delete a post, or one of its comments",
		Long: `Delete a post you wrote. With a comment ID, delete that comment instead;
only its author can.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				err = v.DeleteComment(cmd.Context(), args[1])
			} else {
				err = v.DeletePost(cmd.Context())
			}
			if err != nil {
				return err
			}
			return v.Render(cmd.OutOrStdout())
		},
	}
}

// loadPost returns a detail view whose load has completed successfully.
func (a *app) loadPost(ctx context.Context, postID string) (*view.PostDetail, error) {
	client, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	v := client.PostDetail(postID)
	if _, err := v.Load(ctx).Wait(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
