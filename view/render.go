package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goSocial/api"
	"github.com/MrEthical07/goSocial/async"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// LoadingText is rendered while the post request is pending.
const LoadingText = "Loading post.."

// Theme holds the colours Render uses.
type Theme struct {
	Border      lipgloss.Color
	Author      lipgloss.Color
	Muted       lipgloss.Color
	Accent      lipgloss.Color
	Destructive lipgloss.Color
}

// DefaultTheme returns the dark-terminal palette.
func DefaultTheme() Theme {
	return Theme{
		Border:      lipgloss.Color("#2a3850"),
		Author:      lipgloss.Color("#f2f2f2"),
		Muted:       lipgloss.Color("#8a94a6"),
		Accent:      lipgloss.Color("#8BC34A"),
		Destructive: lipgloss.Color("#e53935"),
	}
}

type styles struct {
	card    lipgloss.Style
	comment lipgloss.Style
	author  lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	danger  lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		comment: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			PaddingLeft(1),
		author: lipgloss.NewStyle().Bold(true).Foreground(t.Author),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		accent: lipgloss.NewStyle().Foreground(t.Accent),
		danger: lipgloss.NewStyle().Foreground(t.Destructive),
	}
}

// Render writes the current screen to w.
func (v *PostDetail) Render(w io.Writer) error {
	_, err := io.WriteString(w, v.String())
	return err
}

// String renders the current screen.
func (v *PostDetail) String() string {
	status, err := v.Status()
	if v.Deleted() {
		return "Post deleted.\n"
	}
	if status == async.Failed {
		return v.theme.styles().danger.Render("Could not load post: "+err.Error()) + "\n"
	}
	post, ok := v.Post()
	if !ok {
		return LoadingText + "\n"
	}
	return v.renderPost(post) + "\n"
}

func (v *PostDetail) renderPost(p api.Post) string {
	st := v.theme.styles()
	now := v.now()

	var b strings.Builder
	b.WriteString(st.author.Render(p.Username))
	if when := relative(p.CreatedAt.Time, now); when != "" {
		b.WriteString("  " + st.muted.Render(when))
	}
	b.WriteString("\n\n")
	b.WriteString(p.Body)
	b.WriteString("\n\n")

	likes := plural(p.LikeCount, "like")
	if v.Liked() {
		likes = st.accent.Render(likes + " (liked)")
	}
	b.WriteString(likes + "  " + plural(p.CommentCount, "comment"))
	if v.CanDeletePost() {
		b.WriteString("  " + st.danger.Render("[delete]"))
	}

	sections := []string{st.card.Render(b.String())}

	if v.CanComment() {
		form := "Post a comment\n"
		if draft := v.Draft(); draft != "" {
			form += draft
		} else {
			form += st.muted.Render("Comment..")
		}
		sections = append(sections, st.card.Render(form))
	}

	for _, c := range p.Comments {
		var cb strings.Builder
		cb.WriteString(st.author.Render(c.Username))
		if when := relative(c.CreatedAt.Time, now); when != "" {
			cb.WriteString("  " + st.muted.Render(when))
		}
		if v.CanDeleteComment(c) {
			cb.WriteString("  " + st.danger.Render("[delete "+c.ID+"]"))
		}
		cb.WriteString("\n" + c.Body)
		sections = append(sections, st.comment.Render(cb.String()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func relative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

var _ fmt.Stringer = (*PostDetail)(nil)
