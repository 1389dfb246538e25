package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"threadfeed/internal/comments"
	"threadfeed/internal/feed"
	"threadfeed/internal/model"
)

const bodyPreview = 280

func writePosts(w io.Writer, posts []model.Post, now time.Time) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "(no posts)")
		return err
	}
	for i, p := range posts {
		if err := writePostLine(w, i+1, p, now); err != nil {
			return err
		}
	}
	return nil
}

func writePostLine(w io.Writer, n int, p model.Post, now time.Time) error {
	author := p.Author
	if author == "" {
		author = "[deleted]"
	}
	tag := ""
	if p.HasMedia() {
		tag = fmt.Sprintf(" [%s]", p.Media.Kind)
	}
	_, err := fmt.Fprintf(w, "%3d. %s%s\n     %d pts · %d comments · r/%s · u/%s · %s · id %s\n",
		n, p.Title, tag, p.Score, p.NumComments, p.Subreddit, author, age(p.Created, now), p.ID)
	return err
}

func writeRanked(w io.Writer, ranked []model.RankedPost, now time.Time) error {
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(w, "(leaderboard empty)")
		return err
	}
	for i, r := range ranked {
		if err := writePostLine(w, i+1, r.Post, now); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "     rank score %.4f\n", r.Score); err != nil {
			return err
		}
	}
	return nil
}

// writeThread prints a post and its comment tree; indentation stops growing
// at the display depth cap.
func writeThread(w io.Writer, d feed.Detail, now time.Time) error {
	if err := writePostLine(w, 1, d.Post, now); err != nil {
		return err
	}
	if body := strings.TrimSpace(d.Post.Body); body != "" {
		fmt.Fprintf(w, "\n%s\n", body)
	} else if d.Post.Media.URL != "" {
		fmt.Fprintf(w, "\n%s\n", d.Post.Media.URL)
	} else if d.Post.URL != "" {
		fmt.Fprintf(w, "\n%s\n", d.Post.URL)
	}
	fmt.Fprintf(w, "\n%d comments (%d top-level)\n", d.Total, d.TopLevel)

	var err error
	comments.Walk(d.Comments, func(c model.Comment, depth int) bool {
		if err != nil {
			return false
		}
		indent := strings.Repeat("  ", comments.DisplayDepth(depth))
		author := c.Author
		if author == "" {
			author = "[deleted]"
		}
		body := strings.Join(strings.Fields(c.Body), " ")
		if r := []rune(body); len(r) > bodyPreview {
			body = string(r[:bodyPreview]) + "…"
		}
		_, err = fmt.Fprintf(w, "%s└ u/%s (%d): %s\n", indent, author, c.Score, body)
		return true
	})
	return err
}

func age(created int64, now time.Time) string {
	d := now.Sub(time.Unix(created, 0))
	switch {
	case d < 0:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
