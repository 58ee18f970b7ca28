package command

import (
	"fmt"
	"io"
	"time"

	"github.com/adamavenir/scrollback/internal/core"
	"github.com/adamavenir/scrollback/internal/postlist"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const dateLineFormat = "Monday, January 2, 2006"

// renderWindow prints a formatted window oldest first, the way a chat
// transcript reads, followed by paging hints.
func renderWindow(out io.Writer, channelID string, result postlist.Result, store postlist.PostLookup, loc *time.Location, now time.Time) {
	header := fmt.Sprintf("#%s · %s · %d posts", channelID, result.Mode, len(result.PostListIDs))
	fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Render(header))

	if result.IsFirstLoad {
		fmt.Fprintf(out, "No posts loaded yet. Try: scrollback load --in %s\n", channelID)
		return
	}
	if result.IsPrefetchingInProcess {
		fmt.Fprintln(out, lipgloss.NewStyle().Foreground(metaColor).Render("(load in progress)"))
	}

	ids := result.FormattedPostIDs
	colorMap := buildColorMap(store, ids)
	meta := lipgloss.NewStyle().Foreground(metaColor)
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(contrastTextColor(newMessagesColor)).
		Background(newMessagesColor)

	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		switch {
		case postlist.IsStartOfNewMessages(id):
			fmt.Fprintln(out, badge.Render(" New Messages "))
		case postlist.IsDateLine(id):
			ms, _ := postlist.DateLineTime(id)
			fmt.Fprintln(out, meta.Render("── "+time.UnixMilli(ms).In(loc).Format(dateLineFormat)+" ──"))
		default:
			post, ok := store.Post(id)
			if !ok {
				continue
			}
			user := lipgloss.NewStyle().Foreground(colorForUser(post.UserID, colorMap)).Render("@" + post.UserID)
			when := meta.Render(humanize.RelTime(time.UnixMilli(post.CreateAt), now, "ago", "from now"))
			if verb := postVerb(post.Type); verb != "" {
				fmt.Fprintf(out, "[%s] %s %s  %s\n", core.ShortPostID(post.ID), user, meta.Render(verb), when)
				continue
			}
			fmt.Fprintf(out, "[%s] %s: %s  %s\n", core.ShortPostID(post.ID), user, post.Message, when)
		}
	}

	if len(result.PostListIDs) == 0 {
		fmt.Fprintln(out, meta.Render("(no posts)"))
	}
	if !result.AtOldestPost && len(result.PostListIDs) > 0 {
		oldest := result.PostListIDs[len(result.PostListIDs)-1]
		fmt.Fprintln(out, meta.Render(fmt.Sprintf("older posts: scrollback load --in %s --before %s", channelID, oldest)))
	}
	if !result.AtLatestPost && len(result.PostListIDs) > 0 {
		newest := postlist.LatestPostID(result.PostListIDs)
		fmt.Fprintln(out, meta.Render(fmt.Sprintf("newer posts: scrollback load --in %s --after %s", channelID, newest)))
	}
}

func formatTimestamp(ms int64, loc *time.Location) string {
	if ms == 0 {
		return "never"
	}
	t := time.UnixMilli(ms).In(loc)
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02 15:04:05 MST"), humanize.Time(t))
}
