package postlist

import (
	"slices"
	"time"

	"github.com/adamavenir/scrollback/internal/types"
)

// PostLookup resolves post ids.
type PostLookup interface {
	Post(id string) (types.Post, bool)
}

// FormatOptions controls separator insertion.
type FormatOptions struct {
	LastViewedAt        int64
	CurrentUserID       string
	IndicateNewMessages bool
	HideJoinLeave       bool
	Location            *time.Location
}

// Format turns a newest-first list of post ids into display order with a
// date line before each day's first post and a new-messages marker before
// the first post newer than LastViewedAt. Ids that do not resolve to posts,
// including markers from an earlier pass, are dropped, so formatting an
// already formatted list returns the same list.
func Format(store PostLookup, ids []string, opts FormatOptions) []string {
	if len(ids) == 0 {
		return nil
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	out := make([]string, 0, len(ids)+2)
	var lastDay time.Time
	haveDay := false
	addedNewMessages := false

	for i := len(ids) - 1; i >= 0; i-- {
		post, ok := store.Post(ids[i])
		if !ok || post.ID != ids[i] {
			continue
		}
		if post.Type == types.PostTypeEphemeral {
			continue
		}
		if opts.HideJoinLeave && post.Type.IsJoinLeave() {
			continue
		}

		day := startOfDay(post.CreateAt, loc)
		if !haveDay || !day.Equal(lastDay) {
			out = append(out, DateLine(day))
			lastDay = day
			haveDay = true
		}

		if opts.IndicateNewMessages && !addedNewMessages && isUnreadFor(post, opts) {
			out = append(out, StartOfNewMessages)
			addedNewMessages = true
		}

		out = append(out, post.ID)
	}

	slices.Reverse(out)
	return out
}

func isUnreadFor(post types.Post, opts FormatOptions) bool {
	if opts.LastViewedAt <= 0 || post.CreateAt <= opts.LastViewedAt {
		return false
	}
	// Own posts never open the unread run.
	return opts.CurrentUserID == "" || post.UserID != opts.CurrentUserID
}

func startOfDay(ms int64, loc *time.Location) time.Time {
	t := time.UnixMilli(ms).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
