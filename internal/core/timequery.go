package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adamavenir/scrollback/internal/types"
)

// PostResolver looks up a post by id. It returns nil when the post is unknown.
type PostResolver func(id string) (*types.Post, error)

func parseRelativeTime(value string, now time.Time) *time.Time {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return nil
	}

	unit := value[len(value)-1:]
	amountStr := value[:len(value)-1]
	var multiplier time.Duration
	switch strings.ToLower(unit) {
	case "m":
		multiplier = time.Minute
	case "h":
		multiplier = time.Hour
	case "d":
		multiplier = 24 * time.Hour
	case "w":
		multiplier = 7 * 24 * time.Hour
	default:
		return nil
	}
	amount, err := strconv.Atoi(amountStr)
	if err != nil || amount <= 0 {
		return nil
	}

	ts := now.Add(-time.Duration(amount) * multiplier)
	return &ts
}

func parseAbsoluteTime(value string, now time.Time) *time.Time {
	lower := strings.ToLower(strings.TrimSpace(value))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch lower {
	case "today":
		return &today
	case "yesterday":
		ts := today.AddDate(0, 0, -1)
		return &ts
	}
	if parsed, err := time.ParseInLocation(time.DateOnly, lower, now.Location()); err == nil {
		return &parsed
	}
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value)); err == nil {
		return &parsed
	}
	return nil
}

// ParseTimeExpression converts an expression into a unix millisecond
// timestamp. Accepted forms: a post id (its create time), "today",
// "yesterday", a YYYY-MM-DD date, an RFC 3339 time, a relative age such
// as "30m", "2h", "1d" or "1w", or a raw millisecond timestamp.
func ParseTimeExpression(expression string, now time.Time, resolve PostResolver) (int64, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(expression), "#"))
	if trimmed == "" {
		return 0, fmt.Errorf("empty time expression")
	}

	if strings.HasPrefix(trimmed, postPrefix) {
		if resolve == nil {
			return 0, fmt.Errorf("cannot resolve post %s", trimmed)
		}
		post, err := resolve(trimmed)
		if err != nil {
			return 0, err
		}
		if post == nil {
			return 0, fmt.Errorf("post %s not found", trimmed)
		}
		return post.CreateAt, nil
	}

	if absolute := parseAbsoluteTime(trimmed, now); absolute != nil {
		return absolute.UnixMilli(), nil
	}
	if relative := parseRelativeTime(trimmed, now); relative != nil {
		return relative.UnixMilli(), nil
	}
	if ms, err := strconv.ParseInt(trimmed, 10, 64); err == nil && ms > 0 {
		return ms, nil
	}

	return 0, fmt.Errorf("invalid time expression: %s", expression)
}
