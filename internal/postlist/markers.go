package postlist

import (
	"strconv"
	"strings"
	"time"
)

// List items that are not post ids.
const (
	StartOfNewMessages = "start-of-new-messages"
	DateLinePrefix     = "date-"
)

// DateLine returns the marker id for the day starting at day.
func DateLine(day time.Time) string {
	return DateLinePrefix + strconv.FormatInt(day.UnixMilli(), 10)
}

// IsStartOfNewMessages reports whether item is the new-messages marker.
func IsStartOfNewMessages(item string) bool {
	return item == StartOfNewMessages
}

// IsDateLine reports whether item is a date marker.
func IsDateLine(item string) bool {
	_, ok := DateLineTime(item)
	return ok
}

// DateLineTime returns the unix millisecond timestamp carried by a date marker.
func DateLineTime(item string) (int64, bool) {
	if !strings.HasPrefix(item, DateLinePrefix) {
		return 0, false
	}
	ms, err := strconv.ParseInt(strings.TrimPrefix(item, DateLinePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// IsMarker reports whether item was inserted by formatting.
func IsMarker(item string) bool {
	return IsStartOfNewMessages(item) || IsDateLine(item)
}
