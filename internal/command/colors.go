package command

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/adamavenir/scrollback/internal/postlist"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/charmbracelet/lipgloss"
)

var userPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

var (
	newMessagesColor = lipgloss.Color("203")
	metaColor        = lipgloss.Color("243")
)

// buildColorMap assigns palette colors to the authors of a window, most
// recent author first, so adjacent speakers rarely share a color.
func buildColorMap(store postlist.PostLookup, ids []string) map[string]lipgloss.Color {
	colorMap := make(map[string]lipgloss.Color)
	next := 0
	for _, id := range ids {
		post, ok := store.Post(id)
		if !ok || post.UserID == "" {
			continue
		}
		if _, seen := colorMap[post.UserID]; seen {
			continue
		}
		colorMap[post.UserID] = userPalette[next%len(userPalette)]
		next++
	}
	return colorMap
}

func colorForUser(userID string, colorMap map[string]lipgloss.Color) lipgloss.Color {
	if color, ok := colorMap[userID]; ok {
		return color
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return userPalette[int(h.Sum32()%uint32(len(userPalette)))]
}

func contrastTextColor(color lipgloss.Color) lipgloss.Color {
	code, ok := parseColorCode(color)
	if !ok {
		return lipgloss.Color("231")
	}
	r, g, b := colorCodeToRGB(code)
	luminance := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luminance > 128 {
		return lipgloss.Color("16")
	}
	return lipgloss.Color("231")
}

func parseColorCode(color lipgloss.Color) (int, bool) {
	trimmed := strings.TrimSpace(string(color))
	if trimmed == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}

func colorCodeToRGB(code int) (int, int, int) {
	switch {
	case code < 16:
		standard := [16][3]int{
			{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
			{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
			{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
			{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
		}
		values := standard[code]
		return values[0], values[1], values[2]
	case code <= 231:
		index := code - 16
		toRGB := func(value int) int {
			if value == 0 {
				return 0
			}
			return 55 + value*40
		}
		return toRGB(index / 36), toRGB((index % 36) / 6), toRGB(index % 6)
	case code <= 255:
		gray := 8 + (code-232)*10
		return gray, gray, gray
	}
	return 128, 128, 128
}

func postVerb(postType types.PostType) string {
	switch postType {
	case types.PostTypeJoin:
		return "joined the channel"
	case types.PostTypeLeave:
		return "left the channel"
	}
	return ""
}
