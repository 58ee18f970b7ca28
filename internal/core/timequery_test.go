package core

import (
	"testing"
	"time"

	"github.com/adamavenir/scrollback/internal/types"
)

func TestParseTimeExpression(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	resolve := func(id string) (*types.Post, error) {
		if id == "post-abcd1234" {
			return &types.Post{ID: id, CreateAt: 4242}, nil
		}
		return nil, nil
	}

	cases := []struct {
		expr string
		want int64
	}{
		{expr: "post-abcd1234", want: 4242},
		{expr: "#post-abcd1234", want: 4242},
		{expr: "today", want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{expr: "yesterday", want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{expr: "2024-01-02", want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{expr: "2h", want: now.Add(-2 * time.Hour).UnixMilli()},
		{expr: "1w", want: now.AddDate(0, 0, -7).UnixMilli()},
		{expr: "1700000000000", want: 1700000000000},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := ParseTimeExpression(tc.expr, now, resolve)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.expr, err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParseTimeExpressionErrors(t *testing.T) {
	now := time.Now()
	for _, expr := range []string{"", "soon", "0h", "post-missing0"} {
		if _, err := ParseTimeExpression(expr, now, func(string) (*types.Post, error) { return nil, nil }); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}
