package models

import (
	"testing"
	"time"
)

func TestClampPullLimit(t *testing.T) {
	cases := []struct {
		in       int
		expected int
	}{
		{0, DefaultPullLimit},
		{-1, DefaultPullLimit},
		{1, 1},
		{100, 100},
		{500, MaxPullLimit},
		{501, MaxPullLimit},
		{99999, MaxPullLimit},
	}
	for _, tc := range cases {
		if got := ClampPullLimit(tc.in); got != tc.expected {
			t.Fatalf("ClampPullLimit(%d) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

func TestClampCloseExpireMinutes(t *testing.T) {
	cases := []struct {
		in       int
		expected int
	}{
		{0, DefaultCloseExpireMinutes},
		{-10, MinCloseExpireMinutes},
		{5, 5},
		{4, MinCloseExpireMinutes},
		{60, 60},
		{120, 120},
		{121, MaxCloseExpireMinutes},
	}
	for _, tc := range cases {
		if got := ClampCloseExpireMinutes(tc.in); got != tc.expected {
			t.Fatalf("ClampCloseExpireMinutes(%d) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

func TestCursorFieldExtraction(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	bin := Bin{ID: "bin-1", UpdatedAt: ts}

	if got := recordUpdatedAt(bin); !got.Equal(ts) {
		t.Fatalf("recordUpdatedAt expected %v, got %v", ts, got)
	}
	if got := recordId(bin); got != "bin-1" {
		t.Fatalf("recordId expected bin-1, got %q", got)
	}
	if got := recordId(&bin); got != "bin-1" {
		t.Fatalf("recordId on pointer expected bin-1, got %q", got)
	}
	if got := recordId(struct{ Label string }{"no id"}); got != "" {
		t.Fatalf("recordId without ID field expected empty, got %q", got)
	}
	if got := recordId(42); got != "" {
		t.Fatalf("recordId on non-struct expected empty, got %q", got)
	}
}
