package util

import (
	"reflect"
	"testing"
)

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" stocks, wallstreetbets ,,investing ")
	want := []string{"stocks", "wallstreetbets", "investing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected list %v", got)
	}
	if len(SplitList("")) != 0 {
		t.Fatalf("expected empty list")
	}
}
