package ident_test

import (
	"slices"
	"testing"

	"github.com/mickamy/gotrail/internal/ident"
)

func TestSplitQualified(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   string
		want []string
	}{
		{name: "simple", in: "actions", want: []string{"actions"}},
		{name: "schema qualified", in: "audit.actions", want: []string{"audit", "actions"}},
		{name: "quoted schema and space", in: `"Audit"."Action Log"`, want: []string{"Audit", "Action Log"}},
		{name: "dot inside quotes", in: `"Audit"."Action.Log"`, want: []string{"Audit", "Action.Log"}},
		{name: "escaped quote", in: `"Audit""Trail"."Actions"`, want: []string{`Audit"Trail`, "Actions"}},
		{name: "bare schema and quoted table", in: `audit."Action Log"`, want: []string{"audit", "Action Log"}},
		{name: "trailing dot", in: "audit.", want: []string{"audit", ""}},
		{name: "blank", in: "  ", want: nil},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ident.SplitQualified(tc.in)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("SplitQualified(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSuffixed(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name   string
		base   string
		suffix string
		want   []string
	}{
		{name: "simple", base: "posts", suffix: "_actions", want: []string{"posts_actions"}},
		{name: "schema qualified", base: "public.posts", suffix: "_actions", want: []string{"public", "posts_actions"}},
		{name: "empty base", base: "", suffix: "_actions", want: []string{"_actions"}},
		{name: "empty both", base: "", suffix: "", want: nil},
		{name: "quoted", base: `"Blog"."Posts"`, suffix: "_actions", want: []string{"Blog", "Posts_actions"}},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ident.Suffixed(tc.base, tc.suffix)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("Suffixed(%q,%q) = %#v, want %#v", tc.base, tc.suffix, got, tc.want)
			}
		})
	}
}

func TestQuoteQualified(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   []string
		want string
	}{
		{name: "simple", in: []string{"actions"}, want: `"actions"`},
		{name: "schema qualified", in: []string{"audit", "actions"}, want: `"audit"."actions"`},
		{name: "needs escaping", in: []string{`Action"Log`}, want: `"Action""Log"`},
		{name: "empty", in: nil, want: ""},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ident.QuoteQualified(tc.in)
			if got != tc.want {
				t.Fatalf("QuoteQualified(%#v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBase(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "actions", want: "actions"},
		{name: "schema qualified", in: "audit.actions", want: "actions"},
		{name: "quoted", in: `"Audit"."Actions"`, want: "Actions"},
		{name: "dot in quotes", in: `"Audit"."Action.Log"`, want: "Action.Log"},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ident.Base(tc.in)
			if got != tc.want {
				t.Fatalf("Base(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   []string
		want bool
	}{
		{name: "simple", in: []string{"actions"}, want: true},
		{name: "schema qualified", in: []string{"audit", "actions"}, want: true},
		{name: "empty", in: nil, want: false},
		{name: "empty part", in: []string{"audit", ""}, want: false},
		{name: "too many parts", in: []string{"db", "audit", "actions"}, want: false},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ident.Valid(tc.in); got != tc.want {
				t.Fatalf("Valid(%#v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
