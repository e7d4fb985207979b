package gotrail

import (
	"reflect"
	"testing"
)

type BlogPost struct{}

type Person struct{}

type namedByValue struct{}

func (namedByValue) CollectionName() string { return "custom_values" }

type namedByPointer struct{}

func (*namedByPointer) CollectionName() string { return "custom_pointers" }

type namedEmpty struct{}

func (namedEmpty) CollectionName() string { return " " }

func TestResolveCollectionName(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		typ     reflect.Type
		want    string
		wantErr bool
	}{
		{name: "struct", typ: reflect.TypeOf(BlogPost{}), want: "blog_posts"},
		{name: "pointer", typ: reflect.TypeOf(&BlogPost{}), want: "blog_posts"},
		{name: "irregular plural", typ: reflect.TypeOf(&Person{}), want: "people"},
		{name: "value receiver namer", typ: reflect.TypeOf(&namedByValue{}), want: "custom_values"},
		{name: "pointer receiver namer on value type", typ: reflect.TypeOf(namedByPointer{}), want: "custom_pointers"},
		{name: "empty namer", typ: reflect.TypeOf(namedEmpty{}), wantErr: true},
		{name: "anonymous struct", typ: reflect.TypeOf(struct{}{}), wantErr: true},
		{name: "non struct", typ: reflect.TypeOf(""), wantErr: true},
		{name: "interface", typ: reflect.TypeOf((*Document)(nil)).Elem(), wantErr: true},
		{name: "nil", typ: nil, wantErr: true},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveCollectionName(tc.typ)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("resolveCollectionName(%v) = %q, want error", tc.typ, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveCollectionName(%v) unexpected error: %v", tc.typ, err)
			}
			if got != tc.want {
				t.Fatalf("resolveCollectionName(%v) = %q, want %q", tc.typ, got, tc.want)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want string
	}{
		{in: "Post", want: "post"},
		{in: "BlogPost", want: "blog_post"},
		{in: "HTTPRequest", want: "http_request"},
		{in: "userID", want: "user_id"},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := toSnakeCase(tc.in); got != tc.want {
				t.Fatalf("toSnakeCase(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDedicatedActionCollection(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want string
	}{
		{in: "posts", want: "posts_actions"},
		{in: "blog.posts", want: "blog.posts_actions"},
		{in: "", want: "_actions"},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := DedicatedActionCollection(tc.in); got != tc.want {
				t.Fatalf("DedicatedActionCollection(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
