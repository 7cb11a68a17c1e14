package overrides_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
)

func TestBuild_DropsUnusableEntries(t *testing.T) {
	set := overrides.Build([]overrides.Entry{
		{Key: "hero_title", Type: fields.TypeText, Text: "Hello"},
		{Key: "", Type: fields.TypeText, Text: "orphan"},
		{Key: "  ", Type: fields.TypeText, Text: "blank"},
		{Key: "empty", Type: fields.TypeText},
		{Key: "no_image", Type: fields.TypeImage},
		{Key: "cta_link", Type: fields.TypeURL, Link: &overrides.Link{URL: "https://x.test"}},
		{Key: "mystery", Type: fields.Type("video"), Text: "x"},
	})

	if diff := cmp.Diff([]string{"cta_link", "hero_title"}, set.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	value, ok := set.Lookup("hero_title")
	if !ok || value.Setting() != "Hello" {
		t.Fatalf("unexpected hero_title value: %#v", value)
	}
}

func TestBuild_LastUsableDuplicateWins(t *testing.T) {
	set := overrides.Build([]overrides.Entry{
		{Key: "k", Type: fields.TypeText, Text: "first"},
		{Key: "k", Type: fields.TypeText, Text: "second"},
		{Key: "k", Type: fields.TypeText, Text: ""},
	})
	value, _ := set.Lookup("k")
	if value.Text != "second" {
		t.Fatalf("expected last usable value, got %q", value.Text)
	}
}

func TestBuild_Empty(t *testing.T) {
	if !overrides.Build(nil).Empty() {
		t.Fatalf("nil entries should build an empty set")
	}
	var zero overrides.Set
	if _, ok := zero.Lookup("x"); ok || zero.Len() != 0 {
		t.Fatalf("zero set should be usable and empty")
	}
}

func TestSet_LookupAs(t *testing.T) {
	set := overrides.Build([]overrides.Entry{
		{Key: "copy", Type: fields.TypeText, Text: "Body"},
		{Key: "pic", Type: fields.TypeImage, Image: &overrides.Media{URL: "https://cdn.test/p.png"}},
	})

	if value, ok := set.LookupAs("copy", fields.TypeRichtext); !ok || value.Setting() != "Body" {
		t.Fatalf("text should satisfy a richtext field, got %#v %v", value, ok)
	}
	if _, ok := set.LookupAs("copy", fields.TypeImage); ok {
		t.Fatalf("text must not satisfy an image field")
	}
	value, ok := set.LookupAs("pic", fields.TypeURL)
	if !ok {
		t.Fatalf("image url should satisfy a url field")
	}
	if diff := cmp.Diff(map[string]any{"url": "https://cdn.test/p.png"}, value.Setting()); diff != "" {
		t.Fatalf("setting mismatch (-want +got):\n%s", diff)
	}
}

func TestFromLegacy(t *testing.T) {
	got := overrides.FromLegacy([]overrides.LegacyEntry{
		{Key: "hero_title", Value: "<p>Hi</p>"},
		{Key: " ", Value: "dropped"},
		{Key: "body", Value: "text"},
	}, map[string]string{"hero_title": "a1b2c3"})

	want := []overrides.Entry{
		{Key: "a1b2c3", Type: fields.TypeRichtext, Text: "<p>Hi</p>"},
		{Key: "body", Type: fields.TypeRichtext, Text: "text"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("legacy mismatch (-want +got):\n%s", diff)
	}
	if value, ok := overrides.Build(got).LookupAs("a1b2c3", fields.TypeText); !ok || value.Text != "<p>Hi</p>" {
		t.Fatalf("legacy override should apply to a text field, got %#v", value)
	}
}
