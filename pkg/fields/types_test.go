package fields_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

func TestType_Valid(t *testing.T) {
	for _, typ := range fields.Types() {
		if !typ.Valid() {
			t.Fatalf("%q should be valid", typ)
		}
	}
	if fields.ParseType(" URL ") != fields.TypeURL {
		t.Fatalf("ParseType should normalise case and spacing")
	}
	if fields.Type("wysiwyg").Valid() {
		t.Fatalf("unknown type reported valid")
	}
	if !fields.TypeRichtext.Textual() || fields.TypeImage.Textual() {
		t.Fatalf("textual classification wrong")
	}
	if !fields.TypeURL.Media() || fields.TypeText.Media() {
		t.Fatalf("media classification wrong")
	}
}

func TestListings_DefaultsLabel(t *testing.T) {
	got := fields.Listings([]fields.Discovered{
		{NodeID: "n", Descriptor: fields.Descriptor{FieldID: "a", Label: "Alpha", Type: fields.TypeText, Enabled: true}},
		{NodeID: "n", Descriptor: fields.Descriptor{FieldID: "b", Type: fields.TypeURL, Enabled: true}},
	})
	want := []fields.Listing{
		{FieldID: "a", Label: "Alpha", Type: fields.TypeText},
		{FieldID: "b", Label: "b", Type: fields.TypeURL},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listings mismatch (-want +got):\n%s", diff)
	}
	if empty := fields.Listings(nil); empty == nil {
		t.Fatalf("listings must never be nil")
	}
}

func TestNewFieldID(t *testing.T) {
	a, b := fields.NewFieldID(), fields.NewFieldID()
	if a == b {
		t.Fatalf("field ids should be unique")
	}
	if !strings.HasPrefix(a, "f_") || len(a) != 14 {
		t.Fatalf("unexpected id shape %q", a)
	}
}
