package widgets

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

func TestTargetAttribute_Table(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		typ    fields.Type
		kind   string
		expect string
		ok     bool
	}{
		{name: "text heading", typ: fields.TypeText, kind: KindHeading, expect: AttrTitle, ok: true},
		{name: "textarea heading", typ: fields.TypeTextarea, kind: KindHeading, expect: AttrTitle, ok: true},
		{name: "richtext editor", typ: fields.TypeRichtext, kind: KindTextEditor, expect: AttrEditor, ok: true},
		{name: "text button", typ: fields.TypeText, kind: KindButton, expect: AttrText, ok: true},
		{name: "text image", typ: fields.TypeText, kind: KindImage},
		{name: "image image", typ: fields.TypeImage, kind: KindImage, expect: AttrImage, ok: true},
		{name: "image heading", typ: fields.TypeImage, kind: KindHeading},
		{name: "url button", typ: fields.TypeURL, kind: KindButton, expect: AttrLink, ok: true},
		{name: "url unknown kind", typ: fields.TypeURL, kind: "video", expect: AttrLink, ok: true},
		{name: "text container", typ: fields.TypeText, kind: "container"},
		{name: "unknown type", typ: fields.Type("gallery"), kind: KindImage},
		{name: "kind case", typ: fields.TypeText, kind: " Heading ", expect: AttrTitle, ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.TargetAttribute(tc.typ, tc.kind)
			if ok != tc.ok || got != tc.expect {
				t.Fatalf("TargetAttribute(%q, %q) = %q, %v; want %q, %v", tc.typ, tc.kind, got, ok, tc.expect, tc.ok)
			}
		})
	}
}

func TestRegister_Alias(t *testing.T) {
	reg := NewRegistry()
	reg.Register("animated-headline", ClassHeading)

	if got, ok := reg.TargetAttribute(fields.TypeText, "animated-headline"); !ok || got != AttrTitle {
		t.Fatalf("alias should map to title, got %q (ok=%v)", got, ok)
	}
	if diff := cmp.Diff([]string{"animated-headline", "button", "heading", "image", "text-editor"}, reg.Kinds()); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterMatcher_PriorityAndOrder(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterMatcher(ClassTextBlock, 10, func(kind string) bool { return strings.HasSuffix(kind, "-text") })
	reg.RegisterMatcher(ClassButton, 20, func(kind string) bool { return strings.HasPrefix(kind, "cta") })
	reg.RegisterMatcher(ClassHeading, 20, func(kind string) bool { return strings.HasPrefix(kind, "cta") })

	if class, ok := reg.Resolve("cta-text"); !ok || class != ClassButton {
		t.Fatalf("expected higher priority, earlier rule to win, got %q", class)
	}
	if class, ok := reg.Resolve("intro-text"); !ok || class != ClassTextBlock {
		t.Fatalf("expected text block, got %q", class)
	}
	if class, _ := reg.Resolve(KindHeading); class != ClassHeading {
		t.Fatalf("exact registration must win over matchers")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if got, ok := TargetAttribute(fields.TypeImage, KindImage); !ok || got != AttrImage {
		t.Fatalf("default registry should map image fields, got %q", got)
	}
	var nilReg *Registry
	if _, ok := nilReg.TargetAttribute(fields.TypeText, KindHeading); ok {
		t.Fatalf("nil registry must not resolve text fields")
	}
}
