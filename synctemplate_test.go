package synctemplate

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

const heroDoc = `[{"id":"h","elType":"widget","widgetType":"heading","settings":{"title":"Authored","_est_dynamic_fields_repeater":[{"key":"legacy_key","label":"Legacy","type":"text"}],"dynamicFields":[{"fieldId":"title","label":"Title","type":"text","enabled":true}]}}]`

func TestEmbeddedTemplatesContainsHeading(t *testing.T) {
	data, err := fs.ReadFile(EmbeddedTemplates(), "templates/heading.tmpl")
	if err != nil {
		t.Fatalf("expected heading template to be readable: %v", err)
	}
	if !strings.Contains(string(data), "st-heading") {
		t.Fatalf("unexpected heading template: %s", data)
	}
}

func TestRenderTemplate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	if err := s.SaveTemplate(ctx, store.Template{ID: "hero", Data: []byte(heroDoc)}); err != nil {
		t.Fatalf("save template: %v", err)
	}

	out, err := RenderTemplate(ctx, s, "hero", []Entry{{Key: "title", Type: fields.TypeText, Text: "Overridden"}}, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != `<h2 class="st-heading" data-id="h">Overridden</h2>` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestRenderTree(t *testing.T) {
	tree, err := layout.DecodeString(heroDoc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := RenderTree(context.Background(), tree, nil, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), ">Authored<") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestDiscoverFieldsIncludesLegacy(t *testing.T) {
	tree, err := layout.DecodeString(heroDoc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := DiscoverFields(tree)
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %#v", got)
	}
	if _, ok := tree.Roots[0].Setting("_est_dynamic_fields_repeater"); !ok {
		t.Fatalf("caller tree was migrated in place")
	}
}
