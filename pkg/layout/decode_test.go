package layout_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-synctemplate/pkg/layout"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func nodeIDs(tree layout.Tree) []string {
	var ids []string
	tree.Walk(func(node *layout.Node) bool {
		ids = append(ids, node.ID+":"+node.Kind)
		return true
	})
	return ids
}

func TestDecode_HostExportShape(t *testing.T) {
	tree, err := layout.Decode(readFixture(t, "export.json"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []string{"sec1:container", "h1:heading", "img1:image", "btn1:button"}
	if diff := cmp.Diff(want, nodeIDs(tree)); diff != "" {
		t.Fatalf("traversal mismatch (-want +got):\n%s", diff)
	}

	section := tree.Find("sec1")
	if section == nil {
		t.Fatalf("section not found")
	}
	if section.Settings != nil {
		t.Fatalf("empty settings list should decode as nil map, got %#v", section.Settings)
	}
	if got := tree.Find("h1").StringSetting("title"); got != "Original title" {
		t.Fatalf("heading title = %q", got)
	}
}

func TestDecode_DoubleEncoded(t *testing.T) {
	inner := readFixture(t, "export.json")
	once, err := json.Marshal(string(inner))
	if err != nil {
		t.Fatalf("marshal once: %v", err)
	}
	twice, err := json.Marshal(string(once))
	if err != nil {
		t.Fatalf("marshal twice: %v", err)
	}

	plain, err := layout.Decode(inner)
	if err != nil {
		t.Fatalf("decode plain: %v", err)
	}

	for name, payload := range map[string][]byte{"once": once, "twice": twice} {
		tree, err := layout.Decode(payload)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if diff := cmp.Diff(plain, tree); diff != "" {
			t.Fatalf("%s: tree mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestDecode_SingleObjectAndEnvelope(t *testing.T) {
	single := `{"id":"root","kind":"container","children":[{"id":"c","kind":"heading"}]}`
	tree, err := layout.DecodeString(single)
	if err != nil {
		t.Fatalf("decode single: %v", err)
	}
	if diff := cmp.Diff([]string{"root:container", "c:heading"}, nodeIDs(tree)); diff != "" {
		t.Fatalf("single mismatch (-want +got):\n%s", diff)
	}

	envelope := `{"version":"0.4","title":"Hero","content":[{"id":"a","elType":"widget","widgetType":"heading"}]}`
	tree, err = layout.DecodeString(envelope)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if diff := cmp.Diff([]string{"a:heading"}, nodeIDs(tree)); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_JSONCAndYAML(t *testing.T) {
	withComments := `[
		// hero block
		{"id": "h", "kind": "heading", "settings": {"title": "Hi"},},
	]`
	tree, err := layout.DecodeString(withComments)
	if err != nil {
		t.Fatalf("decode jsonc: %v", err)
	}
	if got := tree.Find("h").StringSetting("title"); got != "Hi" {
		t.Fatalf("jsonc title = %q", got)
	}

	yamlDoc := `
- id: h
  kind: heading
  settings:
    title: From YAML
    dynamicFields:
      - fieldId: hero_title
        type: text
        enabled: true
`
	if _, err := layout.DecodeString(yamlDoc); err == nil {
		t.Fatalf("expected YAML to be rejected without WithYAML")
	}
	tree, err = layout.DecodeString(yamlDoc, layout.WithYAML())
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if got := tree.Find("h").StringSetting("title"); got != "From YAML" {
		t.Fatalf("yaml title = %q", got)
	}
}

func TestDecode_MalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"blank":       "   ",
		"empty array": "[]",
		"null":        "null",
		"scalars":     `[1, "x", true]`,
		"empty str":   `""`,
	}
	for name, payload := range cases {
		tree, err := layout.DecodeString(payload)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if !tree.Empty() {
			t.Fatalf("%s: expected empty tree, got %d nodes", name, tree.Len())
		}
	}

	if _, err := layout.DecodeString(`{"id":`); err == nil {
		t.Fatalf("expected syntax error")
	}
	if _, err := layout.DecodeString(`42`); !errors.Is(err, layout.ErrUnsupportedShape) {
		t.Fatalf("expected ErrUnsupportedShape, got %v", err)
	}
	if tree := layout.DecodeLenient([]byte(`{"id":`)); !tree.Empty() {
		t.Fatalf("lenient decode should yield empty tree")
	}
}

func TestDecode_PlainStringWithYAMLTerminates(t *testing.T) {
	if _, err := layout.DecodeString(`"just words"`, layout.WithYAML()); err == nil {
		t.Fatalf("expected unsupported shape for a bare string")
	}
}
