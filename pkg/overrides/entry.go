package overrides

import (
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

// Media is an image reference as stored by the editor.
type Media struct {
	URL string `json:"url" yaml:"url"`
	ID  any    `json:"id,omitempty" yaml:"id,omitempty"`
}

// Link is a URL reference as stored by the editor.
type Link struct {
	URL         string `json:"url" yaml:"url"`
	IsExternal  bool   `json:"is_external,omitempty" yaml:"is_external,omitempty"`
	NoFollow    bool   `json:"nofollow,omitempty" yaml:"nofollow,omitempty"`
	CustomAttrs string `json:"custom_attributes,omitempty" yaml:"custom_attributes,omitempty"`
}

// Entry is one stored override. Type mirrors the declared field type and
// selects which value slot is read.
type Entry struct {
	Key   string      `json:"key" yaml:"key"`
	Label string      `json:"label,omitempty" yaml:"label,omitempty"`
	Type  fields.Type `json:"type" yaml:"type"`
	Text  string      `json:"text,omitempty" yaml:"text,omitempty"`
	Image *Media      `json:"image,omitempty" yaml:"image,omitempty"`
	Link  *Link       `json:"link,omitempty" yaml:"link,omitempty"`
}

// Raw returns the value slot matching the entry type. Unknown types yield nil.
func (e Entry) Raw() any {
	switch e.Type {
	case fields.TypeText, fields.TypeTextarea, fields.TypeRichtext:
		return e.Text
	case fields.TypeImage:
		if e.Image == nil {
			return nil
		}
		return *e.Image
	case fields.TypeURL:
		if e.Link == nil {
			return nil
		}
		return *e.Link
	default:
		return nil
	}
}

// NormalizedKey trims the entry key.
func (e Entry) NormalizedKey() string {
	return strings.TrimSpace(e.Key)
}

// Empty reports whether the entry carries no usable value.
func (e Entry) Empty() bool {
	_, ok := Coerce(e.Type, e.Raw())
	return !ok
}
