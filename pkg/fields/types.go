package fields

import (
	"strings"

	"github.com/google/uuid"
)

// Type enumerates the value shapes a dynamic field accepts.
type Type string

const (
	TypeText     Type = "text"
	TypeTextarea Type = "textarea"
	TypeRichtext Type = "richtext"
	TypeImage    Type = "image"
	TypeURL      Type = "url"
)

// Types lists the supported field types in display order.
func Types() []Type {
	return []Type{TypeText, TypeTextarea, TypeRichtext, TypeImage, TypeURL}
}

// ParseType normalises a raw type tag. Unknown tags are returned as-is and
// report false from Valid.
func ParseType(raw string) Type {
	return Type(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid reports whether the type is one of the supported values.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeTextarea, TypeRichtext, TypeImage, TypeURL:
		return true
	default:
		return false
	}
}

// Textual reports whether values of this type are plain strings.
func (t Type) Textual() bool {
	return t == TypeText || t == TypeTextarea || t == TypeRichtext
}

// Media reports whether values of this type are {url} records.
func (t Type) Media() bool {
	return t == TypeImage || t == TypeURL
}

// Descriptor is a dynamic field declared on a layout node.
type Descriptor struct {
	FieldID string `json:"fieldId" yaml:"fieldId"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Type    Type   `json:"type" yaml:"type"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// DisplayLabel returns the label, falling back to the field id.
func (d Descriptor) DisplayLabel() string {
	if label := strings.TrimSpace(d.Label); label != "" {
		return label
	}
	return d.FieldID
}

// Discovered pairs a descriptor with the node that declared it.
type Discovered struct {
	NodeID     string     `json:"nodeId"`
	Descriptor Descriptor `json:"descriptor"`
}

// Listing is the public shape of a discovered field, as exposed to editors.
type Listing struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Type    Type   `json:"type"`
}

// Listings converts discovery output to the editor-facing shape. The result is
// never nil.
func Listings(discovered []Discovered) []Listing {
	out := make([]Listing, 0, len(discovered))
	for _, item := range discovered {
		out = append(out, Listing{
			FieldID: item.Descriptor.FieldID,
			Label:   item.Descriptor.DisplayLabel(),
			Type:    item.Descriptor.Type,
		})
	}
	return out
}

// NewFieldID mints a durable identifier for a newly declared field.
func NewFieldID() string {
	return "f_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
