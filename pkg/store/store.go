// Package store persists templates and the instances that place them.
//
// Templates keep their layout data the way page builders export it: a
// primary data payload that may itself be a JSON string, plus a content
// fallback used when the primary payload is empty. Instances reference a
// template and carry the override entries supplied for it.
package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
)

// KindTemplate is the record kind of synced templates. Records of other kinds
// are never served as templates.
const KindTemplate = "es_template"

// Publication states.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Template is an authored layout.
type Template struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Title     string    `json:"title" yaml:"title"`
	Status    string    `json:"status" yaml:"status"`
	Data      []byte    `json:"-" yaml:"-"`
	Content   []byte    `json:"-" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// IsTemplate reports whether the record is a synced template.
func (t Template) IsTemplate() bool {
	return t.Kind == KindTemplate
}

// Payload returns the raw layout document: Data when present, otherwise
// Content.
func (t Template) Payload() []byte {
	if len(bytes.TrimSpace(t.Data)) > 0 {
		return t.Data
	}
	return t.Content
}

// Tree decodes the layout document. Malformed payloads yield an empty tree.
func (t Template) Tree() layout.Tree {
	return layout.DecodeLenient(t.Payload())
}

// Summary is the listing shape of a template.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Instance places a template and overrides its dynamic fields.
type Instance struct {
	ID         string                  `json:"id" yaml:"id"`
	TemplateID string                  `json:"templateId" yaml:"templateId"`
	Overrides  []overrides.Entry       `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Legacy     []overrides.LegacyEntry `json:"dynamic_overrides,omitempty" yaml:"dynamic_overrides,omitempty"`
	UpdatedAt  time.Time               `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// ListOptions filters template listings. Empty fields match everything.
type ListOptions struct {
	Kind   string
	Status string
}

// PublishedTemplates lists published synced templates.
func PublishedTemplates() ListOptions {
	return ListOptions{Kind: KindTemplate, Status: StatusPublish}
}

func (o ListOptions) match(t Template) bool {
	if o.Kind != "" && t.Kind != o.Kind {
		return false
	}
	if o.Status != "" && t.Status != o.Status {
		return false
	}
	return true
}

// TemplateReader looks up templates.
type TemplateReader interface {
	Template(ctx context.Context, id string) (Template, error)
	Templates(ctx context.Context, opts ListOptions) ([]Summary, error)
}

// InstanceReader looks up instances.
type InstanceReader interface {
	Instance(ctx context.Context, id string) (Instance, error)
}

// Store is a readable and writable template store.
type Store interface {
	TemplateReader
	InstanceReader
	SaveTemplate(ctx context.Context, t Template) error
	SaveInstance(ctx context.Context, i Instance) error
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

func normalizeTemplate(t Template) Template {
	t.ID = normalizeID(t.ID)
	if t.Kind == "" {
		t.Kind = KindTemplate
	}
	if t.Status == "" {
		t.Status = StatusPublish
	}
	return t
}
