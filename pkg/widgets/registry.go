package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

// Class groups node kinds that receive overrides through the same settings.
type Class string

// Built-in classes.
const (
	ClassHeading   Class = "heading"
	ClassTextBlock Class = "text-block"
	ClassButton    Class = "button"
	ClassImage     Class = "image"
)

// Built-in node kinds.
const (
	KindHeading    = "heading"
	KindTextEditor = "text-editor"
	KindButton     = "button"
	KindImage      = "image"
)

// Setting names written by the mapper.
const (
	AttrTitle  = "title"
	AttrEditor = "editor"
	AttrText   = "text"
	AttrImage  = "image"
	AttrLink   = "link"
)

// Matcher decides whether a node kind belongs to a class.
type Matcher func(kind string) bool

type rule struct {
	class    Class
	priority int
	match    Matcher
	order    int
}

// Registry resolves node kinds to classes. Exact kind registrations win over
// matchers; among matchers higher priority wins and ties fall back to
// registration order. Kinds that resolve to no class receive no text or image
// overrides.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Class
	rules []rule
}

// NewRegistry constructs a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register maps kind to class. The latest registration for a kind wins.
func (r *Registry) Register(kind string, class Class) {
	if r == nil {
		return
	}
	kind = normalizeKind(kind)
	if kind == "" || class == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.kinds == nil {
		r.kinds = make(map[string]Class)
	}
	r.kinds[kind] = class
}

// RegisterMatcher adds a matcher that assigns class to kinds with no exact
// registration.
func (r *Registry) RegisterMatcher(class Class, priority int, matcher Matcher) {
	if r == nil || matcher == nil || class == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		class:    class,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the class for a node kind.
func (r *Registry) Resolve(kind string) (Class, bool) {
	if r == nil {
		return "", false
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return "", false
	}

	r.mu.RLock()
	if class, ok := r.kinds[kind]; ok {
		r.mu.RUnlock()
		return class, true
	}
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(kind) {
			return entry.class, true
		}
	}
	return "", false
}

// Kinds lists the exact kinds registered, sorted.
func (r *Registry) Kinds() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

// TargetAttribute returns the setting on a node of the given kind that a
// field of type typ overrides. Unsupported combinations report false.
func (r *Registry) TargetAttribute(typ fields.Type, kind string) (string, bool) {
	if typ == fields.TypeURL {
		return AttrLink, true
	}
	class, ok := r.Resolve(kind)
	if !ok {
		return "", false
	}
	return classAttribute(typ, class)
}

func classAttribute(typ fields.Type, class Class) (string, bool) {
	switch {
	case typ.Textual():
		switch class {
		case ClassHeading:
			return AttrTitle, true
		case ClassTextBlock:
			return AttrEditor, true
		case ClassButton:
			return AttrText, true
		}
	case typ == fields.TypeImage:
		if class == ClassImage {
			return AttrImage, true
		}
	}
	return "", false
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry holding the built-in kinds.
func Default() *Registry {
	return defaultRegistry
}

// TargetAttribute resolves against the default registry.
func TargetAttribute(typ fields.Type, kind string) (string, bool) {
	return defaultRegistry.TargetAttribute(typ, kind)
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func (r *Registry) registerBuiltins() {
	r.Register(KindHeading, ClassHeading)
	r.Register(KindTextEditor, ClassTextBlock)
	r.Register(KindButton, ClassButton)
	r.Register(KindImage, ClassImage)
}
