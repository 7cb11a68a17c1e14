package fieldlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Component bundles the handlers with their configuration.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Router returns a standalone chi router serving the component routes at
// the root.
func (c *Component) Router() http.Handler {
	router := chi.NewRouter()
	_, _ = c.RegisterRoutes(router, "")
	return router
}

// RegisterRoutes registers the component handlers under basePath.
func (c *Component) RegisterRoutes(router chi.Router, basePath string) (Routes, error) {
	if c == nil {
		return RegisterRoutes(router, basePath)
	}
	return RegisterRoutesWithOptions(router, basePath, c.opts)
}
