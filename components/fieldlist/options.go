package fieldlist

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/pkg/fieldcache"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

// GuardFunc authorizes a request. A returned HTTPError selects the response
// status; any other error yields 403.
type GuardFunc func(r *http.Request) error

// Options configures the handlers.
type Options struct {
	RoutePath string
	Guard     GuardFunc
	Store     store.TemplateReader
	Cache     *fieldcache.Cache
	Logger    *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath: "/templates",
		Logger:    zap.NewNop(),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/templates"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithStore(reader store.TemplateReader) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = reader
	}
}

// WithCache memoises listings. Without it every request decodes the template.
func WithCache(cache *fieldcache.Cache) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Cache = cache
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
