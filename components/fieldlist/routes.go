package fieldlist

import (
	"fmt"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Routes lists the patterns registered by RegisterRoutes.
type Routes struct {
	List   string
	Fields string
	Keys   string
}

// MountPath returns the templates collection path under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the listing handlers under basePath on router.
func RegisterRoutes(router chi.Router, basePath string, fns ...OptionFn) (Routes, error) {
	return RegisterRoutesWithOptions(router, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers handlers using a pre-built Options value.
func RegisterRoutesWithOptions(router chi.Router, basePath string, opts Options) (Routes, error) {
	if router == nil {
		return Routes{}, fmt.Errorf("fieldlist: missing router")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	root := mountPath(basePath, opts.RoutePath)
	routes := Routes{
		List:   root,
		Fields: root + "/{" + TemplateIDParam + "}/fields",
		Keys:   root + "/{" + TemplateIDParam + "}/keys",
	}
	router.Handle(routes.List, listHandler(opts))
	router.Handle(routes.Fields, fieldsHandler(opts, false))
	router.Handle(routes.Keys, fieldsHandler(opts, true))
	return routes, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	routePath = strings.TrimRight(routePath, "/")

	if basePath == "" || basePath == "/" {
		if routePath == "" {
			return "/"
		}
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
