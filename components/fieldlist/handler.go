package fieldlist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

// TemplateIDParam names the path parameter holding the template id.
const TemplateIDParam = "id"

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type keysResponse struct {
	Keys []fields.Listing `json:"keys"`
}

// FieldsHandler serves the bare field array of the template named by the
// {id} path parameter.
func FieldsHandler(fns ...OptionFn) http.Handler {
	return fieldsHandler(NewOptions(fns...), false)
}

// KeysHandler serves the field list wrapped in a {"keys": [...]} envelope.
func KeysHandler(fns ...OptionFn) http.Handler {
	return fieldsHandler(NewOptions(fns...), true)
}

// ListHandler serves the published template summaries.
func ListHandler(fns ...OptionFn) http.Handler {
	return listHandler(NewOptions(fns...))
}

func fieldsHandler(opts Options, envelope bool) http.Handler {
	return guarded(opts, func(w http.ResponseWriter, r *http.Request) {
		id := TemplateID(r)
		items := listings(r, opts, id)

		var payload any = items
		if envelope {
			payload = keysResponse{Keys: items}
		}
		writeJSON(w, r, payload)
	})
}

func listHandler(opts Options) http.Handler {
	return guarded(opts, func(w http.ResponseWriter, r *http.Request) {
		items := []store.Summary{}
		if opts.Store != nil {
			found, err := opts.Store.Templates(r.Context(), store.PublishedTemplates())
			if err != nil {
				opts.Logger.Error("list templates", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if found != nil {
				items = found
			}
		}
		writeJSON(w, r, items)
	})
}

func listings(r *http.Request, opts Options, id string) []fields.Listing {
	empty := []fields.Listing{}
	if id == "" || opts.Store == nil {
		return empty
	}

	tpl, err := opts.Store.Template(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			opts.Logger.Warn("load template for field listing", zap.String("template", id), zap.Error(err))
		}
		return empty
	}
	if !tpl.IsTemplate() {
		return empty
	}

	items := opts.Cache.Listings(r.Context(), tpl)
	if items == nil {
		return empty
	}
	return items
}

func guarded(opts Options, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		next(w, r)
	})
}

// TemplateID reads the {id} path parameter from chi routes or, failing that,
// from net/http pattern routes.
func TemplateID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := chi.URLParam(r, TemplateIDParam); id != "" {
		return strings.TrimSpace(id)
	}
	return strings.TrimSpace(r.PathValue(TemplateIDParam))
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
