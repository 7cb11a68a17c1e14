package overrides

import (
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

// Value is a coerced override ready to be written into node settings.
type Value struct {
	Type fields.Type
	Text string
	URL  string
}

// Setting returns the value in the shape node settings expect: a bare string
// for text types and a {"url": ...} record for image and url.
func (v Value) Setting() any {
	if v.Type.Media() {
		return map[string]any{"url": v.URL}
	}
	return v.Text
}

// String returns the textual payload, or the URL for media values.
func (v Value) String() string {
	if v.Type.Media() {
		return v.URL
	}
	return v.Text
}

// Coerce normalises raw for the declared type. It never panics; unsupported
// types, unsupported raw shapes and empty values report false.
func Coerce(typ fields.Type, raw any) (Value, bool) {
	switch typ {
	case fields.TypeText, fields.TypeTextarea, fields.TypeRichtext:
		text, ok := textOf(raw)
		if !ok || text == "" {
			return Value{}, false
		}
		return Value{Type: typ, Text: text}, true
	case fields.TypeImage, fields.TypeURL:
		url, ok := urlOf(raw)
		if !ok {
			return Value{}, false
		}
		url = strings.TrimSpace(url)
		if url == "" {
			return Value{}, false
		}
		return Value{Type: typ, URL: url}, true
	default:
		return Value{}, false
	}
}

func textOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func urlOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case Media:
		return v.URL, true
	case *Media:
		if v == nil {
			return "", false
		}
		return v.URL, true
	case Link:
		return v.URL, true
	case *Link:
		if v == nil {
			return "", false
		}
		return v.URL, true
	case map[string]any:
		url, ok := v["url"].(string)
		return url, ok
	case map[string]string:
		url, ok := v["url"]
		return url, ok
	default:
		return "", false
	}
}
