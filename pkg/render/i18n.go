package render

import (
	"errors"
	"strings"
)

// Translator resolves localisation keys.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. params carries the caller arguments; the first element is a
// map holding the "default" fallback when one exists.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Message keys for renderer-owned copy.
const (
	MessageSelectTemplate  = "synctemplate.select_template"
	MessageTemplateMissing = "synctemplate.template_missing"
	MessageEmbedDepth      = "synctemplate.embed_depth"
)

var defaultMessages = map[string]string{
	MessageSelectTemplate:  "Please select a template.",
	MessageTemplateMissing: "The selected template could not be found.",
	MessageEmbedDepth:      "Template nesting is too deep.",
}

// DefaultMessage returns the built-in English copy for a message key.
func DefaultMessage(key string) string {
	return defaultMessages[key]
}

// Translate resolves key using the options translator, falling back to the
// built-in copy and then to the key itself.
func Translate(opts RenderOptions, key string) string {
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	return translate(opts.Locale, key, DefaultMessage(key), opts.Translator, onMissing)
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func missingTranslationDefault(_ string, key string, params []any, _ error) string {
	if len(params) > 0 {
		if defaults, ok := params[0].(map[string]any); ok {
			if fallback, ok := defaults["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}
