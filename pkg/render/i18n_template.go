package render

import "strings"

// TemplateI18nConfig configures template-level translation helpers.
type TemplateI18nConfig struct {
	// FuncName customizes the translator helper name (defaults to "translate").
	FuncName string
}

// TemplateI18nFuncs returns helpers bound to a single render, suitable for
// the per-render data of a template engine:
//
//	{{ translate("synctemplate.select_template") }}
//	{{ current_locale() }}
func TemplateI18nFuncs(opts RenderOptions, cfg TemplateI18nConfig) map[string]any {
	translateName := strings.TrimSpace(cfg.FuncName)
	if translateName == "" {
		translateName = "translate"
	}

	return map[string]any{
		translateName: func(key string) string {
			return Translate(opts, key)
		},
		"current_locale": func() string {
			return opts.Locale
		},
	}
}
