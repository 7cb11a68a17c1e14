package tui

// Option configures the outline renderer.
type Option func(*config)

type config struct {
	indent      string
	showFields  bool
	settingKeys []string
}

func defaultConfig() config {
	return config{
		indent:      "  ",
		showFields:  true,
		settingKeys: []string{"title", "editor", "text", "image", "link", "templateId"},
	}
}

// WithIndent sets the per-level indentation.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		if indent != "" {
			cfg.indent = indent
		}
	}
}

// WithoutFields hides the dynamic field annotations.
func WithoutFields() Option {
	return func(cfg *config) {
		cfg.showFields = false
	}
}

// WithSettingKeys selects which settings are printed for each node, in order.
func WithSettingKeys(keys ...string) Option {
	return func(cfg *config) {
		if len(keys) > 0 {
			cfg.settingKeys = append([]string(nil), keys...)
		}
	}
}
