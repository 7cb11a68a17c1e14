package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Template names resolved against the bundle.
const (
	TemplateNode    = "templates/node"
	TemplateHeading = "templates/heading"
	TemplateText    = "templates/text-editor"
	TemplateButton  = "templates/button"
	TemplateImage   = "templates/image"
	TemplateEmbed   = "templates/embed"
	TemplateAlert   = "templates/alert"
)

// TemplatesFS exposes the embedded template bundle so callers can copy or
// extend it.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

func defaultKindTemplates() map[string]string {
	return map[string]string{
		"heading":     TemplateHeading,
		"text-editor": TemplateText,
		"button":      TemplateButton,
		"image":       TemplateImage,
	}
}
