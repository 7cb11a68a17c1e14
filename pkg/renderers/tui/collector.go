package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
)

// CollectOverrides asks for a value for every listed field, offering the
// value already stored in existing as the default. Leaving an answer empty
// clears the override for that field. The returned entries follow listing
// order.
func CollectOverrides(ctx context.Context, driver PromptDriver, listed []fields.Listing, existing []overrides.Entry) ([]overrides.Entry, error) {
	if driver == nil {
		return nil, ErrNoPromptDriver
	}
	entries := overrides.Reconcile(existing, listed)
	if len(entries) == 0 {
		if err := driver.Info(ctx, "Template declares no dynamic fields."); err != nil {
			return nil, err
		}
		return entries, nil
	}

	for i := range entries {
		entry := &entries[i]
		message := fmt.Sprintf("%s (%s)", entry.Label, entry.Type)
		help := fmt.Sprintf("field id %s; leave empty to keep the authored content", entry.Key)

		switch {
		case entry.Type == fields.TypeText:
			answer, err := driver.Input(ctx, InputConfig{Message: message, Default: entry.Text, Help: help})
			if err != nil {
				return nil, err
			}
			entry.Text = answer
		case entry.Type.Textual():
			answer, err := driver.TextArea(ctx, TextAreaConfig{Message: message, Default: entry.Text, Help: help})
			if err != nil {
				return nil, err
			}
			entry.Text = answer
		case entry.Type == fields.TypeImage:
			current := ""
			if entry.Image != nil {
				current = entry.Image.URL
			}
			answer, err := driver.Input(ctx, InputConfig{Message: message, Default: current, Help: help, Validator: validateURL})
			if err != nil {
				return nil, err
			}
			entry.Image = mediaFor(entry.Image, answer)
		case entry.Type == fields.TypeURL:
			current := ""
			if entry.Link != nil {
				current = entry.Link.URL
			}
			answer, err := driver.Input(ctx, InputConfig{Message: message, Default: current, Help: help, Validator: validateURL})
			if err != nil {
				return nil, err
			}
			entry.Link = linkFor(entry.Link, answer)
		}
	}
	return entries, nil
}

func mediaFor(current *overrides.Media, answer string) *overrides.Media {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	if current != nil && current.URL == answer {
		return current
	}
	return &overrides.Media{URL: answer}
}

func linkFor(current *overrides.Link, answer string) *overrides.Link {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	if current != nil {
		link := *current
		link.URL = answer
		return &link
	}
	return &overrides.Link{URL: answer}
}

func validateURL(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "/") || strings.Contains(value, "://") || strings.HasPrefix(value, "mailto:") || strings.HasPrefix(value, "tel:") {
		return nil
	}
	return fmt.Errorf("enter an absolute URL or a path starting with /")
}
