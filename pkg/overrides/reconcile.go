package overrides

import "github.com/goliatone/go-synctemplate/pkg/fields"

// Reconcile rebuilds an instance's entries from the template's current field
// list. Each listed field gets one entry in listing order; values stored under
// a surviving key are carried over when they still fit the field type, and
// entries for fields that no longer exist are dropped.
func Reconcile(existing []Entry, listed []fields.Listing) []Entry {
	previous := make(map[string]Entry, len(existing))
	for _, entry := range existing {
		key := entry.NormalizedKey()
		if key == "" {
			continue
		}
		previous[key] = entry
	}

	out := make([]Entry, 0, len(listed))
	for _, field := range listed {
		entry := Entry{
			Key:   field.FieldID,
			Label: field.Label,
			Type:  field.Type,
		}
		if entry.Label == "" {
			entry.Label = field.FieldID
		}
		if old, ok := previous[field.FieldID]; ok {
			carry(&entry, old)
		}
		out = append(out, entry)
	}
	return out
}

func carry(dst *Entry, src Entry) {
	switch {
	case dst.Type.Textual():
		if text, ok := textOf(src.Raw()); ok {
			dst.Text = text
		} else if src.Text != "" {
			dst.Text = src.Text
		}
	case dst.Type == fields.TypeImage:
		if src.Image != nil {
			media := *src.Image
			dst.Image = &media
		} else if url, ok := urlOf(src.Raw()); ok {
			dst.Image = &Media{URL: url}
		}
	case dst.Type == fields.TypeURL:
		if src.Link != nil {
			link := *src.Link
			dst.Link = &link
		} else if url, ok := urlOf(src.Raw()); ok {
			dst.Link = &Link{URL: url}
		}
	}
}
