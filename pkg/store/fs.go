package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
)

// Directory names LoadFS reads records from.
const (
	TemplatesDir = "templates"
	InstancesDir = "instances"
)

type templateDocument struct {
	ID      string `json:"id" yaml:"id"`
	Kind    string `json:"kind" yaml:"kind"`
	Title   string `json:"title" yaml:"title"`
	Status  string `json:"status" yaml:"status"`
	Data    any    `json:"data" yaml:"data"`
	Content any    `json:"content" yaml:"content"`
}

type instanceDocument struct {
	ID         string                  `json:"id" yaml:"id"`
	TemplateID string                  `json:"templateId" yaml:"templateId"`
	Overrides  []overrides.Entry       `json:"overrides" yaml:"overrides"`
	Legacy     []overrides.LegacyEntry `json:"dynamic_overrides" yaml:"dynamic_overrides"`
}

// LoadFS walks fsys and loads template files under templates/ and instance
// files under instances/ into a memory store. JSON, JSONC and YAML files are
// accepted. A record without an id takes its file name. When fsys is nil the
// returned store is empty.
func LoadFS(fsys fs.FS) (*Memory, error) {
	store := NewMemory()
	if fsys == nil {
		return store, nil
	}
	ctx := context.Background()

	err := fs.WalkDir(fsys, ".", func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isRecordFile(filePath) {
			return nil
		}

		dir := topDir(filePath)
		if dir != TemplatesDir && dir != InstancesDir {
			return nil
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("store: read %s: %w", filePath, err)
		}

		switch dir {
		case TemplatesDir:
			var doc templateDocument
			if err := parseDocument(data, filePath, &doc); err != nil {
				return err
			}
			tpl, err := doc.template(filePath)
			if err != nil {
				return err
			}
			if _, err := store.Template(ctx, tpl.ID); err == nil {
				return fmt.Errorf("store: duplicate template %q (file %s)", tpl.ID, filePath)
			}
			return store.SaveTemplate(ctx, tpl)
		default:
			var doc instanceDocument
			if err := parseDocument(data, filePath, &doc); err != nil {
				return err
			}
			inst := Instance{
				ID:         firstNonEmpty(doc.ID, baseName(filePath)),
				TemplateID: strings.TrimSpace(doc.TemplateID),
				Overrides:  doc.Overrides,
				Legacy:     doc.Legacy,
			}
			if _, err := store.Instance(ctx, inst.ID); err == nil {
				return fmt.Errorf("store: duplicate instance %q (file %s)", inst.ID, filePath)
			}
			return store.SaveInstance(ctx, inst)
		}
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

func (d templateDocument) template(filePath string) (Template, error) {
	data, err := payloadBytes(d.Data)
	if err != nil {
		return Template{}, fmt.Errorf("store: template data in %s: %w", filePath, err)
	}
	content, err := payloadBytes(d.Content)
	if err != nil {
		return Template{}, fmt.Errorf("store: template content in %s: %w", filePath, err)
	}
	return Template{
		ID:      firstNonEmpty(d.ID, baseName(filePath)),
		Kind:    strings.TrimSpace(d.Kind),
		Title:   d.Title,
		Status:  strings.TrimSpace(d.Status),
		Data:    data,
		Content: content,
	}, nil
}

// payloadBytes keeps string payloads verbatim, since they may carry an
// encoded document, and re-encodes structured ones as canonical JSON.
func payloadBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	default:
		tree, err := layout.FromValue(v)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tree)
	}
}

func parseDocument(data []byte, filePath string, target any) error {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".json":
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("store: parse json %s: %w", filePath, err)
		}
	case ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), target); err != nil {
			return fmt.Errorf("store: parse jsonc %s: %w", filePath, err)
		}
	default:
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("store: parse yaml %s: %w", filePath, err)
		}
	}
	return nil
}

func isRecordFile(filePath string) bool {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".json", ".jsonc", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func topDir(filePath string) string {
	dir, _, found := strings.Cut(filePath, "/")
	if !found {
		return ""
	}
	return dir
}

func baseName(filePath string) string {
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
