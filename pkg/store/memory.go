package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-synctemplate/pkg/overrides"
)

// Memory is an in-process Store.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]Template
	instances map[string]Instance
	now       func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		templates: make(map[string]Template),
		instances: make(map[string]Instance),
		now:       time.Now,
	}
}

func (m *Memory) Template(_ context.Context, id string) (Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[normalizeID(id)]
	if !ok {
		return Template{}, fmt.Errorf("store: template %q: %w", id, ErrNotFound)
	}
	return cloneTemplate(t), nil
}

func (m *Memory) Templates(_ context.Context, opts ListOptions) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.templates))
	for _, t := range m.templates {
		if !opts.match(t) {
			continue
		}
		out = append(out, Summary{ID: t.ID, Title: t.Title})
	}
	sortSummaries(out)
	return out, nil
}

func (m *Memory) SaveTemplate(_ context.Context, t Template) error {
	t = normalizeTemplate(t)
	if t.ID == "" {
		return fmt.Errorf("store: template id is required")
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = m.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (m *Memory) Instance(_ context.Context, id string) (Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.instances[normalizeID(id)]
	if !ok {
		return Instance{}, fmt.Errorf("store: instance %q: %w", id, ErrNotFound)
	}
	return cloneInstance(i), nil
}

func (m *Memory) SaveInstance(_ context.Context, i Instance) error {
	i.ID = normalizeID(i.ID)
	if i.ID == "" {
		return fmt.Errorf("store: instance id is required")
	}
	if i.UpdatedAt.IsZero() {
		i.UpdatedAt = m.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[i.ID] = cloneInstance(i)
	return nil
}

// Instances returns every stored instance ordered by id.
func (m *Memory) Instances(_ context.Context) ([]Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, cloneInstance(inst))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Copy writes every record held by m into dst.
func (m *Memory) Copy(ctx context.Context, dst Store) (templates, instances int, err error) {
	summaries, err := m.Templates(ctx, ListOptions{})
	if err != nil {
		return 0, 0, err
	}
	for _, summary := range summaries {
		tpl, err := m.Template(ctx, summary.ID)
		if err != nil {
			return templates, instances, err
		}
		if err := dst.SaveTemplate(ctx, tpl); err != nil {
			return templates, instances, err
		}
		templates++
	}

	all, err := m.Instances(ctx)
	if err != nil {
		return templates, instances, err
	}
	for _, inst := range all {
		if err := dst.SaveInstance(ctx, inst); err != nil {
			return templates, instances, err
		}
		instances++
	}
	return templates, instances, nil
}

func cloneTemplate(t Template) Template {
	t.Data = append([]byte(nil), t.Data...)
	t.Content = append([]byte(nil), t.Content...)
	return t
}

func cloneInstance(i Instance) Instance {
	if i.Overrides != nil {
		entries := make([]overrides.Entry, len(i.Overrides))
		copy(entries, i.Overrides)
		for idx := range entries {
			if entries[idx].Image != nil {
				media := *entries[idx].Image
				entries[idx].Image = &media
			}
			if entries[idx].Link != nil {
				link := *entries[idx].Link
				entries[idx].Link = &link
			}
		}
		i.Overrides = entries
	}
	if i.Legacy != nil {
		i.Legacy = append([]overrides.LegacyEntry(nil), i.Legacy...)
	}
	return i
}

func sortSummaries(items []Summary) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Title == items[b].Title {
			return items[a].ID < items[b].ID
		}
		return items[a].Title < items[b].Title
	})
}
