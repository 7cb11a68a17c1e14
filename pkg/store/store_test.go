package store

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
)

const heroData = `[{"id":"h1","elType":"widget","widgetType":"heading","settings":{"title":"T","dynamicFields":[{"fieldId":"hero_title","label":"Hero","type":"text","enabled":true}]}}]`

func newSQLStore(t *testing.T) *SQL {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func storeBackends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": newSQLStore(t),
	}
}

func TestStore_TemplateRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SaveTemplate(ctx, Template{ID: " hero ", Title: "Hero", Data: []byte(heroData)})
			require.NoError(t, err)

			tpl, err := s.Template(ctx, "hero")
			require.NoError(t, err)
			assert.Equal(t, "hero", tpl.ID)
			assert.Equal(t, KindTemplate, tpl.Kind)
			assert.Equal(t, StatusPublish, tpl.Status)
			assert.True(t, tpl.IsTemplate())
			assert.False(t, tpl.UpdatedAt.IsZero())

			discovered := fields.Discover(tpl.Tree())
			require.Len(t, discovered, 1)
			assert.Equal(t, "hero_title", discovered[0].Descriptor.FieldID)
		})
	}
}

func TestStore_TemplateNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Template(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.Instance(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SaveTemplateUpserts(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveTemplate(ctx, Template{ID: "a", Title: "First"}))
			require.NoError(t, s.SaveTemplate(ctx, Template{ID: "a", Title: "Second", Content: []byte(heroData)}))

			tpl, err := s.Template(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "Second", tpl.Title)
			assert.Equal(t, 1, tpl.Tree().Len())
		})
	}
}

func TestStore_TemplatesFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveTemplate(ctx, Template{ID: "b", Title: "Beta"}))
			require.NoError(t, s.SaveTemplate(ctx, Template{ID: "a", Title: "Alpha"}))
			require.NoError(t, s.SaveTemplate(ctx, Template{ID: "d", Title: "Draft", Status: StatusDraft}))
			require.NoError(t, s.SaveTemplate(ctx, Template{ID: "p", Title: "Page", Kind: "page"}))

			published, err := s.Templates(ctx, PublishedTemplates())
			require.NoError(t, err)
			assert.Equal(t, []Summary{{ID: "a", Title: "Alpha"}, {ID: "b", Title: "Beta"}}, published)

			all, err := s.Templates(ctx, ListOptions{})
			require.NoError(t, err)
			assert.Len(t, all, 4)
		})
	}
}

func TestStore_TemplatesEmptyIsNotNil(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			items, err := s.Templates(ctx, PublishedTemplates())
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestStore_InstanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			inst := Instance{
				ID:         "home",
				TemplateID: "hero",
				Overrides: []overrides.Entry{
					{Key: "hero_title", Type: fields.TypeText, Text: "Hi"},
					{Key: "hero_img", Type: fields.TypeImage, Image: &overrides.Media{URL: "/a.png"}},
				},
				Legacy: []overrides.LegacyEntry{{Key: "old", Value: "<p>x</p>"}},
			}
			require.NoError(t, s.SaveInstance(ctx, inst))

			got, err := s.Instance(ctx, "home")
			require.NoError(t, err)
			assert.Equal(t, "hero", got.TemplateID)
			assert.Equal(t, inst.Overrides, got.Overrides)
			assert.Equal(t, inst.Legacy, got.Legacy)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.SaveInstance(ctx, Instance{
		ID:        "i",
		Overrides: []overrides.Entry{{Key: "img", Type: fields.TypeImage, Image: &overrides.Media{URL: "/a.png"}}},
	}))

	got, err := s.Instance(ctx, "i")
	require.NoError(t, err)
	got.Overrides[0].Image.URL = "/mutated.png"

	again, err := s.Instance(ctx, "i")
	require.NoError(t, err)
	assert.Equal(t, "/a.png", again.Overrides[0].Image.URL)
}

func TestStore_RequiresID(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.SaveTemplate(ctx, Template{ID: "  "}))
			assert.Error(t, s.SaveInstance(ctx, Instance{}))
		})
	}
}

func TestTemplate_PayloadFallsBackToContent(t *testing.T) {
	tpl := Template{Data: []byte("  "), Content: []byte(heroData)}
	assert.Equal(t, []byte(heroData), tpl.Payload())
	assert.Equal(t, 1, tpl.Tree().Len())

	quoted := Template{Data: []byte(`"` + `[{\"id\":\"x\",\"kind\":\"heading\"}]` + `"`)}
	assert.Equal(t, 1, quoted.Tree().Len())

	broken := Template{Data: []byte("{not json")}
	assert.True(t, broken.Tree().Empty())
}

func TestLoadFS(t *testing.T) {
	ctx := context.Background()
	s, err := LoadFS(os.DirFS("testdata/bundle"))
	require.NoError(t, err)

	hero, err := s.Template(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "Hero banner", hero.Title)
	discovered := fields.Discover(hero.Tree())
	require.Len(t, discovered, 1)
	assert.Equal(t, "h1", discovered[0].NodeID)

	promo, err := s.Template(ctx, "promo")
	require.NoError(t, err, "id defaults to the file name")
	assert.Empty(t, promo.Data)
	listed := fields.Discover(promo.Tree())
	require.Len(t, listed, 1)
	assert.Equal(t, fields.TypeURL, listed[0].Descriptor.Type)

	published, err := s.Templates(ctx, PublishedTemplates())
	require.NoError(t, err)
	assert.Equal(t, []Summary{{ID: "hero", Title: "Hero banner"}, {ID: "promo", Title: "Promo"}}, published)

	inst, err := s.Instance(ctx, "home-hero")
	require.NoError(t, err)
	assert.Equal(t, "hero", inst.TemplateID)
	require.Len(t, inst.Overrides, 1)
	assert.Equal(t, "Welcome home", inst.Overrides[0].Text)
	assert.Equal(t, []overrides.LegacyEntry{{Key: "hero_title", Value: "Legacy title"}}, inst.Legacy)
}

func TestLoadFS_NilAndDuplicates(t *testing.T) {
	s, err := LoadFS(nil)
	require.NoError(t, err)
	items, err := s.Templates(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = LoadFS(fstest.MapFS{
		"templates/a.json": {Data: []byte(`{"id":"same"}`)},
		"templates/b.yaml": {Data: []byte("id: same\n")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template")
}

func TestLoadFS_ParseError(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{
		"templates/bad.json": {Data: []byte(`{"id":`)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "templates/bad.json")
}

func TestMemory_CopyIntoSQL(t *testing.T) {
	ctx := context.Background()
	src, err := LoadFS(os.DirFS("testdata/bundle"))
	require.NoError(t, err)
	dst := newSQLStore(t)

	templates, instances, err := src.Copy(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, templates)
	assert.Equal(t, 1, instances)

	hero, err := dst.Template(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, 1, len(fields.Discover(hero.Tree())))

	inst, err := dst.Instance(ctx, "home-hero")
	require.NoError(t, err)
	assert.Equal(t, "hero", inst.TemplateID)
	assert.Len(t, inst.Legacy, 1)
}
