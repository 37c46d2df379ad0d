package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcd/librovore/internal/config"
	"github.com/emcd/librovore/internal/core"
	"github.com/emcd/librovore/internal/detect"
	domainerrors "github.com/emcd/librovore/internal/errors"
	"github.com/emcd/librovore/internal/fetch"
	"github.com/emcd/librovore/internal/objects"
	"github.com/emcd/librovore/internal/processors"
	"github.com/emcd/librovore/internal/processors/capability"
	"github.com/emcd/librovore/internal/search"
	"github.com/emcd/librovore/internal/urlutil"
)

const testInventoryType = "fake_inventory"

type fakeInventoryProcessor struct {
	name       string
	confidence float64
	objs       map[string]objects.InventoryObject
}

func (p *fakeInventoryProcessor) Name() string { return p.name }

func (p *fakeInventoryProcessor) Detect(ctx context.Context, location string, fetcher processors.Fetcher) (*objects.Detection, error) {
	if p.confidence <= 0 {
		return nil, nil
	}
	return &objects.Detection{
		ProcessorName: p.name,
		Confidence:    p.confidence,
		ProcessorType: objects.GenusInventory,
		DetectionMetadata: map[string]any{
			"inventory_type": testInventoryType,
		},
	}, nil
}

func (p *fakeInventoryProcessor) Acquire(ctx context.Context, location string, fetcher processors.Fetcher) (map[string]objects.InventoryObject, error) {
	return p.objs, nil
}

func (p *fakeInventoryProcessor) Filter(objs map[string]objects.InventoryObject, filters objects.Filters) ([]objects.InventoryObject, []string, error) {
	var warnings []string
	for key := range filters {
		if key != "domain" {
			warnings = append(warnings, "unknown filter: "+key)
		}
	}
	out := make([]objects.InventoryObject, 0, len(objs))
	for _, o := range objs {
		if domain, ok := filters["domain"]; ok {
			d, _ := objects.ToString(domain)
			if o.Specifics["domain"] != d {
				continue
			}
		}
		out = append(out, o)
	}
	return out, warnings, nil
}

func (p *fakeInventoryProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().InventoryTypes(testInventoryType).Filters("domain").Build()
}

type fakeStructureProcessor struct {
	name string
}

func (p *fakeStructureProcessor) Name() string { return p.name }

func (p *fakeStructureProcessor) SupportedInventoryTypes() []string {
	return []string{testInventoryType}
}

func (p *fakeStructureProcessor) Extract(ctx context.Context, objs []objects.InventoryObject, baseURL string, fetcher processors.Fetcher, filters objects.Filters, linesMax int) ([]objects.ContentDocument, []string, error) {
	docs := make([]objects.ContentDocument, 0, len(objs))
	for _, o := range objs {
		docs = append(docs, objects.NewContentDocument(o, o.Name, baseURL+o.URI, "# "+o.Name, objects.ExtractionMetadata{Quality: "high"}))
	}
	return docs, nil, nil
}

func (p *fakeStructureProcessor) Capabilities() objects.ProcessorCapabilities {
	return capability.New().InventoryTypes(testInventoryType).Build()
}

func mustObject(t *testing.T, name, domain string) objects.InventoryObject {
	t.Helper()
	obj, err := objects.NewInventoryObject(name, name+".html", testInventoryType, "https://example.io/docs/",
		"", map[string]string{"domain": domain}, nil)
	require.NoError(t, err)
	return obj
}

func newTestService(t *testing.T, objs map[string]objects.InventoryObject) *Service {
	t.Helper()

	registry := processors.NewRegistry()
	registry.RegisterInventory(&fakeInventoryProcessor{name: "fake", confidence: 0.95, objs: objs})
	registry.RegisterStructure(&fakeStructureProcessor{name: "fake"})

	fetcher := fetch.New(fetch.DefaultConfig("librovore-test/0"))
	redirects := urlutil.NewRedirectCache()
	orchestrator := detect.New(fetcher, registry, redirects, time.Hour, 4)

	c := &core.Core{
		Config:       config.NewConfig(),
		Fetcher:      fetcher,
		Registry:     registry,
		Redirects:    redirects,
		Orchestrator: orchestrator,
		SearchOpts:   search.Options{Mode: search.ModeFuzzy, FuzzyThreshold: 50},
	}
	return New(c)
}

func TestQueryInventory_ReturnsMatchesOrderedByScoreThenName(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
		"beta.Client":  mustObject(t, "beta.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.QueryInventory(context.Background(), "https://example.io/docs/", "Client", InventoryQueryParams{
		SearchOpts: search.Options{Mode: search.ModeExact},
		ResultsMax: 5,
		Details:    true,
	})

	require.NoError(t, err)
	require.Len(t, result.Objects, 2)
	assert.Equal(t, "alpha.Client", result.Objects[0].Name)
	assert.Equal(t, "beta.Client", result.Objects[1].Name)
	assert.Equal(t, 2, result.SearchMetadata.MatchesTotal)
	assert.False(t, result.SearchMetadata.ResultsTruncated())
}

func TestQueryInventory_AppliesResultsMaxTruncation(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
		"beta.Client":  mustObject(t, "beta.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.QueryInventory(context.Background(), "https://example.io/docs/", "Client", InventoryQueryParams{
		SearchOpts: search.Options{Mode: search.ModeExact},
		ResultsMax: 1,
	})

	require.NoError(t, err)
	require.Len(t, result.Objects, 1)
	assert.Equal(t, 2, result.SearchMetadata.MatchesTotal)
	assert.True(t, result.SearchMetadata.ResultsTruncated())
}

func TestQueryInventory_DetailsFalseStripsSpecifics(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.QueryInventory(context.Background(), "https://example.io/docs/", "Client", InventoryQueryParams{
		SearchOpts: search.Options{Mode: search.ModeExact},
		Details:    false,
	})

	require.NoError(t, err)
	require.Len(t, result.Objects, 1)
	assert.Empty(t, result.Objects[0].Specifics)
}

func TestQueryInventory_UnknownFilterKeyDoesNotFailTheQuery(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.QueryInventory(context.Background(), "https://example.io/docs/", "", InventoryQueryParams{
		Filters: objects.Filters{"bogus": "value"},
	})

	require.NoError(t, err)
	require.Len(t, result.Objects, 1)
}

func TestQueryContent_ResolvesByContentID(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
	}
	svc := newTestService(t, objs)

	contentID := objects.ContentID("https://example.io/docs/", "alpha.Client")
	result, err := svc.QueryContent(context.Background(), "https://example.io/docs/", "", ContentQueryParams{
		ContentID: contentID,
	})

	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "alpha.Client", result.Documents[0].Object.Name)
	assert.Equal(t, 1, result.SearchMetadata.MatchesTotal)
}

func TestQueryContent_UnknownContentIDRaisesContentInaccessibility(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
	}
	svc := newTestService(t, objs)

	contentID := objects.ContentID("https://example.io/docs/", "does-not-exist")
	_, err := svc.QueryContent(context.Background(), "https://example.io/docs/", "", ContentQueryParams{
		ContentID: contentID,
	})

	require.Error(t, err)
	kind, ok := domainerrors.GetKind(err)
	require.True(t, ok)
	assert.Equal(t, domainerrors.KindContentInaccessibility, kind)
}

func TestQueryContent_SearchesByTermWhenNoContentID(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
		"beta.Client":  mustObject(t, "beta.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.QueryContent(context.Background(), "https://example.io/docs/", "alpha", ContentQueryParams{
		SearchOpts: search.Options{Mode: search.ModeExact},
	})

	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "alpha.Client", result.Documents[0].Object.Name)
}

func TestSummarize_GroupsByTopLevelSpecificsField(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
		"beta.Client":  mustObject(t, "beta.Client", "js"),
		"gamma.Client": mustObject(t, "gamma.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.Summarize(context.Background(), "https://example.io/docs/", "domain")

	require.NoError(t, err)
	require.Len(t, result.Objects, 3)
	assert.Equal(t, 2, result.GroupedSpecifics["py"])
	assert.Equal(t, 1, result.GroupedSpecifics["js"])
}

func TestSummarize_NoGroupByLeavesGroupedSpecificsNil(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.Summarize(context.Background(), "https://example.io/docs/", "")

	require.NoError(t, err)
	assert.Nil(t, result.GroupedSpecifics)
}

func TestSurveyProcessors_FiltersByName(t *testing.T) {
	svc := newTestService(t, map[string]objects.InventoryObject{})

	all := svc.SurveyProcessors(objects.GenusInventory, "")
	require.Len(t, all.Processors, 1)

	named := svc.SurveyProcessors(objects.GenusInventory, "fake")
	require.Len(t, named.Processors, 1)

	missing := svc.SurveyProcessors(objects.GenusInventory, "nope")
	assert.Empty(t, missing.Processors)
}

func TestDetect_MergesInventoryAndStructureGenera(t *testing.T) {
	objs := map[string]objects.InventoryObject{
		"alpha.Client": mustObject(t, "alpha.Client", "py"),
	}
	svc := newTestService(t, objs)

	result, err := svc.Detect(context.Background(), "https://example.io/docs/", "", nil)

	require.NoError(t, err)
	require.NotNil(t, result.DetectionOptimal)
	assert.Equal(t, objects.GenusInventory, result.DetectionOptimal.ProcessorType)
	assert.GreaterOrEqual(t, len(result.Detections), 2)
}

func TestDetect_NoProcessorClearsThresholdRaisesProcessorInavailability(t *testing.T) {
	registry := processors.NewRegistry()
	registry.RegisterInventory(&fakeInventoryProcessor{name: "fake", confidence: 0})

	fetcher := fetch.New(fetch.DefaultConfig("librovore-test/0"))
	redirects := urlutil.NewRedirectCache()
	orchestrator := detect.New(fetcher, registry, redirects, time.Hour, 4)

	c := &core.Core{
		Config:       config.NewConfig(),
		Fetcher:      fetcher,
		Registry:     registry,
		Redirects:    redirects,
		Orchestrator: orchestrator,
	}
	svc := New(c)

	_, err := svc.Detect(context.Background(), "https://example.io/docs/", "", []objects.Genus{objects.GenusInventory})
	require.Error(t, err)
}
