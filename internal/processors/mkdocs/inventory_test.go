package mkdocs

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	bytesByURL map[string][]byte
}

func (f *fakeFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	if b, ok := f.bytesByURL[url]; ok {
		return b, nil
	}
	return nil, errNotFound(url)
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) (string, string, http.Header, error) {
	b, err := f.FetchBytes(context.Background(), url)
	return string(b), url, nil, err
}

type notFoundErr struct{ url string }

func (e *notFoundErr) Error() string { return "404: " + e.url }
func errNotFound(url string) error   { return &notFoundErr{url: url} }

func TestAcquire_ParsesDocsIntoObjects(t *testing.T) {
	body := []byte(`{"docs":[{"location":"api/","title":"API","text":"..."},{"location":"guide/","title":"Guide","text":"..."}]}`)
	fetcher := &fakeFetcher{bytesByURL: map[string][]byte{
		"https://ex.io/pkg/search/search_index.json": body,
	}}

	p := NewInventoryProcessor()
	objs, err := p.Acquire(context.Background(), "https://ex.io/pkg", fetcher)
	require.NoError(t, err)
	require.Len(t, objs, 2)

	api := objs["API"]
	assert.Equal(t, "api/", api.URI)
	assert.Equal(t, InventoryType, api.InventoryType)
	assert.Equal(t, "page", api.Specifics["object_type"])
}

func TestAcquire_FallsThroughCandidatePaths(t *testing.T) {
	body := []byte(`{"docs":[{"location":"api/","title":"API"}]}`)
	fetcher := &fakeFetcher{bytesByURL: map[string][]byte{
		"https://ex.io/pkg/assets/search/search_index.json": body,
	}}

	p := NewInventoryProcessor()
	objs, err := p.Acquire(context.Background(), "https://ex.io/pkg", fetcher)
	require.NoError(t, err)
	require.Len(t, objs, 1)
}

func TestDetect_ConfidenceBandsByDocCount(t *testing.T) {
	body := []byte(`{"docs":[{"location":"api/","title":"API"}]}`)
	fetcher := &fakeFetcher{bytesByURL: map[string][]byte{
		"https://ex.io/pkg/search/search_index.json": body,
	}}
	p := NewInventoryProcessor()
	det, err := p.Detect(context.Background(), "https://ex.io/pkg", fetcher)
	require.NoError(t, err)
	require.NotNil(t, det)
	assert.Equal(t, 0.7, det.Confidence)
}

func TestDetect_InvalidJSONYieldsNilNotError(t *testing.T) {
	fetcher := &fakeFetcher{bytesByURL: map[string][]byte{
		"https://ex.io/pkg/search/search_index.json": []byte("not json"),
	}}
	p := NewInventoryProcessor()
	det, err := p.Detect(context.Background(), "https://ex.io/pkg", fetcher)
	require.NoError(t, err)
	assert.Nil(t, det)
}

func TestFilter_URIPrefixAndNameRegex(t *testing.T) {
	body := []byte(`{"docs":[{"location":"api/foo.html","title":"Foo"},{"location":"guide/intro.html","title":"Intro"}]}`)
	fetcher := &fakeFetcher{bytesByURL: map[string][]byte{
		"https://ex.io/pkg/search/search_index.json": body,
	}}
	p := NewInventoryProcessor()
	objs, err := p.Acquire(context.Background(), "https://ex.io/pkg", fetcher)
	require.NoError(t, err)

	result, warnings, err := p.Filter(objs, map[string]any{"uri_prefix": "api/"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, result, 1)
	assert.Equal(t, "Foo", result[0].Name)
}
