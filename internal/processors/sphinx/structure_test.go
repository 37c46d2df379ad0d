package sphinx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcd/librovore/internal/objects"
)

type htmlFetcher struct {
	pages map[string]string
}

func (f *htmlFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	return []byte(f.pages[url]), nil
}

func (f *htmlFetcher) FetchText(_ context.Context, url string) (string, string, http.Header, error) {
	page, ok := f.pages[url]
	if !ok {
		return "", "", nil, assertNotFound(url)
	}
	return page, url, nil, nil
}

func TestExtract_FuroTheme_StripsChromeAndConvertsToMarkdown(t *testing.T) {
	html := `<html><body class="furo">
<article role="main">
<section>
<h1>Foo</h1>
<p>Hello <strong>world</strong>.</p>
<div class="highlight-python"><pre><code>print("hi")</code></pre></div>
</section>
</article>
</body></html>`

	fetcher := &htmlFetcher{pages: map[string]string{
		"https://ex.io/pkg/api/foo.html": html,
	}}

	obj, err := objects.NewInventoryObject("foo", "api/foo.html", InventoryType, "https://ex.io/pkg/objects.inv", "", nil, newSpecificsRenderer())
	require.NoError(t, err)

	p := NewStructureProcessor()
	docs, warnings, err := p.Extract(context.Background(), []objects.InventoryObject{obj}, "https://ex.io/pkg", fetcher, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, docs, 1)

	assert.Contains(t, docs[0].Content, "Foo")
	assert.Contains(t, docs[0].Content, "world")
	assert.Equal(t, "furo", docs[0].ExtractionMetadata.Theme)
}

func TestExtract_UnknownTheme_FallsBackGracefully(t *testing.T) {
	html := `<html><body><main><h1>Plain</h1><p>content</p></main></body></html>`
	fetcher := &htmlFetcher{pages: map[string]string{
		"https://ex.io/pkg/api/plain.html": html,
	}}
	obj, err := objects.NewInventoryObject("plain", "api/plain.html", InventoryType, "https://ex.io/pkg/objects.inv", "", nil, newSpecificsRenderer())
	require.NoError(t, err)

	p := NewStructureProcessor()
	docs, _, err := p.Extract(context.Background(), []objects.InventoryObject{obj}, "https://ex.io/pkg", fetcher, nil, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "Plain")
}

func TestExtract_LinesMaxTruncates(t *testing.T) {
	html := `<html><body class="furo"><article role="main"><section>
<p>one</p><p>two</p><p>three</p><p>four</p>
</section></article></body></html>`
	fetcher := &htmlFetcher{pages: map[string]string{
		"https://ex.io/pkg/api/foo.html": html,
	}}
	obj, err := objects.NewInventoryObject("foo", "api/foo.html", InventoryType, "https://ex.io/pkg/objects.inv", "", nil, newSpecificsRenderer())
	require.NoError(t, err)

	p := NewStructureProcessor()
	docs, _, err := p.Extract(context.Background(), []objects.InventoryObject{obj}, "https://ex.io/pkg", fetcher, nil, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "truncated")
}
