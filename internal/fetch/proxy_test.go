package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/emcd/librovore/internal/errors"
)

func newTestProxy(t *testing.T) *Proxy {
	t.Helper()
	cfg := DefaultConfig("librovore-test/0")
	return New(cfg)
}

func TestFetchBytes_CachesSecondCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	p := newTestProxy(t)
	body, err := p.FetchBytes(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	body, err = p.FetchBytes(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestFetchBytes_404NotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestProxy(t)
	_, err := p.FetchBytes(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	kind, ok := domainerrors.GetKind(err)
	require.True(t, ok)
	assert.Equal(t, domainerrors.KindContentInaccessibility, kind)
}

func TestFetchBytes_5xxRetriesThenSucceeds(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		n := atomic.AddInt32(&hits, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	p := newTestProxy(t)
	body, err := p.FetchBytes(context.Background(), srv.URL+"/flaky")
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestFetchBytes_5xxExhaustsRetriesAndFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestProxy(t)
	_, err := p.FetchBytes(context.Background(), srv.URL+"/down")
	require.Error(t, err)
	assert.True(t, domainerrors.IsRetryable(err))
}

func TestFetchText_ReturnsFinalURLAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved"))
	})

	p := newTestProxy(t)
	body, finalURL, _, err := p.FetchText(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, "moved", body)
	assert.Equal(t, srv.URL+"/new", finalURL)
}

func TestFetchBytes_RobotsDisallowBlocksFetch(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/private/secret", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("should not be served"))
	})

	p := newTestProxy(t)
	_, err := p.FetchBytes(context.Background(), srv.URL+"/private/secret")
	require.Error(t, err)
}

func TestFetchBytes_RobotsMissingAllowsAll(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	p := newTestProxy(t)
	body, err := p.FetchBytes(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestFetchBytes_RobotsUnreachable_StrictModeFails(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	cfg := DefaultConfig("librovore-test/0")
	cfg.RobotsStrict = true
	p := New(cfg)

	_, err := p.FetchBytes(context.Background(), srv.URL+"/page")
	require.Error(t, err)
	kind, ok := domainerrors.GetKind(err)
	require.True(t, ok)
	assert.Equal(t, domainerrors.KindRobotsInaccessibility, kind)
}

func TestPurge_ForcesRefetch(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("v"))
	}))
	defer srv.Close()

	p := newTestProxy(t)
	_, err := p.FetchBytes(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	p.Purge()
	_, err = p.FetchBytes(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}
