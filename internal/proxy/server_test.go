package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shinyhunt/internal/pokeapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFetcher struct {
	bodies   map[string]string
	batchErr error
	gotPaths []string
	gotBatch []string
}

func (f *fakeFetcher) Get(_ context.Context, path string) (json.RawMessage, error) {
	f.gotPaths = append(f.gotPaths, path)
	body, ok := f.bodies[path]
	if !ok {
		return nil, errors.New("upstream failed")
	}
	return json.RawMessage(body), nil
}

func (f *fakeFetcher) Batch(ctx context.Context, paths []string) ([]json.RawMessage, error) {
	f.gotBatch = paths
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([]json.RawMessage, len(paths))
	for i, p := range paths {
		if body, ok := f.bodies[p]; ok {
			out[i] = json.RawMessage(body)
		}
	}
	return out, nil
}

func serve(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestProxy_SingleFetchForwardsPathAndQuery(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"pokedex/31/":     `{"id":31}`,
		"pokemon?limit=2": `{"count":2}`,
	}}
	s := NewServer(f, nil, nil)

	w := serve(t, s, "/api/pokemon/pokedex/31/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":31}`, w.Body.String())

	w = serve(t, s, "/api/pokemon/pokemon?limit=2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())
}

func TestProxy_SingleFetchFailure(t *testing.T) {
	s := NewServer(&fakeFetcher{}, nil, nil)
	w := serve(t, s, "/api/pokemon/pokemon/1/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch from PokeAPI"}`, w.Body.String())
}

func TestProxy_MissingPath(t *testing.T) {
	s := NewServer(&fakeFetcher{}, nil, nil)
	w := serve(t, s, "/api/pokemon/")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProxy_BatchReturnsNullForFailures(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"/pokemon/1/": `{"id":1}`,
		"/pokemon/3/": `{"id":3}`,
	}}
	s := NewServer(f, nil, nil)

	w := serve(t, s, "/api/pokemon/batch?urls=/pokemon/1/,/pokemon/2/,/pokemon/3/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1},null,{"id":3}]`, w.Body.String())
	assert.Equal(t, []string{"/pokemon/1/", "/pokemon/2/", "/pokemon/3/"}, f.gotBatch)
}

func TestProxy_BatchValidation(t *testing.T) {
	s := NewServer(&fakeFetcher{}, nil, nil)

	w := serve(t, s, "/api/pokemon/batch?urls=/pokemon/1/,,/pokemon/2/")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	paths := make([]string, MaxBatch+1)
	for i := range paths {
		paths[i] = fmt.Sprintf("pokemon/%d/", i+1)
	}
	w = serve(t, s, "/api/pokemon/batch?urls="+strings.Join(paths, ","))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProxy_BatchUpstreamError(t *testing.T) {
	s := NewServer(&fakeFetcher{batchErr: context.DeadlineExceeded}, nil, nil)
	w := serve(t, s, "/api/pokemon/batch?urls=pokemon/1/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch from PokeAPI"}`, w.Body.String())
}

func TestProxy_HealthAndMetrics(t *testing.T) {
	metrics := NewMetrics()
	f := &fakeFetcher{bodies: map[string]string{"pokemon/1/": `{}`}}
	s := NewServer(f, metrics, nil)

	w := serve(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	serve(t, s, "/api/pokemon/batch?urls=pokemon/1/,pokemon/2/")
	metrics.ObserveFetch(pokeapi.ResultOK, 20*time.Millisecond)
	metrics.ObserveFetch(pokeapi.ResultCached, 0)
	metrics.ObserveRetry("rate_limited")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.upstreamFetches.WithLabelValues(pokeapi.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.upstreamFetches.WithLabelValues(pokeapi.ResultCached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.upstreamRetries.WithLabelValues("rate_limited")))

	w = serve(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shinyhunt_proxy_batch_size_count 1")
	assert.Contains(t, w.Body.String(), "shinyhunt_upstream_retries_total")
}

func TestProxy_EndToEndWithClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/pokemon/2/" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
	}))
	t.Cleanup(upstream.Close)

	direct, err := pokeapi.NewClient(pokeapi.Options{BaseURL: upstream.URL + "/api/v2/", RatePerSecond: 1000})
	require.NoError(t, err)
	front := httptest.NewServer(NewServer(direct, NewMetrics(), nil).Handler())
	t.Cleanup(front.Close)

	proxied, err := pokeapi.NewClient(pokeapi.Options{BaseURL: front.URL + "/api/pokemon/", Proxied: true, RatePerSecond: 1000})
	require.NoError(t, err)

	got, err := proxied.Batch(context.Background(), []string{"pokemon/1/", "pokemon/2/"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"path":"/api/v2/pokemon/1/"}`, string(got[0]))
	assert.Nil(t, got[1])

	body, err := proxied.Get(context.Background(), "pokedex/31/")
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/api/v2/pokedex/31/"}`, string(body))
}

func TestProxy_RunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := NewServer(&fakeFetcher{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
