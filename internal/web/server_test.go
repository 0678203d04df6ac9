package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeshot/internal/domain"
	"github.com/vadiminshakov/tradeshot/internal/pipeline"
	"github.com/vadiminshakov/tradeshot/internal/storage/tradelog"
)

type fakePipeline struct {
	result  pipeline.Result
	err     error
	gotPath string
	gotOpts pipeline.Options
}

func (f *fakePipeline) Process(_ context.Context, imagePath string, opts pipeline.Options) (pipeline.Result, error) {
	f.gotPath = imagePath
	f.gotOpts = opts
	return f.result, f.err
}

type fakeStore struct {
	records []domain.TradeRecord
	stats   domain.TradeStats
	search  tradelog.SearchResult
}

func (f *fakeStore) All() ([]domain.TradeRecord, error)        { return f.records, nil }
func (f *fakeStore) Stats() (domain.TradeStats, error)         { return f.stats, nil }
func (f *fakeStore) Search(string, int) (tradelog.SearchResult, error) {
	return f.search, nil
}

func newTestServer(p processor, store tradeReader) *httptest.Server {
	s := NewServer("", p, store, nil)
	return httptest.NewServer(s.Handler())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestExtractTrade(t *testing.T) {
	fp := &fakePipeline{result: pipeline.Result{TradeID: "abc12345", Ticker: "BTCUSD", PnLAmount: 150.5}}
	ts := newTestServer(fp, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/extract-trade", "application/json",
		strings.NewReader(`{"image_path":"chart.png","send_email":true}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "chart.png", fp.gotPath)
	assert.True(t, fp.gotOpts.SendEmail)

	var result pipeline.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "abc12345", result.TradeID)
}

func TestExtractTradeValidation(t *testing.T) {
	ts := newTestServer(&fakePipeline{}, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/extract-trade", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/extract-trade")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/extract-trade", "application/json",
		strings.NewReader(`{"image_path":"x.png","save_mode":"xml"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchTrades(t *testing.T) {
	store := &fakeStore{search: tradelog.SearchResult{
		Results:     []domain.TradeRecord{{TradeID: "abc12345", Ticker: "BTCUSD"}},
		TotalFound:  1,
		TotalTrades: 5,
	}}
	ts := newTestServer(nil, store)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/search-trades", "application/json",
		strings.NewReader(`{"query":"BTCUSD","limit":10}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result tradelog.SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.TotalFound)
	assert.Equal(t, 5, result.TotalTrades)
}

func TestTradingStats(t *testing.T) {
	store := &fakeStore{stats: domain.TradeStats{TotalTrades: 3, WinRate: 0.5}}
	ts := newTestServer(nil, store)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/trading-stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats domain.TradeStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 3, stats.TotalTrades)
}

func TestTradeLog(t *testing.T) {
	store := &fakeStore{records: []domain.TradeRecord{{TradeID: "abc12345"}}}
	ts := newTestServer(nil, store)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/trade-log")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Trades []domain.TradeRecord `json:"trades"`
		Total  int                  `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Total)
}

func TestIndexServed(t *testing.T) {
	ts := newTestServer(nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestUnavailableDependencies(t *testing.T) {
	ts := newTestServer(nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/extract-trade", "application/json",
		strings.NewReader(`{"image_path":"x.png"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/trading-stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/events/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
