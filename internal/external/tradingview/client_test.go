package tradingview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/pkg/config"
	"github.com/wonny/asx-screener/pkg/httputil"
	"github.com/wonny/asx-screener/pkg/logger"
)

// fakeScanner serves `total` rows with symbols ASX:T0000.. and records the
// requests it receives
type fakeScanner struct {
	mu       sync.Mutex
	total    int
	requests []ScanRequest
	reject   map[string]bool // columns answered with 400
}

func (f *fakeScanner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for _, col := range req.Columns {
		if f.reject[col] {
			http.Error(w, "unknown field "+col, http.StatusBadRequest)
			return
		}
	}

	resp := ScanResponse{TotalCount: f.total}
	for i := req.Range[0]; i < req.Range[1] && i < f.total; i++ {
		values := make([]json.RawMessage, len(req.Columns))
		for j, col := range req.Columns {
			switch col {
			case "name":
				values[j] = json.RawMessage(fmt.Sprintf(`"T%04d"`, i))
			case "close":
				values[j] = json.RawMessage(fmt.Sprintf(`%d.5`, i))
			case "sector":
				values[j] = json.RawMessage(`"Finance"`)
			default:
				values[j] = json.RawMessage(`null`)
			}
		}
		resp.Data = append(resp.Data, Row{Symbol: fmt.Sprintf("ASX:T%04d", i), Values: values})
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(url string, batch int) *Client {
	cfg := &config.Config{Env: "development", LogLevel: "error"}
	httpClient := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewClient(httpClient, logger.NewNop(), Options{URL: url, BatchSize: batch})
}

func TestScan_RequestShape(t *testing.T) {
	fake := &fakeScanner{total: 3}
	server := httptest.NewServer(fake)
	defer server.Close()

	resp, err := newTestClient(server.URL, 500).Scan(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 3)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, []string{"australia"}, req.Markets)
	assert.Equal(t, "en", req.Options.Lang)
	assert.Equal(t, "market_cap_basic", req.Sort.SortBy)
	assert.Equal(t, "desc", req.Sort.SortOrder)
	assert.Equal(t, [2]int{0, 500}, req.Range)
	assert.Equal(t, Columns, req.Columns)
	assert.NotNil(t, req.Filter)
}

func TestFetchAll_Paginates(t *testing.T) {
	fake := &fakeScanner{total: 1100}
	server := httptest.NewServer(fake)
	defer server.Close()

	resp, err := newTestClient(server.URL, 500).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1100, resp.TotalCount)
	assert.Len(t, resp.Data, 1100)
	assert.Equal(t, "ASX:T1099", resp.Data[1099].Symbol)

	require.Len(t, fake.requests, 3)
	assert.Equal(t, [2]int{500, 1000}, fake.requests[1].Range)
	assert.Equal(t, [2]int{1000, 1500}, fake.requests[2].Range)
}

func TestFetchAll_ExactMultipleStopsOnEmptyPage(t *testing.T) {
	fake := &fakeScanner{total: 20}
	server := httptest.NewServer(fake)
	defer server.Close()

	resp, err := newTestClient(server.URL, 10).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, resp.TotalCount)
	assert.Len(t, fake.requests, 3)
}

func TestScan_HTTPError(t *testing.T) {
	fake := &fakeScanner{total: 1, reject: map[string]bool{"RSI": true}}
	server := httptest.NewServer(fake)
	defer server.Close()

	_, err := newTestClient(server.URL, 10).Scan(context.Background(), Query{Columns: []string{"name", "RSI"}})

	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestPreset(t *testing.T) {
	fake := &fakeScanner{total: 500}
	server := httptest.NewServer(fake)
	defer server.Close()
	client := newTestClient(server.URL, 500)

	resp, err := client.Preset(context.Background(), "top_losers", 25)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 25)

	req := fake.requests[0]
	assert.Equal(t, "change", req.Sort.SortBy)
	assert.Equal(t, "asc", req.Sort.SortOrder)
	require.Len(t, req.Filter, 1)
	assert.Equal(t, "less", req.Filter[0].Operation)

	_, err = client.Preset(context.Background(), "moonshots", 10)
	assert.True(t, errors.Is(err, ErrUnknownPreset))

	assert.Len(t, PresetNames(), 9)
}

func TestValidateColumns(t *testing.T) {
	fake := &fakeScanner{total: 5, reject: map[string]bool{"logoid": true}}
	server := httptest.NewServer(fake)
	defer server.Close()

	results, err := newTestClient(server.URL, 10).ValidateColumns(context.Background(), []string{"name", "logoid", "RSI"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Valid)
	assert.Len(t, fake.requests, 2, "known-good columns are not checked")
}

func TestDecode(t *testing.T) {
	row := Row{
		Symbol: "ASX:BHP",
		Values: []json.RawMessage{
			json.RawMessage(`"BHP"`),
			json.RawMessage(`"BHP Group Limited"`),
			json.RawMessage(`null`),
			json.RawMessage(`45.12`),
			json.RawMessage(`1.5e11`),
		},
	}

	rec, err := Decode([]string{"name", "description", "RSI", "close", "market_cap_basic"}, row)
	require.NoError(t, err)
	assert.Equal(t, "ASX:BHP", rec.Symbol)
	assert.Equal(t, "BHP Group Limited", *rec.Description)
	assert.Nil(t, rec.RSI)
	assert.Equal(t, 45.12, *rec.Close)
	assert.Equal(t, 1.5e11, *rec.MarketCap)

	_, err = Decode([]string{"close"}, Row{Symbol: "ASX:X", Values: []json.RawMessage{json.RawMessage(`"n/a"`)}})
	assert.Error(t, err)
}

func TestColumnsCoverRegistry(t *testing.T) {
	for _, key := range columns.ScannerKeys() {
		assert.Contains(t, Columns, key)
	}
}

func TestRecords(t *testing.T) {
	raw := `{"totalCount":2,"data":[{"s":"ASX:A","d":["A",null,1]},{"s":"ASX:B","d":["B","Energy",2]}]}`

	var resp ScanResponse
	require.NoError(t, json.NewDecoder(strings.NewReader(raw)).Decode(&resp))
	resp.Columns = []string{"name", "sector", "close"}

	recs, err := resp.Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Nil(t, recs[0].Sector)
	assert.Equal(t, "Energy", *recs[1].Sector)
	assert.Equal(t, 2.0, *recs[1].Close)
}
