package tradingview

import (
	"context"
	"fmt"

	"github.com/wonny/asx-screener/pkg/httputil"
	"github.com/wonny/asx-screener/pkg/logger"
)

// DefaultURL is the ASX scanner endpoint
const DefaultURL = "https://scanner.tradingview.com/australia/scan"

// DefaultBatchSize is the page size used by FetchAll
const DefaultBatchSize = 500

// Client handles communication with the TradingView scanner
// ⭐ SSOT: 스캐너 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	market     string
	batchSize  int
}

// Options configures a Client; zero values fall back to defaults
type Options struct {
	URL       string
	Market    string
	BatchSize int
}

// NewClient creates a new scanner client
func NewClient(httpClient *httputil.Client, log *logger.Logger, opts Options) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    opts.URL,
		market:     opts.Market,
		batchSize:  opts.BatchSize,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultURL
	}
	if c.market == "" {
		c.market = "australia"
	}
	if c.batchSize <= 0 {
		c.batchSize = DefaultBatchSize
	}
	return c
}

// Condition is one scanner-side filter clause
type Condition struct {
	Left      string      `json:"left"`
	Operation string      `json:"operation"` // greater, less, egreater, eless, equal, in_range
	Right     interface{} `json:"right"`
}

// ScanRequest is the scanner POST body
type ScanRequest struct {
	Filter  []Condition `json:"filter"`
	Options struct {
		Lang string `json:"lang"`
	} `json:"options"`
	Markets []string `json:"markets"`
	Symbols struct {
		Query struct {
			Types []string `json:"types"`
		} `json:"query"`
		Tickers []string `json:"tickers"`
	} `json:"symbols"`
	Columns []string `json:"columns"`
	Sort    struct {
		SortBy    string `json:"sortBy"`
		SortOrder string `json:"sortOrder"`
	} `json:"sort"`
	Range [2]int `json:"range"`
}

// Query describes one scan; zero fields take defaults
type Query struct {
	Columns   []string
	Filter    []Condition
	SortBy    string // default market_cap_basic
	SortOrder string // default desc
	Offset    int
	Limit     int
}

// newRequest builds the POST body for a query
func (c *Client) newRequest(q Query) ScanRequest {
	var req ScanRequest
	req.Filter = q.Filter
	if req.Filter == nil {
		req.Filter = []Condition{}
	}
	req.Options.Lang = "en"
	req.Markets = []string{c.market}
	req.Symbols.Query.Types = []string{}
	req.Symbols.Tickers = []string{}
	req.Columns = q.Columns
	if len(req.Columns) == 0 {
		req.Columns = Columns
	}
	req.Sort.SortBy = q.SortBy
	if req.Sort.SortBy == "" {
		req.Sort.SortBy = "market_cap_basic"
	}
	req.Sort.SortOrder = q.SortOrder
	if req.Sort.SortOrder == "" {
		req.Sort.SortOrder = "desc"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = c.batchSize
	}
	req.Range = [2]int{q.Offset, q.Offset + limit}
	return req
}

// Scan performs one scanner request
func (c *Client) Scan(ctx context.Context, q Query) (*ScanResponse, error) {
	req := c.newRequest(q)

	resp, err := c.httpClient.PostJSON(ctx, c.baseURL, req)
	if err != nil {
		return nil, fmt.Errorf("scanner request failed: %w", err)
	}

	var out ScanResponse
	if err := httputil.DecodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("scanner response: %w", err)
	}
	out.Columns = req.Columns
	return &out, nil
}

// FetchAll pages through the whole market in batches until a short or
// empty page. Rows keep the scanner's order (market cap descending).
func (c *Client) FetchAll(ctx context.Context) (*ScanResponse, error) {
	all := &ScanResponse{Columns: Columns}
	offset := 0

	for {
		page, err := c.Scan(ctx, Query{Offset: offset, Limit: c.batchSize})
		if err != nil {
			return nil, fmt.Errorf("fetch offset %d: %w", offset, err)
		}
		if len(page.Data) == 0 {
			break
		}

		all.Data = append(all.Data, page.Data...)
		c.logger.WithFields(map[string]interface{}{
			"offset":  offset,
			"rows":    len(page.Data),
			"fetched": len(all.Data),
		}).Debug("Scanner page fetched")

		offset += c.batchSize
		if len(page.Data) < c.batchSize {
			break
		}
	}

	all.TotalCount = len(all.Data)
	c.logger.WithField("total", all.TotalCount).Info("Scanner fetch completed")
	return all, nil
}
