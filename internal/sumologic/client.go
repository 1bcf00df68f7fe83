// Package sumologic is a stateless HTTP client for the Sumo Logic v1 REST
// API: search-job submission, status, paginated results, and synchronous
// metrics queries.
package sumologic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sumoflow/internal/domain"
)

// DefaultEndpoint is the global Sumo Logic API endpoint. Requests against it
// are redirected to the regional endpoint of the account's deployment.
const DefaultEndpoint = "https://api.sumologic.com/api"

const apiVersion = "v1"

// endpointProbePath is the throwaway authenticated request used to discover
// the regional endpoint: the default global endpoint answers it with a
// redirect, and the redirected URL carries the effective base URL.
const endpointProbePath = "/v1/collectors"

// Options tunes client construction. The zero value is usable.
type Options struct {
	Endpoint   string       // explicit base URL; empty triggers endpoint discovery
	HTTPClient *http.Client // defaults to a client with a generous timeout
	RateLimit  rate.Limit   // API requests per second; 0 disables limiting
	Logger     *slog.Logger // defaults to slog.Default()
}

// Client issues Sumo Logic API calls with basic-auth credentials. It keeps
// no state between calls beyond the resolved endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	accessID   string
	accessKey  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client for the given credentials. When no endpoint is
// configured it resolves the regional endpoint with a one-time probe request;
// this is the only network side effect of construction.
func NewClient(ctx context.Context, accessID, accessKey string, opts Options) (*Client, error) {
	if accessID == "" || accessKey == "" {
		return nil, domain.ErrAuthentication("access id and access key are required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// The API can be slow to answer large result pages.
		httpClient = &http.Client{Timeout: 180 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		httpClient: httpClient,
		accessID:   accessID,
		accessKey:  accessKey,
		logger:     logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(opts.RateLimit, 1)
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		resolved, err := c.resolveEndpoint(ctx, DefaultEndpoint)
		if err != nil {
			return nil, err
		}
		endpoint = resolved
		logger.Info("resolved sumologic endpoint", "endpoint", endpoint)
	}
	c.endpoint = endpoint
	return c, nil
}

// Endpoint returns the effective base URL the client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

// resolveEndpoint issues the discovery probe against the global endpoint and
// derives the regional base URL from where the request ended up after
// redirects. The probe's status code is irrelevant; a 401 from the regional
// endpoint still reveals the right URL.
func (c *Client) resolveEndpoint(ctx context.Context, base string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+endpointProbePath, nil)
	if err != nil {
		return "", fmt.Errorf("build endpoint probe: %w", err)
	}
	req.SetBasicAuth(c.accessID, c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.ErrAuthentication("resolve endpoint: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	final := resp.Request.URL.String()
	endpoint := strings.TrimSuffix(final, endpointProbePath)
	if endpoint == final {
		return "", domain.ErrAuthentication("resolve endpoint: unexpected probe URL %q", final)
	}
	return strings.TrimRight(endpoint, "/"), nil
}

// CreateSearchJob submits an asynchronous search job.
func (c *Client) CreateSearchJob(ctx context.Context, req SearchJobRequest) (*domain.SearchJob, error) {
	body, err := c.do(ctx, http.MethodPost, "/search/jobs", nil, req)
	if err != nil {
		return nil, err
	}
	var resp searchJobResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search job response: %w", err)
	}
	if resp.ID == "" {
		return nil, domain.ErrRequest(http.StatusOK, string(body), "search job response has no id")
	}
	c.logger.Debug("submitted search job", "job_id", resp.ID)
	return &domain.SearchJob{ID: resp.ID}, nil
}

// JobStatus fetches the current status of a search job. The histogram the
// API reports alongside is discarded.
func (c *Client) JobStatus(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/search/jobs/"+url.PathEscape(job.ID), nil, nil)
	if err != nil {
		return domain.JobStatus{}, err
	}
	var resp jobStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.JobStatus{}, fmt.Errorf("decode job status: %w", err)
	}
	return domain.JobStatus{
		State:        domain.JobState(resp.State),
		RecordCount:  resp.RecordCount,
		MessageCount: resp.MessageCount,
	}, nil
}

// FetchResults fetches one page of a completed (or gathering) search job's
// results. queryType selects the records or messages sub-resource. A request
// past the end of the result set returns an empty page.
func (c *Client) FetchResults(ctx context.Context, job *domain.SearchJob, queryType domain.QueryType, limit, offset int) (*ResultPage, error) {
	if !queryType.IsSearchJob() {
		return nil, domain.ErrConfiguration("query type %q has no paginated results", queryType)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	path := "/search/jobs/" + url.PathEscape(job.ID) + "/" + string(queryType)
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	var resp resultPageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s page: %w", queryType, err)
	}

	raw := resp.Records
	if queryType == domain.QueryTypeMessages {
		raw = resp.Messages
	}
	page := &ResultPage{Fields: resp.Fields, Rows: make([]domain.Record, 0, len(raw))}
	for _, row := range raw {
		page.Rows = append(page.Rows, domain.Record(row.Map))
	}
	return page, nil
}

// MetricsQuery runs one synchronous metrics query over the given window.
// Unset options are omitted from the request body entirely.
func (c *Client) MetricsQuery(ctx context.Context, query string, window domain.TimeWindow, opts domain.MetricsOptions) (*MetricsResponse, error) {
	req := metricsQueryRequest{
		Queries: []metricsQueryRow{{
			RowID:        "A",
			Query:        query,
			Quantization: opts.Quantization,
			Rollup:       opts.Rollup,
			Timeshift:    opts.Timeshift,
		}},
		TimeRange: timeRange{
			Type: "BeginBoundedTimeRange",
			From: timeRangeBoundary{Type: "Iso8601TimeRangeBoundary", ISO8601Time: isoBoundary(window.StartDate)},
			To:   timeRangeBoundary{Type: "Iso8601TimeRangeBoundary", ISO8601Time: isoBoundary(window.EndDate)},
		},
	}

	body, err := c.do(ctx, http.MethodPost, "/metricsQueries", nil, req)
	if err != nil {
		return nil, err
	}
	var resp MetricsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode metrics response: %w", err)
	}
	return &resp, nil
}

// isoBoundary turns a YYYY-MM-DDTHH:mm:ss window bound into the ISO-8601
// form the metrics API expects. Bounds are treated as UTC.
func isoBoundary(t string) string {
	return t + ".00+00:00"
}

// do performs one authenticated JSON request and returns the response body.
// 401 maps to AuthenticationError, any other non-2xx to RequestError with
// the raw response body attached.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload interface{}) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	fullURL := c.endpoint + "/" + apiVersion + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.accessID, c.accessKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrAuthentication("%s %s: authentication failed (401)", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrRequest(resp.StatusCode, string(body), "%s %s returned %d", method, path, resp.StatusCode)
	}
	return body, nil
}
