// Package intangles fetches pages of the Intangles fuel-consumed listing.
//
//	GET https://apis.intangles.com/vehicle/fuel_consumed
//	    ?pnum=1&psize=300&no_default_fields=true&proj=total_fuel_consumed
//	    &spec_ids=...&groups=&lastloc=true&acc_id=...&lang=en
//
// The API authenticates with the web session token sent in the
// intangles-user-token header.
package intangles

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/co2meter/internal/parsers"
	"github.com/janekbaraniewski/co2meter/internal/payload"
)

const (
	DefaultBaseURL  = "https://apis.intangles.com"
	DefaultOrigin   = "https://bemblueedge.intangles.com"
	DefaultTimezone = "Asia/Calcutta"

	fuelConsumedPath = "/vehicle/fuel_consumed"
	userAgent        = "co2meter/1 (+https://github.com/janekbaraniewski/co2meter)"
	tokenHeader      = "intangles-user-token"

	dialTimeout           = 15 * time.Second
	responseHeaderTimeout = 30 * time.Second
	maxBodyBytes          = 32 << 20
)

var ErrUnauthorized = errors.New("intangles: unauthorized")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("intangles: HTTP %d", e.Code)
	}
	return fmt.Sprintf("intangles: HTTP %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden)
}

// Query holds the fixed listing parameters sent with every page request.
type Query struct {
	AccountID        string
	SpecIDs          []string
	Projection       string
	Groups           string
	Lang             string
	NoDefaultFields  bool
	LastLocationOnly bool
}

type Options struct {
	BaseURL  string
	Token    string
	Origin   string
	Timezone string
	Query    Query

	// HTTPClient overrides the default TLS 1.2+ client.
	HTTPClient *http.Client
	Verbose    bool
}

// Client implements fuel.PageFetcher over HTTP.
type Client struct {
	baseURL  string
	token    string
	origin   string
	timezone string
	query    Query
	http     *http.Client
	verbose  bool
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	origin := strings.TrimRight(strings.TrimSpace(opts.Origin), "/")
	if origin == "" {
		origin = DefaultOrigin
	}
	tz := strings.TrimSpace(opts.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	if opts.Query.Lang == "" {
		opts.Query.Lang = "en"
	}
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}

	return &Client{
		baseURL:  baseURL,
		token:    opts.Token,
		origin:   origin,
		timezone: tz,
		query:    opts.Query,
		http:     client,
		verbose:  opts.Verbose,
	}
}

// NewHTTPClient returns a client with the dial, TLS and header timeouts used
// for the Intangles API. Share one across runs to reuse connections.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	transport.ResponseHeaderTimeout = responseHeaderTimeout
	return &http.Client{Transport: transport}
}

// FetchPage requests one 1-based page and decodes the body.
func (c *Client) FetchPage(ctx context.Context, page, size int) (payload.Value, error) {
	req, err := c.newRequest(ctx, page, size)
	if err != nil {
		return payload.Value{}, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return payload.Value{}, fmt.Errorf("intangles: page %d request failed: %w", page, err)
	}
	defer resp.Body.Close()

	if c.verbose {
		log.Printf("intangles: page %d -> HTTP %d in %s headers=%v",
			page, resp.StatusCode, time.Since(start).Round(time.Millisecond), parsers.RedactHeaders(resp.Header))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return payload.Value{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return payload.Value{}, fmt.Errorf("intangles: reading page %d: %w", page, err)
	}

	v, err := payload.Parse(body)
	if err != nil {
		return payload.Value{}, fmt.Errorf("intangles: parsing page %d: %w", page, err)
	}
	return v, nil
}

func (c *Client) newRequest(ctx context.Context, page, size int) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fuelConsumedPath, nil)
	if err != nil {
		return nil, fmt.Errorf("intangles: creating request: %w", err)
	}
	req.URL.RawQuery = c.values(page, size).Encode()

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("intangles-session-type", "web")
	req.Header.Set("intangles-user-lang", c.query.Lang)
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("intangles-user-tz", c.timezone)
	req.Header.Set("Referer", c.origin+"/")
	req.Header.Set("Origin", c.origin)
	req.Header.Set("User-Agent", userAgent)

	if c.verbose {
		log.Printf("intangles: GET %s headers=%v", req.URL.Redacted(), parsers.RedactHeaders(req.Header, tokenHeader))
	}
	return req, nil
}

func (c *Client) values(page, size int) url.Values {
	q := url.Values{}
	q.Set("pnum", strconv.Itoa(page))
	q.Set("psize", strconv.Itoa(size))
	q.Set("no_default_fields", strconv.FormatBool(c.query.NoDefaultFields))
	q.Set("proj", c.query.Projection)
	q.Set("spec_ids", strings.Join(c.query.SpecIDs, ","))
	q.Set("groups", c.query.Groups)
	q.Set("lastloc", strconv.FormatBool(c.query.LastLocationOnly))
	q.Set("acc_id", c.query.AccountID)
	q.Set("lang", c.query.Lang)
	return q
}
