package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tiendabot/internal/logger"

	"golang.org/x/net/html/charset"
)

// Client talks to a PrestaShop webservice. The API key rides as the Basic
// auth username with an empty password, and every request asks for JSON
// output explicitly because the webservice defaults to XML.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(shopURL, apiKey string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(shopURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ShopURL returns the shop root without the /api segment.
func (c *Client) ShopURL() string {
	return strings.TrimSuffix(c.baseURL, "/api")
}

// Response carries the upstream reply verbatim. When the upstream answered
// with XML where JSON was expected, Body holds an error-shaped JSON payload
// instead and XMLMessage carries the extracted error text.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	XMLMessage  string
}

// APIError is a non-2xx (or XML-shaped) reply from the webservice.
type APIError struct {
	StatusCode int
	Message    string
	XML        bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webservice replied %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the scan loop may retry the same request. XML
// replies indicate a configuration problem, never transience.
func (e *APIError) Retryable() bool {
	if e.XML {
		return false
	}
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusRequestEntityTooLarge:
		return true
	}
	return oversizedPayload(e.Message)
}

func oversizedPayload(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "memory size") || strings.Contains(m, "payload too large")
}

// TransportError is a request that never produced an upstream reply.
type TransportError struct {
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("webservice timeout: %v", e.Err)
	}
	return fmt.Sprintf("webservice unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// buildURL appends the fixed /api segment when the shop URL lacks it and
// attaches ws_key and output_format=JSON unless the caller set them.
func (c *Client) buildURL(resource string, params url.Values) string {
	base := c.baseURL
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}

	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if q.Get("ws_key") == "" {
		q.Set("ws_key", c.apiKey)
	}
	if q.Get("output_format") == "" {
		q.Set("output_format", "JSON")
	}

	return base + "/" + strings.TrimLeft(resource, "/") + "?" + q.Encode()
}

// Get issues one webservice request and returns the reply verbatim.
// Transport failures come back as *TransportError; everything else, including
// upstream error statuses, comes back as a Response.
func (c *Client) Get(ctx context.Context, resource string, params url.Values) (*Response, error) {
	reqURL := c.buildURL(resource, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
			return nil, &TransportError{Timeout: true, Err: err}
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: "application/json; charset=utf-8",
		Body:        body,
	}

	if isXML(resp.Header.Get("Content-Type"), body) {
		msg := extractXMLError(body)
		if msg == "" {
			msg = "upstream returned XML where JSON was expected"
		}
		out.XMLMessage = msg
		wrapped, _ := json.Marshal(map[string]interface{}{
			"error":   true,
			"message": msg,
		})
		out.Body = wrapped
	}

	return out, nil
}

func isXML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "xml") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}

// extractXMLError pulls the first message out of a PrestaShop error document:
// <prestashop><errors><error><message>...</message></error></errors></prestashop>
func extractXMLError(body []byte) string {
	var doc struct {
		Errors []struct {
			Code    int    `xml:"code"`
			Message string `xml:"message"`
		} `xml:"errors>error"`
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return ""
	}
	if len(doc.Errors) == 0 {
		return ""
	}
	return strings.TrimSpace(doc.Errors[0].Message)
}

// checkStatus turns XML replies and upstream error statuses into *APIError.
func (c *Client) checkStatus(resp *Response) error {
	if resp.XMLMessage != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.XMLMessage, XML: true}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &APIError{StatusCode: resp.StatusCode, Message: classify(resp.StatusCode, resp.Body)}
}

func classify(status int, body []byte) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 && payload.Errors[0].Message != "" {
		return payload.Errors[0].Message
	}

	switch status {
	case http.StatusUnauthorized:
		return "invalid API key"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusRequestEntityTooLarge:
		return "payload too large"
	}
	return http.StatusText(status)
}

// GetProducts fetches one page of products. limit is the page size and
// offset the absolute position, matching the webservice's limit=offset,count.
func (c *Client) GetProducts(ctx context.Context, offset, limit int) ([]RawProduct, error) {
	params := url.Values{}
	params.Set("display", "full")
	params.Set("limit", fmt.Sprintf("%d,%d", offset, limit))

	resp, err := c.Get(ctx, "products", params)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	// An empty catalog comes back as a bare [] instead of an object.
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return nil, nil
	}

	var pr productsResponse
	if err := json.Unmarshal(trimmed, &pr); err != nil {
		return nil, fmt.Errorf("failed to decode products page: %w", err)
	}
	return pr.Products, nil
}

// GetCombinations fetches the variant records of one product. A 404 means
// the product simply has no combinations and is not an error.
func (c *Client) GetCombinations(ctx context.Context, productID int64) ([]RawCombination, error) {
	params := url.Values{}
	params.Set("display", "full")
	params.Set("filter[id_product]", fmt.Sprintf("%d", productID))

	resp, err := c.Get(ctx, "combinations", params)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return nil, nil
	}

	var cr combinationsResponse
	if err := json.Unmarshal(trimmed, &cr); err != nil {
		return nil, fmt.Errorf("failed to decode combinations: %w", err)
	}
	return cr.Combinations, nil
}

// Test probes the webservice with a single-product request so the dashboard
// can validate a URL/key pair before scanning.
func (c *Client) Test(ctx context.Context) error {
	_, err := c.GetProducts(ctx, 0, 1)
	return err
}
