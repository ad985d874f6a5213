package prestashop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tiendabot/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New("error")
}

func TestBuildURLAppendsAPISegmentAndDefaults(t *testing.T) {
	c := NewClient("https://shop.example.com", "SECRET", time.Second, testLogger())

	u, err := url.Parse(c.buildURL("products", nil))
	require.NoError(t, err)

	assert.Equal(t, "/api/products", u.Path)
	assert.Equal(t, "SECRET", u.Query().Get("ws_key"))
	assert.Equal(t, "JSON", u.Query().Get("output_format"))
}

func TestBuildURLKeepsExistingAPISegmentAndParams(t *testing.T) {
	c := NewClient("https://shop.example.com/api", "SECRET", time.Second, testLogger())

	params := url.Values{}
	params.Set("ws_key", "OVERRIDE")
	params.Set("output_format", "XML")
	params.Set("display", "full")

	u, err := url.Parse(c.buildURL("products", params))
	require.NoError(t, err)

	assert.Equal(t, "/api/products", u.Path)
	assert.Equal(t, "OVERRIDE", u.Query().Get("ws_key"))
	assert.Equal(t, "XML", u.Query().Get("output_format"))
	assert.Equal(t, "full", u.Query().Get("display"))
}

func TestGetSendsBasicAuthWithEmptyPassword(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"products":[]}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "SECRET", time.Second, testLogger())
	_, err := c.Get(context.Background(), "products", nil)
	require.NoError(t, err)

	assert.True(t, gotOK)
	assert.Equal(t, "SECRET", gotUser)
	assert.Empty(t, gotPass)
}

func TestGetWrapsXMLReplyAsErrorJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<prestashop><errors><error><code>21</code><message>Resource of type "products" is not allowed</message></error></errors></prestashop>`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "SECRET", time.Second, testLogger())
	resp, err := c.Get(context.Background(), "products", nil)
	require.NoError(t, err)

	assert.Equal(t, `Resource of type "products" is not allowed`, resp.XMLMessage)
	assert.True(t, strings.HasPrefix(resp.ContentType, "application/json"))

	var wrapped struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &wrapped))
	assert.True(t, wrapped.Error)
	assert.Contains(t, wrapped.Message, "not allowed")
}

func TestGetProductsRejectsXMLAsNonRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, `<prestashop><errors><error><message>bad config</message></error></errors></prestashop>`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "SECRET", time.Second, testLogger())
	_, err := c.GetProducts(context.Background(), 0, 10)
	require.Error(t, err)

	var aerr *APIError
	require.True(t, errors.As(err, &aerr))
	assert.True(t, aerr.XML)
	assert.False(t, aerr.Retryable())
}

func TestGetTimeoutBecomesTransportTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(server.URL, "SECRET", 30*time.Millisecond, testLogger())
	_, err := c.Get(context.Background(), "products", nil)
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.Timeout)
}

func TestGetConnectionFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	c := NewClient(server.URL, "SECRET", time.Second, testLogger())
	_, err := c.Get(context.Background(), "products", nil)
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.False(t, terr.Timeout)
}

func TestGetProductsClassifiesUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "WRONG", time.Second, testLogger())
	_, err := c.GetProducts(context.Background(), 0, 10)
	require.Error(t, err)

	var aerr *APIError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, http.StatusUnauthorized, aerr.StatusCode)
	assert.Equal(t, "invalid API key", aerr.Message)
}

func TestGetCombinationsTreats404AsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "SECRET", time.Second, testLogger())
	combos, err := c.GetCombinations(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, combos)
}

func TestGetProductsDecodesEmptyCatalogArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "SECRET", time.Second, testLogger())
	products, err := c.GetProducts(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, products)
}
