package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/deeplinker/pkg/app"
	"github.com/wadjakorntonsri/deeplinker/pkg/config"
)

const linkedInUA = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36 LinkedInApp"

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:    "file:e2e?mode=memory&cache=shared",
		AppEnv:         "test",
		JWTSecret:      "e2e-secret",
		SessionTTL:     time.Hour,
		BreakoutPolicy: "all",
		RecordBots:     true,
		RecordMode:     "async",
		RecordTimeout:  5 * time.Second,
		CacheDriver:    "memory",
		CacheTTL:       time.Minute,
		Timezone:       "UTC",
	}
}

func postJSON(t *testing.T, client *http.Client, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestIntegration(t *testing.T) {
	ctx := context.Background()
	a, err := app.New(ctx, testConfig())
	require.NoError(t, err)
	defer a.Close(ctx)

	_, err = a.Accounts.Register(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)

	server := httptest.NewServer(a.Handler)
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := server.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	// Unauthenticated API access
	resp, err := client.Get(server.URL + "/api/v1/links")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong password
	resp = postJSON(t, client, server.URL+"/api/v1/login", map[string]string{"email": "admin@example.com", "password": "nope nope"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Login
	resp = postJSON(t, client, server.URL+"/api/v1/login", map[string]string{"email": "Admin@Example.com", "password": "correct horse"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Create link
	resp = postJSON(t, client, server.URL+"/api/v1/links", map[string]string{"url": "https://example.com/article", "slug": "post", "tag": "LinkedIn"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		Slug string `json:"slug"`
		URL  string `json:"url"`
		Tag  string `json:"tag"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "post", created.Slug)
	assert.Equal(t, "linkedin", created.Tag)

	// Duplicate slug
	resp = postJSON(t, client, server.URL+"/api/v1/links", map[string]string{"url": "https://example.org", "slug": "post"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Invalid URL
	resp = postJSON(t, client, server.URL+"/api/v1/links", map[string]string{"url": "not a url"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Script URLs are refused
	resp = postJSON(t, client, server.URL+"/api/v1/links", map[string]string{"url": "javascript://x/%0aalert(1)"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Bot is redirected straight to the destination
	req, _ := http.NewRequest("GET", server.URL+"/r/post", nil)
	req.Header.Set("User-Agent", "Googlebot/2.1 (+http://www.google.com/bot.html)")
	req.Header.Set("X-Vercel-IP-Country", "TH")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://example.com/article", resp.Header.Get("Location"))

	// In-app browser gets the breakout page
	req, _ = http.NewRequest("GET", server.URL+"/post", nil)
	req.Header.Set("User-Agent", linkedInUA)
	resp, err = client.Do(req)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Open System Browser")
	assert.Contains(t, string(page), "intent://example.com/article")

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Recorder.Wait(waitCtx))

	// Stats
	resp, err = client.Get(server.URL + "/api/v1/links/post/stats?range=1h")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		TotalClicks int64 `json:"totalClicks"`
		RangeClicks int   `json:"rangeClicks"`
		Countries   []struct {
			Country string `json:"country"`
			Clicks  int64  `json:"clicks"`
		} `json:"countries"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, int64(2), stats.TotalClicks)
	assert.Equal(t, 2, stats.RangeClicks)
	require.NotEmpty(t, stats.Countries)
	assert.Equal(t, "TH", stats.Countries[0].Country)

	// Unsupported range
	resp, err = client.Get(server.URL + "/api/v1/links/post/stats?range=2Y")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Tag activity
	resp, err = client.Get(server.URL + "/api/v1/analytics/tags?range=24H")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags struct {
		Data []struct {
			Tag    string `json:"tag"`
			Clicks int    `json:"clicks"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tags))
	resp.Body.Close()
	require.Len(t, tags.Data, 5)
	assert.Equal(t, "Linkedin", tags.Data[0].Tag)
	assert.Equal(t, 2, tags.Data[0].Clicks)

	// Delete, then the short link is gone
	req, _ = http.NewRequest("DELETE", server.URL+"/api/v1/links/post", nil)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(server.URL + "/r/post")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Health
	resp, err = client.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
