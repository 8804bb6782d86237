// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lease-scan/internal/config"
	"lease-scan/internal/core"
	"lease-scan/internal/detector"
	"lease-scan/internal/rules"
)

const sfLease = "Residential Lease Agreement\nProperty: 123 Market Street, San Francisco, CA 94103\n\n" +
	"Landlord may enter the premises at any time without notice."

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	analyzer := core.BuildAnalyzer(cfg, nil, rules.MustDefault(), nil, nil)
	s, err := NewServer(cfg, analyzer, nil)
	require.NoError(t, err)
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(s *Server, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return do(s, req)
}

func postFile(t *testing.T, s *Server, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return do(s, req)
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) detector.AnalysisResult {
	t.Helper()
	var result detector.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Server"), "lease-scan/"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "lease-scan-api", body["service"])
	build, ok := body["build_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, body["version"], build["version"])
	assert.NotEmpty(t, build["go_version"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := do(s, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestAnalyzeJSON(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(s, "/analyze", analyzeRequest{DocumentText: sfLease})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	assert.Equal(t, "San Francisco, California", result.Jurisdiction)
	types := make([]string, 0, len(result.Flags))
	for _, f := range result.Flags {
		types = append(types, f.Type)
	}
	assert.Contains(t, types, "entry-notice")
	assert.Equal(t, core.Disclaimer, result.Disclaimer)
}

func TestAnalyzeJSONOverride(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(s, "/analyze", analyzeRequest{DocumentText: sfLease, Jurisdiction: "Chicago"})

	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeResult(t, rec)
	assert.Equal(t, "Chicago", result.Jurisdiction)
}

func TestAnalyzeBadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(s, "/analyze", analyzeRequest{DocumentText: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "documentText is required", decodeError(t, rec).Error)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = do(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec).RequestID)
}

func TestAnalyzeUpload(t *testing.T) {
	s := newTestServer(t)
	rec := postFile(t, s, "lease.txt", sfLease, map[string]string{"jurisdiction": "auto"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	assert.Equal(t, "San Francisco, California", result.Jurisdiction)
	assert.Equal(t, sfLease, result.ExtractedText)
}

func TestAnalyzeUploadErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"unsupported type", "lease.docx", "PK\x03\x04", "unsupported file type"},
		{"no text", "lease.txt", "  \n\t ", "no text could be extracted"},
		{"broken pdf", "lease.pdf", "not really a pdf", "text extraction failed"},
		{"missing file", "", "", "no file uploaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postFile(t, s, tt.filename, tt.content, map[string]string{"jurisdiction": "California"})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec).Error, tt.want)
		})
	}
}

func TestAnalyzeCachesResults(t *testing.T) {
	s := newTestServer(t)
	first := postJSON(s, "/analyze", analyzeRequest{DocumentText: sfLease})
	second := postJSON(s, "/analyze", analyzeRequest{DocumentText: sfLease, Jurisdiction: "auto"})

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, s.cache.Len())

	metrics := do(s, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, metrics.Code)
	body := metrics.Body.String()
	assert.Contains(t, body, `lease_scan_analyses_total{cache="hit",input="text"} 1`)
	assert.Contains(t, body, `lease_scan_analyses_total{cache="miss",input="text"} 1`)
	assert.Contains(t, body, `lease_scan_flags_total{severity="high"}`)
	assert.Contains(t, body, "lease_scan_analysis_duration_seconds_count 1")
}

func TestAnalyzeWithoutCache(t *testing.T) {
	cfg := config.Default()
	cfg.Web.CacheSize = 0
	s, err := NewServer(cfg, core.BuildAnalyzer(cfg, nil, nil, nil, nil), nil)
	require.NoError(t, err)
	assert.Nil(t, s.cache)

	rec := postJSON(s, "/analyze", analyzeRequest{DocumentText: sfLease})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeFormats(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(s, "/analyze?format=csv", analyzeRequest{DocumentText: sfLease})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lease-scan-results.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Type,Severity"))

	rec = postJSON(s, "/analyze?severity=info", analyzeRequest{DocumentText: sfLease})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeResult(t, rec).Flags)

	rec = postJSON(s, "/analyze?format=xml", analyzeRequest{DocumentText: sfLease})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "unsupported format")
}

func TestRulesEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/rules?jurisdiction=California", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Count int          `json:"count"`
		Rules []rules.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, len(listing.Rules), listing.Count)
	assert.NotZero(t, listing.Count)
	for _, r := range listing.Rules {
		assert.Equal(t, "California", r.Jurisdiction)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/rules?jurisdiction=Atlantis", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/rules/search?q=privacy&jurisdiction=Boston", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.NotEmpty(t, listing.Rules)
	assert.Equal(t, "entry-notice", listing.Rules[0].ID)
	assert.LessOrEqual(t, listing.Count, DefaultSearchLimit)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/rules/search", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/rules/search?q=deposit&limit=abc", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJurisdictionsAndFormats(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/jurisdictions", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	var juris struct {
		Jurisdictions []jurisdictionInfo `json:"jurisdictions"`
		Documents     []string           `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &juris))
	assert.Contains(t, juris.Jurisdictions, jurisdictionInfo{Name: "Austin, Texas", RulesFrom: "Texas"})
	assert.Contains(t, juris.Documents, "Boston, Massachusetts")

	rec = do(s, httptest.NewRequest(http.MethodGet, "/formats", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"application/x-yaml"`)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("a", ""), cacheKey("a", ""))
	assert.NotEqual(t, cacheKey("a", ""), cacheKey("a", "Texas"))
	assert.NotEqual(t, cacheKey("ab", "c"), cacheKey("a", "bc"))
	assert.Len(t, cacheKey("", ""), 64)
}
