// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lease-scan/internal/core"
	"lease-scan/internal/detector"
	"lease-scan/internal/formatters"
	"lease-scan/internal/jurisdiction"
	"lease-scan/internal/preprocessors"
	"lease-scan/internal/rules"
	"lease-scan/internal/version"
)

type analyzeRequest struct {
	DocumentText string `json:"documentText"`
	Jurisdiction string `json:"jurisdiction"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type jurisdictionInfo struct {
	Name      string `json:"name"`
	RulesFrom string `json:"rulesFrom,omitempty"`
}

func (s *Server) fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     message,
		RequestID: c.GetString(RequestIDHeader),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	build := version.Get()
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "lease-scan-api",
		"version":    build.Version,
		"rules":      len(s.library.All()),
		"build_info": build,
	})
}

// handleAnalyze accepts a multipart upload in the "file" field or a JSON body
// with documentText. ?format= selects another output format and ?severity=
// filters flags.
func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes())

	var text, override, input string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		extracted, status, err := s.extractUpload(c)
		if err != nil {
			s.fail(c, status, err.Error())
			return
		}
		text, override, input = extracted, c.PostForm("jurisdiction"), "file"
	} else {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.fail(c, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			s.fail(c, http.StatusBadRequest, "invalid request body: send multipart 'file' or JSON {\"documentText\", \"jurisdiction\"}")
			return
		}
		if strings.TrimSpace(req.DocumentText) == "" {
			s.fail(c, http.StatusBadRequest, "documentText is required")
			return
		}
		text, override, input = req.DocumentText, req.Jurisdiction, "text"
	}

	start := time.Now()
	result, cached, err := s.analyze(c, text, override)
	if err != nil {
		s.fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.metrics.observe(input, cached, time.Since(start), result)

	format := c.DefaultQuery("format", "json")
	severity := c.Query("severity")
	if format == "json" && severity == "" {
		c.JSON(http.StatusOK, result)
		return
	}

	content, mimeType, filename, err := formatters.ExportForWeb(format, result, formatters.FormatterOptions{
		SeverityLevel: core.ParseSeverityLevels(severity),
		Verbose:       true,
		NoColor:       true,
		ShowText:      true,
	})
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if format != "json" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	c.Data(http.StatusOK, mimeType, []byte(content))
}

// analyze consults the cache before running the analyzer. Analysis is
// deterministic, so a hit is indistinguishable from a fresh result.
func (s *Server) analyze(c *gin.Context, text, override string) (*detector.AnalysisResult, bool, error) {
	if jurisdiction.IsAuto(override) {
		override = ""
	}
	override = strings.TrimSpace(override)

	key := cacheKey(text, override)
	if s.cache != nil {
		if result, ok := s.cache.Get(key); ok {
			return result, true, nil
		}
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), core.Input{
		DocumentText: text,
		Jurisdiction: override,
		Source:       c.GetString(RequestIDHeader),
	})
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Add(key, result)
	}
	return result, false, nil
}

func cacheKey(text, override string) string {
	sum := sha256.Sum256([]byte(override + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// extractUpload stores the upload in a temp file and runs it through the
// preprocessors. The returned status applies when err is non-nil.
func (s *Server) extractUpload(c *gin.Context) (string, int, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d MB", s.cfg.Web.MaxUploadMB)
		}
		return "", http.StatusBadRequest, errors.New("no file uploaded: send the lease in the 'file' field")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if s.preprocessors.GetPreprocessor("upload"+ext) == nil {
		return "", http.StatusBadRequest, fmt.Errorf("unsupported file type %q: upload a PDF or text file (%s)",
			ext, strings.Join(s.preprocessors.SupportedExtensions(), ", "))
	}

	tmp, err := os.CreateTemp("", "lease-upload-*"+ext)
	if err != nil {
		return "", http.StatusInternalServerError, fmt.Errorf("failed to store upload: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		return "", http.StatusInternalServerError, fmt.Errorf("failed to store upload: %w", err)
	}

	content, err := s.preprocessors.ProcessFile(tmpPath)
	switch {
	case errors.Is(err, preprocessors.ErrNoText):
		return "", http.StatusBadRequest, errors.New("no text could be extracted from the document")
	case err != nil:
		return "", http.StatusBadRequest, fmt.Errorf("text extraction failed: %w", err)
	}

	s.logger.Debug("extracted upload",
		"file", filepath.Base(fileHeader.Filename),
		"processor", content.ProcessorType,
		"pages", content.PageCount,
		"words", content.WordCount)
	return content.Text, 0, nil
}

// handleRules lists every rule, or one jurisdiction's rules with ?jurisdiction=
func (s *Server) handleRules(c *gin.Context) {
	name := strings.TrimSpace(c.Query("jurisdiction"))
	list := s.library.ForJurisdiction(name)
	if name != "" && len(list) == 0 {
		s.fail(c, http.StatusNotFound, fmt.Sprintf("no rules for jurisdiction %q", name))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jurisdiction": name,
		"count":        len(list),
		"rules":        list,
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		s.fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	found := s.library.Search(query, c.Query("jurisdiction"), limit)
	if found == nil {
		found = []rules.Rule{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"count": len(found),
		"rules": found,
	})
}

func (s *Server) handleJurisdictions(c *gin.Context) {
	supported := jurisdiction.Supported()
	out := make([]jurisdictionInfo, 0, len(supported))
	for _, name := range supported {
		doc, _ := s.library.DocumentFor(name)
		out = append(out, jurisdictionInfo{Name: name, RulesFrom: doc})
	}
	c.JSON(http.StatusOK, gin.H{
		"jurisdictions": out,
		"documents":     s.library.Jurisdictions(),
	})
}

func (s *Server) handleFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formats": formatters.GetSupportedFormats()})
}
