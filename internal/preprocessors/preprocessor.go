// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"lease-scan/internal/observability"
)

var (
	// ErrNoText means extraction succeeded but produced no usable text
	ErrNoText = errors.New("no text could be extracted from the document")

	// ErrUnsupportedType means no preprocessor handles the file
	ErrUnsupportedType = errors.New("unsupported document type")
)

// ProcessedContent is the text extracted from one document
type ProcessedContent struct {
	OriginalPath string
	Filename     string

	Text string

	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	ProcessorType string
}

func (pc *ProcessedContent) countText() {
	pc.WordCount = len(strings.Fields(pc.Text))
	pc.CharCount = len(pc.Text)
	pc.LineCount = strings.Count(pc.Text, "\n") + 1
}

// Preprocessor extracts lease text from one kind of file
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager picks the preprocessor for a file
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// NewDefaultManager registers the PDF and plain text preprocessors
func NewDefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager()
	for _, p := range []Preprocessor{NewPDFPreprocessor(), NewPlainTextPreprocessor()} {
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// SupportedExtensions lists every extension some preprocessor accepts
func (pm *PreprocessorManager) SupportedExtensions() []string {
	var exts []string
	for _, p := range pm.preprocessors {
		exts = append(exts, p.GetSupportedExtensions()...)
	}
	return exts
}

// ProcessFile extracts text with the first preprocessor that accepts the
// file. Whitespace-only output is reported as ErrNoText.
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	p := pm.GetPreprocessor(filePath)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filePath))
	}

	content, err := p.Process(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content.Text) == "" {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), ErrNoText)
	}
	return content, nil
}

// ExtractText is ProcessFile on a default manager without an observer
func ExtractText(filePath string) (*ProcessedContent, error) {
	return NewDefaultManager(nil).ProcessFile(filePath)
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range exts {
		if ext == supported {
			return true
		}
	}
	return false
}
