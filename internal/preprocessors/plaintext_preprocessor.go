// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"lease-scan/internal/observability"
)

// MaxTextFileSize bounds plain text input
const MaxTextFileSize = 10 * 1024 * 1024

// PlainTextPreprocessor passes text files through unchanged apart from
// line ending normalization
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ptp.GetSupportedExtensions())
}

// Process reads the file as UTF-8 text
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
	}

	content, err := ptp.process(filePath)
	if finishTiming != nil {
		metadata := map[string]interface{}{}
		if err != nil {
			metadata["error"] = err.Error()
		} else {
			metadata["word_count"] = content.WordCount
		}
		finishTiming(err == nil, metadata)
	}
	return content, err
}

func (ptp *PlainTextPreprocessor) process(filePath string) (*ProcessedContent, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxTextFileSize {
		return nil, fmt.Errorf("text file too large: %d bytes (max %d)", info.Size(), MaxTextFileSize)
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text", filepath.Base(filePath))
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          strings.ReplaceAll(string(data), "\r\n", "\n"),
		Format:        "text",
		PageCount:     1,
		ProcessorType: ptp.GetName(),
	}
	content.countText()
	return content, nil
}
