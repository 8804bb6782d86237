// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"lease-scan/internal/observability"
)

const (
	// MaxPDFPages caps extraction for very long uploads
	MaxPDFPages = 50

	// a gap wider than this fraction of the font size between two runs is a space
	wordGapRatio = 0.2
)

// PDFPreprocessor extracts text from PDF leases. pdfcpu validates the file
// first; ledongthuc/pdf reads the text row by row.
type PDFPreprocessor struct {
	observer  *observability.StandardObserver
	pdfConfig *model.Configuration
}

// NewPDFPreprocessor creates a PDF preprocessor with relaxed validation
func NewPDFPreprocessor() *PDFPreprocessor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFPreprocessor{pdfConfig: conf}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Extractor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process validates and extracts the PDF's text. Pages are separated by a
// blank line so the chunker treats them as paragraph boundaries.
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)
		if pp.observer.DebugObserver != nil {
			finishStep = pp.observer.DebugObserver.StartStep("pdf_preprocessor", "process_file", filePath)
		}
	}

	content, err := pp.process(filePath)

	if finishTiming != nil {
		metadata := map[string]interface{}{}
		if err != nil {
			metadata["error"] = err.Error()
		} else {
			metadata["page_count"] = content.PageCount
			metadata["word_count"] = content.WordCount
		}
		finishTiming(err == nil, metadata)
	}
	if finishStep != nil {
		if err != nil {
			finishStep(false, fmt.Sprintf("Failed to extract text: %v", err))
		} else {
			finishStep(true, fmt.Sprintf("Extracted %d words from %d pages", content.WordCount, content.PageCount))
		}
	}
	return content, err
}

func (pp *PDFPreprocessor) process(filePath string) (*ProcessedContent, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}

	f, r, err := pdf.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount && i <= MaxPDFPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          strings.Join(pages, "\n\n"),
		Format:        "pdf",
		PageCount:     pageCount,
		ProcessorType: pp.GetName(),
	}
	content.countText()
	return content, nil
}

// pageText joins the page's rows top to bottom with newlines
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if row == nil || len(row.Content) == 0 {
			continue
		}
		if line := strings.TrimSpace(rowText(row.Content)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// rowText orders a row's runs left to right and inserts a space wherever
// the horizontal gap between runs is wide enough to be one
func rowText(runs []pdf.Text) string {
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	for i, run := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := run.X - (prev.X + prev.W)
			if gap > prev.FontSize*wordGapRatio &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(run.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.S)
	}
	return b.String()
}
