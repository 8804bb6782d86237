// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"

	"lease-scan/internal/chunker"
	"lease-scan/internal/detector"
	"lease-scan/internal/jurisdiction"
	"lease-scan/internal/observability"
	"lease-scan/internal/parallel"
	"lease-scan/internal/rules"
	"lease-scan/internal/scoring"
	"lease-scan/internal/suppressions"
)

// Disclaimer is attached to every analysis result
const Disclaimer = "This analysis is for informational purposes only and does not constitute legal advice. Consult with a qualified attorney for legal guidance."

// MaxExcerptLength bounds a flag excerpt before the trailing ellipsis
const MaxExcerptLength = 300

// Options tunes one analyzer
type Options struct {
	MinScore        float64
	ChunkSize       int
	ChunkOverlap    int
	Workers         int // 0 picks the CPU count, 1 scores inline
	PatternFallback bool
	IncludeText     bool
}

// DefaultOptions returns the tuned defaults
func DefaultOptions() Options {
	return Options{
		MinScore:     scoring.DefaultMinScore,
		ChunkSize:    chunker.DefaultMaxSize,
		ChunkOverlap: chunker.DefaultOverlap,
		Workers:      0,
		IncludeText:  true,
	}
}

// Input is one document to analyze
type Input struct {
	DocumentText string
	Jurisdiction string // empty or "auto" infers from the text
	Source       string // file name or request id, for logs only
}

// Analyzer runs the lease risk pipeline. It holds no per-request state and
// is safe for concurrent use.
type Analyzer struct {
	library      *rules.Library
	opts         Options
	processor    *parallel.ParallelProcessor
	observer     *observability.StandardObserver
	suppressions *suppressions.SuppressionManager
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithObserver attaches an observer for timing and debug output
func WithObserver(observer *observability.StandardObserver) Option {
	return func(a *Analyzer) { a.observer = observer }
}

// WithSuppressions removes accepted flags from results
func WithSuppressions(manager *suppressions.SuppressionManager) Option {
	return func(a *Analyzer) { a.suppressions = manager }
}

// NewAnalyzer builds an analyzer over library
func NewAnalyzer(library *rules.Library, opts Options, options ...Option) *Analyzer {
	a := &Analyzer{
		library: library,
		opts:    opts,
	}
	for _, opt := range options {
		opt(a)
	}
	a.processor = parallel.NewParallelProcessor(opts.Workers, a.observer)
	return a
}

// Options returns the analyzer's options
func (a *Analyzer) Options() Options {
	return a.opts
}

// Library returns the rule library the analyzer matches against
func (a *Analyzer) Library() *rules.Library {
	return a.library
}

// Analyze flags risky clauses in one document. The only error is context
// cancellation; finding nothing is a normal result.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*detector.AnalysisResult, error) {
	var finishTiming func(bool, map[string]interface{})
	if a.observer != nil {
		finishTiming = a.observer.StartTiming("analyzer", "analyze", in.Source)
	}

	resolved, ok := jurisdiction.Resolve(in.DocumentText, in.Jurisdiction)
	var candidates []rules.Rule
	if ok {
		candidates = a.library.ForJurisdiction(resolved)
	} else {
		candidates = a.library.All()
	}

	chunks := chunker.Chunk(in.DocumentText, a.opts.ChunkSize, a.opts.ChunkOverlap)
	perChunk, _, err := a.processor.ScoreChunks(ctx, chunks, func(chunk string) []detector.Match {
		return scoring.FindMatches(chunk, candidates, a.opts.MinScore)
	})
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	flags := a.aggregate(perChunk)
	if a.opts.PatternFallback {
		flags = mergeFallback(flags, detectPatterns(in.DocumentText))
	}

	result := &detector.AnalysisResult{
		Flags:        flags,
		Disclaimer:   Disclaimer,
		Jurisdiction: resolved,
	}
	if a.opts.IncludeText {
		result.ExtractedText = in.DocumentText
	}
	if a.suppressions != nil {
		result.Flags, result.Suppressed = a.suppressions.Apply(result.Flags)
	}
	result.Summary = Summarize(result.Flags)

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"jurisdiction": resolved,
			"resolved":     ok,
			"rules":        len(candidates),
			"chunks":       len(chunks),
			"flags":        len(result.Flags),
			"suppressed":   len(result.Suppressed),
		})
	}
	return result, nil
}

// aggregate walks chunks in document order and keeps the first accepted
// match per rule id. Within a chunk matches are already strongest first.
func (a *Analyzer) aggregate(perChunk [][]detector.Match) []detector.RiskFlag {
	flags := []detector.RiskFlag{}
	seen := make(map[string]bool)

	for i, matches := range perChunk {
		for _, m := range matches {
			if seen[m.Rule.ID] {
				continue
			}
			if m.Confidence == detector.ConfidenceLow || !m.ExcerptRelevant {
				continue
			}
			seen[m.Rule.ID] = true
			m.ChunkIndex = i

			flags = append(flags, buildFlag(m))
			if a.observer != nil && a.observer.DebugObserver != nil {
				a.observer.DebugObserver.LogDetail("analyzer",
					fmt.Sprintf("flag %s from chunk %d (score %.0f, %s, %s)",
						m.Rule.ID, i, m.Score, m.Confidence, m.Jurisdiction))
			}
		}
	}
	return flags
}

func buildFlag(m detector.Match) detector.RiskFlag {
	excerpt := Excerpt(m.MatchedText)
	return detector.RiskFlag{
		Type:        m.Rule.ID,
		Excerpt:     excerpt,
		Explanation: Explain(m.Rule, excerpt),
		LegalReference: &detector.LegalReference{
			Title:        m.Rule.Title,
			Text:         m.Rule.Text,
			Jurisdiction: m.Jurisdiction,
		},
		Severity: scoring.SeverityFor(m.Confidence, m.Score),
	}
}

// Summarize describes the flag list in one sentence
func Summarize(flags []detector.RiskFlag) string {
	high, warning := 0, 0
	for _, f := range flags {
		switch f.Severity {
		case detector.SeverityHigh:
			high++
		case detector.SeverityWarning:
			warning++
		}
	}

	switch {
	case high > 0:
		return fmt.Sprintf("This lease contains %d high-risk %s that may violate tenant protection laws.", high, plural(high, "clause"))
	case warning > 0:
		return fmt.Sprintf("This lease contains %d %s that may be problematic for tenants.", warning, plural(warning, "clause"))
	default:
		return "No obvious risky clauses detected."
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
