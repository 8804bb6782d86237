// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"lease-scan/internal/detector"
	"lease-scan/internal/formatters"
	"lease-scan/internal/formatters/shared"

	"github.com/fatih/color"
)

const (
	typeWidth         = 22
	jurisdictionWidth = 24
	excerptWidth      = 60
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with severity colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(result *detector.AnalysisResult, options formatters.FormatterOptions) (string, error) {
	out := shared.PrepareResult(result, options)
	var builder strings.Builder

	if out.Jurisdiction != "" {
		builder.WriteString(f.paint(options, "white", "Jurisdiction: "))
		builder.WriteString(out.Jurisdiction + "\n\n")
	}

	if len(out.Flags) == 0 && len(out.Suppressed) == 0 {
		if len(result.Flags) > 0 {
			builder.WriteString("No flags at the specified severity levels.\n")
		}
	} else {
		f.appendHeaders(&builder, options)
		for _, flag := range out.Flags {
			f.appendSummaryLine(&builder, flag, false, options)
		}
		for _, s := range out.Suppressed {
			f.appendSummaryLine(&builder, s.Flag, true, options)
		}
		if options.Verbose {
			for _, flag := range out.Flags {
				f.appendDetailedFlag(&builder, flag, options)
			}
			for _, s := range out.Suppressed {
				f.appendDetailedSuppressed(&builder, s, options)
			}
		}
		builder.WriteString("\n")
	}

	builder.WriteString(f.paint(options, summaryColor(out.Flags), out.Summary) + "\n")
	if options.ShowText && out.ExtractedText != "" {
		builder.WriteString("\n" + f.paint(options, "white", "=== Extracted Text ===") + "\n")
		builder.WriteString(out.ExtractedText + "\n")
	}
	builder.WriteString("\n" + out.Disclaimer + "\n")

	return builder.String(), nil
}

func summaryColor(flags []detector.RiskFlag) string {
	for _, flag := range flags {
		if flag.Severity == detector.SeverityHigh {
			return "red"
		}
	}
	if len(flags) > 0 {
		return "yellow"
	}
	return "green"
}

// paint colors s unless color is disabled
func (f *Formatter) paint(options formatters.FormatterOptions, name, s string) string {
	if options.NoColor {
		return s
	}
	return f.colors[name].Sprint(s)
}

func (f *Formatter) severityColor(severity detector.Severity) string {
	switch severity {
	case detector.SeverityHigh:
		return "red"
	case detector.SeverityWarning:
		return "yellow"
	default:
		return "green"
	}
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, options formatters.FormatterOptions) {
	header := fmt.Sprintf("%-9s %-*s %-*s %s", "LEVEL", typeWidth, "TYPE", jurisdictionWidth, "JURISDICTION", "EXCERPT")
	builder.WriteString(f.paint(options, "white", header) + "\n")

	totalWidth := 9 + 1 + typeWidth + 1 + jurisdictionWidth + 1 + excerptWidth
	builder.WriteString(f.paint(options, "white", strings.Repeat("-", totalWidth)) + "\n")
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, flag detector.RiskFlag, suppressed bool, options formatters.FormatterOptions) {
	level := strings.ToUpper(string(flag.Severity))
	levelColor := f.severityColor(flag.Severity)
	if suppressed {
		level = "SUPP"
		levelColor = "white"
	}

	jurisdiction := shared.ReferenceJurisdiction(flag)
	if jurisdiction == "" {
		jurisdiction = "-"
	}

	fmt.Fprintf(builder, "%s %s %s %s\n",
		f.paint(options, levelColor, fmt.Sprintf("[%-7s]", level)),
		f.paint(options, "cyan", fmt.Sprintf("%-*s", typeWidth, truncate(flag.Type, typeWidth))),
		f.paint(options, "magenta", fmt.Sprintf("%-*s", jurisdictionWidth, truncate(jurisdiction, jurisdictionWidth))),
		truncate(singleLine(flag.Excerpt), excerptWidth))
}

// appendDetailedFlag adds the explanation and citation for one flag
func (f *Formatter) appendDetailedFlag(builder *strings.Builder, flag detector.RiskFlag, options formatters.FormatterOptions) {
	builder.WriteString("\n" + f.paint(options, "white", "=== "+flag.Type+" ===") + "\n")
	fmt.Fprintf(builder, "%s %s\n", f.paint(options, "cyan", "Severity:"),
		f.paint(options, f.severityColor(flag.Severity), string(flag.Severity)))
	fmt.Fprintf(builder, "%s %s\n", f.paint(options, "cyan", "Excerpt:"), flag.Excerpt)
	fmt.Fprintf(builder, "%s %s\n", f.paint(options, "cyan", "Explanation:"), flag.Explanation)
	if flag.LegalReference != nil {
		fmt.Fprintf(builder, "%s %s (%s)\n", f.paint(options, "cyan", "Reference:"),
			flag.LegalReference.Title, flag.LegalReference.Jurisdiction)
	}
}

func (f *Formatter) appendDetailedSuppressed(builder *strings.Builder, s detector.SuppressedFlag, options formatters.FormatterOptions) {
	f.appendDetailedFlag(builder, s.Flag, options)
	fmt.Fprintf(builder, "%s %s (%s)\n", f.paint(options, "blue", "Suppressed by:"), s.SuppressedBy, s.RuleReason)
	if s.ExpiresAt != nil {
		fmt.Fprintf(builder, "%s %s\n", f.paint(options, "blue", "Expires:"), s.ExpiresAt.Format("2006-01-02"))
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
