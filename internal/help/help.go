// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"lease-scan/internal/jurisdiction"
	"lease-scan/internal/rules"
	"lease-scan/internal/scoring"
)

// System prints usage and the rule catalog
type System struct {
	library *rules.Library
	out     io.Writer
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system writing to out
func NewSystem(library *rules.Library, out io.Writer, noColor bool) *System {
	return &System{
		library: library,
		out:     out,
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"subtitle": color.New(color.FgCyan, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}
}

func (h *System) println(name, s string) {
	if h.noColor {
		fmt.Fprintln(h.out, s)
		return
	}
	h.colors[name].Fprintln(h.out, s)
}

// ShowGeneralHelp displays usage, options and examples
func (h *System) ShowGeneralHelp() {
	h.println("title", "Lease Scan - Lease Risk Flagging Tool")
	fmt.Fprintln(h.out, "======================================")
	fmt.Fprintln(h.out)
	h.println("header", "USAGE:")
	fmt.Fprintln(h.out, "  lease-scan --file <lease.pdf|lease.txt> [options]")
	fmt.Fprintln(h.out, "  lease-scan --web [--port <port>]  # HTTP API mode")
	fmt.Fprintln(h.out)

	h.println("header", "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tLease to analyze: PDF or plain text (required unless listing)")
	fmt.Fprintln(w, "  --jurisdiction\t<name>\tJurisdiction to apply, or auto to infer it from the text (default: auto)")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, yaml, csv (default: text)")
	fmt.Fprintln(w, "  --severity\t<levels>\tSeverities to display: high,warning,info,all (default: all)")
	fmt.Fprintln(w, "  --verbose\t\tShow explanations and legal references")
	fmt.Fprintln(w, "  --show-text\t\tInclude the extracted lease text in the output")
	fmt.Fprintln(w, "  --output\t<path>\tWrite results to a file instead of stdout")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles")
	fmt.Fprintln(w, "  --min-score\t<n>\tMinimum match score (default: 10)")
	fmt.Fprintln(w, "  --workers\t<n>\tScoring workers, 0 for one per CPU (default: 0)")
	fmt.Fprintln(w, "  --pattern-fallback\t\tAlso run the plain pattern checks (no legal references)")
	fmt.Fprintln(w, "  --suppression-file\t<path>\tSuppression file (default: <config dir>/suppressions.yaml)")
	fmt.Fprintln(w, "  --no-suppressions\t\tIgnore suppression rules")
	fmt.Fprintln(w, "  --generate-suppressions\t\tRecord disabled suppression rules for every flag")
	fmt.Fprintln(w, "  --list-rules\t\tList rules, filtered by --jurisdiction when given")
	fmt.Fprintln(w, "  --list-jurisdictions\t\tList jurisdictions the resolver can infer")
	fmt.Fprintln(w, "  --query\t<text>\tSearch rules by topic, e.g. \"pet deposit\"")
	fmt.Fprintln(w, "  --explain\t<rule-id>\tShow a rule's text, keywords and violation examples")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging of extraction, chunking and matching")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --web\t\tStart the HTTP API instead of analyzing a file")
	fmt.Fprintln(w, "  --port\t<port>\tPort for the HTTP API (default: 8080, only used with --web)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	w.Flush()

	fmt.Fprintln(h.out)
	h.println("header", "EXAMPLES:")
	h.println("example", "  lease-scan --file lease.pdf")
	h.println("example", "  lease-scan --file lease.pdf --jurisdiction \"Seattle, Washington\" --verbose")
	h.println("example", "  lease-scan --file lease.txt --format json --severity high")
	h.println("example", "  lease-scan --query \"security deposit\" --jurisdiction California")
	h.println("example", "  lease-scan --explain entry-notice")
	h.println("example", "  lease-scan --web --port 9000")

	fmt.Fprintln(h.out)
	h.println("header", "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: lease-scan.yaml or .lease-scan.yaml (in current directory)")
	fmt.Fprintln(h.out, "  User config: $XDG_CONFIG_HOME/lease-scan/config.yaml or ~/.lease-scan.yaml")
	fmt.Fprintln(h.out, "  Environment: LEASE_SCAN_CONFIG_DIR - Override config directory")
	fmt.Fprintln(h.out)
	h.println("warning", "Results are informational only and are not legal advice.")
}

// ShowRules lists rules as a table, all of them when jurisdiction is empty
func (h *System) ShowRules(jurisdiction string) bool {
	list := h.library.ForJurisdiction(jurisdiction)
	if len(list) == 0 {
		h.println("negative", fmt.Sprintf("No rules found for jurisdiction %q", jurisdiction))
		return false
	}

	title := "Lease rules"
	if jurisdiction != "" {
		title += " for " + jurisdiction
	}
	h.println("title", title)
	fmt.Fprintln(h.out)
	h.writeRuleTable(list)
	return true
}

// ShowSearch prints the rules matching a topic query
func (h *System) ShowSearch(query, jurisdiction string, limit int) bool {
	found := h.library.Search(query, jurisdiction, limit)
	if len(found) == 0 {
		h.println("negative", fmt.Sprintf("No rules match %q", query))
		return false
	}
	h.println("title", fmt.Sprintf("Rules matching %q", query))
	fmt.Fprintln(h.out)
	h.writeRuleTable(found)
	return true
}

func (h *System) writeRuleTable(list []rules.Rule) {
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JURISDICTION\tRULE\tTITLE")
	fmt.Fprintln(w, "------------\t----\t-----")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Jurisdiction, r.ID, r.Title)
	}
	w.Flush()
}

// ShowJurisdictions lists the inferable jurisdictions and the rule document
// each one maps to
func (h *System) ShowJurisdictions() {
	h.println("title", "Supported jurisdictions")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JURISDICTION\tRULES FROM")
	for _, j := range jurisdiction.Supported() {
		doc, ok := h.library.DocumentFor(j)
		if !ok {
			doc = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\n", j, doc)
	}
	w.Flush()
}

// ShowRuleHelp explains one rule id in every jurisdiction that defines it,
// or only in jurisdiction when given. It returns false for an unknown id.
func (h *System) ShowRuleHelp(ruleID, jurisdiction string) bool {
	var matches []rules.Rule
	for _, r := range h.library.ForJurisdiction(jurisdiction) {
		if strings.EqualFold(r.ID, ruleID) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		h.println("negative", fmt.Sprintf("Unknown rule: %s", ruleID))
		return false
	}

	for i, r := range matches {
		if i > 0 {
			fmt.Fprintln(h.out)
		}
		h.println("title", fmt.Sprintf("%s (%s)", r.Title, r.Jurisdiction))
		h.println("subtitle", "Rule: "+r.ID)
		fmt.Fprintln(h.out)
		fmt.Fprintln(h.out, wrap(r.Text, 80, "  "))
		fmt.Fprintln(h.out)

		h.println("header", "Keywords:")
		for _, k := range r.Keywords {
			h.println("item", "  - "+k)
		}
		if len(r.ViolationExamples) > 0 {
			h.println("header", "Violation examples:")
			for _, ex := range r.ViolationExamples {
				h.println("example", "  - "+ex)
			}
		}
	}

	fmt.Fprintln(h.out)
	h.println("header", "Scoring:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  exact violation example\t+%.0f\n", scoring.WeightExactPhrase)
	fmt.Fprintf(w, "  partial violation example\t+%.0f\n", scoring.WeightPartialPhrase)
	fmt.Fprintf(w, "  multi-word keyword\t+%.0f\n", scoring.WeightKeywordPhrase)
	fmt.Fprintf(w, "  single-word keyword\t+%.0f\n", scoring.WeightKeywordWord)
	fmt.Fprintf(w, "  flagged at\t>= %.0f (high severity at >= %.0f)\n", scoring.DefaultMinScore, scoring.HighSeverity)
	w.Flush()
	return true
}

// wrap breaks text into indented lines of at most width columns
func wrap(text string, width int, indent string) string {
	var lines []string
	line := indent
	for _, word := range strings.Fields(text) {
		if len(line)+len(word)+1 > width && strings.TrimSpace(line) != "" {
			lines = append(lines, line)
			line = indent
		}
		if strings.TrimSpace(line) != "" {
			line += " "
		}
		line += word
	}
	if strings.TrimSpace(line) != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
