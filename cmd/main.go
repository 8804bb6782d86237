// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"lease-scan/internal/config"
	"lease-scan/internal/core"
	"lease-scan/internal/detector"
	"lease-scan/internal/help"
	"lease-scan/internal/jurisdiction"
	"lease-scan/internal/preprocessors"
	"lease-scan/internal/rules"
	"lease-scan/internal/suppressions"
	"lease-scan/internal/version"
	"lease-scan/internal/web"

	"lease-scan/internal/formatters"
	_ "lease-scan/internal/formatters/csv"
	_ "lease-scan/internal/formatters/json"
	_ "lease-scan/internal/formatters/text"
	_ "lease-scan/internal/formatters/yaml"
)

// searchLimit caps --query results
const searchLimit = 3

// cliFlags holds command line flag values
type cliFlags struct {
	inputFile            string
	configFile           string
	profileName          string
	listProfiles         bool
	outputFormat         string
	jurisdiction         string
	severity             string
	verbose              bool
	debug                bool
	noColor              bool
	showText             bool
	outputFile           string
	suppressionFile      string
	noSuppressions       bool
	generateSuppressions bool
	patternFallback      bool
	minScore             float64
	workers              int
	listRules            bool
	listJurisdictions    bool
	query                string
	explain              string
	webMode              bool
	webPort              string
	showHelp             bool
	showVersion          bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format          string
	jurisdiction    string
	severity        string
	verbose         bool
	debug           bool
	noColor         bool
	showText        bool
	useSuppressions bool
	suppressionFile string
	analysis        config.Analysis
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(flags *cliFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lease-scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&flags.inputFile, "file", "", "Path to the lease to analyze (PDF or plain text)")
	fs.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&flags.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&flags.listProfiles, "list-profiles", false, "List available profiles")
	fs.StringVar(&flags.outputFormat, "format", "", "Output format: text, json, yaml, csv (default: text)")
	fs.StringVar(&flags.jurisdiction, "jurisdiction", "", "Jurisdiction to apply, or auto to infer it (default: auto)")
	fs.StringVar(&flags.severity, "severity", "", "Severities to display: high, warning, info, or combinations like 'high,warning'")
	fs.BoolVar(&flags.verbose, "verbose", false, "Show explanations and legal references")
	fs.BoolVar(&flags.debug, "debug", false, "Enable debug logging of extraction, chunking and matching")
	fs.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&flags.showText, "show-text", false, "Include the extracted lease text in the output")
	fs.StringVar(&flags.outputFile, "output", "", "Path to output file (if not specified, output to stdout)")
	fs.StringVar(&flags.suppressionFile, "suppression-file", "", "Path to suppression file (default: <config dir>/suppressions.yaml)")
	fs.BoolVar(&flags.noSuppressions, "no-suppressions", false, "Ignore suppression rules")
	fs.BoolVar(&flags.generateSuppressions, "generate-suppressions", false, "Record suppression rules for all flags (disabled by default, enable them in YAML)")
	fs.BoolVar(&flags.patternFallback, "pattern-fallback", false, "Also run the plain pattern checks")
	fs.Float64Var(&flags.minScore, "min-score", 0, "Minimum match score (default from config: 10)")
	fs.IntVar(&flags.workers, "workers", 0, "Scoring workers, 0 for one per CPU")
	fs.BoolVar(&flags.listRules, "list-rules", false, "List rules, filtered by --jurisdiction when given")
	fs.BoolVar(&flags.listJurisdictions, "list-jurisdictions", false, "List jurisdictions the resolver can infer")
	fs.StringVar(&flags.query, "query", "", "Search rules by topic")
	fs.StringVar(&flags.explain, "explain", "", "Explain a rule by id")
	fs.BoolVar(&flags.webMode, "web", false, "Start the HTTP API instead of analyzing a file")
	fs.StringVar(&flags.webPort, "port", "", "Port for the HTTP API (default: 8080)")
	fs.BoolVar(&flags.showHelp, "help", false, "Show help information")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")
	return fs
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string, stderr io.Writer) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(stderr, "Using default configuration\n")
		cfg = config.Default()
	}
	return cfg
}

// resolveConfiguration layers built-in defaults, the config file, the active
// profile and explicitly set flags, in that order
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *cliFlags, fs *flag.FlagSet) *finalConfiguration {
	final := &finalConfiguration{
		format:          "text",
		jurisdiction:    jurisdiction.Auto,
		severity:        "all",
		useSuppressions: true,
	}

	if cfg != nil {
		if cfg.Defaults.Format != "" {
			final.format = cfg.Defaults.Format
		}
		if cfg.Defaults.Jurisdiction != "" {
			final.jurisdiction = cfg.Defaults.Jurisdiction
		}
		if cfg.Defaults.Severity != "" {
			final.severity = cfg.Defaults.Severity
		}
		final.verbose = cfg.Defaults.Verbose
		final.debug = cfg.Defaults.Debug
		final.noColor = cfg.Defaults.NoColor
		final.showText = cfg.Defaults.ShowText
		final.useSuppressions = cfg.Defaults.UseSuppressions
		final.suppressionFile = cfg.Defaults.Suppressions
		final.analysis = cfg.EffectiveAnalysis(activeProfile)
	} else {
		final.analysis = config.Default().Analysis
	}

	if activeProfile != nil {
		if activeProfile.Format != "" {
			final.format = activeProfile.Format
		}
		if activeProfile.Jurisdiction != "" {
			final.jurisdiction = activeProfile.Jurisdiction
		}
		if activeProfile.Severity != "" {
			final.severity = activeProfile.Severity
		}
		final.verbose = final.verbose || activeProfile.Verbose
		final.debug = final.debug || activeProfile.Debug
		final.noColor = final.noColor || activeProfile.NoColor
		final.showText = final.showText || activeProfile.ShowText
	}

	if isFlagSet(fs, "format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}
	if isFlagSet(fs, "jurisdiction") && flags.jurisdiction != "" {
		final.jurisdiction = flags.jurisdiction
	}
	if isFlagSet(fs, "severity") && flags.severity != "" {
		final.severity = flags.severity
	}
	if isFlagSet(fs, "verbose") {
		final.verbose = flags.verbose
	}
	if isFlagSet(fs, "debug") {
		final.debug = flags.debug
	}
	if isFlagSet(fs, "no-color") {
		final.noColor = flags.noColor
	}
	if isFlagSet(fs, "show-text") {
		final.showText = flags.showText
	}
	if isFlagSet(fs, "no-suppressions") {
		final.useSuppressions = !flags.noSuppressions
	}
	if isFlagSet(fs, "suppression-file") {
		final.suppressionFile = flags.suppressionFile
	}
	if isFlagSet(fs, "min-score") {
		final.analysis.MinScore = flags.minScore
	}
	if isFlagSet(fs, "workers") {
		final.analysis.Workers = flags.workers
	}
	if isFlagSet(fs, "pattern-fallback") {
		final.analysis.PatternFallback = flags.patternFallback
	}

	if os.Getenv("LEASE_SCAN_DEBUG") != "" {
		final.debug = true
	}
	return final
}

// handleProfiles lists profiles or resolves the named one
func handleProfiles(cfg *config.Config, flags *cliFlags, stdout io.Writer) (*config.Profile, error) {
	if flags.listProfiles {
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Fprintln(stdout, "No profiles defined in configuration file.")
			return nil, nil
		}
		fmt.Fprintln(stdout, "Available profiles:")
		for _, name := range profiles {
			profile := cfg.GetProfile(name)
			if profile != nil && profile.Description != "" {
				fmt.Fprintf(stdout, "  - %s: %s\n", name, profile.Description)
			} else {
				fmt.Fprintf(stdout, "  - %s\n", name)
			}
		}
		return nil, nil
	}

	if flags.profileName == "" {
		return nil, nil
	}
	profile := cfg.GetProfile(flags.profileName)
	if profile == nil {
		return nil, fmt.Errorf("profile '%s' not found in config file\n"+
			"Troubleshooting: list available profiles with --list-profiles", flags.profileName)
	}
	return profile, nil
}

// colorDisabled reports whether output should be plain: not a terminal,
// running in CI, or NO_COLOR set
func colorDisabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := &cliFlags{}
	fs := newFlagSet(flags, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if flags.showVersion {
		fmt.Fprintln(stdout, version.Get())
		return 0
	}

	cfg := loadConfiguration(flags.configFile, stderr)
	activeProfile, err := handleProfiles(cfg, flags, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if flags.listProfiles {
		return 0
	}

	final := resolveConfiguration(cfg, activeProfile, flags, fs)
	if colorDisabled(stdout) {
		final.noColor = true
	}

	library, err := rules.Default()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load rule library: %v\n", err)
		return 1
	}

	helpSystem := help.NewSystem(library, stdout, final.noColor)
	catalogJurisdiction := final.jurisdiction
	if jurisdiction.IsAuto(catalogJurisdiction) {
		catalogJurisdiction = ""
	}

	switch {
	case flags.showHelp:
		helpSystem.ShowGeneralHelp()
		return 0
	case flags.listJurisdictions:
		helpSystem.ShowJurisdictions()
		return 0
	case flags.listRules:
		if !helpSystem.ShowRules(catalogJurisdiction) {
			return 1
		}
		return 0
	case flags.query != "":
		if !helpSystem.ShowSearch(flags.query, catalogJurisdiction, searchLimit) {
			return 1
		}
		return 0
	case flags.explain != "":
		if !helpSystem.ShowRuleHelp(flags.explain, catalogJurisdiction) {
			return 1
		}
		return 0
	}

	if err := validateAnalysisFlags(final); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if flags.webMode {
		if err := handleWebMode(ctx, cfg, final, flags, fs, library, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if flags.inputFile == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fmt.Fprintln(stderr, "Run 'lease-scan --help' for usage")
		return 1
	}

	return scan(ctx, cfg, final, flags, library, stdout, stderr)
}

func validateAnalysisFlags(final *finalConfiguration) error {
	if _, ok := formatters.Get(final.format); !ok {
		return fmt.Errorf("unsupported format '%s'. Available formats: %s", final.format, strings.Join(formatters.List(), ", "))
	}
	if err := config.ValidateSeverityList(final.severity); err != nil {
		return err
	}
	if final.analysis.MinScore < 0 {
		return fmt.Errorf("--min-score must not be negative")
	}
	if final.analysis.Workers < 0 {
		return fmt.Errorf("--workers must not be negative")
	}
	return nil
}

// effectiveConfig copies cfg with the resolved analysis settings so the
// analyzer factory sees flag and profile overrides
func effectiveConfig(cfg *config.Config, final *finalConfiguration) *config.Config {
	effective := *cfg
	effective.Analysis = final.analysis
	return &effective
}

func newSuppressionManager(final *finalConfiguration, generate bool) *suppressions.SuppressionManager {
	if !final.useSuppressions && !generate {
		return nil
	}
	manager := suppressions.NewSuppressionManager(final.suppressionFile)
	manager.SetEnabled(final.useSuppressions)
	return manager
}

func scan(ctx context.Context, cfg *config.Config, final *finalConfiguration, flags *cliFlags,
	library *rules.Library, stdout, stderr io.Writer) int {
	observer := core.BuildObserver(cfg, final.debug, stderr)
	manager := newSuppressionManager(final, flags.generateSuppressions)

	scanResult, err := core.ScanFile(ctx, core.ScanConfig{
		FilePath:           flags.inputFile,
		Jurisdiction:       final.jurisdiction,
		Debug:              final.debug,
		IncludeText:        final.showText,
		Config:             effectiveConfig(cfg, final),
		Library:            library,
		Observer:           observer,
		SuppressionManager: manager,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, preprocessors.ErrUnsupportedType):
			fmt.Fprintln(stderr, "Troubleshooting: lease-scan reads PDF and plain text files (.pdf, .txt, .text, .md)")
		case errors.Is(err, preprocessors.ErrNoText):
			fmt.Fprintln(stderr, "Troubleshooting: scanned PDFs without a text layer need OCR before analysis")
		}
		return 1
	}
	result := scanResult.Result

	if n := len(result.Suppressed); n > 0 {
		fmt.Fprintf(stderr, "Suppressed %d flags based on suppression rules\n", n)
	}

	if flags.generateSuppressions {
		generateSuppressions(manager, result, stderr)
	}

	output, err := formatters.Export(final.format, result, formatters.FormatterOptions{
		SeverityLevel: core.ParseSeverityLevels(final.severity),
		Verbose:       final.verbose,
		NoColor:       final.noColor,
		ShowText:      final.showText,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error formatting results: %v\n", err)
		return 1
	}

	if flags.outputFile != "" {
		if err := writeOutputFile(flags.outputFile, output); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stdout, output)
	return 0
}

func generateSuppressions(manager *suppressions.SuppressionManager, result *detector.AnalysisResult, stderr io.Writer) {
	all := append([]detector.RiskFlag(nil), result.Flags...)
	for _, s := range result.Suppressed {
		all = append(all, s.Flag)
	}
	if len(all) == 0 {
		fmt.Fprintln(stderr, "No flags to generate suppression rules for")
		return
	}

	reason := "Auto-generated suppression rule (disabled by default)"
	if err := manager.GenerateSuppressionRules(all, reason, false); err != nil {
		fmt.Fprintf(stderr, "Warning: Failed to generate suppression rules: %v\n", err)
		return
	}
	fmt.Fprintf(stderr, "Updated suppression rules in %s (new rules are disabled)\n", manager.GetConfigPath())
	fmt.Fprintln(stderr, "Edit the suppression file to enable specific rules by setting 'enabled: true'")
}

// writeOutputFile writes results owner-only, since they may quote the lease
func writeOutputFile(path, content string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed in output path: %s", path)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid output file path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0600); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}

// handleWebMode rejects flags that make no sense for a server and blocks
// serving until ctx is cancelled
func handleWebMode(ctx context.Context, cfg *config.Config, final *finalConfiguration, flags *cliFlags,
	fs *flag.FlagSet, library *rules.Library, stderr io.Writer) error {
	if flags.inputFile != "" {
		return fmt.Errorf("--web flag cannot be used with --file flag\n" +
			"Web mode starts a server; POST the lease to /analyze instead")
	}
	var incompatible []string
	for _, name := range []string{"output", "format", "generate-suppressions", "show-text"} {
		if isFlagSet(fs, name) {
			incompatible = append(incompatible, "--"+name)
		}
	}
	if len(incompatible) > 0 {
		return fmt.Errorf("%s cannot be used with --web\n"+
			"Troubleshooting: choose the format per request with /analyze?format=", strings.Join(incompatible, ", "))
	}

	effective := effectiveConfig(cfg, final)
	if flags.webPort != "" {
		effective.Web.Port = flags.webPort
	}
	if err := config.ValidateConfig(effective); err != nil {
		return err
	}

	observer := core.BuildObserver(effective, final.debug, stderr)
	manager := newSuppressionManager(final, false)
	analyzer := core.BuildAnalyzer(effective, nil, library, observer, manager)

	server, err := web.NewServer(effective, analyzer, observer)
	if err != nil {
		return err
	}
	return server.Start(ctx)
}
