// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrInvalidDocument is returned when a rule document is missing required fields
var ErrInvalidDocument = errors.New("invalid rule document")

// Rule is one jurisdiction-specific legal concern with its matching metadata
type Rule struct {
	ID                string   `yaml:"id" json:"id"`
	Title             string   `yaml:"title" json:"title"`
	Text              string   `yaml:"text" json:"text"`
	Keywords          []string `yaml:"keywords" json:"keywords"`
	ViolationExamples []string `yaml:"violation_examples" json:"violationExamples"`

	// Jurisdiction is copied from the owning document when the library is loaded
	Jurisdiction string `yaml:"-" json:"jurisdiction"`
}

// Document is the on-disk form of one jurisdiction's rule set
type Document struct {
	Jurisdiction string `yaml:"jurisdiction"`
	Title        string `yaml:"title"`
	Sections     []Rule `yaml:"sections"`
}

// Library is an immutable set of rule documents
type Library struct {
	documents []Document
}

var (
	defaultOnce    sync.Once
	defaultLibrary *Library
	defaultErr     error
)

// Default returns the library built from the embedded rule documents.
// It is loaded once per process.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultLibrary, defaultErr = Load(sub)
	})
	return defaultLibrary, defaultErr
}

// MustDefault is Default for program startup; a broken embedded library is fatal.
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(fmt.Sprintf("failed to load rule library: %v", err))
	}
	return lib
}

// Load reads every *.yaml document at the root of fsys in file name order
func Load(fsys fs.FS) (*Library, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list rule documents: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no rule documents found", ErrInvalidDocument)
	}
	sort.Strings(names)

	lib := &Library{}
	seen := make(map[string]string)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		doc, err := ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		key := strings.ToLower(doc.Jurisdiction)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: jurisdiction %q defined in both %s and %s", ErrInvalidDocument, doc.Jurisdiction, prev, name)
		}
		seen[key] = name
		lib.documents = append(lib.documents, doc)
	}
	return lib, nil
}

// ParseDocument decodes and validates a single rule document
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validateDocument(&doc); err != nil {
		return Document{}, err
	}
	for i := range doc.Sections {
		doc.Sections[i].Jurisdiction = doc.Jurisdiction
	}
	return doc, nil
}

func validateDocument(doc *Document) error {
	if strings.TrimSpace(doc.Jurisdiction) == "" {
		return fmt.Errorf("%w: missing jurisdiction", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return fmt.Errorf("%w: %s: missing title", ErrInvalidDocument, doc.Jurisdiction)
	}
	if len(doc.Sections) == 0 {
		return fmt.Errorf("%w: %s: no sections", ErrInvalidDocument, doc.Jurisdiction)
	}

	ids := make(map[string]bool, len(doc.Sections))
	for i, section := range doc.Sections {
		switch {
		case strings.TrimSpace(section.ID) == "":
			return fmt.Errorf("%w: %s: section %d has no id", ErrInvalidDocument, doc.Jurisdiction, i)
		case strings.TrimSpace(section.Title) == "":
			return fmt.Errorf("%w: %s/%s: missing title", ErrInvalidDocument, doc.Jurisdiction, section.ID)
		case strings.TrimSpace(section.Text) == "":
			return fmt.Errorf("%w: %s/%s: missing text", ErrInvalidDocument, doc.Jurisdiction, section.ID)
		case len(section.Keywords) == 0 && len(section.ViolationExamples) == 0:
			return fmt.Errorf("%w: %s/%s: needs keywords or violation examples", ErrInvalidDocument, doc.Jurisdiction, section.ID)
		}
		for _, kw := range section.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: %s/%s: empty keyword", ErrInvalidDocument, doc.Jurisdiction, section.ID)
			}
		}
		for _, ex := range section.ViolationExamples {
			if strings.TrimSpace(ex) == "" {
				return fmt.Errorf("%w: %s/%s: empty violation example", ErrInvalidDocument, doc.Jurisdiction, section.ID)
			}
		}
		if ids[section.ID] {
			return fmt.Errorf("%w: %s: duplicate section id %q", ErrInvalidDocument, doc.Jurisdiction, section.ID)
		}
		ids[section.ID] = true
	}
	return nil
}

// Documents returns a copy of the loaded documents in load order
func (l *Library) Documents() []Document {
	out := make([]Document, len(l.documents))
	for i, doc := range l.documents {
		out[i] = Document{
			Jurisdiction: doc.Jurisdiction,
			Title:        doc.Title,
			Sections:     append([]Rule(nil), doc.Sections...),
		}
	}
	return out
}

// Jurisdictions lists the jurisdiction of each loaded document
func (l *Library) Jurisdictions() []string {
	out := make([]string, 0, len(l.documents))
	for _, doc := range l.documents {
		out = append(out, doc.Jurisdiction)
	}
	return out
}

// All returns every rule of every document
func (l *Library) All() []Rule {
	var out []Rule
	for _, doc := range l.documents {
		out = append(out, doc.Sections...)
	}
	return out
}

// ForJurisdiction returns the rules that apply to jurisdiction.
// An empty jurisdiction returns all rules; an unknown one returns none.
func (l *Library) ForJurisdiction(jurisdiction string) []Rule {
	if strings.TrimSpace(jurisdiction) == "" {
		return l.All()
	}
	doc, ok := l.documentFor(jurisdiction)
	if !ok {
		return nil
	}
	return append([]Rule(nil), doc.Sections...)
}

// DocumentFor reports which document backs the given jurisdiction name
func (l *Library) DocumentFor(jurisdiction string) (string, bool) {
	doc, ok := l.documentFor(jurisdiction)
	if !ok {
		return "", false
	}
	return doc.Jurisdiction, true
}

// ByID finds a rule by id, optionally restricted to one jurisdiction.
// Without a jurisdiction the first document defining the id wins.
func (l *Library) ByID(id, jurisdiction string) (Rule, bool) {
	for _, rule := range l.ForJurisdiction(jurisdiction) {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

func (l *Library) documentFor(jurisdiction string) (*Document, bool) {
	key := normalizeName(jurisdiction)

	if doc := l.find(key); doc != nil {
		return doc, true
	}
	if target, ok := placeAliases[key]; ok {
		if doc := l.find(target); doc != nil {
			return doc, true
		}
	}

	// "City, State": try the city first, then the state part on its own
	city, state, found := strings.Cut(key, ",")
	if !found {
		return nil, false
	}
	city, state = strings.TrimSpace(city), strings.TrimSpace(state)
	if doc := l.find(city); doc != nil {
		return doc, true
	}
	if target, ok := placeAliases[city]; ok {
		if doc := l.find(target); doc != nil {
			return doc, true
		}
	}
	if target, ok := stateAliases[state]; ok {
		if doc := l.find(target); doc != nil {
			return doc, true
		}
	}
	return nil, false
}

func (l *Library) find(lowerName string) *Document {
	for i := range l.documents {
		if strings.ToLower(l.documents[i].Jurisdiction) == lowerName {
			return &l.documents[i]
		}
	}
	return nil
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
