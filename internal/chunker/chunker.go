// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxSize is the target upper bound of a chunk in bytes
	DefaultMaxSize = 500
	// DefaultOverlap controls how many trailing words seed the next chunk (overlap/10)
	DefaultOverlap = 100
	// MinChunkLength drops fragments too short to carry a clause
	MinChunkLength = 20
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceBreak  = regexp.MustCompile(`[.!?]+\s+`)
)

// Chunk splits text into paragraph and sentence chunks of at most maxSize
// bytes, then appends sliding windows over adjacent pairs so a clause that
// straddles a boundary is still seen whole. Output is in document order with
// case-insensitive duplicates removed.
func Chunk(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}

	base := baseChunks(text, maxSize, overlap)
	all := append([]string(nil), base...)
	all = append(all, slidingWindows(base, maxSize)...)

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, c := range all {
		key := strings.ToLower(strings.TrimSpace(c))
		if seen[key] {
			continue
		}
		seen[key] = true
		if len(c) < MinChunkLength {
			continue
		}
		out = append(out, c)
	}
	return out
}

func baseChunks(text string, maxSize, overlap int) []string {
	var chunks []string
	carry := overlap / 10

	for _, paragraph := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		if len(paragraph) <= maxSize {
			chunks = append(chunks, strings.TrimSpace(paragraph))
			continue
		}

		current := ""
		for _, sentence := range sentenceBreak.Split(paragraph, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			if len(current)+len(sentence) <= maxSize {
				if current != "" {
					current += " "
				}
				current += sentence
				continue
			}

			tail := ""
			if current != "" {
				chunks = append(chunks, current)
				tail = lastWords(current, carry)
			}
			if tail != "" {
				current = tail + " " + sentence
			} else {
				current = sentence
			}
		}
		if current != "" {
			chunks = append(chunks, current)
		}
	}
	return chunks
}

func slidingWindows(base []string, maxSize int) []string {
	limit := maxSize + maxSize/2
	var windows []string
	for i := 0; i+1 < len(base); i++ {
		combined := base[i] + " " + base[i+1]
		if len(combined) <= limit {
			windows = append(windows, truncate(combined, maxSize))
		}
	}
	return windows
}

func lastWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
