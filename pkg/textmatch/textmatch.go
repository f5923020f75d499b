// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textmatch provides Unicode-aware, case-insensitive substring matching.
//
// # Usage
//
// Catalog search compares user input against titles and names that may contain
// accents or non-Latin scripts (e.g., "Amélie", "Straße"). Plain [strings.ToLower]
// misses several of those cases, so both sides are NFC-normalized and case-folded
// before comparison.
package textmatch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the canonical comparison form of s.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes "e" + combining acute into "é").
// 2. Applies full Unicode case folding ("ß" → "ss", "Σ" → "σ").
//
// A [cases.Caser] is stateful, so a fresh one is created per call.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Contains reports whether substr occurs within s, ignoring case.
//
// An empty substr matches everything, mirroring [strings.Contains].
func Contains(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}
