// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize canonicalizes account identifiers before they are
// stored or compared.
//
// # Usage
//
// Usernames and emails are unique per account and compared case-insensitively.
// Both registration and login run their input through this package so that
// "Alice", "alice" and "ＡＬＩＣＥ" resolve to the same account.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// lowerTag selects language-neutral casing rules.
var lowerTag = language.Und

// Username converts a username into its stored form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFKC (folds full-width and compatibility characters).
// 3. Lowercases using language-neutral rules.
func Username(s string) string {
	return fold(s)
}

// Email converts an email address into its stored form.
//
// The whole address is lowercased, local part included.
func Email(s string) string {
	return fold(s)
}

// fold applies trim, NFKC and lowercase in that order.
func fold(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	// A Caser carries internal state, so a fresh one is built per call.
	return cases.Lower(lowerTag).String(norm.NFKC.String(trimmed))
}
