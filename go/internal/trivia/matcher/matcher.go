// Package matcher decides whether a free-text answer is acceptable for a question.
package matcher

import (
	"strings"
	"unicode/utf8"
)

// minContainedLen is the shortest user answer, in characters, that may match
// by being a substring of the expected answer.
const minContainedLen = 3

// minTokenLen is the length a user token must exceed to take part in
// token-overlap matching. Shorter tokens ("a", "of", "de") are ignored.
const minTokenLen = 2

// Match reports whether userAnswer is an acceptable answer for expected.
// Comparison is case-insensitive and ignores surrounding whitespace.
//
// The checks run in order:
//  1. exact equality
//  2. containment in either direction (user text must be at least 3 chars
//     when it is the contained side)
//  3. token overlap: every user token longer than 2 chars must contain or be
//     contained by some expected token, and at least one such token must exist
func Match(userAnswer, expected string) bool {
	user := normalize(userAnswer)
	want := normalize(expected)
	if user == "" || want == "" {
		return false
	}

	if user == want {
		return true
	}

	if strings.Contains(user, want) {
		return true
	}
	if utf8.RuneCountInString(user) >= minContainedLen && strings.Contains(want, user) {
		return true
	}

	return tokensOverlap(strings.Fields(user), strings.Fields(want))
}

func tokensOverlap(userTokens, wantTokens []string) bool {
	significant := 0
	for _, ut := range userTokens {
		if utf8.RuneCountInString(ut) <= minTokenLen {
			continue
		}
		significant++

		found := false
		for _, wt := range wantTokens {
			if strings.Contains(wt, ut) || strings.Contains(ut, wt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return significant > 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
