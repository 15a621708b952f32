// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/anvil/lib/indicator"
)

var initMatcher = sync.OnceFunc(func() { algo.Init("default") })

// resolveIndicator maps a possibly abbreviated indicator name to the
// best-scoring wire name. Exact names always win.
func resolveIndicator(query string) (string, error) {
	names := indicator.Names()
	if _, ok := names[query]; ok {
		return query, nil
	}

	candidates := make([]string, 0, len(names))
	for name := range names {
		candidates = append(candidates, name)
	}
	slices.Sort(candidates)

	matches := rankFuzzy(query, candidates)
	if len(matches) == 0 {
		return "", fmt.Errorf("no indicator matches %q (known: %s)", query, strings.Join(candidates, ", "))
	}
	if len(matches) > 1 && matches[0].score == matches[1].score {
		return "", fmt.Errorf("%q is ambiguous: %s or %s", query, matches[0].text, matches[1].text)
	}
	return matches[0].text, nil
}

type fuzzyMatch struct {
	text  string
	score int
}

// rankFuzzy returns the candidates matching query, best first. Ties
// keep candidate order.
func rankFuzzy(query string, candidates []string) []fuzzyMatch {
	initMatcher()
	pattern := []rune(strings.ToLower(query))
	slab := util.MakeSlab(100*1024, 2048)

	var matches []fuzzyMatch
	for _, candidate := range candidates {
		chars := util.ToChars([]byte(candidate))
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		if result.Start < 0 {
			continue
		}
		matches = append(matches, fuzzyMatch{text: candidate, score: result.Score})
	}
	slices.SortStableFunc(matches, func(a, b fuzzyMatch) int {
		return b.score - a.score
	})
	return matches
}
