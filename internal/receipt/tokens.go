package receipt

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// tokenSet answers "does this upper-cased line contain any of these tokens".
// The automaton finds candidate tokens in one pass; in whole-word mode each
// candidate is then checked for letter boundaries on both sides.
type tokenSet struct {
	tokens    []string
	wholeWord bool

	mu      sync.Mutex // Matcher.Match mutates internal state
	matcher *ahocorasick.Matcher
}

func newTokenSet(wholeWord bool, tokens ...string) *tokenSet {
	up := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			up = append(up, t)
		}
	}
	ts := &tokenSet{tokens: up, wholeWord: wholeWord}
	if len(up) > 0 {
		ts.matcher = ahocorasick.NewStringMatcher(up)
	}
	return ts
}

func (t *tokenSet) containsAny(upper string) bool {
	if t == nil || t.matcher == nil || upper == "" {
		return false
	}
	t.mu.Lock()
	hits := t.matcher.Match([]byte(upper))
	t.mu.Unlock()
	if !t.wholeWord {
		return len(hits) > 0
	}
	for _, idx := range hits {
		if containsWord(upper, t.tokens[idx]) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], word)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(word)
		if !isLetterAt(s, start-1) && !isLetterAt(s, end) {
			return true
		}
		off = start + 1
	}
	return false
}

func isLetterAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
