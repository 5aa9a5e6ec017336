// Package matcher resolves free text typed at the till ("2 cola", "برجر")
// to a menu item by keyword overlap.
package matcher

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ghanu-pos/api/internal/parser"
)

// MatchStatus represents the status of a match operation
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Item is a menu entry. Keywords are secondary terms such as the category
// name or translations; they score below words of the item name.
type Item struct {
	Category string   `json:"category"`
	Name     string   `json:"name"`
	Keywords []string `json:"-"`
}

// MatchResult contains the result of a matching operation
type MatchResult struct {
	Status     MatchStatus
	Item       *Item  // when Matched
	Candidates []Item // when Ambiguous
	Quantity   int    // leading count in the query, 1 when absent
}

// Matcher performs keyword-based item matching
type Matcher struct {
	items    []Item
	names    []string   // normalized full names
	keywords [][]string // name tokens first, then extra keywords
	nameLen  []int      // number of name tokens in keywords
}

const (
	nameWeight    = 3
	variantWeight = 5
	regularWeight = 1
)

// Size words must be present on the candidate when present in the query.
var variantKeywords = map[string]bool{
	"large": true, "small": true, "medium": true,
	"كبير": true, "صغير": true, "وسط": true,
}

// New creates a new Matcher with pre-tokenized keywords
func New(items []Item) *Matcher {
	m := &Matcher{
		items:    items,
		names:    make([]string, len(items)),
		keywords: make([][]string, len(items)),
		nameLen:  make([]int, len(items)),
	}

	for i, item := range items {
		m.names[i] = normalize(item.Name)
		kws := tokenize(m.names[i])
		m.nameLen[i] = len(kws)
		for _, k := range item.Keywords {
			if n := normalize(k); n != "" {
				kws = append(kws, tokenize(n)...)
			}
		}
		m.keywords[i] = kws
	}

	return m
}

// Match finds the best menu item for text. An exact name match always wins.
func (m *Matcher) Match(text string) MatchResult {
	normalized := normalize(parser.NormalizeDigits(text))
	qty, descTokens := extractQuantity(tokenize(normalized))
	desc := strings.Join(descTokens, " ")

	if desc == "" {
		return MatchResult{Status: Unmatched, Quantity: qty}
	}

	var exact []Item
	for i, name := range m.names {
		if name == desc {
			exact = append(exact, m.items[i])
		}
	}
	if len(exact) == 1 {
		return MatchResult{Status: Matched, Item: &exact[0], Quantity: qty}
	}
	if len(exact) > 1 {
		return MatchResult{Status: Ambiguous, Candidates: exact, Quantity: qty}
	}

	inputTokens := make(map[string]bool, len(descTokens))
	inputVariants := make(map[string]bool)
	for _, tok := range descTokens {
		inputTokens[tok] = true
		if variantKeywords[tok] {
			inputVariants[tok] = true
		}
	}

	type scoredItem struct {
		item  Item
		score int
	}
	var scored []scoredItem

	for i, item := range m.items {
		keywords := m.keywords[i]

		if !containsAll(keywords, inputVariants) {
			continue
		}

		score, base := 0, 0
		for j, kw := range keywords {
			if !inputTokens[kw] {
				continue
			}
			switch {
			case variantKeywords[kw]:
				score += variantWeight
			case j < m.nameLen[i]:
				score += nameWeight
				base++
			default:
				score += regularWeight
				base++
			}
		}

		// A size word alone never selects an item.
		if base > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
		}
	}

	if len(scored) == 0 {
		return MatchResult{Status: Unmatched, Quantity: qty}
	}

	maxScore := 0
	for _, s := range scored {
		if s.score > maxScore {
			maxScore = s.score
		}
	}

	var top []Item
	for _, s := range scored {
		if s.score == maxScore {
			top = append(top, s.item)
		}
	}

	if len(top) == 1 {
		return MatchResult{Status: Matched, Item: &top[0], Quantity: qty}
	}
	return MatchResult{Status: Ambiguous, Candidates: top, Quantity: qty}
}

func containsAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		found := false
		for _, kw := range keywords {
			if kw == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalize converts a string to lowercase and replaces non-alphanumeric chars with spaces
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

// extractQuantity pulls a count token ("2", "2x", "x2") out of the query.
func extractQuantity(tokens []string) (int, []string) {
	qty := 1
	rest := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if n, ok := parseCount(tok); ok {
			qty = n
			continue
		}
		rest = append(rest, tok)
	}

	return qty, rest
}

func parseCount(tok string) (int, bool) {
	tok = strings.TrimSuffix(strings.TrimPrefix(tok, "x"), "x")
	n, err := strconv.Atoi(tok)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
