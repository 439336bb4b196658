package category

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Matcher assigns a category label to a title/URL pair by substring keyword
// matching against an ordered table.
//
// All keywords are compiled into a single Aho-Corasick automaton, so a text
// is scanned once no matter how many categories the table carries. When
// keywords from several categories hit, the category that appears first in
// the table wins.
type Matcher struct {
	table Table

	mu sync.Mutex // ahocorasick.Matcher keeps per-call state
	ac *ahocorasick.Matcher

	// owners maps an automaton dictionary index to the table indices of
	// every category listing that keyword.
	owners [][]int

	// emptyOwner is the first category holding an empty keyword, which
	// matches any text; -1 when none does.
	emptyOwner int
}

// NewMatcher compiles t. Keywords are matched case-insensitively.
func NewMatcher(t Table) *Matcher {
	m := &Matcher{table: t.Clone(), emptyOwner: -1}

	dict := make([]string, 0)
	index := make(map[string]int)
	for ci, c := range m.table {
		for _, kw := range c.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				if m.emptyOwner < 0 {
					m.emptyOwner = ci
				}
				continue
			}
			di, ok := index[kw]
			if !ok {
				di = len(dict)
				index[kw] = di
				dict = append(dict, kw)
				m.owners = append(m.owners, nil)
			}
			m.owners[di] = append(m.owners[di], ci)
		}
	}

	if len(dict) > 0 {
		m.ac = ahocorasick.NewStringMatcher(dict)
	}
	return m
}

// Match returns the label of the first table category whose keyword occurs
// in the lowercased concatenation of title and url, or Uncategorized.
func (m *Matcher) Match(title, url string) string {
	best := m.emptyOwner

	if m.ac != nil {
		text := strings.ToLower(title + " " + url)

		m.mu.Lock()
		hits := m.ac.Match([]byte(text))
		m.mu.Unlock()

		for _, di := range hits {
			for _, ci := range m.owners[di] {
				if best < 0 || ci < best {
					best = ci
				}
			}
		}
	}

	if best < 0 {
		return Uncategorized
	}
	return m.table[best].Name
}

// Resolve is Match for a record that may already carry a label. A fetch
// outcome sentinel is returned unchanged.
func (m *Matcher) Resolve(current, title, url string) string {
	if IsSticky(current) {
		return current
	}
	return m.Match(title, url)
}
