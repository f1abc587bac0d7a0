// Package terms loads the union-name term list used by the content filter.
package terms

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultExcluded are terms that collide with ordinary English words.
var DefaultExcluded = []string{"pass", "cope", "smart"}

// List is an ordered, de-duplicated set of cleaned terms. It is read-only
// after construction.
type List struct {
	terms []string
}

// New builds a List from raw terms: each is cleaned with Clean, blanks and
// excluded terms are dropped, and duplicates keep their first position.
func New(raw []string, excluded []string) *List {
	skip := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		skip[Clean(e)] = true
	}

	seen := make(map[string]bool, len(raw))
	l := &List{terms: make([]string, 0, len(raw))}
	for _, r := range raw {
		t := Clean(r)
		if t == "" || skip[t] || seen[t] {
			continue
		}
		seen[t] = true
		l.terms = append(l.terms, t)
	}
	return l
}

// Load reads a newline-delimited term file.
func Load(path string, excluded []string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open term list: %w", err)
	}
	defer f.Close()
	return Read(f, excluded)
}

// Read reads newline-delimited terms from r.
func Read(r io.Reader, excluded []string) (*List, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw = append(raw, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read term list: %w", err)
	}
	return New(raw, excluded), nil
}

// Terms returns a copy of the terms in load order.
func (l *List) Terms() []string {
	out := make([]string, len(l.terms))
	copy(out, l.terms)
	return out
}

// Len returns the number of terms.
func (l *List) Len() int {
	return len(l.terms)
}

// Contains reports whether the cleaned form of term is in the list.
func (l *List) Contains(term string) bool {
	t := Clean(term)
	for _, x := range l.terms {
		if x == t {
			return true
		}
	}
	return false
}

// CleanText lowercases s and replaces every byte outside [a-z0-9] with a
// space. The length is preserved, so adjacent words never merge.
func CleanText(s string) string {
	b := []byte(strings.ToLower(s))
	for i, c := range b {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			b[i] = ' '
		}
	}
	return string(b)
}

// Clean is CleanText with surrounding whitespace removed, the form terms are
// stored in.
func Clean(s string) string {
	return strings.TrimSpace(CleanText(s))
}
