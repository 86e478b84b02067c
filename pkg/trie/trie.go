// Package trie provides a prefix tree over strings, used for fast
// prefix membership tests on large word lists.
package trie

// Trie is a rune-keyed prefix tree. The zero value is not usable; call
// New.
type Trie struct {
	children map[rune]*Trie
	leaf     bool
	size     int
}

// New creates an empty trie, optionally seeded with strings.
func New(strings ...string) *Trie {
	t := &Trie{children: make(map[rune]*Trie)}
	for _, s := range strings {
		t.Insert(s)
	}
	return t
}

// Insert adds a string. Inserting a present string is a no-op.
func (t *Trie) Insert(s string) {
	node := t
	for _, r := range s {
		child, ok := node.children[r]
		if !ok {
			child = &Trie{children: make(map[rune]*Trie)}
			node.children[r] = child
		}
		node = child
	}
	if !node.leaf {
		node.leaf = true
		t.size++
	}
}

// Contains reports whether the exact string was inserted.
func (t *Trie) Contains(s string) bool {
	node := t.walk(s)
	return node != nil && node.leaf
}

// HasPrefix reports whether any inserted string starts with p.
func (t *Trie) HasPrefix(p string) bool {
	return t.walk(p) != nil
}

// Len returns the number of distinct strings inserted.
func (t *Trie) Len() int { return t.size }

// walk descends along s, returning nil when the path breaks off.
func (t *Trie) walk(s string) *Trie {
	node := t
	for _, r := range s {
		child, ok := node.children[r]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}
