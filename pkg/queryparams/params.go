package queryparams

import (
	"iter"
	"slices"
)

// Params is the raw ordered key → Entry mapping behind a Store.
// Keys keep their first insertion position; overwriting a key does not move
// it. The zero value is not usable; Params are created by New.
type Params struct {
	keys    []string
	entries map[string]Entry
}

func newParams() *Params {
	return &Params{entries: make(map[string]Entry)}
}

// Len returns the number of keys.
func (p *Params) Len() int {
	return len(p.entries)
}

// Lookup returns the entry stored under key.
func (p *Params) Lookup(key string) (Entry, bool) {
	e, ok := p.entries[key]
	return e, ok
}

// Keys returns an iterator over the keys in insertion order. The key list is
// snapshotted when iteration starts, so mutations made while ranging are not
// observed by that range. Every range starts over.
func (p *Params) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range slices.Clone(p.keys) {
			if !yield(k) {
				return
			}
		}
	}
}

// All returns an iterator over key/entry pairs in insertion order with the
// same snapshot semantics as Keys.
func (p *Params) All() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		keys := slices.Clone(p.keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = p.entries[k]
		}
		for i, k := range keys {
			if !yield(k, entries[i]) {
				return
			}
		}
	}
}

// GetAll returns every value stored under key, or an empty slice.
func (p *Params) GetAll(key string) []string {
	e, ok := p.entries[key]
	if !ok {
		return []string{}
	}
	return e.Values()
}

func (p *Params) set(key string, e Entry) {
	if _, ok := p.entries[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.entries[key] = e
}

func (p *Params) delete(key string) bool {
	if _, ok := p.entries[key]; !ok {
		return false
	}
	delete(p.entries, key)
	if i := slices.Index(p.keys, key); i >= 0 {
		p.keys = slices.Delete(p.keys, i, i+1)
	}
	return true
}

func (p *Params) clear() {
	p.keys = nil
	clear(p.entries)
}
