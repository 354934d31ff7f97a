package models

import (
	"sort"
	"strconv"
)

// Entry is one key/value pair of a decoded object.
type Entry struct {
	Key   string
	Value any
}

// IsObject reports whether v is a mapping or a sequence.
func IsObject(v any) bool {
	_, ok := Entries(v)
	return ok
}

// Entries lists the pairs of a mapping in key order, or of a sequence in index order.
// The second result is false when v is a scalar or nil.
func Entries(v any) ([]Entry, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return sortedEntries(obj), true
	case LocaleData:
		return sortedEntries(obj), true
	case LocaleDataSet:
		entries := make([]Entry, 0, len(obj))
		for _, k := range sortedKeys(obj) {
			entries = append(entries, Entry{Key: k, Value: obj[k]})
		}
		return entries, true
	case []any:
		entries := make([]Entry, 0, len(obj))
		for i, item := range obj {
			entries = append(entries, Entry{Key: strconv.Itoa(i), Value: item})
		}
		return entries, true
	}
	return nil, false
}

// OrderedEntries lists the pairs of v like Entries, but mapping keys named in
// order come first and in that order.
func OrderedEntries(v any, order []string) ([]Entry, bool) {
	entries, ok := Entries(v)
	if !ok || len(order) == 0 {
		return entries, ok
	}
	rank := make(map[string]int, len(order))
	for i, k := range order {
		if _, seen := rank[k]; !seen {
			rank[k] = i
		}
	}
	position := func(k string) int {
		if i, ok := rank[k]; ok {
			return i
		}
		return len(order)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return position(entries[i].Key) < position(entries[j].Key)
	})
	return entries, true
}

func sortedEntries[M ~map[string]any](m M) []Entry {
	entries := make([]Entry, 0, len(m))
	for _, k := range sortedKeys(m) {
		entries = append(entries, Entry{Key: k, Value: m[k]})
	}
	return entries
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
