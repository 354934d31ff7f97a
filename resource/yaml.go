package resource

import (
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// decodeYAML loads the first document of source into plain Go values:
// map[string]any, []any, string, int, float64, bool and nil.
// An empty document decodes to an empty mapping. When the document is a mapping
// its keys are also returned in document order.
func decodeYAML(source []byte) (any, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return map[string]any{}, nil, nil
	}
	if root := doc.Content[0]; root.Kind == yaml.MappingNode {
		m, keys := convertOrderedMapping(root)
		return m, keys, nil
	}
	return convertNode(&doc), nil, nil
}

func convertNode(n *yaml.Node) any {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return convertNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil
		}
		return convertNode(n.Alias)
	case yaml.MappingNode:
		return convertMapping(n)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			list = append(list, convertNode(item))
		}
		return list
	case yaml.ScalarNode:
		return convertScalar(n)
	}
	return nil
}

func convertMapping(n *yaml.Node) map[string]any {
	m, _ := convertOrderedMapping(n)
	return m
}

// convertOrderedMapping keeps the last value of duplicated keys, at the position
// of their first occurrence. Keys brought in by a "<<" merge never replace keys
// written explicitly.
func convertOrderedMapping(n *yaml.Node) (map[string]any, []string) {
	m := make(map[string]any, len(n.Content)/2)
	explicit := make(map[string]bool, len(n.Content)/2)
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			keys = append(keys, mergeInto(m, explicit, value)...)
			continue
		}
		name := keyString(key)
		if _, seen := m[name]; !seen {
			keys = append(keys, name)
		}
		m[name] = convertNode(value)
		explicit[name] = true
	}
	return m, keys
}

// mergeInto returns the keys it added to m.
func mergeInto(m map[string]any, explicit map[string]bool, value *yaml.Node) []string {
	var sources []any
	switch resolved := convertNode(value).(type) {
	case map[string]any:
		sources = []any{resolved}
	case []any:
		sources = resolved
	}
	var added []string
	for _, source := range sources {
		mapping, ok := source.(map[string]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(mapping))
		for k := range mapping {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if explicit[k] {
				continue
			}
			if _, exists := m[k]; !exists {
				m[k] = mapping[k]
				added = append(added, k)
			}
		}
	}
	return added
}

func keyString(n *yaml.Node) string {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return keyString(n.Alias)
	}
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!null" {
			return "null"
		}
		return n.Value
	}
	var out string
	if b, err := yaml.Marshal(n); err == nil {
		out = string(b)
	}
	return out
}

// convertScalar resolves null, bool, int and float scalars; everything else,
// timestamps and binary included, stays as its literal text.
func convertScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int
		if err := n.Decode(&i); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}
	return n.Value
}
