package extractor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/meysamhadeli/localepack/models"
)

// Dictionary keys of an optimized locale chunk.
const (
	dictKeys   = "k"
	dictValues = "v"
)

// optimizeLocale stores the namespaces of one locale as index pairs into shared
// key and value lists:
//
//	{"k": [keys...], "v": [values...], "<namespace>": {"<key index>": <value index>}}
func optimizeLocale(namespaces map[string]models.LocaleData) map[string]any {
	var keys []string
	var values []any
	keyIndex := make(map[string]int)
	valueIndex := make(map[any]int)

	chunk := make(map[string]any, len(namespaces)+2)
	for _, ns := range sortedNamespaces(namespaces) {
		entry := make(map[string]int, len(namespaces[ns]))
		for _, e := range sortedMessages(namespaces[ns]) {
			ki, ok := keyIndex[e.Key]
			if !ok {
				ki = len(keys)
				keyIndex[e.Key] = ki
				keys = append(keys, e.Key)
			}
			vk := valueKey(e.Value)
			vi, ok := valueIndex[vk]
			if !ok {
				vi = len(values)
				valueIndex[vk] = vi
				values = append(values, e.Value)
			}
			entry[strconv.Itoa(ki)] = vi
		}
		chunk[ns] = entry
	}
	if keys == nil {
		keys = []string{}
	}
	if values == nil {
		values = []any{}
	}
	chunk[dictKeys] = keys
	chunk[dictValues] = values
	return chunk
}

// valueKey makes numerically equal values share one dictionary slot.
func valueKey(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case string, bool, float64, nil:
		return v
	}
	b, _ := json.Marshal(v)
	return encodedValue(b)
}

// encodedValue keys values that cannot be map keys by their JSON form.
type encodedValue string

// Decode expands the namespaces of an optimized locale chunk back into plain messages.
// Non-optimized chunks are returned as they are.
func Decode(raw []byte) (map[string]models.LocaleData, error) {
	var chunk map[string]json.RawMessage
	if err := json.Unmarshal(raw, &chunk); err != nil {
		return nil, fmt.Errorf("decode locale chunk: %w", err)
	}

	_, hasKeys := chunk[dictKeys]
	_, hasValues := chunk[dictValues]
	if !hasKeys || !hasValues {
		var plain map[string]models.LocaleData
		if err := json.Unmarshal(raw, &plain); err != nil {
			return nil, fmt.Errorf("decode locale chunk: %w", err)
		}
		return plain, nil
	}

	var keys []string
	var values []any
	if err := json.Unmarshal(chunk[dictKeys], &keys); err != nil {
		return nil, fmt.Errorf("decode locale chunk keys: %w", err)
	}
	if err := json.Unmarshal(chunk[dictValues], &values); err != nil {
		return nil, fmt.Errorf("decode locale chunk values: %w", err)
	}

	decoded := make(map[string]models.LocaleData, len(chunk)-2)
	for ns, body := range chunk {
		if ns == dictKeys || ns == dictValues {
			continue
		}
		var pairs map[string]int
		if err := json.Unmarshal(body, &pairs); err != nil {
			return nil, fmt.Errorf("decode namespace %s: %w", ns, err)
		}
		data := make(models.LocaleData, len(pairs))
		for k, vi := range pairs {
			ki, err := strconv.Atoi(k)
			if err != nil || ki < 0 || ki >= len(keys) || vi < 0 || vi >= len(values) {
				return nil, fmt.Errorf("decode namespace %s: index %s:%d out of range", ns, k, vi)
			}
			data[keys[ki]] = values[vi]
		}
		decoded[ns] = data
	}
	return decoded, nil
}

func sortedNamespaces(namespaces map[string]models.LocaleData) []string {
	names := make([]string, 0, len(namespaces))
	for ns := range namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

func sortedMessages(data models.LocaleData) []models.Entry {
	entries, _ := models.Entries(data)
	return entries
}
