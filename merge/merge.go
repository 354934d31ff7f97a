// Package merge combines locale fragments into one locale data set.
//
// For every locale, keys override shallowly and from left to right: a later
// fragment replaces single messages, never a whole locale block.
package merge

import (
	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/utils"
)

// Merge folds fragments, in order, into a new locale data set.
func Merge(fragments []models.Fragment) models.LocaleDataSet {
	set := models.LocaleDataSet{}
	for _, fragment := range fragments {
		mergeData(set, fragment)
	}
	return set
}

// Combine merges already merged sets, later sets winning per key.
func Combine(sets ...models.LocaleDataSet) models.LocaleDataSet {
	fragments := make([]models.Fragment, 0, len(sets))
	for _, set := range sets {
		fragments = append(fragments, models.Fragment{Data: set})
	}
	return Merge(fragments)
}

// mergeData merges nested objects as locale blocks. Scalars at the top level
// belong to the fragment locale, and are merged after the blocks of the same
// fragment. Blocks are merged in document order.
func mergeData(set models.LocaleDataSet, fragment models.Fragment) {
	entries, ok := models.OrderedEntries(fragment.Data, fragment.Keys)
	if !ok {
		return
	}
	locale := fragment.Locale
	pairs := models.LocaleData{}
	for _, entry := range entries {
		if !models.IsObject(entry.Value) {
			pairs[entry.Key] = entry.Value
			continue
		}
		mergeLocaleObject(set, entry.Key, entry.Value)
	}
	if locale != "" && len(pairs) > 0 {
		mergeLocaleData(set, locale, pairs)
	}
}

// mergeLocaleObject replaces object messages with an empty string.
func mergeLocaleObject(set models.LocaleDataSet, locale string, block any) {
	entries, _ := models.Entries(block)
	data := make(models.LocaleData, len(entries))
	for _, entry := range entries {
		if models.IsObject(entry.Value) {
			data[entry.Key] = ""
		} else {
			data[entry.Key] = entry.Value
		}
	}
	mergeLocaleData(set, locale, data)
}

// mergeLocaleData drops data whose locale code does not canonicalize.
func mergeLocaleData(set models.LocaleDataSet, locale string, data models.LocaleData) {
	code, _, _ := utils.NormalizeLocale(locale)
	if code == "" {
		return
	}
	target, ok := set[code]
	if !ok {
		target = models.LocaleData{}
		set[code] = target
	}
	for k, v := range data {
		target[k] = v
	}
}
