package models

// LocaleData maps message keys to scalar values (string, number, bool or nil).
type LocaleData map[string]any

// LocaleDataSet maps canonical locale codes to their messages.
type LocaleDataSet map[string]LocaleData

// Fragment is one parsed, not yet merged unit of locale content.
// Data is the decoded document; Locale is the code implied by the file name and
// only applies to plain key/value pairs at the top level.
type Fragment struct {
	Data   any
	// Keys lists the top-level keys of Data in document order. Keys it does
	// not name are visited after it, in key order.
	Keys   []string
	Locale string
}

// Locales returns the locale codes of the set in sorted order.
func (s LocaleDataSet) Locales() []string {
	return sortedKeys(s)
}
