package models

// SyntaxError locates an ERROR or missing node of a parsed module, 1-based.
type SyntaxError struct {
	Line   int
	Column int
	Text   string
}

// ModuleReport describes the shape of a generated JavaScript module.
type ModuleReport struct {
	Imports       []string
	Exports       []string
	ModuleExports bool
	Errors        []SyntaxError
}

// HasDefaultExport reports whether the module exports a default value.
func (r *ModuleReport) HasDefaultExport() bool {
	for _, name := range r.Exports {
		if name == "default" {
			return true
		}
	}
	return false
}
