package loader

import "github.com/meysamhadeli/localepack/models"

// ExportKind is how a generated module exposes its value.
type ExportKind string

const (
	// ExportDefault is an ES module default export.
	ExportDefault ExportKind = "default"
	// ExportNamed assigns module.exports.
	ExportNamed ExportKind = "named"
)

// ExportValue is the value a generated module exports, tagged with its export style.
type ExportValue struct {
	Kind  ExportKind
	Value models.LocaleDataSet
}

// Statement returns the code prefix exporting an expression in this style.
func (e ExportValue) Statement() string {
	if e.Kind == ExportDefault {
		return "export default "
	}
	return "module.exports = "
}

// Module is the result of compiling one locale source.
type Module struct {
	Code   string
	Export ExportValue
	// Dependencies are every file whose change invalidates the module, the entry included.
	Dependencies []string
	Warnings     []models.Warning
	// Namespace is set when the data was moved to the locale chunks.
	Namespace string
	Extracted bool
}
