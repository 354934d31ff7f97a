package resource

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/utils"
)

// Result is the parsed content of one locale source file.
type Result struct {
	// Locale is the file name without its extension.
	Locale string
	// Data is the decoded document. It is nil when the file contributes no content.
	Data     any
	// Keys lists the top-level keys of Data in document order.
	Keys     []string
	Warnings []models.Warning
}

// Fragment returns the result as an input for merging.
func (r *Result) Fragment() models.Fragment {
	return models.Fragment{Data: r.Data, Keys: r.Keys, Locale: r.Locale}
}

// Parser parses locale source files. Root is the directory paths are printed relative to.
type Parser struct {
	Root string
}

// NewParser creates a parser printing paths relative to root.
func NewParser(root string) *Parser {
	return &Parser{Root: root}
}

// Parse parses a file relative to the working directory.
func Parse(source []byte, file string) *Result {
	cwd, _ := utils.RealCwd()
	return NewParser(cwd).Parse(source, file)
}

// Parse decodes source according to the extension of file and validates its shape.
// Files other than .yml and .yaml contribute an empty mapping.
func (p *Parser) Parse(source []byte, file string) *Result {
	result := &Result{Locale: LocaleName(file)}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yml", ".yaml":
		data, keys, err := decodeYAML(source)
		if err != nil {
			result.Warnings = append(result.Warnings, p.warning(file, fmt.Sprintf("%v: %s", err, p.path(file))))
			return result
		}
		result.Data = data
		result.Keys = keys
	default:
		result.Data = map[string]any{}
	}

	result.Warnings = append(result.Warnings, p.check(result.Data, result.Keys, file)...)
	if _, ok := result.Data.(map[string]any); !ok {
		result.Data = nil
		result.Keys = nil
	}
	return result
}

// LocaleName returns the base name of file without its last extension.
func LocaleName(file string) string {
	base := filepath.Base(file)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// check reports non-object documents, object messages and files mixing both shapes.
func (p *Parser) check(data any, keys []string, file string) []models.Warning {
	if data == nil {
		return nil
	}
	entries, ok := models.OrderedEntries(data, keys)
	if _, isList := data.([]any); !ok || isList {
		return []models.Warning{p.warning(file, fmt.Sprintf("Localized data must be defined as an object: %s", p.path(file)))}
	}

	var warnings []models.Warning
	var containsPairs, containsObjects bool
	for _, entry := range entries {
		messages, isObject := models.Entries(entry.Value)
		if !isObject {
			containsPairs = true
			continue
		}
		containsObjects = true
		for _, message := range messages {
			if models.IsObject(message.Value) {
				warnings = append(warnings, p.warning(file, fmt.Sprintf(
					"Localized message content cannot be an object: [%s: %s] %s", entry.Key, message.Key, p.path(file))))
			}
		}
	}
	if containsObjects && containsPairs {
		warnings = append(warnings, p.warning(file, fmt.Sprintf(
			"It is better not to mix objects and common key value pairs in the same file to define localized message content: %s",
			p.path(file))))
	}
	return warnings
}

func (p *Parser) warning(file, message string) models.Warning {
	return models.Warning{Source: models.SourceResource, File: file, Message: message}
}

func (p *Parser) path(file string) string {
	return utils.NormalizePath(file, p.Root)
}
