package code_analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/meysamhadeli/localepack/code_analyzer/contracts"
	"github.com/meysamhadeli/localepack/code_analyzer/models"
	"github.com/meysamhadeli/localepack/include"
	"github.com/meysamhadeli/localepack/utils"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// MaxSourceSize is the largest locale source picked up by a scan.
const MaxSourceSize = 1024 * 1024

// moduleQuery captures the module specifiers of a generated module.
const moduleQuery = `
(import_statement source: (string) @import)
(export_statement source: (string) @import)
(call_expression function: (identifier) @callee arguments: (arguments (string) @require))
(assignment_expression left: (member_expression object: (identifier) @object property: (property_identifier) @property))
`

// ErrSyntax is returned by VerifyModule for code that does not parse as JavaScript.
var ErrSyntax = errors.New("generated module has syntax errors")

// SourceAnalyzer scans projects for locale sources and inspects generated modules.
type SourceAnalyzer struct {
	Cwd          string
	cacheManager *CacheManager

	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
}

// NewSourceAnalyzer initializes a new SourceAnalyzer. cacheManager may be nil.
func NewSourceAnalyzer(cwd string, cacheManager *CacheManager) contracts.ISourceAnalyzer {
	return &SourceAnalyzer{
		Cwd:          cwd,
		cacheManager: cacheManager,
	}
}

// FindLocaleSources lists the locale source files below rootDir in lexical order.
func (analyzer *SourceAnalyzer) FindLocaleSources(rootDir string) ([]string, error) {
	if !filepath.IsAbs(rootDir) {
		rootDir = filepath.Join(analyzer.Cwd, rootDir)
	}

	// Ignore patterns are read from the project root, not the scanned directory
	ignorePatterns, err := utils.GetIgnorePatterns(analyzer.Cwd)
	if err != nil {
		return nil, err
	}

	var sources []string
	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relativePath, err := filepath.Rel(analyzer.Cwd, path)
		if err != nil {
			relativePath = path
		}
		relativePath = filepath.ToSlash(relativePath)

		if path != rootDir && utils.IsDefaultIgnored(relativePath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsLocaleSource(path) {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %s, error: %w", relativePath, err)
		}
		if fileInfo.Size() > MaxSourceSize {
			return nil
		}
		if utils.IsIgnored(relativePath, ignorePatterns) {
			return nil
		}

		sources = append(sources, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// IsLocaleSource reports whether path has a locale source extension.
func IsLocaleSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range include.ResolveExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// AnalyzeModule parses code with Tree-sitter and reports its imports, exports and syntax errors.
func (analyzer *SourceAnalyzer) AnalyzeModule(ctx context.Context, code []byte) (*models.ModuleReport, error) {
	if analyzer.cacheManager != nil {
		if report, found := analyzer.cacheManager.GetReportCache(code); found {
			return report, nil
		}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("failed to parse module: %w", err)
	}
	root := tree.RootNode()

	query, err := analyzer.moduleQuery()
	if err != nil {
		return nil, err
	}

	report := &models.ModuleReport{}
	cursor := sitter.NewQueryCursor()
	cursor.Exec(query, root)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		captures := make(map[string]string, len(match.Captures))
		for _, capture := range match.Captures {
			captures[query.CaptureNameForId(capture.Index)] = capture.Node.Content(code)
		}
		switch {
		case captures["import"] != "":
			report.Imports = append(report.Imports, unquote(captures["import"]))
		case captures["callee"] == "require" && captures["require"] != "":
			report.Imports = append(report.Imports, unquote(captures["require"]))
		case captures["object"] == "module" && captures["property"] == "exports":
			report.ModuleExports = true
		}
	}

	report.Exports = exportNames(root, code)
	report.Errors = syntaxErrors(root, code)

	if analyzer.cacheManager != nil {
		analyzer.cacheManager.SetReportCache(code, report)
	}
	return report, nil
}

// VerifyModule returns ErrSyntax, with the first error position, when code does not parse.
func (analyzer *SourceAnalyzer) VerifyModule(ctx context.Context, code []byte) error {
	report, err := analyzer.AnalyzeModule(ctx, code)
	if err != nil {
		return err
	}
	if len(report.Errors) > 0 {
		first := report.Errors[0]
		return fmt.Errorf("%w: %d:%d near %q", ErrSyntax, first.Line, first.Column, first.Text)
	}
	return nil
}

func (analyzer *SourceAnalyzer) moduleQuery() (*sitter.Query, error) {
	analyzer.queryOnce.Do(func() {
		analyzer.query, analyzer.queryErr = sitter.NewQuery([]byte(moduleQuery), javascript.GetLanguage())
		if analyzer.queryErr != nil {
			analyzer.queryErr = fmt.Errorf("failed to compile query: %w", analyzer.queryErr)
		}
	})
	return analyzer.query, analyzer.queryErr
}

// exportNames lists the ES module export names declared at the top level.
func exportNames(root *sitter.Node, code []byte) []string {
	var names []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "export_statement" {
			continue
		}

		isDefault := false
		for j := 0; j < int(node.ChildCount()); j++ {
			if node.Child(j).Type() == "default" {
				isDefault = true
				break
			}
		}
		if isDefault {
			names = append(names, "default")
			continue
		}

		if decl := node.ChildByFieldName("declaration"); decl != nil {
			names = append(names, declarationNames(decl, code)...)
			continue
		}
		for j := 0; j < int(node.NamedChildCount()); j++ {
			clause := node.NamedChild(j)
			if clause.Type() != "export_clause" {
				continue
			}
			for k := 0; k < int(clause.NamedChildCount()); k++ {
				spec := clause.NamedChild(k)
				name := spec.ChildByFieldName("alias")
				if name == nil {
					name = spec.ChildByFieldName("name")
				}
				if name != nil {
					names = append(names, name.Content(code))
				}
			}
		}
	}
	return names
}

func declarationNames(decl *sitter.Node, code []byte) []string {
	if name := decl.ChildByFieldName("name"); name != nil {
		return []string{name.Content(code)}
	}
	var names []string
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		if name := declarator.ChildByFieldName("name"); name != nil {
			names = append(names, name.Content(code))
		}
	}
	return names
}

// syntaxErrors collects the ERROR and missing nodes of the tree in source order.
func syntaxErrors(root *sitter.Node, code []byte) []models.SyntaxError {
	if !root.HasError() {
		return nil
	}
	var errs []models.SyntaxError
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Type() == "ERROR" || node.IsMissing() {
			point := node.StartPoint()
			errs = append(errs, models.SyntaxError{
				Line:   int(point.Row) + 1,
				Column: int(point.Column) + 1,
				Text:   firstLine(node.Content(code)),
			})
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return errs
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	if len(s) > 40 {
		return s[:40]
	}
	return s
}

func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return strings.Trim(s, `"'`)
}
