package models

// SourceFile is one resolved locale source taking part in a module build.
type SourceFile struct {
	Path    string
	Context string
	Source  string
}
