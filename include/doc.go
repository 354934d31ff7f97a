// Package include expands #include directives in locale sources into an ordered file list.
//
// Directives live in YAML comments, one per line:
//
//	#include "./common"    relative to the including file
//	#include 'shared/en'   relative to the including file
//	#include base          relative to the including file
//	#include <pkg/en>      relative to the module root (node_modules)
//
// Paths inside angle brackets may not start with "./", "../" or "/". A path
// without a recognized extension is probed for .yml then .yaml and a directory
// for index.yml then index.yaml. The resolved list places every file after the
// files it includes, with the entry file last.
package include
