// Package loader turns locale source files into JavaScript modules.
//
// A build runs in two phases. ResolveIncludes expands the #include directives
// of an entry file into the ordered list of files to merge. GenerateModule
// parses and merges those files, then emits either inline code exporting the
// merged data set or, when an extractor is configured, code loading the data
// from a split locale chunk. Compile runs both phases.
package loader
