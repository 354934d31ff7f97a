// Package resource parses one locale source file into a fragment of locale data.
//
// A document is a mapping whose values are either scalar messages, bound to the
// locale named by the file itself ("en.yml" binds to "en"), or nested mappings keyed
// by explicit locale codes. Shape problems are reported as warnings and never fail
// the parse.
package resource
