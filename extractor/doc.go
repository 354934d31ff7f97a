// Package extractor moves locale data out of the compiled modules into
// per-locale JSON chunks that a generated runtime loader fetches on demand.
//
// An Engine is bound to one build. Every compiled module registers its data
// under a namespace with Extract, and gets back a few lines of code that load
// the namespace through the runtime at RuntimePath.
package extractor
