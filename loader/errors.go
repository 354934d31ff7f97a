package loader

import "errors"

var (
	// ErrMissingGenerator is returned by New without a component generator.
	ErrMissingGenerator = errors.New("loader: there is no corresponding code generator")
	// ErrMissingExtractor is returned by New when extraction is enabled without an extractor.
	ErrMissingExtractor = errors.New("loader: extract is enabled but no extractor is configured")
	// ErrInvalidModule wraps verification failures of generated code.
	ErrInvalidModule = errors.New("loader: generated module is invalid")
)
