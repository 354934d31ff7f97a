package extractor

import "errors"

var (
	// ErrInvalidTmpDir is returned by New for an unusable staging directory.
	ErrInvalidTmpDir = errors.New("invalid tmpdir")
	// ErrInvalidOutputDir is returned by New when outputDir leaves the build path.
	ErrInvalidOutputDir = errors.New("invalid outputDir")
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("extractor is closed")
)
