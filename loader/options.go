package loader

import (
	"context"
	"log/slog"

	"github.com/meysamhadeli/localepack/extractor/contracts"
	"github.com/meysamhadeli/localepack/include"
	"github.com/meysamhadeli/localepack/resource"
)

// Build modes.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// ResourceCache keeps parse results keyed by path and source content.
type ResourceCache interface {
	GetResourceCache(path string, source []byte) (*resource.Result, bool)
	SetResourceCache(path string, source []byte, result *resource.Result)
}

// Verifier checks generated code before it is handed out.
type Verifier interface {
	VerifyModule(ctx context.Context, code []byte) error
}

// Options configures a Loader.
type Options struct {
	EsModule bool
	// Extract moves the data of every module into the extractor's locale chunks.
	Extract bool
	// Mode selects the namespace policy: development binds namespaces to paths,
	// anything else to content.
	Mode       string
	Cwd        string
	ModuleRoot string

	Extractor contracts.IExtractor
	Generator ComponentGenerator
	Cache     ResourceCache
	Verifier  Verifier
	FS        include.FileSystem
	Logger    *slog.Logger
}
