package contracts

import (
	"context"

	"github.com/meysamhadeli/localepack/code_analyzer/models"
)

type ISourceAnalyzer interface {
	FindLocaleSources(rootDir string) ([]string, error)
	AnalyzeModule(ctx context.Context, code []byte) (*models.ModuleReport, error)
	VerifyModule(ctx context.Context, code []byte) error
}
