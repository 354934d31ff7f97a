package contracts

import (
	"context"

	"github.com/meysamhadeli/localepack/models"
)

// IExtractor owns the extracted locale store of one build.
type IExtractor interface {
	Initialize() error
	Extract(ctx context.Context, data models.LocaleDataSet, namespace string) (string, error)
	Forget(ctx context.Context, namespace string) error
	Flush(ctx context.Context) error
	Namespace(source string) string
	RuntimePath() string
	Close() error
}
