package utils

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderCode writes source highlighted for the terminal.
func RenderCode(w io.Writer, source, language, theme string) error {
	return quick.Highlight(w, source, language, "terminal256", theme)
}

// RenderCodeWithContext highlights source line by line so long output can be interrupted.
func RenderCodeWithContext(ctx context.Context, w io.Writer, source, language, theme string) error {
	for _, line := range strings.Split(source, "\n") {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line+"\n", language, "terminal256", theme); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
