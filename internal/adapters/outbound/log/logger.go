package log

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/cleitonmarx/nowapi/internal/depend"
)

// InitLogger registers the application *log.Logger in the dependency container.
type InitLogger struct {
	Prefix string `config:"LOG_PREFIX" default:"nowapi "`
	out    io.Writer
}

func (il *InitLogger) Initialize(ctx context.Context) (context.Context, error) {
	out := il.out
	if out == nil {
		out = os.Stdout
	}
	depend.Register(log.New(out, il.Prefix, log.LstdFlags|log.Lmsgprefix))
	return ctx, nil
}
