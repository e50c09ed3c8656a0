package app

import (
	"context"
	stdlog "log"

	"github.com/cleitonmarx/nowapi/internal/adapters/inbound/http"
	"github.com/cleitonmarx/nowapi/internal/adapters/outbound/config"
	"github.com/cleitonmarx/nowapi/internal/adapters/outbound/log"
	"github.com/cleitonmarx/nowapi/internal/adapters/outbound/time"
	"github.com/cleitonmarx/nowapi/internal/introspection"
	"github.com/cleitonmarx/nowapi/internal/introspection/mermaid"
	"github.com/cleitonmarx/nowapi/internal/lifecycle"
	"github.com/cleitonmarx/nowapi/internal/tracing"
	"github.com/cleitonmarx/nowapi/internal/usecases"
)

// NewNowApp creates the nowapi application. Extra initializers run first,
// which lets tests seed configuration or replace dependencies.
func NewNowApp(initializers ...lifecycle.Initializer) *lifecycle.App {
	return lifecycle.NewApp().
		Initialize(initializers...).
		Initialize(
			&config.InitConfigProvider{},
			&log.InitLogger{},
			&tracing.InitOpenTelemetry{},
			&time.InitClock{},
			&usecases.InitGetCurrentTime{},
		).
		Host(
			&http.NowServer{},
		).
		Introspect(&ReportLoggerIntrospector{})
}

// ReportLoggerIntrospector logs the startup report and its Mermaid graph when enabled.
type ReportLoggerIntrospector struct {
	Logger  *stdlog.Logger `resolve:""`
	Enabled bool           `config:"LOG_STARTUP_REPORT" default:"false"`
}

// Introspect logs the report as JSON followed by the Mermaid graph.
func (i *ReportLoggerIntrospector) Introspect(_ context.Context, r introspection.Report) error {
	if !i.Enabled {
		return nil
	}
	b, err := r.ToJSON()
	if err != nil {
		return err
	}
	i.Logger.Println("=== NOWAPI STARTUP REPORT ===")
	i.Logger.Println(string(b))
	i.Logger.Println("=== MERMAID GRAPH ===")
	i.Logger.Println(mermaid.Graph(r, "nowapi"))
	i.Logger.Println("=== END OF REPORT ===")
	return nil
}
