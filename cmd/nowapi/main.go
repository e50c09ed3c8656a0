package main

import (
	"github.com/alecthomas/kong"
	"github.com/cleitonmarx/nowapi/internal/app"
)

var cli struct {
	Serve       serveCmd       `cmd:"" default:"1" help:"Run the HTTP server (default)."`
	Healthcheck healthcheckCmd `cmd:"" help:"Probe a running server and exit non-zero when it is unhealthy."`
}

type serveCmd struct{}

func (serveCmd) Run() error {
	return app.NewNowApp().Run()
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("nowapi"),
		kong.Description("Current time in any IANA timezone over HTTP."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run())
}
