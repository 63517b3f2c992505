package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"unlockdesk/pkg/logger"
)

// startHTTP starts the local observability listener in a goroutine and
// returns a channel that will contain any listener error. Only /metrics,
// /healthz and /readyz are served; the listener binds loopback by
// default.
func (a *App) startHTTP(_ context.Context) <-chan error {
	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

	handler := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/metrics":
			metrics(ctx)
		case "/healthz":
			ctx.SetContentType("application/json")
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetBodyString(`{"status":"ok"}`)
		case "/readyz":
			a.readyz(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}

	a.srv = &fasthttp.Server{Handler: handler, Name: "unlockdesk-agent"}
	addr := a.cfg.Addr()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("agent_listening", "addr", addr)
		errCh <- a.srv.ListenAndServe(addr)
	}()
	return errCh
}

// readyz reports whether the agent has a store and a usable session.
// The running version is included to help verify what binary is active.
func (a *App) readyz(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	if a.st == nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		ctx.SetBodyString(`{"status":"not ready"}`)
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(`{"status":"ok","version":"` + ver + `"}`)
}

func (a *App) stopHTTP() {
	if a.srv == nil {
		return
	}
	if err := a.srv.Shutdown(); err != nil {
		logger.Error("listener_shutdown_failed", "error", err)
	}
}
