package bootstrap

import (
	"github.com/go-authgate/pairgate/internal/handlers"
	"github.com/go-authgate/pairgate/internal/signaling"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	device   *handlers.DeviceHandler
	session  *handlers.SessionHandler
	realtime *handlers.RealtimeHandler
	usage    *handlers.UsageHandler
	preview  *handlers.PreviewHandler // nil when the compiler is disabled
	relay    *signaling.Handler       // nil when the built-in relay is disabled
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(app *Application) handlerSet {
	h := handlerSet{
		device:   handlers.NewDeviceHandler(app.DeviceService),
		realtime: handlers.NewRealtimeHandler(app.SessionService, app.Config),
		usage:    handlers.NewUsageHandler(app.UsageService),
	}

	if app.SignalingHub != nil {
		h.session = handlers.NewSessionHandler(app.SessionService, app.SignalingHub)
		h.relay = signaling.NewHandler(
			app.SignalingHub,
			app.AppTokens,
			app.SessionService,
			app.MetricsRecorder,
		)
	} else {
		h.session = handlers.NewSessionHandler(app.SessionService, nil)
	}

	if app.Compiler != nil {
		h.preview = handlers.NewPreviewHandler(app.Compiler, app.Config.PreviewMaxBytes)
	}
	return h
}
