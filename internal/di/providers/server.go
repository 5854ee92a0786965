package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/grimoireapp/grimoire-server/internal/api"
	"github.com/grimoireapp/grimoire-server/internal/config"
	"github.com/grimoireapp/grimoire-server/internal/logger"
	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	addr net.Addr
	errs chan error
}

// ListenAddr is the bound address, useful when the configured port is 0.
func (h *HTTPServerHandle) ListenAddr() net.Addr {
	return h.addr
}

// Errors reports a listener failure after startup. It never receives on a clean shutdown.
func (h *HTTPServerHandle) Errors() <-chan error {
	return h.errs
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with every route registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Session: do.MustInvoke[*service.SessionService](i),
		Tag:     do.MustInvoke[*service.TagService](i),
		Day:     do.MustInvoke[*service.DayService](i),
	}

	return api.NewServer(storeHandle.Store, services, m, api.Options{
		SecureCookies:      cfg.Server.SecureCookies,
		CORSOrigins:        cfg.Server.CORSAllowedOrigins,
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
		LoginBurst:         cfg.Auth.LoginBurst,
		Version:            cfg.App.Version,
	}, log.Logger), nil
}

// ProvideHTTPServer binds the listener and serves in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*api.Server](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Listen synchronously; Serve runs in the background.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	h := &HTTPServerHandle{Server: srv, addr: ln.Addr(), errs: make(chan error, 1)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			h.errs <- err
		}
	}()

	log.Info("Server running", "addr", ln.Addr().String())

	return h, nil
}
