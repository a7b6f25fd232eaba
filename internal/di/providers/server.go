package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/somniaapp/somnia-server/internal/api"
	"github.com/somniaapp/somnia-server/internal/config"
	"github.com/somniaapp/somnia-server/internal/logger"
	"github.com/somniaapp/somnia-server/internal/media/images"
	"github.com/somniaapp/somnia-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	avatarStorage := do.MustInvoke[*images.Storage](i)

	services := &api.Services{
		Auth:       do.MustInvoke[*service.AuthService](i),
		Dream:      do.MustInvoke[*service.DreamService](i),
		Tag:        do.MustInvoke[*service.TagService](i),
		Stats:      do.MustInvoke[*service.StatsService](i),
		Social:     do.MustInvoke[*service.SocialService](i),
		Profile:    do.MustInvoke[*service.ProfileService](i),
		Attachment: do.MustInvoke[*service.AttachmentService](i),
	}

	handler := api.NewServer(cfg, services, avatarStorage, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
