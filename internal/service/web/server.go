package web

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"faultpoint/internal/shared/logger"
	"faultpoint/internal/shared/types"
)

// StartServer starts the status/dashboard HTTP server when a web port
// is configured. It serves the websocket event stream and a JSON
// status endpoint; it never touches the fault endpoint's own listener.
func StartServer(
	wg *sync.WaitGroup,
	cfg *types.Config,
	provider StatusProvider,
	hub *Hub,
) {
	if cfg.ServerConf.WebPort <= 0 {
		logger.Info().Msg("[WebServer] Status page is disabled (web_port is 0 or not set).")
		return
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	})
	mux.HandleFunc("/api/status", NewHandler(provider).HandleStatus)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.ServerConf.WebPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error().Err(err).Msgf("!!! FAILED to start status page on %s", addr)
		return
	}

	logger.Info().Msgf("Status page is listening on http://%s", addr)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := http.Serve(listener, mux); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Web server error")
		}
		logger.Info().Msg("Web server stopped.")
	}()
}
