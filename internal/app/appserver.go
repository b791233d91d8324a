package app

import (
	"fmt"
	"sync"

	"faultpoint/internal/directive"
	"faultpoint/internal/server"
	"faultpoint/internal/service/web"
	"faultpoint/internal/shared/logger"
	"faultpoint/internal/shared/types"
)

// AppServer composes the configuration, the fault endpoint listener
// and the optional status page into one runnable process.
type AppServer struct {
	cfg    *types.Config
	global directive.Directive
	srv    *server.Server
	hub    *web.Hub

	waitGroup sync.WaitGroup
	stopOnce  sync.Once
}

// New validates the configuration and prepares the server. A global
// directive that fails to parse aborts here, before any socket is
// opened.
func New(cfg *types.Config) (*AppServer, error) {
	var global directive.Directive
	if cfg.ServerConf.Directive != "" {
		var err error
		global, err = directive.Parse(cfg.ServerConf.Directive)
		if err != nil {
			return nil, fmt.Errorf("global directive: %w", err)
		}
	}

	var hub *web.Hub
	if cfg.ServerConf.WebPort > 0 {
		hub = web.NewHub()
	}

	s := &AppServer{
		cfg:    cfg,
		global: global,
		hub:    hub,
	}
	s.srv = server.New(cfg, global, hub)
	return s, nil
}

// Run binds the listener, starts the status page if configured, and
// blocks in the accept loop until Stop is called or a SHUT action
// stops the listener.
func (s *AppServer) Run() error {
	port, err := s.srv.InitializeListener()
	if err != nil {
		return err
	}
	if s.global != nil {
		logger.Info().Str("directive", s.cfg.ServerConf.Directive).Msg("Global directive armed for every session.")
	}
	logger.Info().Int("port", port).Msg("Ready for client connections.")

	if s.hub != nil {
		go s.hub.Run()
		web.StartServer(&s.waitGroup, s.cfg, s.srv, s.hub)
	}

	s.srv.Serve()
	// A SHUT action stops the accept loop but leaves sessions open;
	// stay up until the last of them is done.
	s.srv.Close()
	return nil
}

// Stop shuts the listener down and waits for open sessions to finish.
func (s *AppServer) Stop() {
	s.stopOnce.Do(func() {
		s.srv.Close()
	})
}
