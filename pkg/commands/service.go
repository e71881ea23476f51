package commands

import (
	"context"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/engine"
	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/store"
)

// session is a loaded planner plus what is needed to shut it down.
type session struct {
	Config  store.Config
	Service *app.Service
	log     *logger.Logger
	store   store.Persistence
}

// openSession reads the configuration, opens the configured backend and
// loads the document into a fresh engine.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode())
	if err != nil {
		return nil, err
	}
	p, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	e := engine.New(p, engine.WithLogger(log))
	if err := e.Load(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	log.Debug("session opened", "backend", cfg.Backend())
	return &session{Config: cfg, Service: &app.Service{Engine: e}, log: log, store: p}, nil
}

// Close waits for pending writes and releases the store.
func (s *session) Close() {
	s.Service.Engine.Wait()
	if err := s.store.Close(); err != nil {
		s.log.Warn("closing store", "error", err)
	}
	s.log.Sync()
}

// withSession runs fn against an open session and reports its error the
// way --json asks for.
func withSession(ctx context.Context, fn func(s *session) error) error {
	s, err := openSession(ctx)
	if err != nil {
		return output.HandleError(err)
	}
	defer s.Close()
	return output.HandleError(fn(s))
}
