package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// RunUntilSignal starts the server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully. The returned error is the first failure from
// serving or shutdown.
func (s *Server) RunUntilSignal() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := s.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}
