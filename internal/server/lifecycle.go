// Package server runs the game's long-lived services, the simulation loop
// and the client gateway, with ordered startup and shutdown.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one long-running piece of the game server. Start blocks until
// the service exits; Stop asks it to.
type Service interface {
	Start() error
	Stop()
}

// Runner starts services in registration order and stops them in reverse,
// so the gateway drains its connections before the world it feeds goes
// away.
type Runner struct {
	log      *zap.Logger
	services []namedService
}

type namedService struct {
	name string
	svc  Service
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{log: log}
}

// Add registers a service under a name used in shutdown logs. Registration
// happens before Run; Runner does no locking of its own.
func (r *Runner) Add(name string, svc Service) {
	r.services = append(r.services, namedService{name: name, svc: svc})
}

// Run starts every registered service and blocks until the context is
// cancelled, a termination signal arrives, or a service fails. It stops
// the services in reverse order before returning, with the failure, if
// any, as its error.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(r.services))
	for _, ns := range r.services {
		go func() {
			r.log.Info("service starting", zap.String("service", ns.name))
			if err := ns.svc.Start(); err != nil {
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		r.log.Info("shutdown requested")
	case runErr = <-errCh:
		r.log.Error("service failed", zap.Error(runErr))
	}

	for i := len(r.services) - 1; i >= 0; i-- {
		ns := r.services[i]
		ns.svc.Stop()
		r.log.Info("service stopped", zap.String("service", ns.name))
	}

	r.log.Info("server down", zap.Duration("uptime", time.Since(start)))
	return runErr
}
