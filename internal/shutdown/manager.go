package shutdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
)

var ErrTimeout = errors.New("shutdown timeout exceeded")

// Service is something that must be stopped before the process exits.
type Service interface {
	Name() string
	Shutdown(ctx context.Context) error
}

// Manager stops registered services in parallel within a timeout.
type Manager struct {
	services []Service
	timeout  time.Duration
	mu       sync.RWMutex
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		services: make([]Service, 0),
		timeout:  timeout,
	}
}

func (m *Manager) Register(service Service) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.services = append(m.services, service)
	logutils.Log.WithField("service", service.Name()).Debug("Service registered for graceful shutdown")
}

func (m *Manager) Shutdown() error {
	logutils.Log.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.RLock()
	services := make([]Service, len(m.services))
	copy(services, m.services)
	m.mu.RUnlock()

	errChan := make(chan error, len(services))
	var wg sync.WaitGroup

	for _, service := range services {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()

			log := logutils.Log.WithField("service", svc.Name())
			if err := svc.Shutdown(ctx); err != nil {
				log.WithError(err).Error("Error during service shutdown")
				errChan <- fmt.Errorf("service %s shutdown failed: %w", svc.Name(), err)
				return
			}
			log.Info("Service shutdown completed")
		}(service)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logutils.Log.Warn("Shutdown timeout exceeded, forcing shutdown")
		return ErrTimeout
	}

	close(errChan)
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		logutils.Log.WithField("error_count", len(errs)).Error("Some services failed to shutdown gracefully")
		return errors.Join(errs...)
	}

	logutils.Log.Info("Graceful shutdown completed successfully")
	return nil
}

type closerShutdown struct {
	name   string
	closer io.Closer
}

// Closer adapts an io.Closer such as the history database.
func Closer(name string, c io.Closer) Service {
	return &closerShutdown{name: name, closer: c}
}

func (c *closerShutdown) Name() string { return c.name }

func (c *closerShutdown) Shutdown(context.Context) error {
	return c.closer.Close()
}

type funcShutdown struct {
	name string
	fn   func(ctx context.Context) error
}

// Func adapts a shutdown function.
func Func(name string, fn func(ctx context.Context) error) Service {
	return &funcShutdown{name: name, fn: fn}
}

func (f *funcShutdown) Name() string { return f.name }

func (f *funcShutdown) Shutdown(ctx context.Context) error { return f.fn(ctx) }
