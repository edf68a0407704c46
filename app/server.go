// Copyright 2025 The Gerkon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// runningServer is the state of one Listen call.
type runningServer struct {
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
	err  error
}

// Listen starts serving on the given port and returns once the port is
// bound. Requests are served in the background until Stop is called.
//
// Example:
//
//	if err := a.Listen(8080); err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Stop()
func (a *App) Listen(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	return a.ListenAddr(net.JoinHostPort("", strconv.Itoa(port)))
}

// ListenAddr is like Listen but accepts a full address. ":0" picks a free
// port; Addr reports the one chosen.
func (a *App) ListenAddr(addr string) error {
	_, err := a.launch(context.Background(), addr)
	return err
}

// Addr returns the address the server listens on, or "" when it is not
// running.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running == nil {
		return ""
	}

	return a.running.ln.Addr().String()
}

// Running reports whether the server is listening.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.running != nil
}

// launch runs the OnStart hooks, binds addr and serves in a goroutine.
func (a *App) launch(ctx context.Context, addr string) (*runningServer, error) {
	if a.Running() {
		return nil, ErrAlreadyRunning
	}
	if err := a.executeStartHooks(ctx); err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	run := &runningServer{
		srv:  a.router.NewServer(addr),
		ln:   ln,
		done: make(chan struct{}),
	}

	a.mu.Lock()
	if a.running != nil {
		a.mu.Unlock()
		_ = ln.Close()
		return nil, ErrAlreadyRunning
	}
	a.running = run
	a.mu.Unlock()

	go func() {
		defer close(run.done)
		if err := run.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			run.err = fmt.Errorf("server failed: %w", err)
		}
	}()

	a.logging.Info("server listening",
		"address", ln.Addr().String(),
		"service", a.cfg.serviceName,
		"version", a.cfg.serviceVersion,
		"environment", a.cfg.environment,
	)
	a.executeReadyHooks()

	return run, nil
}

// Stop gracefully stops a server started with Listen or Start. It is a
// no-op when no server is running. The App may listen again afterwards.
func (a *App) Stop() error {
	a.mu.Lock()
	run := a.running
	a.mu.Unlock()

	return a.stop(run)
}

// stop shuts run down if it is still the running server.
func (a *App) stop(run *runningServer) error {
	a.mu.Lock()
	if run == nil || a.running != run {
		a.mu.Unlock()
		return nil
	}
	a.running = nil
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.server.shutdownTimeout)
	defer cancel()

	a.logging.Info("server shutting down", "address", run.ln.Addr().String())
	a.executeShutdownHooks(ctx)

	err := run.srv.Shutdown(ctx)
	<-run.done
	if err != nil {
		err = fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.executeStopHooks()
	a.logging.Info("server stopped")

	return errors.Join(err, run.err)
}

// Start serves on addr until ctx is canceled or the server fails, then
// stops the server and flushes metrics, traces and logs.
//
// Example:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := a.Start(ctx, ":8080"); err != nil {
//	    log.Fatal(err)
//	}
func (a *App) Start(ctx context.Context, addr string) error {
	run, err := a.launch(ctx, addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-run.done
		return run.err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-run.done:
		}

		return a.stop(run)
	})
	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.server.shutdownTimeout)
	defer cancel()

	return errors.Join(err, a.shutdownObservability(shutdownCtx))
}

// Shutdown stops the server and flushes metrics, traces and logs. The App
// must not be used afterwards.
func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.Stop(), a.shutdownObservability(ctx))
}

func (a *App) shutdownObservability(ctx context.Context) error {
	var errs []error
	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}
	if err := a.shutdownMetrics(); err != nil {
		errs = append(errs, err)
	}
	if err := a.logging.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("logging shutdown: %w", err))
	}

	return errors.Join(errs...)
}

func (a *App) shutdownMetrics() error {
	if a.metrics == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.server.shutdownTimeout)
	defer cancel()

	if err := a.metrics.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}

	return nil
}
