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
	"fmt"
	"sync"
)

// Hooks holds the lifecycle callbacks of an App.
type Hooks struct {
	mu         sync.Mutex
	onStart    []func(context.Context) error
	onReady    []func()
	onShutdown []func(context.Context)
	onStop     []func()
}

// OnStart registers a hook that runs before the server listens. Hooks run
// in registration order and the first error aborts startup.
//
// Example:
//
//	a.OnStart(func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
func (a *App) OnStart(fn func(context.Context) error) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onStart = append(a.hooks.onStart, fn)
}

// OnReady registers a hook that runs once the server accepts connections.
// Each hook runs in its own goroutine; panics are logged.
func (a *App) OnReady(fn func()) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onReady = append(a.hooks.onReady, fn)
}

// OnShutdown registers a hook that runs during graceful shutdown, before
// open connections are drained. Hooks run last registered first and share
// the shutdown timeout.
func (a *App) OnShutdown(fn func(context.Context)) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onShutdown = append(a.hooks.onShutdown, fn)
}

// OnStop registers a hook that runs after the server stopped. Panics are
// logged and do not prevent later hooks from running.
func (a *App) OnStop(fn func()) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onStop = append(a.hooks.onStop, fn)
}

func (a *App) executeStartHooks(ctx context.Context) error {
	a.hooks.mu.Lock()
	hooks := append([]func(context.Context) error(nil), a.hooks.onStart...)
	a.hooks.mu.Unlock()

	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("OnStart hook %d failed: %w", i, err)
		}
	}

	return nil
}

func (a *App) executeReadyHooks() {
	a.hooks.mu.Lock()
	hooks := append([]func(){}, a.hooks.onReady...)
	a.hooks.mu.Unlock()

	for _, hook := range hooks {
		go func() {
			defer a.recoverHook("OnReady")
			hook()
		}()
	}
}

func (a *App) executeShutdownHooks(ctx context.Context) {
	a.hooks.mu.Lock()
	hooks := append([]func(context.Context){}, a.hooks.onShutdown...)
	a.hooks.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](ctx)
	}
}

func (a *App) executeStopHooks() {
	a.hooks.mu.Lock()
	hooks := append([]func(){}, a.hooks.onStop...)
	a.hooks.mu.Unlock()

	for _, hook := range hooks {
		func() {
			defer a.recoverHook("OnStop")
			hook()
		}()
	}
}

func (a *App) recoverHook(kind string) {
	if r := recover(); r != nil {
		a.logging.Error(kind+" hook panic", "error", r)
	}
}
