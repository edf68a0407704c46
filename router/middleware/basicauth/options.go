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

package basicauth

import "gerkon.dev/gerkon/router"

// Option configures the basic auth mediator.
type Option func(*config)

type config struct {
	users        map[string]string
	realm        string
	validator    func(username, password string) bool
	unauthorized router.HandlerFunc
	skipPaths    map[string]bool
}

func defaultConfig() *config {
	return &config{
		users:        make(map[string]string),
		realm:        "Restricted",
		unauthorized: defaultUnauthorized,
		skipPaths:    make(map[string]bool),
	}
}

// WithUsers adds static username/password pairs.
func WithUsers(users map[string]string) Option {
	return func(cfg *config) {
		for name, password := range users {
			cfg.users[name] = password
		}
	}
}

// WithRealm sets the realm announced in WWW-Authenticate.
// Default: "Restricted"
func WithRealm(realm string) Option {
	return func(cfg *config) {
		cfg.realm = realm
	}
}

// WithValidator replaces the static user table with a custom check, for
// example a database lookup with bcrypt.
func WithValidator(fn func(username, password string) bool) Option {
	return func(cfg *config) {
		cfg.validator = fn
	}
}

// WithUnauthorizedHandler sets the step that answers rejected requests.
// The WWW-Authenticate header is already set when it runs. It should end
// the response.
func WithUnauthorizedHandler(fn router.HandlerFunc) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.unauthorized = fn
		}
	}
}

// WithSkipPaths lets the given exact paths through without credentials.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}
