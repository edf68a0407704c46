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

// Package compiler turns gerkon route rules into anchored, case-insensitive
// regular expressions.
//
// # Rule Grammar
//
// A rule is a path template built from:
//
//   - literal text, matched as-is (case-insensitive)
//   - <name>, a single path segment captured as parameter "name"
//   - {...}, an optional region matched zero or one time
//   - *, any run of non-whitespace characters (including none)
//
// The bare rule "*" is the catch-all marker. It matches every path but is
// reserved for not-found handling and never takes part in normal lookup.
//
// # Compilation Order
//
// Substitutions are applied in a fixed order so that later steps never
// re-match text produced by earlier ones:
//
//  1. escape every regular expression metacharacter
//  2. {X} becomes (?:X)?
//  3. * becomes \S*
//  4. <name> becomes ([^/]+), recording name
//  5. the result is anchored and made case-insensitive
//
// Example:
//
//	rule := compiler.Compile("/users{/<id>}")
//	params, ok := rule.Extract("/users/42")
//	// ok == true, params == [{id 42}]
//
// Compilation never fails. A malformed template degrades to a literal match.
package compiler
