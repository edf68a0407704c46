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

package router

// run executes steps strictly in order. It stops at the first failing step
// or once the response has been ended. A started chain is never abandoned:
// the request context does not interrupt it.
func (c *Context) run(steps []step) error {
	for _, s := range steps {
		if c.Ended() {
			return nil
		}

		result := make(chan error, 1)
		exited := s(c, c.completion(result))

		stop, err := c.await(result, exited)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}

	return nil
}

// await blocks until the step reports, the response is ended by a helper,
// or a continuation step returns after writing to the response directly.
// exited is nil for direct steps.
func (c *Context) await(result <-chan error, exited <-chan struct{}) (bool, error) {
	for {
		select {
		case err := <-result:
			return err != nil, err
		case <-c.endedCh:
			return true, nil
		case <-exited:
			// Returned without next; it may still call next later.
			exited = nil
			if c.Ended() {
				return true, nil
			}
		}
	}
}
