// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"github.com/cockroachdb/errors"
)

// WithName wraps base with the offending field/element name for context.
func WithName(base error, name string) error {
	return errors.Wrap(base, "name="+name)
}

// MustNoError panics if err is non-nil.
//
// The core contract never panics on its own (see ErrorType); this helper
// lets a caller opt into the "fatal in debug builds" behavior spec.md §7
// describes for programmer-contract violations, without forcing it on
// every caller.
func MustNoError(err error) {
	if err != nil {
		panic(err)
	}
}
