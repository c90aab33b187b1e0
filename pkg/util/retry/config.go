// Copyright (C) 2019-2020 Zilliz. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package retry

import "time"

const (
	defaultAttempts     = uint(10)
	defaultSleep        = 200 * time.Millisecond
	defaultMaxSleepTime = 3 * time.Second
)

type config struct {
	attempts     uint
	sleep        time.Duration
	maxSleepTime time.Duration
	isRetryErr   func(err error) bool
}

func newDefaultConfig() *config {
	return &config{
		attempts:     defaultAttempts,
		sleep:        defaultSleep,
		maxSleepTime: defaultMaxSleepTime,
	}
}

// Option configures Do/Handle's retry behavior.
type Option func(c *config)

// Attempts caps the number of attempts; 0 means retry forever until the
// error becomes unrecoverable or the context is done.
func Attempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// Sleep sets the initial backoff sleep, doubled after each failed attempt
// up to MaxSleepTime.
func Sleep(d time.Duration) Option {
	return func(c *config) {
		c.sleep = d
	}
}

// MaxSleepTime caps the exponential backoff sleep.
func MaxSleepTime(d time.Duration) Option {
	return func(c *config) {
		c.maxSleepTime = d
	}
}

// RetryErr supplies a predicate deciding whether a given error should be
// retried at all; Handle consults it for attempts signaling shouldRetry.
func RetryErr(fn func(err error) bool) Option {
	return func(c *config) {
		c.isRetryErr = fn
	}
}
