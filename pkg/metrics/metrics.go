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

package metrics

import (
	// #nosec
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// gosaveNamespace is the Prometheus namespace shared by every metric
	// this project registers.
	gosaveNamespace = "gosave"

	// Common label names shared across the metric families below.
	nodeIDLabelName   = "node_id"
	roleNameLabelName = "role_name"

	lockName   = "lock_name"
	lockSource = "lock_source"
	lockType   = "lock_type"
	lockOp     = "lock_op"

	serialFormatLabelName = "format"
)

var (
	// buckets is the exponential histogram bucket set used for latency
	// metrics, in milliseconds:
	// [1 2 4 8 16 32 64 128 256 512 1024 2048 4096 8192 16384 32768 65536 1.31072e+05]
	buckets = prometheus.ExponentialBuckets(1, 2, 18)

	// longTaskBuckets buckets long-running task durations, in milliseconds.
	longTaskBuckets = []float64{1, 100, 500, 1000, 5000, 10000, 20000, 50000, 100000, 250000, 500000, 1000000, 3600000, 5000000, 10000000}

	// sizeBuckets buckets data sizes, in bytes.
	sizeBuckets = []float64{10000, 100000, 1000000, 100000000, 500000000, 1024000000, 2048000000, 4096000000, 10000000000, 50000000000}

	NumNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: gosaveNamespace,
			Name:      "num_node",
			Help:      "number of nodes and coordinates",
		}, []string{nodeIDLabelName, roleNameLabelName})

	LockCosts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: gosaveNamespace,
			Name:      "lock_time_cost",
			Help:      "time cost for various kinds of locks",
		}, []string{
			lockName,
			lockSource,
			lockType,
			lockOp,
		})

	// BuildInfo exposes serial.Version() as a Prometheus label so the
	// running binary's compatibility marker is scrapeable alongside the
	// rest of its metrics (see cmd/gosave's startup call to SetBuildInfo).
	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: gosaveNamespace,
			Name:      "build_info",
			Help:      "static gauge of value 1, labeled by the running serial package version",
		}, []string{"serial_version"})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer returns the global Prometheus Registerer, falling back to
// prometheus.DefaultRegisterer if Register hasn't set one explicitly.
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register registers every metric defined in this file. Typically called
// once at process startup.
func Register(r prometheus.Registerer) {
	r.MustRegister(NumNodes)
	r.MustRegister(LockCosts)
	r.MustRegister(BuildInfo)
	metricRegisterer = r
}

// SetBuildInfo sets BuildInfo's single time series to 1, labeled with
// version (the value of serial.Version().String()).
func SetBuildInfo(r prometheus.Registerer, version string) {
	BuildInfo.WithLabelValues(version).Set(1)
}
