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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	serialMetricSubsystem = "serial"
)

var (
	SerialMetricsRegisterOnce sync.Once

	// SerialStringTableSize records the number of interned strings of each
	// binary container passed to Encode.
	SerialStringTableSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: gosaveNamespace,
		Subsystem: serialMetricSubsystem,
		Name:      "string_table_size",
		Help:      "number of distinct strings interned per finished binary container",
		Buckets:   buckets,
	})

	// SerialWriteElements counts elements written, labeled by format.
	SerialWriteElements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: gosaveNamespace,
		Subsystem: serialMetricSubsystem,
		Name:      "write_elements_total",
		Help:      "number of elements written",
	}, []string{serialFormatLabelName})

	// SerialReadElements counts elements read, labeled by format.
	SerialReadElements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: gosaveNamespace,
		Subsystem: serialMetricSubsystem,
		Name:      "read_elements_total",
		Help:      "number of elements read",
	}, []string{serialFormatLabelName})

	// SerialCompactionReclaimedBytes records bytes physically removed by
	// null-compaction on writer scope close.
	SerialCompactionReclaimedBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: gosaveNamespace,
		Subsystem: serialMetricSubsystem,
		Name:      "compaction_reclaimed_bytes",
		Help:      "bytes reclaimed by null-element compaction per writer scope close",
		Buckets:   sizeBuckets,
	})

	// SerialTranscodeBatchDuration records BatchTranscode wall-clock time.
	SerialTranscodeBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: gosaveNamespace,
		Subsystem: serialMetricSubsystem,
		Name:      "transcode_batch_duration_ms",
		Help:      "BatchTranscode wall-clock duration in milliseconds",
		Buckets:   longTaskBuckets,
	})

	// SerialBufferPoolBytes records the capacity, in bytes, of each
	// ring.Buffer returned to internal/pool/ringbuffer's Pool, giving
	// internal/ioutil's file-accumulation buffer pool an observable sizing
	// distribution instead of it being opaque to metrics.
	SerialBufferPoolBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: gosaveNamespace,
		Subsystem: serialMetricSubsystem,
		Name:      "buffer_pool_returned_bytes",
		Help:      "capacity of each ring buffer returned to the pool, in bytes",
		Buckets:   sizeBuckets,
	})
)

// RegisterSerialMetrics registers the serialization-domain metrics into
// registry. Safe to call more than once; registration happens only on the
// first call.
func RegisterSerialMetrics(registry *prometheus.Registry) {
	SerialMetricsRegisterOnce.Do(func() {
		registry.MustRegister(SerialStringTableSize)
		registry.MustRegister(SerialWriteElements)
		registry.MustRegister(SerialReadElements)
		registry.MustRegister(SerialCompactionReclaimedBytes)
		registry.MustRegister(SerialTranscodeBatchDuration)
		registry.MustRegister(SerialBufferPoolBytes)
	})
}
