// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogMaxSize = 300 // default max size of a single log file, in MB.
)

// FileLogConfig holds the (de)serializable (toml/json) file-logging config.
type FileLogConfig struct {
	// RootPath is the log file root directory.
	RootPath string `toml:"rootpath" json:"rootpath"`
	// Filename is the log file name; empty disables file logging.
	Filename string `toml:"filename" json:"filename"`
	// MaxSize is the max size of a single log file, in MB.
	MaxSize int `toml:"max-size" json:"max-size"`
	// MaxDays is how many days of log files to retain; 0 means never delete.
	MaxDays int `toml:"max-days" json:"max-days"`
	// MaxBackups is how many rotated log files to keep at most.
	MaxBackups int `toml:"max-backups" json:"max-backups"`
}

// Config holds the (de)serializable (toml/json) logging config.
type Config struct {
	// Level is the log level.
	Level string `toml:"level" json:"level"`
	// GrpcLevel is the gRPC log level.
	GrpcLevel string `toml:"grpc-level" json:"grpc-level"`
	// Format is the log encoding: json, text, or console.
	Format string `toml:"format" json:"format"`
	// DisableTimestamp disables the automatic timestamp field.
	DisableTimestamp bool `toml:"disable-timestamp" json:"disable-timestamp"`
	// Stdout enables writing to standard output.
	Stdout bool `toml:"stdout" json:"stdout"`
	// File holds the file-logging config.
	File FileLogConfig `toml:"file" json:"file"`
	// Development puts logging in development mode when true: DPanicLevel
	// behavior changes and stack traces are captured more eagerly.
	Development bool `toml:"development" json:"development"`
	// DisableCaller disables caller file/line annotation (enabled by default).
	DisableCaller bool `toml:"disable-caller" json:"disable-caller"`
	// DisableStacktrace fully disables automatic stack trace capture.
	// By default, stacks are captured for Warn+ in development and Error+
	// in production.
	DisableStacktrace bool `toml:"disable-stacktrace" json:"disable-stacktrace"`
	// DisableErrorVerbose disables verbose error detail output.
	DisableErrorVerbose bool `toml:"disable-error-verbose" json:"disable-error-verbose"`
	// Sampling bounds logging's overall CPU/IO cost while keeping a
	// representative sample; rates are per-second, see zapcore.NewSampler.
	Sampling *zap.SamplingConfig `toml:"sampling" json:"sampling"`

	// AsyncWriteEnable enables asynchronous log writing.
	AsyncWriteEnable bool `toml:"async-write-enable" json:"async-write-enable"`

	// AsyncWriteFlushInterval is the async writer's flush interval.
	AsyncWriteFlushInterval time.Duration `toml:"async-write-flush-interval" json:"async-write-flush-interval"`

	// AsyncWriteDroppedTimeout is how long to wait before dropping a write
	// once the buffer is full.
	AsyncWriteDroppedTimeout time.Duration `toml:"async-write-dropped-timeout" json:"async-write-dropped-timeout"`

	// AsyncWriteNonDroppableLevel is the lowest level that is never dropped
	// even when the buffer is full.
	AsyncWriteNonDroppableLevel string `toml:"async-write-non-droppable-level" json:"async-write-non-droppable-level"`

	// AsyncWriteStopTimeout is the timeout when stopping async writing.
	AsyncWriteStopTimeout time.Duration `toml:"async-write-stop-timeout" json:"async-write-stop-timeout"`

	// AsyncWritePendingLength is the max number of pending writes; beyond
	// this, log operations are dropped.
	AsyncWritePendingLength int `toml:"async-write-pending-length" json:"async-write-pending-length"`

	// AsyncWriteBufferSize is the write buffer size.
	AsyncWriteBufferSize int `toml:"async-write-buffer-size" json:"async-write-buffer-size"`

	// AsyncWriteMaxBytesPerLog is the max bytes allowed for a single log entry.
	AsyncWriteMaxBytesPerLog int `toml:"async-write-max-bytes-per-log" json:"async-write-max-bytes-per-log"`
}

// ZapProperties records the core zap logging handles.
type ZapProperties struct {
	Core   zapcore.Core
	Syncer zapcore.WriteSyncer
	Level  zap.AtomicLevel
}

func newZapTextEncoder(cfg *Config) zapcore.Encoder {
	return NewTextEncoderByConfig(cfg)
}

func (cfg *Config) buildOptions(errSink zapcore.WriteSyncer) []zap.Option {
	opts := []zap.Option{zap.ErrorOutput(errSink)}

	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}

	stackLevel := zap.ErrorLevel
	if cfg.Development {
		stackLevel = zap.WarnLevel
	}
	if !cfg.DisableStacktrace {
		opts = append(opts, zap.AddStacktrace(stackLevel))
	}

	if cfg.Sampling != nil {
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, cfg.Sampling.Initial, cfg.Sampling.Thereafter, zapcore.SamplerHook(cfg.Sampling.Hook))
		}))
	}
	return opts
}

// initialize fills in Config's zero-value defaults.
func (cfg *Config) initialize() {
	if cfg.AsyncWriteFlushInterval <= 0 {
		cfg.AsyncWriteFlushInterval = 10 * time.Second
	}
	if cfg.AsyncWriteDroppedTimeout <= 0 {
		cfg.AsyncWriteDroppedTimeout = 100 * time.Millisecond
	}
	if _, err := zapcore.ParseLevel(cfg.AsyncWriteNonDroppableLevel); cfg.AsyncWriteNonDroppableLevel == "" || err != nil {
		cfg.AsyncWriteNonDroppableLevel = zapcore.ErrorLevel.String()
	}
	if cfg.AsyncWriteStopTimeout <= 0 {
		cfg.AsyncWriteStopTimeout = 1 * time.Second
	}
	if cfg.AsyncWritePendingLength <= 0 {
		cfg.AsyncWritePendingLength = 1024
	}
	if cfg.AsyncWriteBufferSize <= 0 {
		cfg.AsyncWriteBufferSize = 4 * 1024
	}
	if cfg.AsyncWriteMaxBytesPerLog <= 0 {
		cfg.AsyncWriteMaxBytesPerLog = 1024 * 1024
	}
}
