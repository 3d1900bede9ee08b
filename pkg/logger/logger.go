/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logger builds the structured debug logger written to the log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	ctrlzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Level is the logr verbosity, higher is more verbose.
type Level int

const (
	InfoLevel  Level = 0
	DebugLevel Level = 1
	TraceLevel Level = 2
)

// ParseLevel converts 'info', 'debug' or 'trace' to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "trace":
		return TraceLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level '%s', must be one of info, debug, trace", s)
	}
}

// New returns a JSON logger writing to out.
func New(out io.Writer, level Level) logr.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		switch Level(-l) {
		case TraceLevel:
			enc.AppendString("trace")
		case DebugLevel:
			enc.AppendString("debug")
		case InfoLevel:
			enc.AppendString("info")
		default:
			enc.AppendString(l.String())
		}
	}

	return ctrlzap.New(
		ctrlzap.WriteTo(out),
		ctrlzap.Encoder(zapcore.NewJSONEncoder(config)),
		ctrlzap.Level(zapcore.Level(-level)),
	)
}

// NewFile returns a logger appending to the file at path.
// An empty path yields a logger that discards everything.
func NewFile(path string, level Level) (logr.Logger, io.Closer, error) {
	if path == "" {
		return logr.Discard(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return logr.Discard(), nil, fmt.Errorf("creating log dir failed, error: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("opening log file failed, error: %w", err)
	}
	return New(f, level), f, nil
}
