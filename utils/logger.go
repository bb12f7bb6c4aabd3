/*
 * Copyright 2026 anchorage-db.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the concrete logger type handed out by the registry.
type Logger = logrus.Logger

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}

	defaultConsoleLevel = levelFromEnv("LOG_LEVEL", logrus.InfoLevel)
	consoleLogFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

func levelFromEnv(key string, fallback logrus.Level) logrus.Level {
	s := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if s == "" {
		return fallback
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return fallback
	}
	return level
}

// EnvDefaultString returns the environment value for key, or def when unset.
func EnvDefaultString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the boolean environment value for key, or def when unset.
func EnvDefaultBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes"
}

func newFormatter(name string) logrus.Formatter {
	if strings.ToLower(consoleLogFormat) == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		}
	}
	return &prefixedTextFormatter{
		prefix: name,
		inner: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		},
	}
}

type prefixedTextFormatter struct {
	prefix string
	inner  logrus.Formatter
}

func (f *prefixedTextFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.prefix, e.Message)
	return f.inner.Format(e)
}

// NewLogger returns the named logger, creating and registering it on first use.
// Loggers with the same name share one instance so level changes apply globally.
func NewLogger(name string) *Logger {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		key = "DEFAULT"
	}

	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[key]
	loggerRegistryMu.RUnlock()
	if ok {
		return l
	}

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok = loggerRegistry[key]; ok {
		return l
	}
	l = logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(defaultConsoleLevel)
	l.SetFormatter(newFormatter(key))
	loggerRegistry[key] = l
	return l
}

// SetLoggerLevel adjusts the level of the named logger. Unknown level
// strings leave the logger unchanged.
func SetLoggerLevel(name, level string) {
	l := NewLogger(name)
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return
	}
	l.SetLevel(parsed)
}
