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

package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"

	"github.com/anchorage-db/anchorage/diagnostics"
)

// QueryHook logs executed commands together with their duration and the
// correlation id of the operation that issued them. When verbose is off,
// only failing commands are logged (sql.ErrNoRows and sql.ErrTxDone are
// not failures). The envName variable can flip logging at runtime:
// unset/0 disables, any other value enables, 2 enables verbose mode.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	logger  Logger
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook creates a query log hook writing through the given logger.
func NewQueryHook(logger Logger, envName string, verbose bool) *QueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &QueryHook{
		envName: envName,
		enabled: true,
		verbose: verbose,
		logger:  logger,
	}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	enabled := h.enabled
	verbose := h.verbose
	if h.envName != "" {
		if env, ok := os.LookupEnv(h.envName); ok {
			enabled = env != "" && env != "0"
			verbose = env == "2"
		}
	}
	if !enabled {
		return
	}

	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	fields := []interface{}{
		"operation", event.Operation(),
		"duration", time.Since(event.StartTime).Round(time.Microsecond),
		"query", colorizeOperation(event),
	}
	if cid := diagnostics.CorrelationID(ctx); cid != "" {
		fields = append(fields, "correlation_id", Sanitize(cid))
	}
	if oid := diagnostics.FromContext(ctx).OperationID; oid != "" {
		fields = append(fields, "operation_id", oid)
	}

	if event.Err != nil {
		fields = append(fields, "error", color.New(color.FgRed).Sprint(event.Err.Error()))
		h.logger.Error("query failed", fields...)
		return
	}
	h.logger.Debug("query executed", fields...)
}

func colorizeOperation(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return color.New(color.FgGreen).Sprint(event.Query)
	case "INSERT":
		return color.New(color.FgBlue).Sprint(event.Query)
	case "UPDATE":
		return color.New(color.FgYellow).Sprint(event.Query)
	case "DELETE":
		return color.New(color.FgMagenta).Sprint(event.Query)
	default:
		return color.New(color.FgCyan).Sprint(event.Query)
	}
}

// SlowQueryHook warns about successful commands that exceed a threshold.
type SlowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// NewSlowQueryHook creates a slow-query warning hook.
func NewSlowQueryHook(logger Logger, slowTime time.Duration) *SlowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &SlowQueryHook{slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	fields := []interface{}{
		"duration", duration.Round(time.Microsecond),
		"slow_threshold", h.slowTime,
		"query", event.Query,
	}
	if cid := diagnostics.CorrelationID(ctx); cid != "" {
		fields = append(fields, "correlation_id", Sanitize(cid))
	}
	h.logger.Warn("slow query detected", fields...)
}
