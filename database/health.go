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
	"time"

	"github.com/anchorage-db/anchorage/health"
	"github.com/anchorage-db/anchorage/types"
)

// managerContributor probes one managed database on demand. It holds no
// lock across the probe, honors ctx cancellation through the driver, and
// converts every failure into an Unhealthy result.
type managerContributor struct {
	name string
	mgr  Manager
}

var _ health.Contributor = (*managerContributor)(nil)

// NewHealthContributor builds a passive health contributor for mgr.
// The name must be stable and free of environment-specific values such
// as hostnames or connection strings.
func NewHealthContributor(name string, mgr Manager) health.Contributor {
	return &managerContributor{name: name, mgr: mgr}
}

func (c *managerContributor) Name() string {
	return c.name
}

func (c *managerContributor) CheckHealth(ctx context.Context) health.Result {
	db := c.mgr.DB()
	if db == nil {
		return health.NewResult(health.Unhealthy, "database not connected", nil)
	}

	start := time.Now()
	err := db.PingContext(ctx)
	elapsed := time.Since(start)

	stats := c.mgr.Stats()
	data := types.JSONObject{
		"response_time":  elapsed.String(),
		"open_conns":     stats.OpenConns,
		"in_use":         stats.InUse,
		"idle":           stats.Idle,
		"max_open_conns": stats.MaxOpenConns,
	}

	if err != nil {
		return health.NewResult(health.Unhealthy, "connectivity probe failed: "+err.Error(), data)
	}
	if stats.MaxOpenConns > 0 && stats.InUse >= stats.MaxOpenConns {
		return health.NewResult(health.Degraded, "connection pool exhausted", data)
	}
	return health.NewResult(health.Healthy, "", data)
}
