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

package tenant

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticStrategyResolvesPerTenant(t *testing.T) {
	s, err := NewStaticStrategy(&Config{
		DefaultDSN:    "postgres://db0/shared",
		DefaultSchema: "public",
		Tenants: map[string]Entry{
			"acme":   {DSN: "postgres://db1/acme"},
			"globex": {Schema: "globex"},
		},
	})
	require.NoError(t, err)
	ctx := context.Background()

	dsn, err := s.ResolveDSN(ctx, NewID("acme"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db1/acme", dsn)
	assert.Equal(t, "public", s.ResolveSchema(NewID("acme")))

	// Schema-per-tenant: shared DSN, dedicated schema.
	dsn, err = s.ResolveDSN(ctx, NewID("globex"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db0/shared", dsn)
	assert.Equal(t, "globex", s.ResolveSchema(NewID("globex")))

	// Unknown and empty tenants fall back to the defaults.
	dsn, err = s.ResolveDSN(ctx, NewID("stranger"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db0/shared", dsn)
	dsn, err = s.ResolveDSN(ctx, ID{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://db0/shared", dsn)
}

func TestStaticStrategyErrorsWithoutTarget(t *testing.T) {
	s, err := NewStaticStrategy(&Config{
		Tenants: map[string]Entry{"known": {DSN: "sqlite://known.db"}},
	})
	require.NoError(t, err)

	_, err = s.ResolveDSN(context.Background(), NewID("unknown"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tenant "unknown"`)

	_, err = NewStaticStrategy(nil)
	assert.Error(t, err)
}

func TestStaticStrategyCopiesConfig(t *testing.T) {
	cfg := &Config{
		DefaultDSN: "sqlite://default.db",
		Tenants:    map[string]Entry{"acme": {DSN: "sqlite://acme.db"}},
	}
	s, err := NewStaticStrategy(cfg)
	require.NoError(t, err)

	cfg.Tenants["acme"] = Entry{DSN: "sqlite://hijacked.db"}

	dsn, err := s.ResolveDSN(context.Background(), NewID("acme"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite://acme.db", dsn)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	payload := `
default_dsn: postgres://db0/shared
default_schema: public
tenants:
  acme:
    dsn: postgres://db1/acme
    schema: acme
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db0/shared", cfg.DefaultDSN)
	assert.Equal(t, "public", cfg.DefaultSchema)
	assert.Equal(t, Entry{DSN: "postgres://db1/acme", Schema: "acme"}, cfg.Tenants["acme"])

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// countingStrategy records how often the wrapped resolver actually runs.
type countingStrategy struct {
	inner Strategy
	calls int
}

func (s *countingStrategy) ResolveDSN(ctx context.Context, id ID) (string, error) {
	s.calls++
	return s.inner.ResolveDSN(ctx, id)
}

func (s *countingStrategy) ResolveSchema(id ID) string {
	return s.inner.ResolveSchema(id)
}

func TestCachedStrategyMemoizesDSNs(t *testing.T) {
	static, err := NewStaticStrategy(&Config{DefaultDSN: "sqlite://default.db"})
	require.NoError(t, err)
	counting := &countingStrategy{inner: static}
	cached := NewCachedStrategy(counting, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dsn, err := cached.ResolveDSN(ctx, NewID("acme"))
		require.NoError(t, err)
		assert.Equal(t, "sqlite://default.db", dsn)
	}
	assert.Equal(t, 1, counting.calls)
}

func TestCachedStrategyNeverCachesFailures(t *testing.T) {
	static, err := NewStaticStrategy(&Config{
		Tenants: map[string]Entry{"known": {DSN: "sqlite://known.db"}},
	})
	require.NoError(t, err)
	counting := &countingStrategy{inner: static}
	cached := NewCachedStrategy(counting, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cached.ResolveDSN(ctx, NewID("unknown"))
		require.Error(t, err)
	}
	assert.Equal(t, 2, counting.calls)
}
