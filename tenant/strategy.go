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
	"fmt"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"
)

// Strategy maps a tenant id to its physical storage location. The two
// methods are pure mappings: ResolveDSN yields the connection string and
// ResolveSchema yields the schema name ("" when the tenant shares the
// default schema). The three isolation models compose from them:
//
//   - database-per-tenant: DSN varies per tenant, schema constant
//   - schema-per-tenant:   DSN constant, schema varies per tenant
//   - row-level:           neither varies; callers filter by tenant in
//     the predicates they pass to repository reads
//
// Implementations that cache internally must be safe for concurrent use.
type Strategy interface {
	ResolveDSN(ctx context.Context, id ID) (string, error)
	ResolveSchema(id ID) string
}

// Entry describes one tenant's storage location in configuration.
type Entry struct {
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
}

// Config is the YAML structure mapping tenant ids to storage locations.
// DefaultDSN serves tenants without an entry of their own, including the
// empty tenant.
type Config struct {
	DefaultDSN    string           `yaml:"default_dsn"`
	DefaultSchema string           `yaml:"default_schema"`
	Tenants       map[string]Entry `yaml:"tenants"`
}

// LoadConfig reads a tenant mapping from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tenant config file: %w", err)
	}
	return &cfg, nil
}

// StaticStrategy resolves tenants from an in-memory mapping, typically
// loaded from YAML configuration. The mapping is immutable after
// construction, so the strategy is safe for concurrent use.
type StaticStrategy struct {
	cfg Config
}

var _ Strategy = (*StaticStrategy)(nil)

// NewStaticStrategy builds a strategy from the given config.
func NewStaticStrategy(cfg *Config) (*StaticStrategy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tenant config cannot be empty")
	}
	copied := *cfg
	copied.Tenants = make(map[string]Entry, len(cfg.Tenants))
	for k, v := range cfg.Tenants {
		copied.Tenants[k] = v
	}
	return &StaticStrategy{cfg: copied}, nil
}

func (s *StaticStrategy) ResolveDSN(_ context.Context, id ID) (string, error) {
	if entry, ok := s.cfg.Tenants[id.String()]; ok && entry.DSN != "" {
		return entry.DSN, nil
	}
	if s.cfg.DefaultDSN == "" {
		return "", fmt.Errorf("no connection target configured for tenant %q", id.String())
	}
	return s.cfg.DefaultDSN, nil
}

func (s *StaticStrategy) ResolveSchema(id ID) string {
	if entry, ok := s.cfg.Tenants[id.String()]; ok && entry.Schema != "" {
		return entry.Schema
	}
	return s.cfg.DefaultSchema
}

// CachedStrategy wraps another Strategy and memoizes DSN resolution per
// tenant with a TTL. Schema resolution is already cheap and is passed
// through. go-cache is safe for concurrent use, which keeps the whole
// strategy safe as required of caching implementations.
type CachedStrategy struct {
	inner Strategy
	cache *gocache.Cache
}

var _ Strategy = (*CachedStrategy)(nil)

// NewCachedStrategy wraps inner with a TTL cache on DSN lookups.
func NewCachedStrategy(inner Strategy, ttl time.Duration) *CachedStrategy {
	return &CachedStrategy{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *CachedStrategy) ResolveDSN(ctx context.Context, id ID) (string, error) {
	key := id.String()
	if dsn, ok := s.cache.Get(key); ok {
		return dsn.(string), nil
	}
	dsn, err := s.inner.ResolveDSN(ctx, id)
	if err != nil {
		// Resolution failures are surfaced as-is and never cached.
		return "", err
	}
	s.cache.SetDefault(key, dsn)
	return dsn, nil
}

func (s *CachedStrategy) ResolveSchema(id ID) string {
	return s.inner.ResolveSchema(id)
}
