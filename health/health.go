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

// Package health defines the passive health-contribution contract.
// Contributors probe connectivity only when invoked; nothing in this
// package polls on its own schedule.
package health

import (
	"context"

	"github.com/anchorage-db/anchorage/types"
)

// Status is the coarse outcome of a health probe.
type Status int

const (
	Unhealthy Status = iota
	Degraded
	Healthy
)

var _ types.BaseEnum = Status(0)

// IsValid reports whether the status is one of the defined values.
func (s Status) IsValid() bool {
	return s >= Unhealthy && s <= Healthy
}

// Number returns the numeric enum value.
func (s Status) Number() int {
	if !s.IsValid() {
		return types.IllegalValue
	}
	return int(s)
}

func (s Status) String() string {
	return s.Name()
}

// Name returns the canonical status name.
func (s Status) Name() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return types.IllegalName
	}
}

// Desc returns a human-readable description of the status.
func (s Status) Desc() string {
	switch s {
	case Healthy:
		return "component is fully operational"
	case Degraded:
		return "component is operational with reduced capacity"
	case Unhealthy:
		return "component is not operational"
	default:
		return types.IllegalDesc
	}
}

// Result is the immutable outcome of one probe invocation. Contributors
// produce a fresh Result per call and never cache it themselves.
type Result struct {
	Status      Status           `json:"status"`
	Description string           `json:"description,omitempty"`
	Data        types.JSONObject `json:"data,omitempty"`
}

// NewResult builds a Result, copying data so the caller cannot mutate it
// after the fact.
func NewResult(status Status, description string, data types.JSONObject) Result {
	r := Result{Status: status, Description: description}
	if data != nil {
		r.Data = make(types.JSONObject, len(data))
		for k, v := range data {
			r.Data[k] = v
		}
	}
	return r
}

// Contributor reports the operability of one component on demand.
//
// Implementations must tolerate concurrent, frequent invocation without
// holding locks across the probe, honor ctx cancellation rather than
// blocking, and convert probe failures into an Unhealthy Result instead
// of returning an error. Name must be stable and must not embed
// environment-specific values such as hostnames or connection strings.
type Contributor interface {
	Name() string
	CheckHealth(ctx context.Context) Result
}
