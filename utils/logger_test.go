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
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerReturnsSameInstancePerName(t *testing.T) {
	a := NewLogger("REGISTRY-TEST")
	b := NewLogger("REGISTRY-TEST")
	c := NewLogger("REGISTRY-TEST-OTHER")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestSetLoggerLevel(t *testing.T) {
	log := NewLogger("LEVEL-TEST")
	SetLoggerLevel("LEVEL-TEST", "debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	// Unknown levels leave the logger untouched.
	SetLoggerLevel("LEVEL-TEST", "nonsense")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("ANCHORAGE_TEST_STR", "value")
	assert.Equal(t, "value", EnvDefaultString("ANCHORAGE_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", EnvDefaultString("ANCHORAGE_TEST_STR_MISSING", "fallback"))

	t.Setenv("ANCHORAGE_TEST_BOOL", "true")
	assert.True(t, EnvDefaultBool("ANCHORAGE_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("ANCHORAGE_TEST_BOOL_MISSING", true))
}
