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
	"strings"

	"github.com/anchorage-db/anchorage/diagnostics"
)

// correlationMarkers are the substrings a correlation id may not carry
// into command text: block-comment delimiters, the line-comment marker,
// and both newline characters. The id originates from distributed trace
// propagation and is untrusted with respect to comment syntax.
var correlationMarkers = []string{"/*", "*/", "--", "\r", "\n"}

// Sanitize strips every comment-breaking marker from a correlation id,
// leaving all other characters untouched. Removal runs to a fixed point
// so that deleting one marker cannot splice together another
// ("-\r-" must not survive as "--"); this also makes Sanitize idempotent.
func Sanitize(id string) string {
	for {
		out := id
		for _, marker := range correlationMarkers {
			out = strings.ReplaceAll(out, marker, "")
		}
		if out == id {
			return out
		}
		id = out
	}
}

// CorrelationInterceptor rewrites outgoing command text to embed the
// correlation id of the current operation as a leading block comment.
// The tag lives in the command text itself, not a side channel, so it is
// visible in downstream logs and traces without structured tagging
// support from the storage driver.
type CorrelationInterceptor struct{}

// Rewrite returns command with a `/* correlation:<id> */` comment line
// prepended. When ctx carries no correlation id, or the id is blank
// after sanitization, the command passes through unmodified.
func (CorrelationInterceptor) Rewrite(ctx context.Context, command string) string {
	tag := CorrelationInterceptor{}.CommentTag(ctx)
	if tag == "" {
		return command
	}
	return "/* " + tag + " */\n" + command
}

// CommentTag returns the sanitized `correlation:<id>` tag for ctx, or ""
// when no usable correlation id is bound. Builder-based queries attach
// this tag through the driver's comment support instead of Rewrite.
func (CorrelationInterceptor) CommentTag(ctx context.Context) string {
	id := diagnostics.CorrelationID(ctx)
	if strings.TrimSpace(id) == "" {
		return ""
	}
	id = Sanitize(id)
	if strings.TrimSpace(id) == "" {
		return ""
	}
	return "correlation:" + id
}
