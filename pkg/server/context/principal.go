/* Copyright 2025 Studylog Authors
 *
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

package context

import (
	"context"

	"github.com/studylog/studylog/pkg/server/permissions"
)

const (
	principalKey privateKey = "principal"
)

type privateKey string

// WithPrincipal creates a new context with the given principal
func WithPrincipal(ctx context.Context, p permissions.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Principal retrieves the principal from the given context. If the context
// does not contain one, it returns the zero principal, which no scope accepts.
func Principal(ctx context.Context) permissions.Principal {
	if temp := ctx.Value(principalKey); temp != nil {
		if p, ok := temp.(permissions.Principal); ok {
			return p
		}
	}

	return permissions.Principal{}
}
