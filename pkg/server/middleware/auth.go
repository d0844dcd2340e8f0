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

package middleware

import (
	"errors"
	"net/http"

	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/context"
	"github.com/studylog/studylog/pkg/server/log"
	"github.com/studylog/studylog/pkg/server/permissions"
	"github.com/studylog/studylog/pkg/server/token"
	"gorm.io/gorm"
)

// Auth is an authentication middleware. It resolves the bearer access token
// into the principal that the handler acts on behalf of.
func Auth(db *gorm.DB, c clock.Clock, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := getCredential(r)
		if err != nil || key == "" {
			RespondUnauthorized(w)
			return
		}

		conn := db.WithContext(r.Context())
		now := c.Now()

		tok, err := token.Find(conn, key, now)
		if errors.Is(err, token.ErrInvalid) {
			RespondUnauthorized(w)
			return
		} else if err != nil {
			DoError(w, "authenticating with access token", err, http.StatusServiceUnavailable)
			return
		}

		if err := token.Touch(conn, tok, now); err != nil {
			// log the error and continue
			log.ErrorWrap(err, "touching access token")
		}

		ctx := context.WithPrincipal(r.Context(), permissions.User(tok.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
