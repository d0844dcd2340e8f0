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

package permissions

import (
	"context"

	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/server/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidPrincipal is returned when a scope is requested for a principal
// that carries no identity
var ErrInvalidPrincipal = errors.New("principal has no identity")

// Guard owns the store handles and hands out scopes restricted to the rows a
// principal owns. The privileged handle never leaves the guard.
type Guard struct {
	db      *gorm.DB
	adminDB *gorm.DB
}

// NewGuard returns a guard over the ordinary handle and the privileged handle.
// If adminDB is nil, operator scopes use the ordinary handle.
func NewGuard(db, adminDB *gorm.DB) *Guard {
	if adminDB == nil {
		adminDB = db
	}

	return &Guard{db: db, adminDB: adminDB}
}

// Scope returns a scope for the given principal bound to ctx
func (g *Guard) Scope(ctx context.Context, p Principal) (Scope, error) {
	if !p.Valid() {
		return Scope{}, ErrInvalidPrincipal
	}

	db := g.db
	if p.operator {
		db = g.adminDB
	}

	return Scope{db: db.WithContext(ctx), principal: p}, nil
}

// Close closes both handles
func (g *Guard) Close() error {
	if err := database.Close(g.db); err != nil {
		return errors.Wrap(err, "closing the store handle")
	}
	if g.adminDB != g.db {
		if err := database.Close(g.adminDB); err != nil {
			return errors.Wrap(err, "closing the privileged store handle")
		}
	}

	return nil
}

// Scope is a view of the store restricted to the rows owned by a principal.
// Rows owned by anyone else are invisible through it.
type Scope struct {
	db        *gorm.DB
	principal Principal
}

// Principal returns the principal the scope was created for
func (s Scope) Principal() Principal {
	return s.principal
}

// Owns reports whether the scope's principal may access a record of ownerID
func (s Scope) Owns(ownerID string) bool {
	return Authorize(s.principal, ownerID)
}

func (s Scope) owned(model interface{}, column string) *gorm.DB {
	conn := s.db.Model(model)
	if s.principal.unrestricted() {
		return conn
	}

	return conn.Where(column+" = ?", s.principal.UserID)
}

// Sessions returns a query over the principal's study sessions
func (s Scope) Sessions() *gorm.DB {
	return s.owned(&database.StudySession{}, "study_sessions.user_id")
}

// Tasks returns a query over the principal's tasks
func (s Scope) Tasks() *gorm.DB {
	return s.owned(&database.Task{}, "tasks.user_id")
}

// Tags returns a query over the tags of the principal's sessions. Tag
// ownership is transitive through the session.
func (s Scope) Tags() *gorm.DB {
	conn := s.db.Model(&database.SessionTag{})
	if s.principal.unrestricted() {
		return conn
	}

	return conn.Where("session_tags.session_id IN (?)", s.Sessions().Select("id"))
}

// Create inserts a record owned by ownerID. It fails with ErrNotOwner when the
// principal may not write records for that owner.
func (s Scope) Create(ownerID string, value interface{}, exprs ...clause.Expression) error {
	if !s.Owns(ownerID) {
		return ErrNotOwner
	}

	return s.db.Clauses(exprs...).Create(value).Error
}

// ErrNotOwner is returned when a principal writes a record it does not own
var ErrNotOwner = errors.New("principal does not own the record")

// Transaction runs fn in a transaction. The scope passed to fn shares the
// principal of s.
func (s Scope) Transaction(fn func(tx Scope) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(Scope{db: tx, principal: s.principal})
	})
}
