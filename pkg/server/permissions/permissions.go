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

// Package permissions decides whether a principal may access an owned record
package permissions

// Principal identifies the caller of an operation. It is established by the
// identity boundary and never changes during a request.
type Principal struct {
	// UserID is the identifier the identity service issued for the caller
	UserID   string
	operator bool
}

// User returns the principal of an authenticated end user
func User(userID string) Principal {
	return Principal{UserID: userID}
}

// Operator returns the principal of a trusted operator context. It must only
// be constructed by process-level tooling, never from request input.
func Operator() Principal {
	return Principal{operator: true}
}

// OnBehalfOf returns an operator principal narrowed to the records of one
// user. It reads through the privileged handle but sees only that user's rows.
func OnBehalfOf(userID string) Principal {
	return Principal{UserID: userID, operator: true}
}

// unrestricted reports whether the principal sees every owner's rows
func (p Principal) unrestricted() bool {
	return p.operator && p.UserID == ""
}

// IsOperator reports whether the principal bypasses ownership checks
func (p Principal) IsOperator() bool {
	return p.operator
}

// Valid reports whether the principal can be used at all
func (p Principal) Valid() bool {
	return p.operator || p.UserID != ""
}

// Authorize checks if the given principal may read or write a record owned
// by ownerID
func Authorize(p Principal, ownerID string) bool {
	if p.unrestricted() {
		return true
	}
	if p.UserID == "" || ownerID == "" {
		return false
	}

	return p.UserID == ownerID
}
