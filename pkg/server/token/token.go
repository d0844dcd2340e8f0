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

package token

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/helpers"
	"gorm.io/gorm"
)

// ErrInvalid is returned when a key does not resolve to a live access token
var ErrInvalid = errors.New("invalid access token")

// generateRandom generates random bits of given length
func generateRandom(bits int) (string, error) {
	b := make([]byte, bits)

	_, err := rand.Read(b)
	if err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// Create generates a new access token for the user that is valid until expiresAt
func Create(db *gorm.DB, userID string, expiresAt time.Time) (database.AccessToken, error) {
	if userID == "" {
		return database.AccessToken{}, errors.New("user id is required")
	}

	val, err := generateRandom(32)
	if err != nil {
		return database.AccessToken{}, errors.Wrap(err, "generating random bytes")
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return database.AccessToken{}, err
	}

	tok := database.AccessToken{
		Model:     database.Model{ID: id},
		UserID:    userID,
		Key:       val,
		ExpiresAt: expiresAt.UTC(),
	}
	if err := db.Create(&tok).Error; err != nil {
		return database.AccessToken{}, errors.Wrap(err, "creating an access token")
	}

	return tok, nil
}

// Find returns the access token with the given key that is live at now
func Find(db *gorm.DB, key string, now time.Time) (database.AccessToken, error) {
	var tok database.AccessToken

	if key == "" {
		return tok, ErrInvalid
	}

	err := db.Where("key = ? AND expires_at > ?", key, now.UTC()).First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tok, ErrInvalid
	} else if err != nil {
		return tok, errors.Wrap(err, "finding access token")
	}

	return tok, nil
}

// Touch records that the token was used at now
func Touch(db *gorm.DB, tok database.AccessToken, now time.Time) error {
	if err := db.Model(&database.AccessToken{}).Where("id = ?", tok.ID).Update("last_used_at", now.UTC()).Error; err != nil {
		return errors.Wrap(err, "touching access token")
	}

	return nil
}

// Purge deletes the access tokens that expired at or before now and returns
// how many were deleted
func Purge(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", now.UTC()).Delete(&database.AccessToken{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "deleting expired access tokens")
	}

	return res.RowsAffected, nil
}

// Revoke deletes every access token of the user and returns how many were
// deleted
func Revoke(db *gorm.DB, userID string) (int64, error) {
	if userID == "" {
		return 0, errors.New("user id is required")
	}

	res := db.Where("user_id = ?", userID).Delete(&database.AccessToken{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "deleting access tokens")
	}

	return res.RowsAffected, nil
}
