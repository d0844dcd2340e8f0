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

package app

import (
	"context"
	"sort"
	"strings"

	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/helpers"
	"github.com/studylog/studylog/pkg/server/permissions"
	"gorm.io/gorm/clause"
)

// TagCount is a tag with the number of sessions it is attached to
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// NormalizeTag returns the canonical form of a tag
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// normalizeTags returns the sorted set of canonical tags. It fails if any tag
// is empty once normalized.
func normalizeTags(tags []string) ([]string, error) {
	seen := map[string]bool{}
	ret := []string{}

	for _, tag := range tags {
		t := NormalizeTag(tag)
		if t == "" {
			return nil, ErrEmptyTag
		}
		if seen[t] {
			continue
		}

		seen[t] = true
		ret = append(ret, t)
	}

	sort.Strings(ret)

	return ret, nil
}

// AddTags attaches the given tags to a study session. Tags already attached
// are left as they are. It returns the resulting tags for the given input.
func (a *App) AddTags(ctx context.Context, p permissions.Principal, sessionID string, tags []string) ([]database.SessionTag, error) {
	normalized, err := normalizeTags(tags)
	if err != nil {
		return nil, err
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	session, err := findSession(s, sessionID)
	if err != nil {
		return nil, err
	}

	ret := []database.SessionTag{}
	if len(normalized) == 0 {
		return ret, nil
	}

	records := make([]database.SessionTag, 0, len(normalized))
	for _, tag := range normalized {
		id, err := helpers.GenUUID()
		if err != nil {
			return nil, err
		}

		records = append(records, database.SessionTag{
			ID:        id,
			SessionID: session.ID,
			Tag:       tag,
		})
	}

	if err := s.Create(session.UserID, &records, clause.OnConflict{DoNothing: true}); err != nil {
		return nil, storeErr(err, "inserting session tags")
	}

	conn := s.Tags().Where("session_tags.session_id = ? AND session_tags.tag IN ?", session.ID, normalized)
	if err := conn.Order("tag ASC").Find(&ret).Error; err != nil {
		return nil, storeErr(err, "finding session tags")
	}

	return ret, nil
}

// RemoveTag detaches a tag from a study session. Removing a tag that is not
// attached is a no-op.
func (a *App) RemoveTag(ctx context.Context, p permissions.Principal, sessionID, tag string) error {
	t := NormalizeTag(tag)
	if t == "" {
		return ErrEmptyTag
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return err
	}

	session, err := findSession(s, sessionID)
	if err != nil {
		return err
	}

	conn := s.Tags().Where("session_tags.session_id = ? AND session_tags.tag = ?", session.ID, t)
	if err := conn.Delete(&database.SessionTag{}).Error; err != nil {
		return storeErr(err, "deleting session tag")
	}

	return nil
}

// ListTags returns the sorted tags of a study session
func (a *App) ListTags(ctx context.Context, p permissions.Principal, sessionID string) ([]string, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	session, err := findSession(s, sessionID)
	if err != nil {
		return nil, err
	}

	ret := []string{}
	conn := s.Tags().Where("session_tags.session_id = ?", session.ID).Order("tag ASC")
	if err := conn.Pluck("tag", &ret).Error; err != nil {
		return nil, storeErr(err, "finding session tags")
	}

	return ret, nil
}

// SessionsByTag returns the principal's study sessions carrying the given
// tag, most recent first
func (a *App) SessionsByTag(ctx context.Context, p permissions.Principal, tag string) ([]database.StudySession, error) {
	t := NormalizeTag(tag)
	if t == "" {
		return nil, ErrEmptyTag
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	var sessionIDs []string
	if err := s.Tags().Where("session_tags.tag = ?", t).Pluck("session_id", &sessionIDs).Error; err != nil {
		return nil, storeErr(err, "finding tagged session ids")
	}

	ret := []database.StudySession{}
	if len(sessionIDs) == 0 {
		return ret, nil
	}

	conn := s.Sessions().Where("study_sessions.id IN ?", sessionIDs).Order("start_time DESC, id DESC")
	if err := conn.Find(&ret).Error; err != nil {
		return nil, storeErr(err, "finding tagged sessions")
	}

	return ret, nil
}

// PopularTags returns the principal's most used tags. A non-positive limit
// returns every tag.
func (a *App) PopularTags(ctx context.Context, p permissions.Principal, limit int) ([]TagCount, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	conn := s.Tags().Select("tag, COUNT(*) AS count").Group("tag").Order("count DESC, tag ASC")
	if limit > 0 {
		conn = conn.Limit(limit)
	}

	ret := []TagCount{}
	if err := conn.Scan(&ret).Error; err != nil {
		return nil, storeErr(err, "counting tags")
	}

	return ret, nil
}
