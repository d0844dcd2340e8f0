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
	"fmt"
	"testing"
	"time"

	"github.com/studylog/studylog/pkg/assert"
	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/helpers"
	"github.com/studylog/studylog/pkg/server/permissions"
	"github.com/studylog/studylog/pkg/server/testutils"
)

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	alice := permissions.User("alice")

	t.Run("with a linked session", func(t *testing.T) {
		a, c := newTestApp(t)
		s := testutils.SetupEndedSession(t, a.DB, "alice", c.Now(), 25)
		due := testutils.Date(2025, 1, 5, 0, 0)

		task, err := a.CreateTask(ctx, alice, CreateTaskParams{
			Title:       "  problem set 4 ",
			Description: helpers.StringPtr("questions 1 to 10"),
			Priority:    2,
			OrderIndex:  3,
			DueDate:     &due,
			SessionID:   &s.ID,
		})
		if err != nil {
			t.Fatal(err)
		}

		got, err := a.GetTask(ctx, alice, task.ID)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, got.UserID, "alice", "UserID mismatch")
		assert.Equal(t, got.Title, "problem set 4", "Title mismatch")
		assert.Equal(t, *got.Description, "questions 1 to 10", "Description mismatch")
		assert.Equal(t, got.Priority, 2, "Priority mismatch")
		assert.Equal(t, got.OrderIndex, 3, "OrderIndex mismatch")
		assert.TimeEqual(t, *got.DueDate, due, "DueDate mismatch")
		assert.Equal(t, *got.SessionID, s.ID, "SessionID mismatch")
		assert.Equal(t, got.IsCompleted, false, "IsCompleted mismatch")
	})

	t.Run("another owner's session", func(t *testing.T) {
		a, c := newTestApp(t)
		s := testutils.SetupEndedSession(t, a.DB, "bob", c.Now(), 25)

		_, err := a.CreateTask(ctx, alice, CreateTaskParams{Title: "steal", SessionID: &s.ID})
		assert.Equal(t, err, error(ErrNotFound), "error mismatch")
	})

	testCases := []struct {
		params      CreateTaskParams
		expectedErr error
	}{
		{
			params:      CreateTaskParams{Title: "   "},
			expectedErr: ErrEmptyTitle,
		},
		{
			params:      CreateTaskParams{Title: "read", Priority: 4},
			expectedErr: ErrInvalidPriority,
		},
		{
			params:      CreateTaskParams{Title: "read", Priority: -1},
			expectedErr: ErrInvalidPriority,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("validation test case %d", idx), func(t *testing.T) {
			a, _ := newTestApp(t)

			_, err := a.CreateTask(ctx, alice, tc.params)
			assert.Equal(t, err, tc.expectedErr, "error mismatch")

			var count int64
			testutils.MustExec(t, a.DB.Model(&database.Task{}).Count(&count), "counting tasks")
			assert.Equal(t, count, int64(0), "task count mismatch")
		})
	}
}

func TestListTasks(t *testing.T) {
	a, c := newTestApp(t)
	ctx := context.Background()
	alice := permissions.User("alice")

	s := testutils.SetupEndedSession(t, a.DB, "alice", c.Now(), 25)

	t3, err := a.CreateTask(ctx, alice, CreateTaskParams{Title: "third", OrderIndex: 2})
	if err != nil {
		t.Fatal(err)
	}
	t1, err := a.CreateTask(ctx, alice, CreateTaskParams{Title: "first", OrderIndex: 0, SessionID: &s.ID})
	if err != nil {
		t.Fatal(err)
	}
	t2, err := a.CreateTask(ctx, alice, CreateTaskParams{Title: "second", OrderIndex: 1})
	if err != nil {
		t.Fatal(err)
	}
	testutils.SetupTask(t, a.DB, "bob", "bob's", false)

	if _, err := a.SetTaskCompleted(ctx, alice, t2.ID, true); err != nil {
		t.Fatal(err)
	}

	completed := true
	testCases := []struct {
		params      ListTasksParams
		expectedIDs []string
	}{
		{
			params:      ListTasksParams{},
			expectedIDs: []string{t1.ID, t2.ID, t3.ID},
		},
		{
			params:      ListTasksParams{SessionID: &s.ID},
			expectedIDs: []string{t1.ID},
		},
		{
			params:      ListTasksParams{Completed: &completed},
			expectedIDs: []string{t2.ID},
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			tasks, err := a.ListTasks(ctx, alice, tc.params)
			if err != nil {
				t.Fatal(err)
			}

			ids := []string{}
			for _, task := range tasks {
				ids = append(ids, task.ID)
			}
			assert.DeepEqual(t, ids, tc.expectedIDs, "task ids mismatch")
		})
	}
}

func TestSetTaskCompleted(t *testing.T) {
	a, c := newTestApp(t)
	ctx := context.Background()
	alice := permissions.User("alice")

	task, err := a.CreateTask(ctx, alice, CreateTaskParams{Title: "read"})
	if err != nil {
		t.Fatal(err)
	}

	done, err := a.SetTaskCompleted(ctx, alice, task.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, done.IsCompleted, true, "IsCompleted mismatch")
	assert.TimeEqual(t, *done.CompletedAt, c.Now(), "CompletedAt mismatch")

	// completing again keeps the first completion time
	c.Advance(time.Hour)
	again, err := a.SetTaskCompleted(ctx, alice, task.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	assert.TimeEqual(t, *again.CompletedAt, *done.CompletedAt, "CompletedAt should not change")

	reopened, err := a.SetTaskCompleted(ctx, alice, task.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, reopened.IsCompleted, false, "IsCompleted mismatch")
	assert.Equal(t, reopened.CompletedAt == nil, true, "CompletedAt should be cleared")

	_, err = a.SetTaskCompleted(ctx, permissions.User("bob"), task.ID, true)
	assert.Equal(t, err, error(ErrNotFound), "error mismatch")
}

func TestLinkTask(t *testing.T) {
	a, c := newTestApp(t)
	ctx := context.Background()
	alice := permissions.User("alice")

	mine := testutils.SetupEndedSession(t, a.DB, "alice", c.Now(), 25)
	theirs := testutils.SetupEndedSession(t, a.DB, "bob", c.Now(), 25)
	task := testutils.SetupTask(t, a.DB, "alice", "read", false)

	linked, err := a.LinkTask(ctx, alice, task.ID, &mine.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, *linked.SessionID, mine.ID, "SessionID mismatch")

	_, err = a.LinkTask(ctx, alice, task.ID, &theirs.ID)
	assert.Equal(t, err, error(ErrNotFound), "error mismatch")

	unlinked, err := a.LinkTask(ctx, alice, task.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, unlinked.SessionID == nil, true, "task should be unlinked")
}

func TestDeleteTask(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	task := testutils.SetupTask(t, a.DB, "alice", "read", false)

	err := a.DeleteTask(ctx, permissions.User("bob"), task.ID)
	assert.Equal(t, err, error(ErrNotFound), "error mismatch")

	if err := a.DeleteTask(ctx, permissions.User("alice"), task.ID); err != nil {
		t.Fatal(err)
	}

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.Task{}).Count(&count), "counting tasks")
	assert.Equal(t, count, int64(0), "task count mismatch")
}
