package service

import (
	"testing"
	"time"

	"techtrain_backend/internal/model"
	"techtrain_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSession(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	session, err := f.sessions.OpenSession(userID, "net101", "")
	require.NoError(t, err)
	assert.Equal(t, model.ActivityTraining, session.ActivityType)
	assert.Nil(t, session.EndTime)
	assert.NotEmpty(t, session.ID)
}

func TestOpenSessionUnknownModule(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.sessions.OpenSession(userID, "ghost", model.ActivityTraining)
	assert.ErrorIs(t, err, util.ErrModuleNotInCatalog)
}

func TestOpenSessionTwiceRejected(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.sessions.OpenSession(userID, "net101", model.ActivityTraining)
	require.NoError(t, err)

	_, err = f.sessions.OpenSession(userID, "net101", model.ActivityTraining)
	assert.ErrorIs(t, err, util.ErrSessionAlreadyOpen)
}

func TestCloseSessionStampsDuration(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.sessions.OpenSession(userID, "net101", model.ActivityTraining)
	require.NoError(t, err)

	f.advance(2 * time.Minute)
	session, err := f.sessions.CloseSession(userID, "net101")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, session.EndTime)
	assert.Equal(t, 120, session.DurationSeconds)

	// Closed session time is folded into the module aggregate.
	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	assert.Equal(t, 120, progress.TotalDurationSeconds)
}

func TestCloseSessionNothingOpen(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	session, err := f.sessions.CloseSession(userID, "net101")
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestModuleDurationCombinesTasksAndSessions(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.sessions.OpenSession(userID, "net101", model.ActivityTraining)
	require.NoError(t, err)

	_, err = f.progress.StartTask(userID, "net101", "t1")
	require.NoError(t, err)
	f.advance(30 * time.Second)
	_, err = f.progress.CompleteTask(userID, "net101", "t1", CompleteTaskInput{Score: score(100)})
	require.NoError(t, err)

	f.advance(30 * time.Second)
	_, err = f.sessions.CloseSession(userID, "net101")
	require.NoError(t, err)

	progress, err := f.progress.ModuleProgress(userID, "net101")
	require.NoError(t, err)
	// 30s of task time plus the 60s closed session.
	assert.Equal(t, 90, progress.TotalDurationSeconds)
}

func TestSessionsForUser(t *testing.T) {
	f := newProgressFixture(t, netManifest)

	_, err := f.sessions.OpenSession(userID, "net101", model.ActivityTraining)
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.sessions.CloseSession(userID, "net101")
	require.NoError(t, err)
	_, err = f.sessions.OpenSession(userID, "net101", model.ActivityReview)
	require.NoError(t, err)

	sessions, err := f.sessions.SessionsForUser(userID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
