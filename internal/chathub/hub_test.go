package chathub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"anonychat/backend/internal/chathub"
	"anonychat/backend/internal/models"
)

func newTestHub(t *testing.T) (*chathub.Hub, *MockStorage) {
	t.Helper()
	storageMock := new(MockStorage)
	storageMock.On("AddWaitingMirror", mock.AnythingOfType("string")).Return(nil).Maybe()
	storageMock.On("RemoveWaitingMirror", mock.AnythingOfType("string")).Return(nil).Maybe()
	storageMock.On("SaveRoom", mock.AnythingOfType("*models.Room")).Return(nil).Maybe()
	storageMock.On("CloseRoom", mock.AnythingOfType("string")).Return(nil).Maybe()
	return chathub.New(storageMock, "wafa"), storageMock
}

func TestRequestMatch_FirstUserQueues(t *testing.T) {
	hub, storageMock := newTestHub(t)

	result, err := hub.RequestMatch("user_A")

	assert.NoError(t, err)
	assert.True(t, result.Queued)
	assert.Nil(t, result.Session)
	assert.Equal(t, []string{"user_A"}, hub.Waiting())
	storageMock.AssertCalled(t, "AddWaitingMirror", "user_A")
}

func TestRequestMatch_SecondUserPairsFIFO(t *testing.T) {
	hub, storageMock := newTestHub(t)

	_, err := hub.RequestMatch("user_A")
	assert.NoError(t, err)
	result, err := hub.RequestMatch("user_B")

	assert.NoError(t, err)
	assert.False(t, result.Queued)
	if assert.NotNil(t, result.Session) {
		assert.Equal(t, "user_B", result.Session.UserID)
		assert.Equal(t, "user_A", result.Session.PartnerID)
		assert.True(t, result.Session.Initiator, "requester side starts the room")
		assert.Contains(t, result.Session.RoomID, "wafa")
		assert.Len(t, result.Session.RoomID, len("wafa")+6)
	}
	assert.Empty(t, hub.Waiting())
	storageMock.AssertCalled(t, "RemoveWaitingMirror", "user_A")
	storageMock.AssertCalled(t, "SaveRoom", mock.AnythingOfType("*models.Room"))

	// Both sides share the room, partner ids mirror each other.
	mine, ok := hub.SessionFor("user_B")
	assert.True(t, ok)
	theirs, ok := hub.SessionFor("user_A")
	assert.True(t, ok)
	assert.Equal(t, mine.RoomID, theirs.RoomID)
	assert.Equal(t, "user_B", theirs.PartnerID)
	assert.False(t, theirs.Initiator)
}

func TestRequestMatch_DuplicateRequestRejected(t *testing.T) {
	hub, _ := newTestHub(t)

	_, err := hub.RequestMatch("user_A")
	assert.NoError(t, err)
	_, err = hub.RequestMatch("user_A")

	assert.ErrorIs(t, err, chathub.ErrAlreadyQueued)
	assert.Equal(t, []string{"user_A"}, hub.Waiting(), "queue must stay duplicate-free")
}

func TestRequestMatch_InSessionRejected(t *testing.T) {
	hub, _ := newTestHub(t)
	pairUsers(t, hub, "user_A", "user_B")

	_, err := hub.RequestMatch("user_A")

	assert.ErrorIs(t, err, chathub.ErrAlreadyInSession)
}

func TestCancel_RemovesWaiter(t *testing.T) {
	hub, storageMock := newTestHub(t)
	_, err := hub.RequestMatch("user_A")
	assert.NoError(t, err)

	assert.NoError(t, hub.Cancel("user_A"))
	assert.Empty(t, hub.Waiting())
	storageMock.AssertCalled(t, "RemoveWaitingMirror", "user_A")

	// Second cancel finds nothing.
	assert.ErrorIs(t, hub.Cancel("user_A"), chathub.ErrNotQueued)
}

func TestTeardown_RemovesBothSides(t *testing.T) {
	hub, storageMock := newTestHub(t)
	sess := pairUsers(t, hub, "user_A", "user_B")

	removed, err := hub.Teardown("user_B")

	assert.NoError(t, err)
	assert.Equal(t, sess.RoomID, removed.RoomID)
	assert.Equal(t, "user_A", removed.PartnerID)
	_, ok := hub.SessionFor("user_A")
	assert.False(t, ok, "partner side must be gone too")
	_, ok = hub.SessionFor("user_B")
	assert.False(t, ok)
	storageMock.AssertCalled(t, "CloseRoom", sess.RoomID)

	_, err = hub.Teardown("user_B")
	assert.ErrorIs(t, err, chathub.ErrNotInSession)
}

func TestAddStrike_CountsPerSide(t *testing.T) {
	hub, _ := newTestHub(t)
	pairUsers(t, hub, "user_A", "user_B")

	n, err := hub.AddStrike("user_A")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = hub.AddStrike("user_A")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	// The partner's counter is independent.
	n, err = hub.AddStrike("user_B")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = hub.AddStrike("user_C")
	assert.ErrorIs(t, err, chathub.ErrNotInSession)
}

func TestActivePairs_OneEntryPerRoom(t *testing.T) {
	hub, _ := newTestHub(t)
	sess := pairUsers(t, hub, "user_A", "user_B")

	pairs := hub.ActivePairs()

	assert.Len(t, pairs, 1)
	assert.Equal(t, sess.RoomID, pairs[0].RoomID)
	assert.Equal(t, "user_B", pairs[0].User1ID, "initiator is listed first")
	assert.Equal(t, "user_A", pairs[0].User2ID)
}

func TestRestoreActiveRooms_RebuildsSessions(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("WaitingMirror").Return([]string(nil), nil).Once()
	storageMock.On("GetActiveRoomIDs").Return([]string{"wafa123456"}, nil).Once()
	storageMock.On("GetRoomByID", "wafa123456").Return(&models.Room{
		RoomID:   "wafa123456",
		User1ID:  "user_A",
		User2ID:  "user_B",
		IsActive: true,
	}, nil).Once()
	hub := chathub.New(storageMock, "wafa")

	hub.RestoreActiveRooms()

	sess, ok := hub.SessionFor("user_A")
	assert.True(t, ok)
	assert.Equal(t, "wafa123456", sess.RoomID)
	assert.Equal(t, "user_B", sess.PartnerID)
	assert.Zero(t, sess.Strikes, "strike counters restart after recovery")
	_, ok = hub.SessionFor("user_B")
	assert.True(t, ok)
	storageMock.AssertExpectations(t)
}

func TestRestoreActiveRooms_ClearsStaleQueueMirror(t *testing.T) {
	// The queue itself never survives a restart, so leftover mirror entries
	// from the previous process are dropped during recovery.
	storageMock := new(MockStorage)
	storageMock.On("WaitingMirror").Return([]string{"user_A", "user_B"}, nil).Once()
	storageMock.On("RemoveWaitingMirror", "user_A").Return(nil).Once()
	storageMock.On("RemoveWaitingMirror", "user_B").Return(nil).Once()
	storageMock.On("GetActiveRoomIDs").Return([]string(nil), nil).Once()
	hub := chathub.New(storageMock, "wafa")

	hub.RestoreActiveRooms()

	assert.Empty(t, hub.Waiting())
	storageMock.AssertExpectations(t)
}

// pairUsers queues user1 then matches user2 against them, returning user2's
// session side.
func pairUsers(t *testing.T, hub *chathub.Hub, user1, user2 string) chathub.Session {
	t.Helper()
	_, err := hub.RequestMatch(user1)
	assert.NoError(t, err)
	result, err := hub.RequestMatch(user2)
	assert.NoError(t, err)
	if result.Session == nil {
		t.Fatal("expected a session")
	}
	return *result.Session
}
