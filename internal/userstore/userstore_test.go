package userstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"anonychat/backend/internal/models"
	"anonychat/backend/internal/storage"
	"anonychat/backend/internal/userstore"
)

type stubStorage struct {
	storage.Storage
	seed     []models.User
	saved    []models.User
	banFlags map[string]bool
}

func (s *stubStorage) AllUsers() ([]models.User, error) { return s.seed, nil }

func (s *stubStorage) SaveUser(u *models.User) error {
	s.saved = append(s.saved, *u)
	return nil
}

func (s *stubStorage) SetBanFlag(id string, banned bool) error {
	if s.banFlags == nil {
		s.banFlags = make(map[string]bool)
	}
	s.banFlags[id] = banned
	return nil
}

func (s *stubStorage) IsBannedFlag(id string) (bool, error) {
	return s.banFlags[id], nil
}

func TestTouch_CreatesWithDerivedNickname(t *testing.T) {
	st := &stubStorage{}
	store := userstore.New(st)

	user := store.Touch("628123@c.us")

	assert.Equal(t, "628123@c.us", user.ID)
	assert.Equal(t, "628123", user.Nickname)
	assert.False(t, user.Banned)
	assert.WithinDuration(t, time.Now(), user.JoinedAt, time.Second)
	assert.NotEmpty(t, st.saved, "new users are persisted")
}

func TestTouch_RefreshesLastActiveOnly(t *testing.T) {
	store := userstore.New(&stubStorage{})
	first := store.Touch("628123@c.us")

	second := store.Touch("628123@c.us")

	assert.Equal(t, first.JoinedAt, second.JoinedAt, "join date never moves")
	assert.False(t, second.LastActive.Before(first.LastActive))
}

func TestTouch_LoadsSeededUsers(t *testing.T) {
	st := &stubStorage{seed: []models.User{{ID: "628123@c.us", Nickname: "628123", ChatCount: 7}}}
	store := userstore.New(st)

	user := store.Touch("628123@c.us")

	assert.Equal(t, 7, user.ChatCount, "existing rows survive a restart")
}

func TestWarn_Increments(t *testing.T) {
	store := userstore.New(&stubStorage{})
	store.Touch("628123@c.us")

	n, ok := store.Warn("628123@c.us")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	n, _ = store.Warn("628123@c.us")
	assert.Equal(t, 2, n)

	_, ok = store.Warn("ghost@c.us")
	assert.False(t, ok)
}

func TestToggleBan_FlipsAndMirrors(t *testing.T) {
	st := &stubStorage{}
	store := userstore.New(st)
	store.Touch("628123@c.us")

	banned, ok := store.ToggleBan("628123@c.us")
	assert.True(t, ok)
	assert.True(t, banned)
	assert.True(t, st.banFlags["628123@c.us"], "redis flag follows the ban")

	banned, _ = store.ToggleBan("628123@c.us")
	assert.False(t, banned)
	assert.False(t, st.banFlags["628123@c.us"])

	_, ok = store.ToggleBan("ghost@c.us")
	assert.False(t, ok)
}

func TestIsBanned_PicksUpExternalFlag(t *testing.T) {
	st := &stubStorage{}
	store := userstore.New(st)
	store.Touch("628123@c.us")

	assert.False(t, store.IsBanned("628123@c.us"))

	// A ban written by another process shows up via the flag mirror and is
	// folded back into the record.
	st.banFlags = map[string]bool{"628123@c.us": true}
	assert.True(t, store.IsBanned("628123@c.us"))
	u, _ := store.Get("628123@c.us")
	assert.True(t, u.Banned)
}

func TestNotBanned_ExcludesBanned(t *testing.T) {
	store := userstore.New(&stubStorage{})
	store.Touch("a@c.us")
	store.Touch("b@c.us")
	store.Touch("c@c.us")
	store.SetBanned("b@c.us", true)

	ids := store.NotBanned()

	assert.ElementsMatch(t, []string{"a@c.us", "c@c.us"}, ids)
}

func TestAll_SortedByJoinDate(t *testing.T) {
	now := time.Now()
	st := &stubStorage{seed: []models.User{
		{ID: "late@c.us", JoinedAt: now},
		{ID: "early@c.us", JoinedAt: now.Add(-time.Hour)},
	}}
	store := userstore.New(st)

	users := store.All()

	if assert.Len(t, users, 2) {
		assert.Equal(t, "early@c.us", users[0].ID)
		assert.Equal(t, "late@c.us", users[1].ID)
	}
}
