package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()

	phone := NewClient(user, models.RoleDriver)
	laptop := NewClient(user, models.RoleDriver)

	assert.False(t, r.IsOnline(user))

	r.Register(phone)
	r.Register(laptop)
	assert.True(t, r.IsOnline(user))
	assert.Len(t, r.users[user], 2)
	assert.Equal(t, 1, r.OnlineUsers())

	r.Unregister(phone)
	assert.True(t, r.IsOnline(user), "one connection is still open")

	r.Unregister(laptop)
	assert.False(t, r.IsOnline(user))
	assert.Equal(t, 0, r.OnlineUsers(), "empty users are dropped entirely")
	assert.Empty(t, r.rooms)
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := NewClient(uuid.New(), models.RoleManager)
	r.Register(c)

	r.Unregister(c)
	assert.NotPanics(t, func() { r.Unregister(c) })

	_, open := <-c.Send()
	assert.False(t, open, "send queue is closed after unregister")
}

func TestRegistry_EmitToUserReachesEveryConnection(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()
	other := uuid.New()

	a := NewClient(user, models.RoleManager)
	b := NewClient(user, models.RoleManager)
	c := NewClient(other, models.RoleManager)
	r.Register(a)
	r.Register(b)
	r.Register(c)

	n, err := r.EmitToUser(user, "notification", map[string]string{"title": "Load Accepted"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, cl := range []*Client{a, b} {
		msg := <-cl.Send()
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Load Accepted", ev.Data.(map[string]interface{})["title"])
	}
	assert.Len(t, c.send, 0, "other users receive nothing")
}

func TestRegistry_EmitOfflineIsNoop(t *testing.T) {
	r := NewRegistry()
	n, err := r.EmitToUser(uuid.New(), "notification", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()
	c := NewClient(user, models.RoleDriver)
	r.Register(c)

	for i := 0; i < sendBuffer; i++ {
		n, err := r.EmitToUser(user, "notification", i)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	}

	n, err := r.EmitToUser(user, "notification", "overflow")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_ConcurrentConnectDisconnect(t *testing.T) {
	r := NewRegistry()
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := NewClient(users[i%len(users)], models.RoleDriver)
			r.Register(c)
			_, _ = r.EmitToUser(c.UserID, "notification", i)
			_ = r.IsOnline(c.UserID)
			r.Unregister(c)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, r.OnlineUsers())
	for _, u := range users {
		assert.False(t, r.IsOnline(u))
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	c := NewClient(uuid.New(), models.RoleManager)
	r.Register(c)

	r.Close()

	assert.Zero(t, r.OnlineUsers())
	_, open := <-c.Send()
	assert.False(t, open)
	assert.NotPanics(t, func() { r.Unregister(c) })
}

func TestRegistry_OnlineInRole(t *testing.T) {
	r := NewRegistry()
	driver := uuid.New()

	r.Register(NewClient(driver, models.RoleDriver))
	r.Register(NewClient(driver, models.RoleDriver))
	r.Register(NewClient(uuid.New(), models.RoleDriver))
	r.Register(NewClient(uuid.New(), models.RoleManager))

	assert.Equal(t, 2, r.OnlineInRole(models.RoleDriver))
	assert.Equal(t, 1, r.OnlineInRole(models.RoleManager))
}
