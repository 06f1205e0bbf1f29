package registry_test

import (
	"testing"

	"arcadechat/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_JoinAndLookup(t *testing.T) {
	r := registry.New()

	r.Join("c1", "R1", "alice", registry.KindChat)

	user, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, "R1", user.RoomID)
	assert.Equal(t, "alice", user.Nickname)
	assert.Equal(t, registry.KindChat, user.Kind)
	assert.Equal(t, 1, r.MemberCount(registry.KindChat, "R1"))
}

func TestRegistry_JoinMovesConnection(t *testing.T) {
	r := registry.New()

	r.Join("c1", "R1", "alice", registry.KindChat)
	r.Join("c1", "R2", "alice", registry.KindGame)

	user, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, "R2", user.RoomID)
	assert.Equal(t, registry.KindGame, user.Kind)

	// No lingering membership in the old room.
	assert.Equal(t, 0, r.MemberCount(registry.KindChat, "R1"))
	assert.Equal(t, 1, r.MemberCount(registry.KindGame, "R2"))
}

func TestRegistry_KindsAreDistinctNamespaces(t *testing.T) {
	r := registry.New()

	r.Join("c1", "R1", "alice", registry.KindChat)
	r.Join("c2", "R1", "bob", registry.KindGame)

	assert.Equal(t, 1, r.MemberCount(registry.KindChat, "R1"))
	assert.Equal(t, 1, r.MemberCount(registry.KindGame, "R1"))
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	r := registry.New()
	r.Join("c1", "R1", "alice", registry.KindChat)

	user, ok := r.Leave("c1")
	require.True(t, ok)
	assert.Equal(t, "R1", user.RoomID)

	_, ok = r.Leave("c1")
	assert.False(t, ok)

	_, ok = r.Lookup("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.MemberCount(registry.KindChat, "R1"))
}

func TestRegistry_LeaveUnknownConnection(t *testing.T) {
	r := registry.New()

	_, ok := r.Leave("never-joined")
	assert.False(t, ok)
}
