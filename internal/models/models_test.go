package models

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(t *testing.T, b []byte) []string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestUser_MarshalJSON(t *testing.T) {
	t.Run("empty lists serialize as arrays", func(t *testing.T) {
		b, err := json.Marshal(User{ID: "u1", Username: "jenny", Email: "jenny@gmail.com"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"u1","username":"jenny","email":"jenny@gmail.com","thoughts":[],"friends":[],"friendCount":0}`, string(b))
	})

	t.Run("friendCount follows friends", func(t *testing.T) {
		b, err := json.Marshal(User{ID: "u1", FriendIDs: []string{"u2", "u3"}, ThoughtIDs: []string{"t1"}})
		require.NoError(t, err)
		var out struct {
			Friends     []string `json:"friends"`
			Thoughts    []string `json:"thoughts"`
			FriendCount int      `json:"friendCount"`
		}
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, []string{"u2", "u3"}, out.Friends)
		assert.Equal(t, []string{"t1"}, out.Thoughts)
		assert.Equal(t, 2, out.FriendCount)
	})

	t.Run("round trips through the cache encoding", func(t *testing.T) {
		in := User{ID: "u1", Username: "mike", Email: "mike@gmail.com", FriendIDs: []string{"u2"}, ThoughtIDs: []string{"t9"}}
		b, err := json.Marshal(in)
		require.NoError(t, err)
		var out User
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, in.ID, out.ID)
		assert.Equal(t, in.FriendIDs, out.FriendIDs)
		assert.Equal(t, in.ThoughtIDs, out.ThoughtIDs)
	})
}

func TestUserProfile_MarshalJSON(t *testing.T) {
	friend := User{ID: "u2", Username: "mike", Email: "mike@gmail.com", FriendIDs: []string{"u3"}}
	p := UserProfile{
		User:    User{ID: "u1", Username: "jenny", Email: "jenny@gmail.com", FriendIDs: []string{"u2"}},
		Friends: []User{friend},
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "friendCount", "friends", "id", "thoughts", "username"}, keysOf(t, b))

	var out struct {
		Friends     []map[string]json.RawMessage `json:"friends"`
		FriendCount int                          `json:"friendCount"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out.Friends, 1)
	assert.Equal(t, 1, out.FriendCount)
	assert.Len(t, out.Friends[0], 6, "populated friends carry every user key")
	assert.JSONEq(t, `["u3"]`, string(out.Friends[0]["friends"]))
}

func TestThought_MarshalJSON(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	th := Thought{
		ID:          "t1",
		ThoughtText: "hello",
		Username:    "jenny",
		UserID:      "u1",
		CreatedAt:   created,
		Reactions: []Reaction{
			{ReactionID: "r1", ReactionBody: "nice", Username: "mike", CreatedAt: created},
		},
	}

	b, err := json.Marshal(th)
	require.NoError(t, err)
	assert.Equal(t, []string{"createdAt", "id", "reactionCount", "reactions", "thoughtText", "username"}, keysOf(t, b))
	assert.NotContains(t, string(b), "u1", "author id stays internal")

	var out struct {
		ReactionCount int `json:"reactionCount"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, 1, out.ReactionCount)

	b, err = json.Marshal(Thought{ID: "t2"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"reactions":[]`)
	assert.Contains(t, string(b), `"reactionCount":0`)
}

func TestAppError(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, ErrorCode(err))

	wrapped := errors.Join(errors.New("context"), NewNotFoundError("User", "abc"))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "User with ID abc not found", NewNotFoundError("User", "abc").Error())
	assert.Equal(t, "", ErrorCode(cause))
}
