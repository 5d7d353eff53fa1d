// Package models defines the domain entities persisted by the repositories
// and serialized by the HTTP layer.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. ThoughtIDs and FriendIDs are hydrated by the
// repository; SQL stores derive them from thoughts.user_id and friendships.
type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username   string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	ThoughtIDs []string  `gorm:"-" json:"thoughts"`
	FriendIDs  []string  `gorm:"-" json:"friends"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// BeforeCreate assigns an id and a UTC creation time when the caller left them empty.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = Now()
	}
	return nil
}

// FriendCount is always derived from the friend list.
func (u User) FriendCount() int {
	return len(u.FriendIDs)
}

// HasFriend reports whether id is already in the friend list.
func (u User) HasFriend(id string) bool {
	for _, f := range u.FriendIDs {
		if f == id {
			return true
		}
	}
	return false
}

type userJSON struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Thoughts    []string `json:"thoughts"`
	Friends     []string `json:"friends"`
	FriendCount int      `json:"friendCount"`
}

// MarshalJSON renders friends and thoughts as id arrays.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Thoughts:    nonNil(u.ThoughtIDs),
		Friends:     nonNil(u.FriendIDs),
		FriendCount: u.FriendCount(),
	})
}

// UserProfile is a user with its friends populated one level deep.
type UserProfile struct {
	User
	Friends []User
}

type userProfileJSON struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Thoughts    []string `json:"thoughts"`
	Friends     []User   `json:"friends"`
	FriendCount int      `json:"friendCount"`
}

// MarshalJSON renders friends as full user objects.
func (p UserProfile) MarshalJSON() ([]byte, error) {
	friends := p.Friends
	if friends == nil {
		friends = []User{}
	}
	return json.Marshal(userProfileJSON{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		Thoughts:    nonNil(p.ThoughtIDs),
		Friends:     friends,
		FriendCount: len(friends),
	})
}

// Friendship is a one-directional edge from UserID to FriendID. The
// autoincrement ID gives insertion order.
type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair"`
	FriendID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair"`
	CreatedAt time.Time
}

// Now returns the current time in UTC at microsecond precision, the finest
// precision postgres keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
