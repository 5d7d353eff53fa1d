package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTextLength bounds thought text and reaction bodies, counted in runes.
const MaxTextLength = 280

// Thought is a short post. Username is a copy of the author name taken at
// creation and never rewritten.
type Thought struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ThoughtText string     `gorm:"size:280;not null" json:"thoughtText"`
	Username    string     `gorm:"size:100;not null;<-:create" json:"username"`
	UserID      string     `gorm:"type:varchar(36);index;not null;<-:create" json:"-"`
	CreatedAt   time.Time  `gorm:"<-:create" json:"createdAt"`
	UpdatedAt   time.Time  `json:"-"`
	Reactions   []Reaction `gorm:"foreignKey:ThoughtID;references:ID" json:"reactions"`
}

// BeforeCreate assigns an id and a UTC creation time when the caller left them empty.
func (t *Thought) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = Now()
	}
	return nil
}

// ReactionCount is always derived from the reaction list.
func (t Thought) ReactionCount() int {
	return len(t.Reactions)
}

type thoughtJSON struct {
	ID            string     `json:"id"`
	ThoughtText   string     `json:"thoughtText"`
	Username      string     `json:"username"`
	CreatedAt     time.Time  `json:"createdAt"`
	Reactions     []Reaction `json:"reactions"`
	ReactionCount int        `json:"reactionCount"`
}

func (t Thought) MarshalJSON() ([]byte, error) {
	reactions := t.Reactions
	if reactions == nil {
		reactions = []Reaction{}
	}
	return json.Marshal(thoughtJSON{
		ID:            t.ID,
		ThoughtText:   t.ThoughtText,
		Username:      t.Username,
		CreatedAt:     t.CreatedAt,
		Reactions:     reactions,
		ReactionCount: len(reactions),
	})
}

// Reaction is embedded in a thought and ordered by append time.
type Reaction struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	ReactionID   string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"reactionId"`
	ThoughtID    string    `gorm:"type:varchar(36);index;not null" json:"-"`
	ReactionBody string    `gorm:"size:280;not null" json:"reactionBody"`
	Username     string    `gorm:"size:100;not null" json:"username"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *Reaction) BeforeCreate(_ *gorm.DB) error {
	if r.ReactionID == "" {
		r.ReactionID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = Now()
	}
	return nil
}
