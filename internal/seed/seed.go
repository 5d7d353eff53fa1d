// Package seed populates a store with demo data for development and testing.
// Everything goes through the services so the same invariants hold as for
// API traffic.
package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"socialapi/internal/middleware"
	"socialapi/internal/models"
	"socialapi/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Options sizes a generated data set.
type Options struct {
	Users               int
	ThoughtsPerUser     int
	FriendsPerUser      int
	ReactionsPerThought int
}

// DefaultOptions is what cmd/seed uses when no flags are given.
var DefaultOptions = Options{
	Users:               10,
	ThoughtsPerUser:     3,
	FriendsPerUser:      2,
	ReactionsPerThought: 2,
}

// Result counts what a seeding run created.
type Result struct {
	Users       int
	Thoughts    int
	Friendships int
	Reactions   int
}

// Seeder creates users, friendships, thoughts and reactions.
type Seeder struct {
	users    *service.UserService
	thoughts *service.ThoughtService
	faker    *gofakeit.Faker
}

// NewSeeder builds a seeder. A zero fakeSeed picks a random one.
func NewSeeder(users *service.UserService, thoughts *service.ThoughtService, fakeSeed int64) *Seeder {
	return &Seeder{users: users, thoughts: thoughts, faker: gofakeit.New(fakeSeed)}
}

// Generate creates a random data set sized by opts.
func (s *Seeder) Generate(ctx context.Context, opts Options) (Result, error) {
	var res Result
	if opts.Users <= 0 {
		return res, nil
	}

	users := make([]*models.UserProfile, 0, opts.Users)
	for i := range opts.Users {
		username := fmt.Sprintf("%s_%d", s.faker.Username(), i+1)
		email := fmt.Sprintf("%s@%s", strings.ToLower(username), s.faker.DomainName())
		u, err := s.users.CreateUser(ctx, service.CreateUserInput{Username: username, Email: email})
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", username, err)
		}
		users = append(users, u)
		res.Users++
	}

	for i, u := range users {
		for _, j := range s.pickFriends(i, len(users), opts.FriendsPerUser) {
			if _, err := s.users.AddFriend(ctx, u.ID, users[j].ID); err != nil {
				return res, fmt.Errorf("add friend %s -> %s: %w", u.Username, users[j].Username, err)
			}
			res.Friendships++
		}
	}

	for _, u := range users {
		for range opts.ThoughtsPerUser {
			t, err := s.thoughts.CreateThought(ctx, service.CreateThoughtInput{
				ThoughtText: clip(s.faker.Sentence(s.faker.Number(4, 16)), 280),
				Username:    u.Username,
				UserID:      u.ID,
			})
			if err != nil {
				return res, fmt.Errorf("create thought for %s: %w", u.Username, err)
			}
			res.Thoughts++

			for range opts.ReactionsPerThought {
				reactor := users[s.faker.Number(0, len(users)-1)]
				if _, err := s.thoughts.AddReaction(ctx, service.AddReactionInput{
					ThoughtID:    t.ID,
					ReactionBody: clip(s.faker.Sentence(s.faker.Number(2, 8)), 280),
					Username:     reactor.Username,
				}); err != nil {
					return res, fmt.Errorf("add reaction to %s: %w", t.ID, err)
				}
				res.Reactions++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed data generated",
		"users", res.Users,
		"thoughts", res.Thoughts,
		"friendships", res.Friendships,
		"reactions", res.Reactions,
	)
	return res, nil
}

// pickFriends returns up to n distinct indices in [0,total) other than self,
// starting at a random offset.
func (s *Seeder) pickFriends(self, total, n int) []int {
	others := total - 1
	if n > others {
		n = others
	}
	if n <= 0 {
		return nil
	}
	offset := s.faker.Number(0, others-1)
	out := make([]int, 0, n)
	for k := range n {
		j := (offset + k) % others
		if j >= self {
			j++
		}
		out = append(out, j)
	}
	return out
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
