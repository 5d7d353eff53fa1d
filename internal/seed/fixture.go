package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"socialapi/internal/middleware"
	"socialapi/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yml
var demoFixture []byte

// Fixture is a hand-written data set. Friends and reactions refer to users
// by username.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

type FixtureUser struct {
	Username string           `yaml:"username"`
	Email    string           `yaml:"email"`
	Friends  []string         `yaml:"friends"`
	Thoughts []FixtureThought `yaml:"thoughts"`
}

type FixtureThought struct {
	Text      string            `yaml:"text"`
	Reactions []FixtureReaction `yaml:"reactions"`
}

type FixtureReaction struct {
	Username string `yaml:"username"`
	Body     string `yaml:"body"`
}

// LoadFixture decodes a YAML fixture, rejecting unknown keys.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// LoadFixtureFile reads a fixture from disk.
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadFixture(f)
}

// DemoFixture returns the bundled jenny/mike/veronica data set.
func DemoFixture() (*Fixture, error) {
	return LoadFixture(bytes.NewReader(demoFixture))
}

// ApplyFixture creates every user first, then friendships, then thoughts and
// their reactions in file order.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (Result, error) {
	var res Result
	ids := make(map[string]string, len(fx.Users))

	for _, fu := range fx.Users {
		u, err := s.users.CreateUser(ctx, service.CreateUserInput{Username: fu.Username, Email: fu.Email})
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", fu.Username, err)
		}
		ids[u.Username] = u.ID
		res.Users++
	}

	for _, fu := range fx.Users {
		for _, name := range fu.Friends {
			friendID, ok := ids[name]
			if !ok {
				return res, fmt.Errorf("user %s: unknown friend %q", fu.Username, name)
			}
			if _, err := s.users.AddFriend(ctx, ids[fu.Username], friendID); err != nil {
				return res, fmt.Errorf("add friend %s -> %s: %w", fu.Username, name, err)
			}
			res.Friendships++
		}
	}

	for _, fu := range fx.Users {
		for _, ft := range fu.Thoughts {
			t, err := s.thoughts.CreateThought(ctx, service.CreateThoughtInput{
				ThoughtText: ft.Text,
				Username:    fu.Username,
				UserID:      ids[fu.Username],
			})
			if err != nil {
				return res, fmt.Errorf("create thought for %s: %w", fu.Username, err)
			}
			res.Thoughts++

			for _, fr := range ft.Reactions {
				if _, err := s.thoughts.AddReaction(ctx, service.AddReactionInput{
					ThoughtID:    t.ID,
					ReactionBody: fr.Body,
					Username:     fr.Username,
				}); err != nil {
					return res, fmt.Errorf("add reaction to %s: %w", t.ID, err)
				}
				res.Reactions++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "fixture applied",
		"users", res.Users,
		"thoughts", res.Thoughts,
		"friendships", res.Friendships,
		"reactions", res.Reactions,
	)
	return res, nil
}
