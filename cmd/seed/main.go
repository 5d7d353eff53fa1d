// Command main runs the database seeder.
package main

import (
	"context"
	"flag"
	"log"

	"socialapi/internal/bootstrap"
	"socialapi/internal/config"
	"socialapi/internal/seed"
	"socialapi/internal/service"
)

func main() {
	numUsers := flag.Int("users", seed.DefaultOptions.Users, "Number of users to create")
	numThoughts := flag.Int("thoughts", seed.DefaultOptions.ThoughtsPerUser, "Thoughts per user")
	numFriends := flag.Int("friends", seed.DefaultOptions.FriendsPerUser, "Friends per user")
	numReactions := flag.Int("reactions", seed.DefaultOptions.ReactionsPerThought, "Reactions per thought")
	fixture := flag.String("fixture", "", `YAML fixture to load instead of generated data ("demo" for the bundled one)`)
	shouldClean := flag.Bool("clean", false, "Delete all users and thoughts before seeding")
	fakeSeed := flag.Int64("seed", 0, "Random seed for generated data (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close(ctx)

	if *shouldClean {
		if err := rt.Reset(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("Existing data removed")
	}

	s := seed.NewSeeder(
		service.NewUserService(rt.Users),
		service.NewThoughtService(rt.Thoughts, rt.Users),
		*fakeSeed,
	)

	var res seed.Result
	switch *fixture {
	case "":
		res, err = s.Generate(ctx, seed.Options{
			Users:               *numUsers,
			ThoughtsPerUser:     *numThoughts,
			FriendsPerUser:      *numFriends,
			ReactionsPerThought: *numReactions,
		})
	default:
		var fx *seed.Fixture
		if *fixture == "demo" {
			fx, err = seed.DemoFixture()
		} else {
			fx, err = seed.LoadFixtureFile(*fixture)
		}
		if err == nil {
			res, err = s.ApplyFixture(ctx, fx)
		}
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d thoughts, %d friendships, %d reactions",
		res.Users, res.Thoughts, res.Friendships, res.Reactions)
}
