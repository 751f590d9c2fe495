// Command main loads generated readers, follows, tickets and reviews into the LitReview database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"litreview/internal/config"
	"litreview/internal/database"
	"litreview/internal/seed"
)

func main() {
	preset := flag.String("preset", "demo", fmt.Sprintf("Seed plan: one of %s, or a path to a YAML plan", strings.Join(seed.PresetNames(), ", ")))
	shouldClean := flag.Bool("clean", false, "Delete existing users and content before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate entities without writing them")
	password := flag.String("password", seed.DefaultPassword, "Password shared by every seeded account")
	fast := flag.Bool("fast", true, "Hash seeded passwords with the minimum bcrypt cost")
	randSeed := flag.Int64("rand-seed", 0, "Random seed for reproducible data (0 picks one)")
	flag.Parse()

	plan, err := seed.LoadPlan(*preset)
	if err != nil {
		log.Fatalf("Invalid seed plan: %v", err)
	}

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Plan %s: %d users, %d follows each, %d tickets each, %d reviews per ticket (clean=%v, dry-run=%v)\n",
		*preset, plan.Users, plan.FollowsPerUser, plan.TicketsPerUser, plan.ReviewsPerTicket, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if *shouldClean && !*dryRun {
		if err := seed.Clean(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := seed.Run(ctx, db, plan, seed.Options{
		Password: *password,
		FastHash: *fast,
		DryRun:   *dryRun,
		RandSeed: *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d follows (%d blocked), %d tickets, %d reviews\n",
		len(res.Users), res.Follows, res.Blocked, res.Tickets, res.Reviews)
	if !*dryRun && len(res.Users) > 0 {
		log.Printf("Log in as %q (or any seeded user) with password %q\n", res.Users[0].Username, *password)
	}
}
