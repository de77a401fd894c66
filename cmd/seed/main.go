// Command main runs the database seeder.
package main

import (
	"flag"
	"log"

	"kulan/internal/config"
	"kulan/internal/database"
	"kulan/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	numChats := flag.Int("chats", 20, "Number of chats to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if err := s.SeedPosts(users, *numPosts); err != nil {
		log.Fatalf("Post seeding failed: %v", err)
	}
	if err := s.SeedChats(users, *numChats); err != nil {
		log.Fatalf("Chat seeding failed: %v", err)
	}

	log.Printf("Done: %d users seeded, password %q", len(users), seed.DefaultPassword)
}
