// Command main runs the database seeder for ShelfTalk.
package main

import (
	"flag"
	"log"

	"shelftalk/internal/config"
	"shelftalk/internal/database"
	"shelftalk/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	booksPerUser := flag.Int("books", 6, "Books per user shelf")
	numConversations := flag.Int("conversations", 30, "Conversations to seed")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("fast", false, "Skip bcrypt hashing for faster seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.DefaultOptions()
	opts.NumUsers = *numUsers
	opts.BooksPerUser = *booksPerUser
	opts.NumConversations = *numConversations
	opts.ShouldClean = *shouldClean
	opts.SkipBcrypt = *skipBcrypt

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
