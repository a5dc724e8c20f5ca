package seed

import (
	"fmt"
	"log"

	"shelftalk/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers         int
	BooksPerUser     int
	ReviewChance     float64
	NumConversations int
	MessagesPerPair  int
	MaxDays          int
	ShouldClean      bool
	SkipBcrypt       bool
}

// DefaultOptions returns a seed profile sized for local development.
func DefaultOptions() Options {
	return Options{
		NumUsers:         25,
		BooksPerUser:     6,
		ReviewChance:     0.4,
		NumConversations: 30,
		MessagesPerPair:  12,
		MaxDays:          30,
		ShouldClean:      true,
	}
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database: %d users, %d conversations", opts.NumUsers, opts.NumConversations)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("warning: could not clear all existing data: %v", err)
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users", len(users))

	var bookCount, reviewCount int
	for _, user := range users {
		for i := 0; i < opts.BooksPerUser; i++ {
			book, err := f.CreateBook(user)
			if err != nil {
				return fmt.Errorf("failed to create book: %w", err)
			}
			bookCount++

			if f.rng.Float64() < opts.ReviewChance {
				reviewer := users[f.rng.Intn(len(users))]
				if _, err := f.CreateReview(reviewer, book); err != nil {
					return fmt.Errorf("failed to create review: %w", err)
				}
				reviewCount++
			}
		}
	}
	log.Printf("created %d books and %d reviews", bookCount, reviewCount)

	if len(users) >= 2 {
		seeded := make(map[string]bool)
		for i := 0; i < opts.NumConversations; i++ {
			a := users[f.rng.Intn(len(users))]
			b := users[f.rng.Intn(len(users))]
			if a.ID == b.ID {
				continue
			}
			convID, err := models.DeriveConversationID(a.ID, b.ID)
			if err != nil {
				return err
			}
			if seeded[convID] {
				continue
			}
			seeded[convID] = true

			n := 1 + f.rng.Intn(opts.MessagesPerPair)
			if err := f.CreateConversation(a, b, n); err != nil {
				return fmt.Errorf("failed to seed conversation: %w", err)
			}
		}
		log.Printf("seeded %d conversations", len(seeded))
	}

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	for _, table := range []string{
		"conversation_unreads", "conversation_summaries", "messages",
		"reports", "reviews", "books", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
