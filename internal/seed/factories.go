// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"shelftalk/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var curatedBooks = []struct {
	Title  string
	Author string
}{
	{"The Dispossessed", "Ursula K. Le Guin"},
	{"The Left Hand of Darkness", "Ursula K. Le Guin"},
	{"A Memory Called Empire", "Arkady Martine"},
	{"Piranesi", "Susanna Clarke"},
	{"The Fifth Season", "N. K. Jemisin"},
	{"Kindred", "Octavia E. Butler"},
	{"Snow Crash", "Neal Stephenson"},
	{"The Name of the Wind", "Patrick Rothfuss"},
	{"Project Hail Mary", "Andy Weir"},
	{"Hyperion", "Dan Simmons"},
	{"The Remains of the Day", "Kazuo Ishiguro"},
	{"Pachinko", "Min Jin Lee"},
	{"The Master and Margarita", "Mikhail Bulgakov"},
	{"One Hundred Years of Solitude", "Gabriel García Márquez"},
	{"The Secret History", "Donna Tartt"},
}

var chatOpeners = []string{
	"Just finished chapter twelve, no spoilers please",
	"Have you started the new one yet?",
	"That ending completely wrecked me",
	"I cannot believe you rated it two stars",
	"Adding everything on your shelf to my list",
	"Book club is moving to Thursdays",
	"The audiobook narrator makes it so much better",
	"Halfway through and I already know the twist",
}

// CreateUser constructs and persists a sample account.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBook puts a book on the user's shelf, drawing from the curated list
// with a gofakeit fallback once it runs dry.
func (f *Factory) CreateBook(user *models.User, overrides ...func(*models.Book)) (*models.Book, error) {
	shelves := []string{models.ShelfRead, models.ShelfReading, models.ShelfWantToRead}
	book := &models.Book{
		UserID: user.ID,
		Shelf:  shelves[f.rng.Intn(len(shelves))],
	}

	if f.rng.Float64() < 0.8 {
		pick := curatedBooks[f.rng.Intn(len(curatedBooks))]
		book.Title = pick.Title
		book.Author = pick.Author
	} else {
		book.Title = gofakeit.BookTitle()
		book.Author = gofakeit.BookAuthor()
	}
	book.CoverURL = fmt.Sprintf("https://covers.example.com/%s.jpg", gofakeit.UUID())

	for _, override := range overrides {
		override(book)
	}

	if err := f.db.Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// CreateReview reviews a book. Roughly one in five rows is written in the
// legacy format with only a "good"/"bad" verdict and no numeric rating, so
// dev environments exercise the read-time normalization path.
func (f *Factory) CreateReview(user *models.User, book *models.Book) (*models.Review, error) {
	review := &models.Review{
		BookID: book.ID,
		UserID: user.ID,
	}

	if f.rng.Float64() < 0.2 {
		if f.rng.Float64() < 0.5 {
			review.Body = models.LegacyVerdictGood
		} else {
			review.Body = models.LegacyVerdictBad
		}
	} else {
		rating := 1 + f.rng.Intn(5)
		review.Rating = &rating
		review.Body = gofakeit.Paragraph(1, 2, 8, " ")
	}

	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CreateConversation writes a back-and-forth message log between two users,
// spread over the last maxDays, and builds the summary and unread rows the
// same way the live send path would have left them.
func (f *Factory) CreateConversation(a, b *models.User, numMessages int) error {
	convID, err := models.DeriveConversationID(a.ID, b.ID)
	if err != nil {
		return err
	}

	low, hi := a.ID, b.ID
	if hi < low {
		low, hi = hi, low
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	start := time.Now().Add(-time.Duration(f.rng.Intn(maxDays)+1) * 24 * time.Hour)

	var last *models.Message
	unread := map[string]int{a.ID: 0, b.ID: 0}

	for i := 0; i < numMessages; i++ {
		sender, recipient := a, b
		if i%2 == 1 {
			sender, recipient = b, a
		}

		text := chatOpeners[f.rng.Intn(len(chatOpeners))]
		if i > 0 {
			text = gofakeit.Sentence(4 + f.rng.Intn(8))
		}

		msg := &models.Message{
			ConversationID: convID,
			SenderID:       sender.ID,
			Text:           text,
			ParticipantLow: low,
			ParticipantHi:  hi,
			CreatedAt:      start.Add(time.Duration(i) * time.Duration(1+f.rng.Intn(50)) * time.Minute),
		}
		if err := f.db.Create(msg).Error; err != nil {
			return err
		}
		last = msg
		unread[recipient.ID]++
	}

	if last == nil {
		return nil
	}

	// Most seeded users have caught up on their conversations.
	for userID := range unread {
		if f.rng.Float64() < 0.6 {
			unread[userID] = 0
		}
	}

	summary := &models.ConversationSummary{
		ConversationID: convID,
		ParticipantLow: low,
		ParticipantHi:  hi,
		LastMessage:    last.Preview(),
		LastSenderID:   last.SenderID,
		LastMessageAt:  last.CreatedAt,
	}
	if err := f.db.Create(summary).Error; err != nil {
		return err
	}

	for userID, count := range unread {
		row := &models.ConversationUnread{
			ConversationID: convID,
			UserID:         userID,
			UnreadCount:    count,
		}
		if err := f.db.Create(row).Error; err != nil {
			return err
		}
	}

	log.Printf("seeded conversation %s with %d messages", convID, numMessages)
	return nil
}
