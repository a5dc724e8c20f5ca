package seed

import (
	"testing"

	"shelftalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Message{},
		&models.ConversationSummary{}, &models.ConversationUnread{},
		&models.Report{}, &models.Book{}, &models.Review{},
	))
	return db
}

func TestSeed(t *testing.T) {
	db := setupSeedDB(t)

	opts := Options{
		NumUsers:         6,
		BooksPerUser:     3,
		ReviewChance:     0.5,
		NumConversations: 8,
		MessagesPerPair:  5,
		MaxDays:          7,
		SkipBcrypt:       true,
	}
	require.NoError(t, Seed(db, opts))

	var userCount, bookCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Book{}).Count(&bookCount).Error)
	assert.EqualValues(t, 6, userCount)
	assert.EqualValues(t, 18, bookCount)

	var summaries []models.ConversationSummary
	require.NoError(t, db.Find(&summaries).Error)

	for _, s := range summaries {
		// The summary must agree with the underlying message log.
		wantID, err := models.DeriveConversationID(s.ParticipantLow, s.ParticipantHi)
		require.NoError(t, err)
		assert.Equal(t, wantID, s.ConversationID)

		var last models.Message
		require.NoError(t, db.Where("conversation_id = ?", s.ConversationID).
			Order("created_at DESC, id DESC").First(&last).Error)
		assert.Equal(t, last.Preview(), s.LastMessage)
		assert.Equal(t, last.SenderID, s.LastSenderID)
	}

	var unreads []models.ConversationUnread
	require.NoError(t, db.Find(&unreads).Error)
	for _, u := range unreads {
		assert.GreaterOrEqual(t, u.UnreadCount, 0)
	}
}

func TestSeed_CleanRemovesPreviousData(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, db.Create(&models.User{
		Username: "leftover", Email: "leftover@example.com", Password: "x",
	}).Error)

	opts := Options{
		NumUsers:     3,
		BooksPerUser: 1,
		ShouldClean:  true,
		SkipBcrypt:   true,
	}
	require.NoError(t, Seed(db, opts))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&count).Error)
	assert.Zero(t, count)
}

func TestFactory_LegacyReviewsGetNoRating(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	book, err := f.CreateBook(user)
	require.NoError(t, err)

	sawLegacy := false
	for i := 0; i < 50 && !sawLegacy; i++ {
		review, err := f.CreateReview(user, book)
		require.NoError(t, err)
		if review.Rating == nil {
			sawLegacy = true
			assert.Contains(t, []string{models.LegacyVerdictGood, models.LegacyVerdictBad}, review.Body)
		}
	}
	assert.True(t, sawLegacy, "expected at least one legacy-format review in 50 draws")
}
