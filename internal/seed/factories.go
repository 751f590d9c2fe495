package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"litreview/internal/models"
	"litreview/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed plans and tests.
type Factory struct {
	db           *gorm.DB
	opts         Options
	faker        *gofakeit.Faker
	rng          *rand.Rand
	passwordHash string
	now          time.Time
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB. db may be nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	opts = opts.withDefaults()
	hash, err := hashPassword(opts.Password, opts.FastHash)
	if err != nil {
		return nil, err
	}
	// #nosec G404: weak random is fine for seeding
	rng := rand.New(rand.NewSource(opts.RandSeed))
	return &Factory{
		db:           db,
		opts:         opts,
		faker:        gofakeit.New(opts.RandSeed),
		rng:          rng,
		passwordHash: hash,
		now:          time.Now(),
		nextID:       1000,
	}, nil
}

// spreadTime returns a moment within the last maxDays days.
func (f *Factory) spreadTime(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Int63n(int64(maxDays) * int64(24*time.Hour)))
	return f.now.Add(-back).Truncate(time.Second)
}

// after returns a moment between t and now.
func (f *Factory) after(t time.Time) time.Time {
	gap := f.now.Sub(t)
	if gap <= time.Second {
		return t
	}
	return t.Add(time.Duration(f.rng.Int63n(int64(gap)))).Truncate(time.Second)
}

func (f *Factory) save(value any) error {
	if f.opts.DryRun {
		f.nextID++
		return nil
	}
	return f.db.Omit(clause.Associations).Create(value).Error
}

// BuildUser constructs a user with a unique-looking username. n disambiguates generated names.
func (f *Factory) BuildUser(n int, overrides ...func(*models.User)) *models.User {
	base := strings.ToLower(f.faker.Username())
	base = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, base)
	if base == "" {
		base = "reader"
	}
	username := clip(fmt.Sprintf("%s%d", base, n), validation.UsernameMaxLength)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: f.passwordHash,
		Bio:      f.faker.HipsterSentence(8),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(n, overrides...)
	if err := f.save(user); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		user.ID = f.nextID
	}
	return user, nil
}

// CreateFollow persists a follow edge from follower to followed.
func (f *Factory) CreateFollow(follower, followed *models.User, blocked bool) (*models.FollowEdge, error) {
	if follower.ID == followed.ID {
		return nil, fmt.Errorf("user %d cannot follow itself", follower.ID)
	}
	edge := &models.FollowEdge{FollowerID: follower.ID, FollowedID: followed.ID, Blocked: blocked}
	if err := f.save(edge); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		edge.ID = f.nextID
	}
	return edge, nil
}

// BuildTicket constructs a review request about a made-up book.
func (f *Factory) BuildTicket(author *models.User, maxDays int, overrides ...func(*models.Ticket)) *models.Ticket {
	at := f.spreadTime(maxDays)
	ticket := &models.Ticket{
		Title:       clip(f.bookTitle(), validation.TicketTitleMaxLength),
		Description: clip(fmt.Sprintf("A %s novel by %s. %s", genres[f.rng.Intn(len(genres))], f.faker.Name(), f.faker.Paragraph(1, 3, 10, " ")), validation.TicketDescriptionMaxLength),
		UserID:      author.ID,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	for _, override := range overrides {
		override(ticket)
	}
	return ticket
}

var genres = []string{
	"fantasy", "science fiction", "mystery", "historical", "literary", "horror", "romance", "crime",
}

func (f *Factory) bookTitle() string {
	words := []string{"The", title(f.faker.Adjective()), title(f.faker.Noun())}
	if f.rng.Intn(3) == 0 {
		words = append(words, "of", title(f.faker.Noun()))
	}
	return strings.Join(words, " ")
}

func title(word string) string {
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	return strings.ToUpper(string(r)) + word[size:]
}

// CreateTicket constructs and persists a sample ticket.
func (f *Factory) CreateTicket(author *models.User, maxDays int, overrides ...func(*models.Ticket)) (*models.Ticket, error) {
	ticket := f.BuildTicket(author, maxDays, overrides...)
	if err := f.save(ticket); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		ticket.ID = f.nextID
	}
	return ticket, nil
}

// BuildReview constructs a review of ticket written after the ticket was posted.
func (f *Factory) BuildReview(author *models.User, ticket *models.Ticket, overrides ...func(*models.Review)) *models.Review {
	at := f.after(ticket.CreatedAt)
	review := &models.Review{
		TicketID:  ticket.ID,
		UserID:    author.ID,
		Rating:    f.rng.Intn(models.MaxRating-models.MinRating+1) + models.MinRating,
		Headline:  clip(strings.TrimSuffix(f.faker.Sentence(5), "."), validation.ReviewHeadlineMaxLength),
		Body:      clip(f.faker.Paragraph(2, 4, 12, "\n\n"), validation.ReviewBodyMaxLength),
		CreatedAt: at,
		UpdatedAt: at,
	}
	for _, override := range overrides {
		override(review)
	}
	return review
}

// CreateReview constructs and persists a sample review.
func (f *Factory) CreateReview(author *models.User, ticket *models.Ticket, overrides ...func(*models.Review)) (*models.Review, error) {
	review := f.BuildReview(author, ticket, overrides...)
	if err := f.save(review); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		review.ID = f.nextID
	}
	return review, nil
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
