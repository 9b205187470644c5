package seed

import (
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/reaction"
	"inkwell/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every seeded user.
const DefaultPassword = "password123"

// Factory builds domain entities with fake content and persists them.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	clock clockwork.Clock
	// hash is the bcrypt hash of DefaultPassword shared by every user.
	hash string
	seq  int
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64) (*Factory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		db:    db,
		faker: gofakeit.New(seed),
		clock: clockwork.NewRealClock(),
		hash:  string(hash),
	}, nil
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

// createdAt spreads timestamps over the last 90 days.
func (f *Factory) createdAt() time.Time {
	now := f.clock.Now().UTC()
	return f.faker.DateRange(now.Add(-90*24*time.Hour), now).UTC()
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = strings.TrimSpace(s[:n])
	}
	return s
}

// CreateUser persists a user with a unique login of at most 10 characters.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	n := f.next()
	suffix := fmt.Sprintf("%d", n)
	base := strings.ToLower(f.faker.FirstName())
	base = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, base)
	if base == "" {
		base = "user"
	}
	login := clip(base, validation.LoginMax-len(suffix)) + suffix
	if len(login) < validation.LoginMin {
		login = "usr" + suffix
	}

	user := &models.User{
		Login:     login,
		Email:     fmt.Sprintf("%s@%s", login, f.faker.DomainName()),
		Password:  f.hash,
		CreatedAt: f.createdAt(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBlog persists a blog owned by owner.
func (f *Factory) CreateBlog(owner *models.User, overrides ...func(*models.Blog)) (*models.Blog, error) {
	blog := &models.Blog{
		Name:         clip(f.faker.BuzzWord()+" "+f.faker.Noun(), validation.BlogNameMax),
		Description:  clip(f.faker.Paragraph(1, 3, 12, " "), validation.BlogDescriptionMax),
		WebsiteURL:   "https://" + strings.ToLower(f.faker.DomainName()),
		IsMembership: f.faker.Bool(),
		OwnerID:      &owner.ID,
		OwnerLogin:   owner.Login,
		CreatedAt:    f.createdAt(),
	}
	for _, override := range overrides {
		override(blog)
	}
	if err := f.db.Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

// CreatePost persists a post in blog, reacted to by a random subset of reactors.
func (f *Factory) CreatePost(blog *models.Blog, reactors []models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:            clip(f.faker.HackerPhrase(), validation.PostTitleMax),
		ShortDescription: clip(f.faker.Sentence(10), validation.PostShortDescMax),
		Content:          clip(f.faker.Paragraph(2, 4, 15, "\n"), validation.PostContentMax),
		BlogID:           blog.ID,
		BlogName:         blog.Name,
		CreatedAt:        f.createdAt(),
	}
	f.react(&post.State, reactors)
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by author under post, reacted to by a random subset of reactors.
func (f *Factory) CreateComment(post *models.Post, author *models.User, reactors []models.User, overrides ...func(*models.Comment)) (*models.Comment, error) {
	content := f.faker.Sentence(12)
	for len(content) < validation.CommentContentMin {
		content += " " + f.faker.Sentence(4)
	}
	comment := &models.Comment{
		Content:          clip(content, validation.CommentContentMax),
		PostID:           post.ID,
		CommentatorID:    author.ID,
		CommentatorLogin: author.Login,
		CreatedAt:        f.createdAt(),
	}
	f.react(&comment.State, reactors)
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// react applies a Like or Dislike from about half of the reactors.
// Likes outnumber dislikes roughly three to one.
func (f *Factory) react(state *reaction.State, reactors []models.User) {
	at := f.clock.Now().UTC().Add(-time.Duration(len(reactors)) * time.Minute)
	for i := range reactors {
		if !f.faker.Bool() {
			continue
		}
		status := reaction.Like
		if f.faker.Number(1, 4) == 1 {
			status = reaction.Dislike
		}
		at = at.Add(time.Minute)
		state.React(reactors[i].ID, reactors[i].Login, status, at)
	}
}
