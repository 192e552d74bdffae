// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"math/rand"

	"chronicle/internal/models"
	"chronicle/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var categoryNames = []string{
	"Technology", "Science", "Politics", "Business", "Culture",
	"Sports", "Health", "Travel", "Food", "Opinion",
}

var tagPool = []string{
	"golang", "cloud", "ai", "startups", "security", "climate",
	"elections", "markets", "film", "music", "fitness", "recipes",
	"europe", "asia", "interview", "analysis", "explainer", "longread",
}

// Seeder populates the database with demo content.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, rng: rand.New(rand.NewSource(gofakeit.Int64()))}
}

// ClearAll wipes seeded content. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "post_tags", "posts", "tags", "categories", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates numUsers accounts plus one admin. Every account gets the
// password "password123".
func (s *Seeder) SeedUsers(numUsers int) ([]*models.User, error) {
	admin := &models.User{
		FirstName: "Ada",
		LastName:  "Editor",
		Email:     "admin@chronicle.test",
		IsAdmin:   true,
	}
	if err := admin.SetPassword("password123"); err != nil {
		return nil, err
	}
	if err := s.db.Create(admin).Error; err != nil {
		return nil, err
	}

	users := []*models.User{admin}
	for i := 0; i < numUsers; i++ {
		user := &models.User{
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     fmt.Sprintf("%d.%s", i, gofakeit.Email()),
		}
		if err := user.SetPassword("password123"); err != nil {
			return nil, err
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) SeedCategories() ([]*models.Category, error) {
	categories := make([]*models.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		category := &models.Category{Name: name}
		if err := s.db.Create(category).Error; err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *Seeder) SeedTags() ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagPool))
	for _, name := range tagPool {
		tag := models.Tag{Name: name}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// SeedPosts creates numPosts articles spread across the given users and
// categories, with comments and likes layered on top.
func (s *Seeder) SeedPosts(users []*models.User, categories []*models.Category, tags []models.Tag, numPosts int) error {
	usedSlugs := make(map[string]bool, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		category := categories[s.rng.Intn(len(categories))]

		post := &models.Post{
			Title:            gofakeit.Sentence(s.rng.Intn(6) + 4),
			Content:          gofakeit.Paragraph(3, 5, 12, "\n\n"),
			Excerpt:          gofakeit.Sentence(12),
			FeaturedImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
			UserID:           author.ID,
			CategoryID:       &category.ID,
			Views:            s.rng.Intn(5000),
			Featured:         s.rng.Intn(10) == 0,
			LatestNews:       s.rng.Intn(5) == 0,
			Tags:             pickTags(s.rng, tags),
		}
		// Same uniqueness convention as the write path: title-derived slug,
		// id suffix only on collision.
		base := slug.Make(post.Title, 0)
		if usedSlugs[base] {
			post.Slug = "pending-" + gofakeit.UUID()
		} else {
			post.Slug = base
		}
		if err := s.db.Create(post).Error; err != nil {
			return err
		}
		if usedSlugs[base] {
			post.Slug = slug.Make(post.Title, post.ID)
			if err := s.db.Model(post).UpdateColumn("slug", post.Slug).Error; err != nil {
				return err
			}
		}
		usedSlugs[base] = true

		if err := s.seedComments(users, post); err != nil {
			return err
		}
		if err := s.seedLikes(users, post); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedComments(users []*models.User, post *models.Post) error {
	numTop := s.rng.Intn(6)
	for i := 0; i < numTop; i++ {
		top := &models.Comment{
			Content: gofakeit.Sentence(s.rng.Intn(15) + 3),
			UserID:  users[s.rng.Intn(len(users))].ID,
			PostID:  post.ID,
		}
		if err := s.db.Create(top).Error; err != nil {
			return err
		}
		// A few replies under some comments, one level deep.
		for j := 0; j < s.rng.Intn(3); j++ {
			reply := &models.Comment{
				Content:         gofakeit.Sentence(s.rng.Intn(10) + 3),
				UserID:          users[s.rng.Intn(len(users))].ID,
				PostID:          post.ID,
				ParentCommentID: &top.ID,
			}
			if err := s.db.Create(reply).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedLikes inserts like rows and keeps the denormalized counter in step.
func (s *Seeder) seedLikes(users []*models.User, post *models.Post) error {
	numLikes := s.rng.Intn(len(users)/2 + 1)
	liked := s.rng.Perm(len(users))[:numLikes]
	for _, idx := range liked {
		if err := s.db.Create(&models.Like{
			UserID: users[idx].ID,
			PostID: post.ID,
		}).Error; err != nil {
			return err
		}
	}
	return s.db.Model(post).UpdateColumn("likes_count", numLikes).Error
}

func pickTags(rng *rand.Rand, tags []models.Tag) []models.Tag {
	n := rng.Intn(4)
	if n == 0 {
		return nil
	}
	picked := make([]models.Tag, 0, n)
	for _, idx := range rng.Perm(len(tags))[:n] {
		picked = append(picked, tags[idx])
	}
	return picked
}

// Run executes the full seeding pass.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}
	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	categories, err := s.SeedCategories()
	if err != nil {
		return err
	}
	tags, err := s.SeedTags()
	if err != nil {
		return err
	}
	return s.SeedPosts(users, categories, tags, opts.NumPosts)
}
