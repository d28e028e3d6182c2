// Package main provides a tool to seed the database with sample Bookly data.
//
// It creates a verified admin, a couple of verified readers, and a small
// catalogue of books with tags and reviews. The search index is rebuilt by
// the server on its next start.
//
// Usage:
//
//	DATABASE_URL=sqlite://$HOME/Bookly/bookly.db go run ./cmd/seed
//	go run ./cmd/seed --password hunter22 --admin-email admin@bookly.local
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/bookly/bookly-server/internal/auth"
	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/id"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/service"
	"github.com/bookly/bookly-server/internal/store"
	"github.com/bookly/bookly-server/internal/store/sqlstore"
)

var (
	databaseURL = flag.String("database-url", "", "Database URL (default: $DATABASE_URL or sqlite://~/Bookly/bookly.db)")
	adminEmail  = flag.String("admin-email", "admin@bookly.local", "Email for the seeded admin account")
	password    = flag.String("password", "bookly123", "Password for every seeded account")
)

type seedBook struct {
	req  service.BookCreateRequest
	tags []string
}

var catalogue = []seedBook{
	{service.BookCreateRequest{Title: "Dune", Author: "Frank Herbert", Publisher: "Chilton Books", PublishedDate: "1965-08-01", PageCount: 412, Language: "en"}, []string{"Science Fiction", "Classic"}},
	{service.BookCreateRequest{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Publisher: "Ace Books", PublishedDate: "1969-03-01", PageCount: 304, Language: "en"}, []string{"Science Fiction"}},
	{service.BookCreateRequest{Title: "Pride and Prejudice", Author: "Jane Austen", Publisher: "T. Egerton", PublishedDate: "1813-01-28", PageCount: 432, Language: "en"}, []string{"Classic", "Romance"}},
	{service.BookCreateRequest{Title: "Cien años de soledad", Author: "Gabriel García Márquez", Publisher: "Editorial Sudamericana", PublishedDate: "1967-05-30", PageCount: 417, Language: "es"}, []string{"Magical Realism", "Classic"}},
	{service.BookCreateRequest{Title: "Neuromancer", Author: "William Gibson", Publisher: "Ace Books", PublishedDate: "1984-07-01", PageCount: 271, Language: "en"}, []string{"Science Fiction", "Cyberpunk"}},
}

var reviewTexts = []string{
	"Couldn't put it down.",
	"Slow start, brilliant ending.",
	"A little dated but still worth reading.",
	"One of my all-time favourites.",
	"Not for me, though I see the appeal.",
}

func main() {
	flag.Parse()

	url := *databaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		url = "sqlite://" + filepath.Join(home, "Bookly", "bookly.db")
	}

	fmt.Printf("Opening database at: %s\n", url)

	quiet := logger.Discard()
	s, err := sqlstore.Open(url, quiet)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	admin := ensureUser(ctx, s, "admin", *adminEmail, "Site", "Admin", domain.RoleAdmin)
	readers := []*domain.User{
		ensureUser(ctx, s, "ada", "ada@bookly.local", "Ada", "Lovelace", domain.RoleUser),
		ensureUser(ctx, s, "grace", "grace@bookly.local", "Grace", "Hopper", domain.RoleUser),
	}

	// No search index here; the server reindexes on start.
	books := service.NewBookService(s, nil, quiet)
	tags := service.NewTagService(s, books, quiet)
	reviews := service.NewReviewService(s, quiet)

	rng := rand.New(rand.NewPCG(42, 7))
	reviewCount := 0

	for _, sb := range catalogue {
		owner := readers[rng.IntN(len(readers))]
		b, err := books.Create(ctx, owner.UID, sb.req)
		if err != nil {
			log.Fatalf("Failed to create %q: %v", sb.req.Title, err)
		}

		tagReq := service.TagsAddRequest{}
		for _, name := range sb.tags {
			tagReq.Tags = append(tagReq.Tags, service.TagCreateRequest{Name: name})
		}
		if _, err := tags.AddToBook(ctx, b.UID, tagReq); err != nil {
			log.Fatalf("Failed to tag %q: %v", b.Title, err)
		}

		for _, reviewer := range append(readers, admin) {
			if rng.Float32() < 0.4 {
				continue
			}
			_, err := reviews.Create(ctx, reviewer, b.UID, service.ReviewCreateRequest{
				Rating:     domain.MinRating + rng.IntN(domain.MaxRating),
				ReviewText: reviewTexts[rng.IntN(len(reviewTexts))],
			})
			if err != nil {
				log.Fatalf("Failed to review %q: %v", b.Title, err)
			}
			reviewCount++
		}

		fmt.Printf("  + %s (%s) owned by %s\n", b.Title, b.Author, owner.Email)
	}

	fmt.Printf("\nSeeded %d books and %d reviews\n", len(catalogue), reviewCount)
	fmt.Printf("Log in as %s / %s\n", admin.Email, *password)
}

// ensureUser returns the account for email, creating a verified one if needed.
func ensureUser(ctx context.Context, s store.Store, username, email, first, last string, role domain.Role) *domain.User {
	existing, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		fmt.Printf("Using existing user: %s\n", email)
		return existing
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("Failed to look up %s: %v", email, err)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	u := &domain.User{
		UID:          id.New(),
		Username:     username,
		Email:        email,
		FirstName:    first,
		LastName:     last,
		IsVerified:   true,
		PasswordHash: hash,
		Role:         role,
	}
	u.InitTimestamps()

	if err := s.CreateUser(ctx, u); err != nil {
		log.Fatalf("Failed to create user %s: %v", email, err)
	}

	fmt.Printf("Created user: %s (%s)\n", email, role)
	return u
}
