// Package main provides a tool to seed the database with demo content.
//
// It creates a handful of users, posts with tags, comments, follows,
// and likes so feeds, trending, and search have something to show.
//
// Usage:
//
//	DATA_PATH=~/Inkwell/data go run ./cmd/seed
//	DATA_PATH=~/Inkwell/data go run ./cmd/seed --posts 50
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/sse"
	"github.com/inkwellapp/inkwell-server/internal/store/sqlite"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

var postCount = flag.Int("posts", 20, "Number of posts to create")

// seedKeyHex is a throwaway token key; seed tokens are never used.
const seedKeyHex = "6b6579206f6e6c7920666f722073656564696e67206c6f63616c2064656d6f21"

var seedUsers = []struct {
	email    string
	username string
	name     string
	bio      string
}{
	{"ada@example.com", "ada", "Ada Lovelace", "Notes on computation and everything adjacent."},
	{"grace@example.com", "grace", "Grace Hopper", "Compilers, ships, and the occasional moth."},
	{"dennis@example.com", "dennis", "Dennis R.", "Small programs, sharp tools."},
	{"barbara@example.com", "barbara", "Barbara L.", "Abstraction is the whole game."},
}

var seedTags = []string{"Go", "Databases", "Distributed Systems", "Writing", "Tooling", "Testing"}

var titleTemplates = []string{
	"Understanding %s the Hard Way",
	"Notes on %s",
	"What I Wish I Knew About %s",
	"%s in Production",
	"A Field Guide to %s",
}

var topics = []string{
	"Goroutines", "B-Trees", "Consensus", "Write-Ahead Logs", "Slugs",
	"Indexes", "Pagination", "Schema Migrations", "Full-Text Search",
	"Rate Limiting", "Caching", "Backpressure",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Inkwell/data")
	}
	dbPath := filepath.Join(dataPath, "inkwell.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	tokens, err := auth.NewTokenService(seedKeyHex, 15*time.Minute, 720*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	validator := validation.New()
	sseManager := sse.NewManager(logger)
	sessions := service.NewSessionService(s, tokens, logger)
	authService := service.NewAuthService(s, tokens, sessions, validator, logger)
	postService := service.NewPostService(s, validator, sseManager, logger)
	commentService := service.NewCommentService(s, validator, sseManager, logger)
	socialService := service.NewSocialService(s, sseManager, logger)

	ctx := context.Background()

	// Users
	userIDs := make([]string, 0, len(seedUsers))
	for _, u := range seedUsers {
		resp, err := authService.Register(ctx, service.RegisterRequest{
			Email:       u.email,
			Username:    u.username,
			Password:    "inkwell-demo-password",
			DisplayName: u.name,
		})
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", u.username, err)
		}
		userIDs = append(userIDs, resp.User.ID)
		fmt.Printf("Created user %s (%s)\n", u.username, resp.User.ID)
	}

	// Posts
	postIDs := make([]string, 0, *postCount)
	for i := 0; i < *postCount; i++ {
		authorID := userIDs[rand.Intn(len(userIDs))]
		topic := topics[rand.Intn(len(topics))]
		title := fmt.Sprintf(titleTemplates[rand.Intn(len(titleTemplates))], topic)

		tags := []string{seedTags[rand.Intn(len(seedTags))]}
		if rand.Intn(2) == 0 {
			tags = append(tags, seedTags[rand.Intn(len(seedTags))])
		}

		post, err := postService.CreatePost(ctx, authorID, service.CreatePostRequest{
			Title: title,
			Content: fmt.Sprintf("<p>Everything I have learned about %s, written down before I forget it.</p>"+
				"<p>This post covers the basics, the sharp edges, and a few things that only show up under load.</p>", topic),
			Tags:    tags,
			Publish: rand.Intn(5) > 0, // roughly one draft in five
		})
		if err != nil {
			log.Fatalf("Failed to create post %q: %v", title, err)
		}
		if post.Published {
			postIDs = append(postIDs, post.ID)
		}
		fmt.Printf("Created post %q (published=%v)\n", title, post.Published)
	}

	// Follows
	for _, followerID := range userIDs {
		for _, followeeID := range userIDs {
			if followerID == followeeID || rand.Intn(2) == 0 {
				continue
			}
			if _, err := socialService.ToggleFollow(ctx, followerID, usernameByID(followeeID, userIDs)); err != nil {
				log.Printf("Follow failed: %v", err)
			}
		}
	}

	// Likes and comments on published posts
	remarks := []string{
		"Great writeup, thanks!",
		"The section on edge cases saved me a day of debugging.",
		"Bookmarked. I keep coming back to this.",
		"Have you benchmarked this against the naive approach?",
	}
	for _, postID := range postIDs {
		for _, userID := range userIDs {
			if rand.Intn(3) == 0 {
				if _, _, err := socialService.ToggleLike(ctx, userID, postID); err != nil {
					log.Printf("Like failed: %v", err)
				}
			}
		}
		if rand.Intn(2) == 0 {
			commenterID := userIDs[rand.Intn(len(userIDs))]
			if _, err := commentService.CreateComment(ctx, commenterID, postID, service.CreateCommentRequest{
				Content: remarks[rand.Intn(len(remarks))],
			}); err != nil {
				log.Printf("Comment failed: %v", err)
			}
		}
	}

	fmt.Printf("Seed complete: %d users, %d published posts\n", len(userIDs), len(postIDs))
}

// usernameByID maps a seeded user ID back to its username.
func usernameByID(id string, ids []string) string {
	for i, candidate := range ids {
		if candidate == id {
			return seedUsers[i].username
		}
	}
	return ""
}
