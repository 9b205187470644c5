// Command seed fills the database with fake blogging data.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.Blogs, "blogs", opts.Blogs, "Number of blogs to create")
	flag.IntVar(&opts.PostsPerBlog, "posts", opts.PostsPerBlog, "Posts per blog")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Comments per post")
	flag.BoolVar(&opts.Clean, "clean", false, "Remove existing content before seeding")
	flag.Int64Var(&opts.RandSeed, "seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.Seed(context.Background(), db, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d blogs, %d posts, %d comments", sum.Users, sum.Blogs, sum.Posts, sum.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
