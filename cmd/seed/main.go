// Command seed runs the first-start bootstrap against the configured storage
// and prints the resulting feed.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fedit/internal/config"
	"fedit/internal/database"
	"fedit/internal/logging"
	"fedit/internal/models"
	"fedit/internal/seed"

	"github.com/fatih/color"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	kv, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		color.Red("Failed to open %s storage: %v", cfg.Storage.Type, err)
		os.Exit(1)
	}
	defer kv.Close(ctx)

	keys := database.NewKeys(cfg.Storage.Prefix)
	report, err := seed.Bootstrap(ctx, kv, keys, logger)
	if err != nil {
		color.Red("Bootstrap failed: %v", err)
		os.Exit(1)
	}

	printStatus("posts", keys.Posts, report.PostsSeeded)
	printStatus("users", keys.Users, report.UsersSeeded)

	raw, ok, err := kv.Get(ctx, keys.Posts)
	if err != nil || !ok {
		return
	}
	var posts []*models.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		color.Yellow("Stored posts are not readable: %v", err)
		return
	}

	fmt.Println()
	for _, post := range posts {
		if post == nil {
			continue
		}
		score := color.GreenString("%+d", post.Score)
		if post.Score < 0 {
			score = color.RedString("%+d", post.Score)
		}
		fmt.Printf("%6s  %s  %s\n", score, color.CyanString("f/%s", post.Community), post.Title)
		fmt.Printf("        by %s, %d comments\n", post.Author, post.CommentCount)
	}
}

func printStatus(name, key string, seeded bool) {
	if seeded {
		color.Green("seeded %s under %q", name, key)
		return
	}
	color.Yellow("kept existing %s under %q", name, key)
}
