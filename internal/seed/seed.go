// Package seed writes the demo feed and account on first start.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fedit/internal/database"
	"fedit/internal/models"
)

// Report says which collections a Bootstrap call wrote.
type Report struct {
	PostsSeeded bool
	UsersSeeded bool
}

// DemoPosts returns the initial feed, newest first by position.
func DemoPosts() []*models.Post {
	return []*models.Post{
		{
			ID:           1,
			Title:        "Just learned React and it's amazing!",
			Content:      "After years of jQuery, React feels like magic. The component-based architecture makes so much sense.",
			Author:       "dev_guru",
			Community:    "programming",
			Score:        42,
			CommentCount: 8,
			CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:           2,
			Title:        "What's your favorite game of 2024 so far?",
			Content:      "I've been playing Baldur's Gate 3 and it's absolutely incredible. The storytelling is next level.",
			Author:       "gamer_42",
			Community:    "gaming",
			Score:        28,
			CommentCount: 15,
			CreatedAt:    time.Date(2024, 1, 14, 18, 45, 0, 0, time.UTC),
		},
		{
			ID:           3,
			Title:        "Dune: Part Two was worth the wait",
			Content:      "Just saw it in IMAX. Visuals are stunning and the cast delivers incredible performances.",
			Author:       "movie_buff",
			Community:    "movies",
			Score:        35,
			CommentCount: 12,
			CreatedAt:    time.Date(2024, 1, 14, 22, 15, 0, 0, time.UTC),
		},
	}
}

// DemoUsers returns the single seeded account.
func DemoUsers() []*models.User {
	return []*models.User{
		{
			ID:       1,
			Username: "dev_guru",
			Email:    "dev@example.com",
			Password: "password123",
		},
	}
}

// Bootstrap seeds the posts and users keys independently when they are
// absent. A key that exists is left alone even if it holds an empty list, so
// calling this on every start is safe.
func Bootstrap(ctx context.Context, kv database.KeyValue, keys database.Keys, logger *slog.Logger) (Report, error) {
	var report Report

	seeded, err := seedIfAbsent(ctx, kv, keys.Posts, DemoPosts())
	if err != nil {
		return report, err
	}
	report.PostsSeeded = seeded

	seeded, err = seedIfAbsent(ctx, kv, keys.Users, DemoUsers())
	if err != nil {
		return report, err
	}
	report.UsersSeeded = seeded

	logger.Info("bootstrap finished",
		"posts_seeded", report.PostsSeeded,
		"users_seeded", report.UsersSeeded)
	return report, nil
}

func seedIfAbsent(ctx context.Context, kv database.KeyValue, key string, records any) (bool, error) {
	_, exists, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	if exists {
		return false, nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return false, fmt.Errorf("failed to seed %s: %w", key, err)
	}
	return true, nil
}
