package actors

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fedit/internal/database"
	"fedit/internal/logging"
	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSystem returns an actor system that logs nothing and is shut down
// when the test ends.
func newTestSystem(t *testing.T) *actor.ActorSystem {
	t.Helper()
	system := actor.NewActorSystem(actor.WithLoggerFactory(func(*actor.ActorSystem) *slog.Logger {
		return logging.Discard()
	}))
	t.Cleanup(system.Shutdown)
	return system
}

func spawnPostActor(t *testing.T, kv database.KeyValue, clock Clock) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := newTestSystem(t)
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewPostActor(Deps{
			Store: kv,
			Keys:  database.NewKeys("fedit_"),
			Clock: clock,
		})
	})
	return system, system.Root.Spawn(props)
}

func TestPostActorCreateAndList(t *testing.T) {
	frozen := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	system, pid := spawnPostActor(t, database.NewMemoryStore(), func() time.Time { return frozen })

	// Step 1: empty store lists nothing
	result, err := system.Root.RequestFuture(pid, &ListPostsMsg{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Empty(t, result.([]*models.Post))

	// Step 2: two posts in the same millisecond
	result, err = system.Root.RequestFuture(pid, &CreatePostMsg{Post: models.NewPost{
		Title: "first", Content: "a", Author: "dev_guru", Community: "go",
	}}, 5*time.Second).Result()
	require.NoError(t, err)
	first := result.(*models.Post)

	result, err = system.Root.RequestFuture(pid, &CreatePostMsg{Post: models.NewPost{
		Title: "second", Author: "dev_guru",
	}}, 5*time.Second).Result()
	require.NoError(t, err)
	second := result.(*models.Post)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, first.Score)
	assert.Equal(t, 0, first.CommentCount)
	assert.Equal(t, frozen.Truncate(time.Millisecond), first.CreatedAt)

	// Step 3: newest first
	result, err = system.Root.RequestFuture(pid, &ListPostsMsg{}, 5*time.Second).Result()
	require.NoError(t, err)
	posts := result.([]*models.Post)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Title)
	assert.Equal(t, "first", posts[1].Title)
}

func TestPostActorRejectsMissingAuthor(t *testing.T) {
	system, pid := spawnPostActor(t, database.NewMemoryStore(), nil)

	result, err := system.Root.RequestFuture(pid, &CreatePostMsg{Post: models.NewPost{Title: "x"}}, 5*time.Second).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestPostActorVote(t *testing.T) {
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), "fedit_posts", `[{"id":7,"title":"t","score":10}]`))
	system, pid := spawnPostActor(t, kv, nil)

	result, err := system.Root.RequestFuture(pid, &VotePostMsg{PostID: 7, Delta: models.VoteUp}, 5*time.Second).Result()
	require.NoError(t, err)
	vote := result.(*VoteResult)
	require.True(t, vote.Found)
	assert.Equal(t, 11, vote.Post.Score)

	result, err = system.Root.RequestFuture(pid, &VotePostMsg{PostID: 7, Delta: models.VoteDown}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 10, result.(*VoteResult).Post.Score)

	// Unknown id is a quiet miss
	result, err = system.Root.RequestFuture(pid, &VotePostMsg{PostID: 99, Delta: models.VoteUp}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.False(t, result.(*VoteResult).Found)
	assert.Nil(t, result.(*VoteResult).Post)

	// Deltas other than ±1 are refused
	result, err = system.Root.RequestFuture(pid, &VotePostMsg{PostID: 7, Delta: 5}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(result.(error), utils.ErrInvalidInput))

	result, err = system.Root.RequestFuture(pid, &GetCountsMsg{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 1, result.(int))
}

func TestPostActorMalformedCollectionReadsEmpty(t *testing.T) {
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), "fedit_posts", "{not json"))
	system, pid := spawnPostActor(t, kv, nil)

	result, err := system.Root.RequestFuture(pid, &ListPostsMsg{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Empty(t, result.([]*models.Post))

	// The next write replaces the broken content
	_, err = system.Root.RequestFuture(pid, &CreatePostMsg{Post: models.NewPost{Author: "a"}}, 5*time.Second).Result()
	require.NoError(t, err)

	result, err = system.Root.RequestFuture(pid, &ListPostsMsg{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Len(t, result.([]*models.Post), 1)
}

func TestPostActorIDsAboveStoredPosts(t *testing.T) {
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), "fedit_posts", `[{"id":5000,"title":"future"}]`))
	system, pid := spawnPostActor(t, kv, func() time.Time { return time.UnixMilli(1000) })

	result, err := system.Root.RequestFuture(pid, &CreatePostMsg{Post: models.NewPost{Author: "a"}}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(5001), result.(*models.Post).ID)
}
