package actors

import (
	stdctx "context"
	"time"

	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Message types for Post operations
type (
	ListPostsMsg struct{}

	CreatePostMsg struct {
		Post models.NewPost
	}

	VotePostMsg struct {
		PostID int64
		Delta  models.VoteDelta
	}

	// VoteResult answers VotePostMsg. Found is false when no post has the id;
	// that is not an error.
	VoteResult struct {
		Post  *models.Post
		Found bool
	}
)

// PostActor owns the posts key. Every message is a full
// read-modify-write of the collection, and the mailbox keeps them one at a time.
type PostActor struct {
	deps Deps
	ids  *IDGenerator
}

// NewPostActor creates a new PostActor instance
func NewPostActor(deps Deps) actor.Actor {
	deps = deps.withDefaults()
	return &PostActor{
		deps: deps,
		ids:  NewIDGenerator(deps.Clock),
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.deps.Logger.Debug("PostActor started", "key", a.deps.Keys.Posts)
	case *actor.Stopping:
		a.deps.Logger.Debug("PostActor stopping")
	case *ListPostsMsg:
		a.handleListPosts(context)
	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *VotePostMsg:
		a.handleVote(context, msg)
	case *GetCountsMsg:
		a.handleCounts(context)
	}
}

func (a *PostActor) opContext() (stdctx.Context, stdctx.CancelFunc) {
	return stdctx.WithTimeout(stdctx.Background(), a.deps.OpTimeout)
}

func (a *PostActor) load(ctx stdctx.Context) ([]*models.Post, error) {
	return loadCollection[models.Post](ctx, a.deps.Store, a.deps.Keys.Posts, a.deps.Logger)
}

func (a *PostActor) handleListPosts(context actor.Context) {
	startTime := time.Now()
	ctx, cancel := a.opContext()
	defer cancel()

	posts, err := a.load(ctx)
	if err != nil {
		context.Respond(err)
		return
	}

	a.deps.Metrics.AddOperationLatency("list_posts", time.Since(startTime))
	context.Respond(posts)
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	// Title, content and community are free-form and may be empty.
	if msg.Post.Author == "" {
		context.Respond(utils.NewInvalidInputError("author is required"))
		return
	}

	ctx, cancel := a.opContext()
	defer cancel()

	posts, err := a.load(ctx)
	if err != nil {
		context.Respond(err)
		return
	}
	for _, post := range posts {
		a.ids.Observe(post.ID)
	}

	newPost := &models.Post{
		ID:           a.ids.Next(),
		Title:        msg.Post.Title,
		Content:      msg.Post.Content,
		Author:       msg.Post.Author,
		Community:    msg.Post.Community,
		Score:        0,
		CommentCount: 0,
		CreatedAt:    a.deps.Clock().UTC().Truncate(time.Millisecond),
	}

	// Newest first
	posts = append([]*models.Post{newPost}, posts...)
	if err := saveCollection(ctx, a.deps.Store, a.deps.Keys.Posts, posts); err != nil {
		context.Respond(err)
		return
	}

	a.deps.Logger.Info("post created", "post_id", newPost.ID, "author", newPost.Author, "community", newPost.Community)
	a.deps.Metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(newPost)
}

func (a *PostActor) handleVote(context actor.Context, msg *VotePostMsg) {
	startTime := time.Now()

	if !msg.Delta.Valid() {
		context.Respond(utils.NewInvalidInputError("vote must be +1 or -1"))
		return
	}

	ctx, cancel := a.opContext()
	defer cancel()

	posts, err := a.load(ctx)
	if err != nil {
		context.Respond(err)
		return
	}

	var target *models.Post
	for _, post := range posts {
		if post.ID == msg.PostID {
			target = post
			break
		}
	}

	if target == nil {
		a.deps.Logger.Debug("vote on unknown post ignored", "post_id", msg.PostID)
		context.Respond(&VoteResult{Found: false})
		return
	}

	target.Score += int(msg.Delta)
	if err := saveCollection(ctx, a.deps.Store, a.deps.Keys.Posts, posts); err != nil {
		context.Respond(err)
		return
	}

	a.deps.Metrics.AddOperationLatency("vote_post", time.Since(startTime))
	context.Respond(&VoteResult{Post: target, Found: true})
}

func (a *PostActor) handleCounts(context actor.Context) {
	ctx, cancel := a.opContext()
	defer cancel()

	posts, err := a.load(ctx)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(len(posts))
}
