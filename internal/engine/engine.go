package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fedit/internal/database"
	"fedit/internal/engine/actors"
	"fedit/internal/logging"
	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Options wires the engine to its storage and ambient services.
type Options struct {
	Store          database.KeyValue
	Keys           database.Keys
	Logger         *slog.Logger
	Metrics        *utils.MetricsCollector
	Clock          actors.Clock
	RequestTimeout time.Duration
}

// Engine is the store API. Each call is forwarded to the actor that owns the
// affected keys and waits for its answer, bounded by the request timeout and
// the caller's context deadline.
type Engine struct {
	system       *actor.ActorSystem
	context      *actor.RootContext
	postActor    *actor.PID
	accountActor *actor.PID
	timeout      time.Duration
	metrics      *utils.MetricsCollector
	logger       *slog.Logger
}

func NewEngine(system *actor.ActorSystem, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = utils.NewMetricsCollector()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}

	deps := actors.Deps{
		Store:     opts.Store,
		Keys:      opts.Keys,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
		Clock:     opts.Clock,
		OpTimeout: opts.RequestTimeout,
	}

	context := system.Root

	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(deps)
	})
	accountProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewAccountActor(deps)
	})

	return &Engine{
		system:       system,
		context:      context,
		postActor:    context.Spawn(postProps),
		accountActor: context.Spawn(accountProps),
		timeout:      opts.RequestTimeout,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

// GetAccountActor returns the PID of the account actor
func (e *Engine) GetAccountActor() *actor.PID {
	return e.accountActor
}

// Stop shuts both actors down, waits for them, then shuts the actor system
// down. The engine must not be used afterwards.
func (e *Engine) Stop() {
	_ = e.context.StopFuture(e.postActor).Wait()
	_ = e.context.StopFuture(e.accountActor).Wait()
	e.system.Shutdown()
}

func (e *Engine) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return request[[]*models.Post](ctx, e, e.postActor, "PostActor", &actors.ListPostsMsg{})
}

func (e *Engine) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	return request[*models.Post](ctx, e, e.postActor, "PostActor", &actors.CreatePostMsg{Post: post})
}

// Vote applies delta to the post's score. found is false, with a nil error,
// when no post has postID.
func (e *Engine) Vote(ctx context.Context, postID int64, delta models.VoteDelta) (post *models.Post, found bool, err error) {
	result, err := request[*actors.VoteResult](ctx, e, e.postActor, "PostActor", &actors.VotePostMsg{
		PostID: postID,
		Delta:  delta,
	})
	if err != nil {
		return nil, false, err
	}
	return result.Post, result.Found, nil
}

func (e *Engine) Login(ctx context.Context, username, password string) (*models.Session, error) {
	return request[*models.Session](ctx, e, e.accountActor, "AccountActor", &actors.LoginMsg{
		Username: username,
		Password: password,
	})
}

func (e *Engine) Register(ctx context.Context, username, email, password string) (*models.Session, error) {
	return request[*models.Session](ctx, e, e.accountActor, "AccountActor", &actors.RegisterUserMsg{
		Username: username,
		Email:    email,
		Password: password,
	})
}

func (e *Engine) Logout(ctx context.Context) error {
	_, err := request[*actors.LogoutResult](ctx, e, e.accountActor, "AccountActor", &actors.LogoutMsg{})
	return err
}

// GetSession returns the active session, or ok=false when there is none.
func (e *Engine) GetSession(ctx context.Context) (session *models.Session, ok bool, err error) {
	result, err := request[*actors.SessionResult](ctx, e, e.accountActor, "AccountActor", &actors.GetSessionMsg{})
	if err != nil {
		return nil, false, err
	}
	return result.Session, result.Session != nil, nil
}

// Counts reports the size of the posts and users collections.
func (e *Engine) Counts(ctx context.Context) (posts int, users int, err error) {
	posts, err = request[int](ctx, e, e.postActor, "PostActor", &actors.GetCountsMsg{})
	if err != nil {
		return 0, 0, err
	}
	users, err = request[int](ctx, e, e.accountActor, "AccountActor", &actors.GetCountsMsg{})
	if err != nil {
		return 0, 0, err
	}
	return posts, users, nil
}

func (e *Engine) requestTimeout(ctx context.Context) time.Duration {
	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func request[T any](ctx context.Context, e *Engine, pid *actor.PID, actorName string, msg interface{}) (T, error) {
	var zero T
	e.metrics.IncrementRequests()

	if err := ctx.Err(); err != nil {
		e.metrics.IncrementErrors()
		return zero, err
	}
	timeout := e.requestTimeout(ctx)
	if timeout <= 0 {
		e.metrics.IncrementErrors()
		return zero, context.DeadlineExceeded
	}

	result, err := e.context.RequestFuture(pid, msg, timeout).Result()
	if err != nil {
		e.metrics.IncrementErrors()
		e.logger.Error("actor request failed", "actor", actorName, "message", fmt.Sprintf("%T", msg), "error", err)
		return zero, utils.NewActorTimeoutError(actorName, err)
	}

	// Check for application error
	if appErr, ok := result.(*utils.AppError); ok {
		e.metrics.IncrementErrors()
		return zero, appErr
	}

	typed, ok := result.(T)
	if !ok {
		e.metrics.IncrementErrors()
		return zero, fmt.Errorf("%s answered %T with unexpected %T", actorName, msg, result)
	}
	return typed, nil
}
