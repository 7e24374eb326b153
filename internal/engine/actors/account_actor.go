package actors

import (
	stdctx "context"
	"encoding/json"
	"time"

	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for account and session operations
type (
	RegisterUserMsg struct {
		Username string
		Email    string
		Password string
	}

	LoginMsg struct {
		Username string
		Password string
	}

	LogoutMsg struct{}

	GetSessionMsg struct{}

	// SessionResult answers GetSessionMsg; Session is nil when nobody is logged in.
	SessionResult struct {
		Session *models.Session
	}

	LogoutResult struct{}
)

// AccountActor owns the users and session keys. Registration touches both,
// so both live behind the same mailbox.
type AccountActor struct {
	deps Deps
	ids  *IDGenerator
}

func NewAccountActor(deps Deps) actor.Actor {
	deps = deps.withDefaults()
	return &AccountActor{
		deps: deps,
		ids:  NewIDGenerator(deps.Clock),
	}
}

func (a *AccountActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.deps.Logger.Debug("AccountActor started", "users_key", a.deps.Keys.Users, "session_key", a.deps.Keys.Session)
	case *actor.Stopping:
		a.deps.Logger.Debug("AccountActor stopping")
	case *RegisterUserMsg:
		a.handleRegister(context, msg)
	case *LoginMsg:
		a.handleLogin(context, msg)
	case *LogoutMsg:
		a.handleLogout(context)
	case *GetSessionMsg:
		a.handleGetSession(context)
	case *GetCountsMsg:
		a.handleCounts(context)
	}
}

func (a *AccountActor) opContext() (stdctx.Context, stdctx.CancelFunc) {
	return stdctx.WithTimeout(stdctx.Background(), a.deps.OpTimeout)
}

func (a *AccountActor) loadUsers(ctx stdctx.Context) ([]*models.User, error) {
	return loadCollection[models.User](ctx, a.deps.Store, a.deps.Keys.Users, a.deps.Logger)
}

// startSession replaces whatever session is stored with one for user.
func (a *AccountActor) startSession(ctx stdctx.Context, user *models.User) (*models.Session, error) {
	session := &models.Session{
		Username: user.Username,
		ID:       user.ID,
		Token:    uuid.NewString(),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, utils.NewDatabaseError("Failed to encode session", err)
	}
	if err := a.deps.Store.Set(ctx, a.deps.Keys.Session, string(data)); err != nil {
		return nil, utils.NewDatabaseError("Failed to write session", err)
	}
	return session, nil
}

func (a *AccountActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()

	switch {
	case msg.Username == "":
		context.Respond(utils.NewInvalidInputError("username is required"))
		return
	case msg.Email == "":
		context.Respond(utils.NewInvalidInputError("email is required"))
		return
	case msg.Password == "":
		context.Respond(utils.NewInvalidInputError("password is required"))
		return
	}

	ctx, cancel := a.opContext()
	defer cancel()

	users, err := a.loadUsers(ctx)
	if err != nil {
		context.Respond(err)
		return
	}

	for _, user := range users {
		if user.Username == msg.Username || user.Email == msg.Email {
			a.deps.Logger.Info("registration rejected, user exists", "username", msg.Username)
			context.Respond(utils.NewUserAlreadyExistsError())
			return
		}
		a.ids.Observe(user.ID)
	}

	newUser := &models.User{
		ID:       a.ids.Next(),
		Username: msg.Username,
		Email:    msg.Email,
		Password: msg.Password,
	}
	users = append(users, newUser)
	if err := saveCollection(ctx, a.deps.Store, a.deps.Keys.Users, users); err != nil {
		context.Respond(err)
		return
	}

	// Registering logs the new user in.
	session, err := a.startSession(ctx, newUser)
	if err != nil {
		context.Respond(err)
		return
	}

	a.deps.Logger.Info("user registered", "user_id", newUser.ID, "username", newUser.Username)
	a.deps.Metrics.AddOperationLatency("register", time.Since(startTime))
	context.Respond(session)
}

func (a *AccountActor) handleLogin(context actor.Context, msg *LoginMsg) {
	startTime := time.Now()
	ctx, cancel := a.opContext()
	defer cancel()

	users, err := a.loadUsers(ctx)
	if err != nil {
		context.Respond(err)
		return
	}

	var match *models.User
	for _, user := range users {
		if user.Username == msg.Username && user.Password == msg.Password {
			match = user
			break
		}
	}

	if match == nil {
		a.deps.Logger.Info("login failed", "username", msg.Username)
		context.Respond(utils.NewInvalidCredentialsError())
		return
	}

	session, err := a.startSession(ctx, match)
	if err != nil {
		context.Respond(err)
		return
	}

	a.deps.Logger.Info("login successful", "username", match.Username)
	a.deps.Metrics.AddOperationLatency("login", time.Since(startTime))
	context.Respond(session)
}

func (a *AccountActor) handleLogout(context actor.Context) {
	ctx, cancel := a.opContext()
	defer cancel()

	if err := a.deps.Store.Remove(ctx, a.deps.Keys.Session); err != nil {
		context.Respond(utils.NewDatabaseError("Failed to clear session", err))
		return
	}
	context.Respond(&LogoutResult{})
}

func (a *AccountActor) handleGetSession(context actor.Context) {
	ctx, cancel := a.opContext()
	defer cancel()

	raw, ok, err := a.deps.Store.Get(ctx, a.deps.Keys.Session)
	if err != nil {
		context.Respond(utils.NewDatabaseError("Failed to read session", err))
		return
	}
	if !ok {
		context.Respond(&SessionResult{})
		return
	}

	var session *models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		a.deps.Logger.Warn("stored session is malformed, treating it as absent", "key", a.deps.Keys.Session, "error", err)
		context.Respond(&SessionResult{})
		return
	}
	// A session must name a user; `null`, `{}` and the like are not logins.
	if session == nil || session.Username == "" {
		a.deps.Logger.Warn("stored session has no username, treating it as absent", "key", a.deps.Keys.Session)
		context.Respond(&SessionResult{})
		return
	}
	context.Respond(&SessionResult{Session: session})
}

func (a *AccountActor) handleCounts(context actor.Context) {
	ctx, cancel := a.opContext()
	defer cancel()

	users, err := a.loadUsers(ctx)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(len(users))
}
