package authguard

import (
	"context"
	"sync"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

// State is where the guard stands on the current viewer.
type State string

const (
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// LoginPath is the only page an unauthenticated viewer may see.
const LoginPath = "/login"

// SessionSource is the slice of the gateway client the guard watches.
type SessionSource interface {
	CurrentSession() (gateway.Session, bool)
	OnAuthChange(fn func(gateway.AuthEvent, *gateway.Session)) func()
}

// UserSink receives the resolved operator. *store.Store satisfies it.
type UserSink interface {
	SetCurrentUser(user *inventory.User)
}

// Guard keeps the store's CurrentUser in step with the gateway session and
// answers redirect decisions for page requests.
type Guard struct {
	sessions SessionSource
	sink     UserSink
	logger   *logger.Logger

	mu          sync.RWMutex
	state       State
	unsubscribe func()
}

// New builds a guard in the checking state. Nothing happens until Start.
func New(sessions SessionSource, sink UserSink, logg *logger.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		sink:     sink,
		logger:   logg,
		state:    StateChecking,
	}
}

// Start reconciles against the current session once, then follows gateway
// auth events until Stop.
func (g *Guard) Start(ctx context.Context) {
	if session, ok := g.sessions.CurrentSession(); ok {
		g.reconcile(ctx, &session)
	} else {
		g.reconcile(ctx, nil)
	}

	unsubscribe := g.sessions.OnAuthChange(func(event gateway.AuthEvent, session *gateway.Session) {
		if g.logger != nil {
			g.logger.Info(g.logger.WithField(ctx, "auth_event", string(event)), "auth state changed")
		}
		g.reconcile(ctx, session)
	})

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
}

// Stop releases the auth event subscription.
func (g *Guard) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the guard's current decision basis.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentUserFromSession maps a gateway session onto the operator shape the
// store holds.
func CurrentUserFromSession(session gateway.Session) inventory.User {
	return inventory.User{
		ID:    session.User.ID,
		Email: session.User.Email,
		Name:  inventory.NameFromEmail(session.User.Email),
		Role:  inventory.ParseRole(session.User.Role),
	}
}

// RedirectFor answers whether a viewer on path must be sent elsewhere.
// While the guard is still checking, pages render as-is.
func (g *Guard) RedirectFor(path string) (string, bool) {
	switch g.State() {
	case StateUnauthenticated:
		if path != LoginPath {
			return LoginPath, true
		}
	case StateAuthenticated:
		if path == LoginPath {
			return "/", true
		}
	}
	return "", false
}

func (g *Guard) reconcile(_ context.Context, session *gateway.Session) {
	if session == nil || session.AccessToken == "" {
		g.sink.SetCurrentUser(nil)
		g.setState(StateUnauthenticated)
		return
	}
	user := CurrentUserFromSession(*session)
	g.sink.SetCurrentUser(&user)
	g.setState(StateAuthenticated)
}

func (g *Guard) setState(state State) {
	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
}
