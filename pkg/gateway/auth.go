package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
)

// AuthEvent names a session-state change published to subscribers.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
)

// SessionUser is the signed-in account as the auth API reports it.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"-"`
}

// Session is the client-held view of a signed-in gateway session.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         SessionUser
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         SessionUser `json:"user"`
}

// SignInWithPassword exchanges credentials for a session and publishes
// EventSignedIn on success.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	query := url.Values{}
	query.Set("grant_type", "password")
	payload := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.do(ctx, "auth.sign_in", http.MethodPost, authPrefix+"/token", query, nil, payload, &resp); err != nil {
		// Failed credentials come back as 400 from the token endpoint.
		if te := pkgerrors.As(err); te != nil && te.Code() == pkgerrors.CodeValidation {
			return Session{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid email or password")
		}
		return Session{}, err
	}

	session := c.sessionFromToken(resp)
	c.setSession(&session)
	c.publish(EventSignedIn, &session)
	return session, nil
}

// RefreshSession exchanges the held refresh token for a new session and
// publishes EventTokenRefreshed. Without a session it fails with UNAUTHORIZED.
func (c *Client) RefreshSession(ctx context.Context) (Session, error) {
	current, ok := c.CurrentSession()
	if !ok || current.RefreshToken == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no session to refresh")
	}

	query := url.Values{}
	query.Set("grant_type", "refresh_token")
	payload := map[string]string{"refresh_token": current.RefreshToken}

	var resp tokenResponse
	if err := c.do(ctx, "auth.refresh", http.MethodPost, authPrefix+"/token", query, nil, payload, &resp); err != nil {
		return Session{}, err
	}

	session := c.sessionFromToken(resp)
	c.setSession(&session)
	c.publish(EventTokenRefreshed, &session)
	return session, nil
}

// SignOut revokes the session remotely, drops it locally either way, and
// publishes EventSignedOut.
func (c *Client) SignOut(ctx context.Context) error {
	_, ok := c.CurrentSession()
	if !ok {
		return nil
	}
	err := c.do(ctx, "auth.sign_out", http.MethodPost, authPrefix+"/logout", nil, nil, nil, nil)
	c.setSession(nil)
	c.publish(EventSignedOut, nil)
	return err
}

// GetUser fetches the account behind the current access token.
func (c *Client) GetUser(ctx context.Context) (SessionUser, error) {
	var user SessionUser
	if err := c.do(ctx, "auth.get_user", http.MethodGet, authPrefix+"/user", nil, nil, nil, &user); err != nil {
		return SessionUser{}, err
	}
	if session, ok := c.CurrentSession(); ok {
		user.Role = session.User.Role
	}
	return user, nil
}

// CurrentSession returns a copy of the held session.
func (c *Client) CurrentSession() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// OnAuthChange registers a callback for session-state changes and returns an
// unsubscribe func. Callbacks run synchronously on the publishing goroutine.
func (c *Client) OnAuthChange(fn func(AuthEvent, *Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// StartAutoRefresh renews the access token shortly before it expires for as
// long as ctx lives. A failed renewal drops the session and publishes
// EventSignedOut.
func (c *Client) StartAutoRefresh(ctx context.Context) {
	go func() {
		for {
			wait := c.nextRefreshIn()
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-c.refreshC:
				timer.Stop()
				continue
			case <-timer.C:
			}

			if _, ok := c.CurrentSession(); !ok {
				continue
			}
			if _, err := c.RefreshSession(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error(ctx, "session refresh failed, signing out", err)
				c.setSession(nil)
				c.publish(EventSignedOut, nil)
			}
		}
	}()
}

func (c *Client) nextRefreshIn() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.ExpiresAt.IsZero() {
		// Idle poll until a session shows up.
		return 30 * time.Second
	}
	wait := time.Until(c.session.ExpiresAt) - c.leeway
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	// Wake the refresher so it reschedules against the new expiry.
	select {
	case c.refreshC <- struct{}{}:
	default:
	}
}

func (c *Client) publish(event AuthEvent, session *Session) {
	c.mu.Lock()
	fns := make([]func(AuthEvent, *Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(event, session)
	}
}

func (c *Client) sessionFromToken(resp tokenResponse) Session {
	session := Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if resp.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	role, expiry := decodeClaims(resp.AccessToken)
	session.User.Role = role
	if session.ExpiresAt.IsZero() && !expiry.IsZero() {
		session.ExpiresAt = expiry
	}
	return session
}

// decodeClaims reads the role and expiry off the access token without
// verifying it. Verification is the gateway's job; the claims only steer
// display and refresh scheduling.
func decodeClaims(accessToken string) (string, time.Time) {
	const defaultRole = "user"
	if accessToken == "" {
		return defaultRole, time.Time{}
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return defaultRole, time.Time{}
	}

	role := defaultRole
	if raw, ok := claims["app_role"]; ok {
		if s, ok := raw.(string); ok && (s == "admin" || s == "user") {
			role = s
		}
	}

	var expiry time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}
	return role, expiry
}
