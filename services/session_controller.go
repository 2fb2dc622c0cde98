package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"influencer-battle/models"
)

type SessionState string

const (
	StateLoading       SessionState = "loading"
	StateAuthenticated SessionState = "authenticated"
	StateAnonymous     SessionState = "anonymous"
)

// ProfileFetcher resolves the app-level user for an auth identity, or nil.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) *models.UserSession
}

// SessionController owns one browser's session state. It starts in
// loading, settles into authenticated or anonymous on Mount, and follows
// auth events from then on.
type SessionController struct {
	auth     AuthProvider
	profiles ProfileFetcher
	cache    ProfileCache
	now      func() time.Time

	mu            sync.Mutex
	state         SessionState
	user          *models.UserSession
	lastSeen      time.Time
	resolveGen    uint64
	cancelResolve context.CancelFunc
	unsubscribe   func()
}

func NewSessionController(auth AuthProvider, profiles ProfileFetcher, cache ProfileCache) *SessionController {
	return &SessionController{
		auth:     auth,
		profiles: profiles,
		cache:    cache,
		now:      time.Now,
		state:    StateLoading,
		lastSeen: time.Now(),
	}
}

// Mount subscribes to auth events and resolves any existing session.
func (c *SessionController) Mount(ctx context.Context) {
	unsubscribe := c.auth.OnAuthStateChange(c.handleEvent)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	session, err := c.auth.GetSession(ctx)
	if err != nil {
		log.Printf("[Session] ⚠️ could not read existing session: %v", err)
	}
	if err != nil || session == nil {
		c.mu.Lock()
		if c.state == StateLoading {
			c.state = StateAnonymous
		}
		c.mu.Unlock()
		return
	}
	c.resolve(ctx, session.User)
}

func (c *SessionController) handleEvent(ev AuthEvent) {
	switch {
	case ev.Type == EventInitialSession:
		return
	case ev.Session != nil:
		c.resolve(context.Background(), ev.Session.User)
	default:
		c.setAnonymous()
	}
}

// resolve moves to authenticated for au. A repeat for the user already
// signed in is a no-op; a newer resolution supersedes an in-flight one.
func (c *SessionController) resolve(parent context.Context, au AuthUser) {
	c.mu.Lock()
	if c.state == StateAuthenticated && c.user != nil && c.user.ID == au.ID {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	gen := c.begin(cancel)
	c.state = StateLoading
	c.mu.Unlock()
	defer cancel()

	user := c.resolveUser(ctx, au.ID, au.Email)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.resolveGen {
		return
	}
	c.cancelResolve = nil
	c.state = StateAuthenticated
	c.user = &user
}

// begin cancels any in-flight resolution and returns the new generation.
// Callers hold c.mu.
func (c *SessionController) begin(cancel context.CancelFunc) uint64 {
	if c.cancelResolve != nil {
		c.cancelResolve()
	}
	c.cancelResolve = cancel
	c.resolveGen++
	return c.resolveGen
}

func (c *SessionController) resolveUser(ctx context.Context, id, email string) models.UserSession {
	if profile := c.profiles.FetchProfile(ctx, id); profile != nil {
		if err := c.cache.Store(ctx, *profile); err != nil {
			log.Printf("[Session] ⚠️ cache write for %s failed: %v", id, err)
		}
		return *profile
	}

	cached, err := c.cache.Load(ctx, id)
	if err != nil {
		log.Printf("[Session] ⚠️ cache read for %s failed: %v", id, err)
	}
	if cached != nil {
		log.Printf("[Session] ℹ️ restored %s from cache", id)
		return *cached
	}
	return models.UserSession{
		ID:         id,
		Email:      email,
		Role:       models.RoleInfluencer,
		HasProfile: true,
		Origin:     models.OriginLive,
	}
}

func (c *SessionController) setAnonymous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.begin(nil)
	c.state = StateAnonymous
	c.user = nil
}

// LoginManual signs in a user resolved outside the auth events.
func (c *SessionController) LoginManual(ctx context.Context, user models.UserSession) models.UserSession {
	c.mu.Lock()
	c.begin(nil)
	c.state = StateAuthenticated
	u := user
	c.user = &u
	c.mu.Unlock()

	if err := c.cache.Store(ctx, user); err != nil {
		log.Printf("[Session] ⚠️ cache write for %s failed: %v", user.ID, err)
	}
	return user
}

// DemoLogin creates a throwaway identity that only touches fallback data.
func (c *SessionController) DemoLogin(ctx context.Context, role models.UserRole) models.UserSession {
	if role != models.RoleAdmin {
		role = models.RoleInfluencer
	}
	return c.LoginManual(ctx, models.UserSession{
		ID:         "demo-" + string(role) + "-" + shortID(),
		Email:      "demo." + string(role) + "@lpp.com",
		Role:       role,
		HasProfile: true,
		Origin:     models.OriginDemo,
	})
}

func (c *SessionController) SignIn(ctx context.Context, email, password string) (models.UserSession, error) {
	session, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		return models.UserSession{}, AuthFailed(friendlySignInMessage(err), err)
	}
	c.resolve(ctx, session.User)

	_, user := c.Snapshot()
	if user == nil || user.ID != session.User.ID {
		return models.UserSession{}, AuthFailed("Authentication failed", nil)
	}
	return *user, nil
}

// SignUp registers an account. needsConfirmation is true when the address
// must be verified before a session exists.
func (c *SessionController) SignUp(ctx context.Context, email, password, fullName string) (user *models.UserSession, needsConfirmation bool, err error) {
	result, err := c.auth.SignUp(ctx, email, password, fullName)
	if err != nil {
		return nil, false, AuthFailed(friendlySignUpMessage(err), err)
	}
	if result.Session == nil {
		return nil, true, nil
	}
	c.resolve(ctx, result.Session.User)
	_, u := c.Snapshot()
	return u, false, nil
}

// SignOut clears the cached profile and the session.
func (c *SessionController) SignOut(ctx context.Context) {
	_, user := c.Snapshot()
	if user != nil {
		if err := c.cache.Remove(ctx, user.ID); err != nil {
			log.Printf("[Session] ⚠️ cache clear for %s failed: %v", user.ID, err)
		}
	}
	if err := c.auth.SignOut(ctx); err != nil {
		log.Printf("[Session] ⚠️ remote sign-out failed: %v", err)
	}
	c.setAnonymous()
}

// MarkProfileComplete records that onboarding finished for the current user.
func (c *SessionController) MarkProfileComplete(ctx context.Context) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	c.user.HasProfile = true
	user := *c.user
	c.mu.Unlock()

	if err := c.cache.Store(ctx, user); err != nil {
		log.Printf("[Session] ⚠️ cache write for %s failed: %v", user.ID, err)
	}
}

// Snapshot returns the state and a copy of the current user.
func (c *SessionController) Snapshot() (SessionState, *models.UserSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return c.state, nil
	}
	u := *c.user
	return c.state, &u
}

func (c *SessionController) Touch() {
	c.mu.Lock()
	c.lastSeen = c.now()
	c.mu.Unlock()
}

func (c *SessionController) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Close stops event delivery and abandons any in-flight resolution.
func (c *SessionController) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	if c.cancelResolve != nil {
		c.cancelResolve()
		c.cancelResolve = nil
	}
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func friendlySignInMessage(err error) string {
	msg := authMessage(err)
	switch {
	case strings.Contains(msg, "Email not confirmed"):
		return "Please verify your email address."
	case strings.Contains(msg, "Invalid login credentials"):
		return "Invalid email or password."
	case msg == "":
		return "Authentication failed"
	default:
		return msg
	}
}

func friendlySignUpMessage(err error) string {
	msg := authMessage(err)
	switch {
	case strings.Contains(msg, "Password should contain"):
		return "Password must include at least: 1 uppercase, 1 lowercase, 1 number."
	case msg == "":
		return "Authentication failed"
	default:
		return msg
	}
}

func authMessage(err error) string {
	var apiErr *AuthAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
