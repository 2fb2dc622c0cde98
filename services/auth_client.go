// services/auth_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"influencer-battle/utils"
)

type AuthEventType string

const (
	EventInitialSession AuthEventType = "INITIAL_SESSION"
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEventType = "USER_UPDATED"
)

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	User         AuthUser  `json:"user"`
}

// AuthEvent is one auth state change. Session is nil after sign-out.
type AuthEvent struct {
	Type    AuthEventType
	Session *AuthSession
}

// SignUpResult carries the new user; Session is nil while the address
// awaits confirmation.
type SignUpResult struct {
	User    AuthUser
	Session *AuthSession
}

// AuthProvider is one browser's view of the hosted auth service.
type AuthProvider interface {
	GetSession(ctx context.Context) (*AuthSession, error)
	SignUp(ctx context.Context, email, password, fullName string) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChange registers fn and immediately delivers an
	// INITIAL_SESSION event to it. Events are delivered synchronously.
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}

// AuthAPIError is an error response from the auth service.
type AuthAPIError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthAPIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("auth service returned %d", e.Status)
}

// GoTrueClient talks to a GoTrue-compatible auth API and holds the session
// for a single browser.
type GoTrueClient struct {
	BaseURL string
	AnonKey string
	Client  *http.Client
	Now     func() time.Time

	mu        sync.Mutex
	session   *AuthSession
	listeners map[int]func(AuthEvent)
	nextID    int
}

func NewGoTrueClient(baseURL, anonKey string) *GoTrueClient {
	return &GoTrueClient{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		AnonKey:   anonKey,
		Client:    &http.Client{Timeout: 10 * time.Second},
		Now:       time.Now,
		listeners: map[int]func(AuthEvent){},
	}
}

func (c *GoTrueClient) GetSession(ctx context.Context) (*AuthSession, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()
	if current == nil {
		return nil, nil
	}
	if c.Now().Before(current.ExpiresAt.Add(-30 * time.Second)) {
		s := *current
		return &s, nil
	}

	refreshed, err := c.refresh(ctx, current.RefreshToken)
	if err != nil {
		log.Printf("[Auth] ⚠️ session refresh failed, signing out: %v", err)
		c.setSession(nil, EventSignedOut)
		return nil, nil
	}
	c.setSession(refreshed, EventTokenRefreshed)
	s := *refreshed
	return &s, nil
}

func (c *GoTrueClient) SignUp(ctx context.Context, email, password, fullName string) (*SignUpResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName},
	}
	var raw struct {
		AuthSession
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := c.post(ctx, "/auth/v1/signup", body, "", &raw); err != nil {
		return nil, err
	}

	if raw.AccessToken == "" {
		return &SignUpResult{User: AuthUser{ID: raw.ID, Email: raw.Email}}, nil
	}
	session := raw.AuthSession
	c.stampExpiry(&session)
	c.setSession(&session, EventSignedIn)
	return &SignUpResult{User: session.User, Session: &session}, nil
}

func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	var session AuthSession
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", body, "", &session); err != nil {
		return nil, err
	}
	c.stampExpiry(&session)
	c.setSession(&session, EventSignedIn)
	s := session
	return &s, nil
}

func (c *GoTrueClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()

	var err error
	if current != nil {
		err = c.post(ctx, "/auth/v1/logout", struct{}{}, current.AccessToken, nil)
	}
	c.setSession(nil, EventSignedOut)
	return err
}

func (c *GoTrueClient) OnAuthStateChange(fn func(AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	var current *AuthSession
	if c.session != nil {
		s := *c.session
		current = &s
	}
	c.mu.Unlock()

	fn(AuthEvent{Type: EventInitialSession, Session: current})
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *GoTrueClient) refresh(ctx context.Context, refreshToken string) (*AuthSession, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token")
	}
	var session AuthSession
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", body, "", &session); err != nil {
		return nil, err
	}
	c.stampExpiry(&session)
	return &session, nil
}

// setSession swaps the held session and notifies listeners outside the lock.
func (c *GoTrueClient) setSession(s *AuthSession, event AuthEventType) {
	c.mu.Lock()
	c.session = s
	fns := make([]func(AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		var copied *AuthSession
		if s != nil {
			cp := *s
			copied = &cp
		}
		fn(AuthEvent{Type: event, Session: copied})
	}
}

func (c *GoTrueClient) stampExpiry(s *AuthSession) {
	if exp, ok := TokenExpiry(s.AccessToken); ok {
		s.ExpiresAt = exp
		return
	}
	s.ExpiresAt = c.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case json.Number:
		n, err := exp.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	default:
		return time.Time{}, false
	}
}

func (c *GoTrueClient) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.AnonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else if c.AnonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.AnonKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer utils.DrainAndClose(resp.Body)

	if resp.StatusCode >= 300 {
		return decodeAuthError(resp.StatusCode, utils.ReadErrorBody(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}
	return nil
}

func decodeAuthError(status int, body string) error {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Code             any    `json:"code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal([]byte(body), &payload)

	msg := firstNonEmpty(payload.ErrorDescription, payload.Msg, payload.Message, payload.Error)
	if msg == "" {
		msg = strings.TrimSpace(body)
	}
	return &AuthAPIError{Status: status, Code: firstNonEmpty(payload.ErrorCode, payload.Error), Message: msg}
}
