package application_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ericfisherdev/signupdesk/internal/application"
	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// --- Fake implementations ---

type unregisterCall struct {
	Token    string
	Activity string
	Email    string
}

// fakeAPI implements driven.ActivityAPI. Nil funcs fall back to canned successes.
type fakeAPI struct {
	mu sync.Mutex

	listFn       func(ctx context.Context) ([]model.Activity, error)
	signupFn     func(ctx context.Context, activity, email string) (string, error)
	unregisterFn func(ctx context.Context, token, activity, email string) (string, error)
	loginFn      func(ctx context.Context, password string) (driven.LoginResult, error)
	logoutFn     func(ctx context.Context, token string) error

	listCalls       int
	signupCalls     int
	unregisterCalls []unregisterCall
	loginPasswords  []string
	logoutTokens    []string
}

func (f *fakeAPI) ListActivities(ctx context.Context) ([]model.Activity, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []model.Activity{}, nil
}

func (f *fakeAPI) Signup(ctx context.Context, activity, email string) (string, error) {
	f.mu.Lock()
	f.signupCalls++
	f.mu.Unlock()
	if f.signupFn != nil {
		return f.signupFn(ctx, activity, email)
	}
	return "Signed up " + email + " for " + activity, nil
}

func (f *fakeAPI) Unregister(ctx context.Context, token, activity, email string) (string, error) {
	f.mu.Lock()
	f.unregisterCalls = append(f.unregisterCalls, unregisterCall{Token: token, Activity: activity, Email: email})
	f.mu.Unlock()
	if f.unregisterFn != nil {
		return f.unregisterFn(ctx, token, activity, email)
	}
	return "Removed", nil
}

func (f *fakeAPI) Login(ctx context.Context, password string) (driven.LoginResult, error) {
	f.mu.Lock()
	f.loginPasswords = append(f.loginPasswords, password)
	f.mu.Unlock()
	if f.loginFn != nil {
		return f.loginFn(ctx, password)
	}
	return driven.LoginResult{Token: "T1"}, nil
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	f.logoutTokens = append(f.logoutTokens, token)
	f.mu.Unlock()
	if f.logoutFn != nil {
		return f.logoutFn(ctx, token)
	}
	return nil
}

func (f *fakeAPI) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.signupCalls + len(f.unregisterCalls) + len(f.loginPasswords) + len(f.logoutTokens)
}

// fakeScreen implements driven.Screen and records what was rendered.
type fakeScreen struct {
	mu sync.Mutex

	lists        []model.ActivityList
	loadFailures []string
	formResets   int
	statuses     []model.SessionStatus
	messages     []model.Message
	current      *model.Message
}

func (s *fakeScreen) RenderActivities(list model.ActivityList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, list)
}

func (s *fakeScreen) RenderLoadFailure(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadFailures = append(s.loadFailures, notice)
}

func (s *fakeScreen) ResetSignupForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formResets++
}

func (s *fakeScreen) RenderSessionStatus(status model.SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *fakeScreen) ShowMessage(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.current = &msg
}

func (s *fakeScreen) ClearMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func (s *fakeScreen) LastMessage() model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return model.Message{}
	}
	return s.messages[len(s.messages)-1]
}

func (s *fakeScreen) Current() *model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *fakeScreen) LastList() model.ActivityList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lists) == 0 {
		return model.ActivityList{}
	}
	return s.lists[len(s.lists)-1]
}

func (s *fakeScreen) FormResets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formResets
}

// memCredentialStore implements driven.CredentialStore in memory.
type memCredentialStore struct {
	mu        sync.Mutex
	values    map[string]string
	getErr    error
	setErr    error
	deleteErr error
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{values: map[string]string{}}
}

func (m *memCredentialStore) Set(_ context.Context, origin, key, plaintext string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[origin+"|"+key] = plaintext
	return nil
}

func (m *memCredentialStore) Get(_ context.Context, origin, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[origin+"|"+key], nil
}

func (m *memCredentialStore) Delete(_ context.Context, origin, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, origin+"|"+key)
	return nil
}

func (m *memCredentialStore) Value(origin, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[origin+"|"+key]
	return v, ok
}

// fakePrompter implements driven.PasswordPrompter with a canned answer.
type fakePrompter struct {
	password string
	err      error
	calls    int
}

func (p *fakePrompter) PromptPassword(_ context.Context, _ string) (string, error) {
	p.calls++
	return p.password, p.err
}

// --- Test harness ---

const testOrigin = "http://signup.test"

type harness struct {
	api        *fakeAPI
	screen     *fakeScreen
	creds      *memCredentialStore
	prompter   *fakePrompter
	session    *application.SessionStore
	view       *application.ActivityView
	controller *application.SessionController
}

// newHarness wires the components against fakes. Messages live for an hour so
// tests observe them without racing the expiry.
func newHarness(t *testing.T, token string) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		api:      &fakeAPI{},
		screen:   &fakeScreen{},
		creds:    newMemCredentialStore(),
		prompter: &fakePrompter{},
	}

	h.session = application.NewSessionStore(h.creds, testOrigin, logger)
	if token != "" {
		if err := h.session.Set(context.Background(), token); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	messages := application.NewMessageBoard(h.screen, time.Hour)
	h.view = application.NewActivityView(h.api, h.session, h.screen, messages, logger)
	h.controller = application.NewSessionController(h.api, h.session, h.view, h.screen, messages, h.prompter, logger)
	return h
}
