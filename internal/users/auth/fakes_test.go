// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/users/auth"
)

var errDiskFull = errors.New("disk full")

// memoryStore implements AccountRepository and SessionStore in memory.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account
	tokens   map[string]*string

	failFind error
	failGet  error
	failSet  error
	failSwap error

	// beforeSwap runs inside SwapRefreshToken before the comparison.
	beforeSwap func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: make(map[string]*auth.Account),
		tokens:   make(map[string]*string),
	}
}

func (s *memoryStore) add(account auth.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := account
	s.accounts[account.ID] = &copied
}

// stored returns the refresh token slot for id, nil when empty.
func (s *memoryStore) stored(id string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token := s.tokens[id]; token != nil {
		value := *token
		return &value
	}
	return nil
}

func (s *memoryStore) put(id string, token *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id] = token
}

func (s *memoryStore) FindByID(_ context.Context, id string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind != nil {
		return nil, apperr.StorageFailure(s.failFind)
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *memoryStore) FindByIdentifier(_ context.Context, identifier string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind != nil {
		return nil, apperr.StorageFailure(s.failFind)
	}
	for _, account := range s.accounts {
		if account.Username == identifier || account.Email == identifier {
			copied := *account
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (s *memoryStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Username == username || account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) Create(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *memoryStore) SetRefreshToken(_ context.Context, accountID string, token *string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return nil, apperr.StorageFailure(s.failSet)
	}
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	if token == nil {
		s.tokens[accountID] = nil
	} else {
		value := *token
		s.tokens[accountID] = &value
	}
	public := *account
	public.PasswordHash = ""
	return &public, nil
}

func (s *memoryStore) GetRefreshToken(_ context.Context, accountID string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, apperr.StorageFailure(s.failGet)
	}
	if _, ok := s.accounts[accountID]; !ok {
		return nil, dberr.ErrNotFound
	}
	return s.tokens[accountID], nil
}

func (s *memoryStore) SwapRefreshToken(_ context.Context, accountID, expected, next string) (bool, error) {
	if s.beforeSwap != nil {
		s.beforeSwap()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSwap != nil {
		return false, apperr.StorageFailure(s.failSwap)
	}
	current := s.tokens[accountID]
	if current == nil || *current != expected {
		return false, nil
	}
	s.tokens[accountID] = &next
	return true, nil
}

// fakeThrottle is a LoginThrottle with a fixed verdict.
type fakeThrottle struct {
	blocked  bool
	err      error
	failures map[string]int
	resets   int
}

func (f *fakeThrottle) Allowed(_ context.Context, _ string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.blocked, nil
}

func (f *fakeThrottle) RecordFailure(_ context.Context, identifier string) error {
	if f.failures == nil {
		f.failures = make(map[string]int)
	}
	f.failures[identifier]++
	return f.err
}

func (f *fakeThrottle) Reset(_ context.Context, _ string) error {
	f.resets++
	return f.err
}

// fakeUploader records uploads in memory.
type fakeUploader struct {
	objects map[string][]byte
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ int64, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return "https://cdn.vidora.test/" + key, nil
}

// countingRecorder counts lifecycle events by "operation/outcome".
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) AuthEvent(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[operation+"/"+outcome]++
}

func (r *countingRecorder) count(operation, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[operation+"/"+outcome]
}

// # Fixtures

const (
	aliceID       = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	alicePassword = "correct horse battery"
)

var testTokenConfig = sec.TokenConfig{
	Issuer:        "vidora.test",
	AccessSecret:  []byte("access-secret-for-tests"),
	AccessTTL:     15 * time.Minute,
	RefreshSecret: []byte("refresh-secret-for-tests"),
	RefreshTTL:    24 * time.Hour,
}

// aliceHash is computed once; bcrypt is deliberately slow.
var aliceHash = func() string {
	hash, err := sec.HashPassword(alicePassword)
	if err != nil {
		panic(err)
	}
	return hash
}()

func newTokens(t *testing.T, opts ...sec.Option) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService(testTokenConfig, opts...)
	require.NoError(t, err)
	return tokens
}

type fixture struct {
	store    *memoryStore
	tokens   *sec.TokenService
	events   *countingRecorder
	service  *auth.Service
	throttle *fakeThrottle
	uploader *fakeUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    newMemoryStore(),
		tokens:   newTokens(t),
		events:   &countingRecorder{},
		throttle: &fakeThrottle{},
		uploader: &fakeUploader{},
	}
	f.store.add(auth.Account{
		ID:           aliceID,
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Liddell",
		AvatarURL:    "https://cdn.vidora.test/avatars/alice.png",
		PasswordHash: aliceHash,
	})
	f.service = auth.NewService(f.store, f.store, f.tokens,
		auth.WithLoginThrottle(f.throttle, 15*time.Minute),
		auth.WithMediaUploader(f.uploader),
		auth.WithEventRecorder(f.events),
	)
	return f
}

func (f *fixture) login(t *testing.T) *auth.Session {
	t.Helper()
	session, err := f.service.Login(context.Background(), auth.LoginInput{Identifier: "alice", Password: alicePassword})
	require.NoError(t, err)
	return session
}

func image(contentType string) *auth.MediaFile {
	payload := []byte("fake-image-bytes")
	return &auth.MediaFile{Body: bytes.NewReader(payload), Size: int64(len(payload)), ContentType: contentType}
}
