package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"viniloteca/internal/apperrors"
	"viniloteca/internal/auth"
	"viniloteca/internal/domain/reviews"
	"viniloteca/internal/domain/storage"
	"viniloteca/internal/domain/users"
	"viniloteca/internal/domain/venues"
	"viniloteca/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	mu     sync.Mutex
	rows   map[int64]users.User
	nextID int64
	// failIncrement makes IncrementContributions fail.
	failIncrement bool
	// err is returned by every call when set.
	err error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[int64]users.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	u.Email = users.NormalizeEmail(u.Email)
	for _, existing := range f.rows {
		if existing.Email == u.Email || existing.Token == u.Token {
			return fmt.Errorf("create user: %w: users_email_key", apperrors.ErrDuplicateEntity)
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.JoinedAt = time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	f.rows[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("get user by id: %w", apperrors.ErrNotFound)
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	email = users.NormalizeEmail(email)
	for _, u := range f.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", apperrors.ErrNotFound)
}

func (f *fakeUsers) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeUsers) update(id int64, fn func(*users.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	u, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("update user: %w", apperrors.ErrNotFound)
	}
	fn(&u)
	f.rows[id] = u
	return nil
}

func (f *fakeUsers) UpdateDescription(_ context.Context, id int64, description string) error {
	return f.update(id, func(u *users.User) { u.Description = &description })
}

func (f *fakeUsers) SetPhoto(_ context.Context, id int64, url string) error {
	return f.update(id, func(u *users.User) { u.PhotoURL = &url })
}

func (f *fakeUsers) IncrementContributions(_ context.Context, id int64) error {
	if f.failIncrement {
		return fmt.Errorf("increment contributions: %w", apperrors.ErrStorageFailure)
	}
	return f.update(id, func(u *users.User) { u.Contributions++ })
}

// seed stores a user with password "secret123" and returns it.
func (f *fakeUsers) seed(t *testing.T, token, name, email string) users.User {
	t.Helper()
	u := &users.User{Token: token, Name: name, Email: email}
	require.NoError(t, u.Password.Set("secret123"))
	require.NoError(t, f.Create(context.Background(), u))
	return *u
}

type fakeVenues struct {
	rows []venues.Venue
	err  error
}

func (f *fakeVenues) add(name string) venues.Venue {
	v := venues.Venue{ID: int64(len(f.rows) + 1), Name: name, Tags: []string{"vinilo"}}
	f.rows = append(f.rows, v)
	return v
}

func (f *fakeVenues) Exists(_ context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, v := range f.rows {
		if v.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVenues) GetByID(_ context.Context, id int64) (*venues.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.rows {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("get venue: %w", apperrors.ErrNotFound)
}

func (f *fakeVenues) List(context.Context) ([]venues.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]venues.Venue{}, f.rows...), nil
}

type fakeReviews struct {
	mu        sync.Mutex
	rows      []reviews.Review
	clock     time.Time
	insertErr error
}

func (f *fakeReviews) Insert(_ context.Context, r *reviews.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.clock.IsZero() {
		f.clock = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}
	f.clock = f.clock.Add(time.Minute)
	r.ID = int64(len(f.rows) + 1)
	r.CreatedAt = f.clock
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeReviews) ListByVenue(_ context.Context, venueID int64, ordering reviews.Ordering) ([]reviews.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []reviews.Review{}
	for _, r := range f.rows {
		if r.VenueID == venueID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ordering == reviews.OldestFirst {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeReviews) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeFiles struct {
	saved map[string][]byte
	err   error
}

func (f *fakeFiles) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[name] = b
	return "http://localhost:3000/uploads/" + name, nil
}

type testApp struct {
	app      *application
	mux      http.Handler
	users    *fakeUsers
	venues   *fakeVenues
	reviews  *fakeReviews
	files    *fakeFiles
	registry *prometheus.Registry
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	ta := &testApp{
		users:    newFakeUsers(),
		venues:   &fakeVenues{},
		reviews:  &fakeReviews{},
		files:    &fakeFiles{},
		registry: prometheus.NewRegistry(),
	}

	cfg := config{
		addr:    ":0",
		env:     "test",
		apiURL:  "http://localhost:3000",
		ratings: reviews.DefaultRatingBounds,
		auth: authConfig{
			basic: basicConfig{user: "admin", pass: "admin"},
			token: tokenConfig{secret: "test-secret", exp: time.Hour, iss: "viniloteca"},
		},
		files: fileConfig{backend: fileBackendLocal, uploadDir: t.TempDir()},
	}

	container := &storage.Container{
		Users:   ta.users,
		Venues:  ta.venues,
		Reviews: ta.reviews,
	}

	ta.app = &application{
		config:        cfg,
		store:         container,
		ledger:        container.Ledger(cfg.ratings),
		logger:        zap.NewNop().Sugar(),
		files:         ta.files,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.iss, cfg.auth.token.iss, cfg.auth.token.exp),
		metrics:       metrics.NewCollector(ta.registry),
		gatherer:      ta.registry,
	}
	ta.mux = ta.app.mount()

	return ta
}

func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ta.mux.ServeHTTP(rr, req)
	return rr
}

func (ta *testApp) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return ta.do(req)
}

func (ta *testApp) get(path string) *httptest.ResponseRecorder {
	return ta.do(httptest.NewRequest(http.MethodGet, path, nil))
}

type testEnvelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NotNil(t, env.Success, "success must always be present: %s", rr.Body.String())
	return env
}

func decodeData(t *testing.T, env testEnvelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}

var errBoom = errors.New("dial tcp 10.0.0.7:5432: connection refused")
