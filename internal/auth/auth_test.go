package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	scs "github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/briangreenhill/coachprompt/internal/model"
	"github.com/briangreenhill/coachprompt/internal/store"
)

// countingProvider records CreateUser calls on top of a LocalProvider.
type countingProvider struct {
	*LocalProvider
	creates int
	failErr error
}

func (c *countingProvider) CreateUser(ctx context.Context, email, name, password string) (model.User, error) {
	c.creates++
	if c.failErr != nil {
		return model.User{}, c.failErr
	}
	return c.LocalProvider.CreateUser(ctx, email, name, password)
}

type fixture struct {
	mgr   *Manager
	idp   *countingProvider
	users *store.Memory
	mem   *memstore.MemStore
}

func newFixture(t *testing.T) (*fixture, context.Context) {
	t.Helper()
	mem := memstore.NewWithCleanupInterval(0)
	sess := NewSessions(SessionOptions{
		Store:    NewSignedStore(mem, []byte("test-secret"), zerolog.Nop()),
		Lifetime: time.Hour,
	})
	users := store.NewMemory()
	idp := &countingProvider{LocalProvider: NewLocalProvider(bcrypt.MinCost)}
	mgr := NewManager(sess, idp, store.NewClient(users), zerolog.Nop())

	ctx, err := sess.Load(context.Background(), "")
	require.NoError(t, err)
	return &fixture{mgr: mgr, idp: idp, users: users, mem: mem}, ctx
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(bcrypt.MinCost)

	u, err := p.CreateUser(ctx, "Runner@Example.com", "Runner", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = p.CreateUser(ctx, "runner@example.com", "Other", "secret2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := p.VerifyPassword(ctx, "runner@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = p.VerifyPassword(ctx, "runner@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.VerifyPassword(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupPasswordLength(t *testing.T) {
	f, ctx := newFixture(t)

	_, err := f.mgr.Signup(ctx, "a@example.com", "A", "12345")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Password must be at least 6 characters", verr.Message)
	assert.Zero(t, f.idp.creates, "no provider account for a short password")
	assert.Nil(t, f.mgr.Current(ctx))

	u, err := f.mgr.Signup(ctx, "a@example.com", "A", "123456")
	require.NoError(t, err)
	assert.Equal(t, 1, f.idp.creates)

	cur := f.mgr.Current(ctx)
	require.NotNil(t, cur)
	assert.Equal(t, u.ID, cur.ID)
	assert.Equal(t, "a@example.com", cur.Email)
	assert.Equal(t, "A", cur.Name)

	mirrored, err := f.users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", mirrored.Email)
	assert.Equal(t, "A", mirrored.Name)
}

func TestSignupValidation(t *testing.T) {
	f, ctx := newFixture(t)

	tests := []struct{ email, name, password string }{
		{"", "A", "secret1"},
		{"a@example.com", "", "secret1"},
		{"a@example.com", "A", ""},
		{"  ", "A", "secret1"},
	}
	for _, tt := range tests {
		_, err := f.mgr.Signup(ctx, tt.email, tt.name, tt.password)
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
	assert.Zero(t, f.idp.creates)
}

func TestSignupErrors(t *testing.T) {
	f, ctx := newFixture(t)

	_, err := f.mgr.Signup(ctx, "dup@example.com", "A", "secret1")
	require.NoError(t, err)
	_, err = f.mgr.Signup(ctx, "dup@example.com", "B", "secret2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	f.idp.failErr = errors.New("quota exceeded")
	_, err = f.mgr.Signup(ctx, "new@example.com", "C", "secret3")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestSignupWithoutStore(t *testing.T) {
	mem := memstore.NewWithCleanupInterval(0)
	sess := NewSessions(SessionOptions{Store: mem})
	mgr := NewManager(sess, NewLocalProvider(bcrypt.MinCost), store.Disconnected(nil), zerolog.Nop())
	ctx, err := sess.Load(context.Background(), "")
	require.NoError(t, err)

	u, err := mgr.Signup(ctx, "a@example.com", "A", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, mgr.Current(ctx).ID)
}

func TestLogin(t *testing.T) {
	f, ctx := newFixture(t)
	_, err := f.idp.LocalProvider.CreateUser(ctx, "a@example.com", "A", "secret1")
	require.NoError(t, err)

	_, err = f.mgr.Login(ctx, "a@example.com", "wrong", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.mgr.Login(ctx, "missing@example.com", "secret1", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, f.mgr.Current(ctx))

	_, err = f.mgr.Login(ctx, "", "", false)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	u, err := f.mgr.Login(ctx, "a@example.com", "secret1", true)
	require.NoError(t, err)
	cur := f.mgr.Current(ctx)
	require.NotNil(t, cur)
	assert.Equal(t, u.ID, cur.ID)
}

func TestLogout(t *testing.T) {
	f, ctx := newFixture(t)

	assert.ErrorIs(t, f.mgr.Logout(ctx), ErrUnauthenticated)

	_, err := f.mgr.Signup(ctx, "a@example.com", "A", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.mgr.Logout(ctx))
	assert.Nil(t, f.mgr.Current(ctx))
}

// ctxStore is a CtxStore over memstore that records the contexts it sees.
type ctxStore struct {
	*memstore.MemStore
	seen []context.Context
}

func (c *ctxStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	c.seen = append(c.seen, ctx)
	return c.Find(token)
}

func (c *ctxStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	c.seen = append(c.seen, ctx)
	return c.Commit(token, b, expiry)
}

func (c *ctxStore) DeleteCtx(ctx context.Context, token string) error {
	c.seen = append(c.seen, ctx)
	return c.Delete(token)
}

type ctxKey struct{}

func TestSignedStoreForwardsContext(t *testing.T) {
	inner := &ctxStore{MemStore: memstore.NewWithCleanupInterval(0)}
	s := NewSignedStore(inner, []byte("secret"), zerolog.Nop())

	var store scs.Store = s
	cs, ok := store.(scs.CtxStore)
	require.True(t, ok, "SignedStore must expose the context-aware methods")

	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	require.NoError(t, cs.CommitCtx(ctx, "tok", []byte("payload"), time.Now().Add(time.Hour)))
	b, found, err := cs.FindCtx(ctx, "tok")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "payload", string(b))
	require.NoError(t, cs.DeleteCtx(ctx, "tok"))

	require.Len(t, inner.seen, 3)
	for _, got := range inner.seen {
		assert.Equal(t, "request", got.Value(ctxKey{}))
	}

	// plain stores still work through the context methods
	plain := NewSignedStore(memstore.NewWithCleanupInterval(0), []byte("secret"), zerolog.Nop())
	require.NoError(t, plain.CommitCtx(ctx, "tok", []byte("x"), time.Now().Add(time.Hour)))
	_, found, _ = plain.FindCtx(ctx, "tok")
	assert.True(t, found)
}

func TestSessionManagerUsesRequestContext(t *testing.T) {
	inner := &ctxStore{MemStore: memstore.NewWithCleanupInterval(0)}
	sess := NewSessions(SessionOptions{Store: NewSignedStore(inner, []byte("secret"), zerolog.Nop())})

	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	ctx, err := sess.Load(ctx, "")
	require.NoError(t, err)
	sess.Put(ctx, "k", "v")
	token, _, err := sess.Commit(ctx)
	require.NoError(t, err)

	_, err = sess.Load(context.WithValue(context.Background(), ctxKey{}, "request"), token)
	require.NoError(t, err)

	require.NotEmpty(t, inner.seen)
	for _, got := range inner.seen {
		assert.Equal(t, "request", got.Value(ctxKey{}))
	}
}

func TestSignedStore(t *testing.T) {
	mem := memstore.NewWithCleanupInterval(0)
	s := NewSignedStore(mem, []byte("secret"), zerolog.Nop())
	exp := time.Now().Add(time.Hour)

	require.NoError(t, s.Commit("tok", []byte("payload"), exp))
	b, found, err := s.Find("tok")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "payload", string(b))

	// data written behind the wrapper's back
	require.NoError(t, mem.Commit("tok", []byte("forged-data-that-is-long-enough-to-pass-length"), exp))
	_, found, err = s.Find("tok")
	assert.NoError(t, err)
	assert.False(t, found)

	// signature bound to the token
	signed := s.Sign("a", []byte("x"))
	_, err = s.Verify("b", signed)
	assert.ErrorIs(t, err, ErrBadSig)
	_, err = s.Verify("a", []byte("short"))
	assert.ErrorIs(t, err, ErrBadPayload)

	other := NewSignedStore(mem, []byte("different"), zerolog.Nop())
	require.NoError(t, s.Commit("tok2", []byte("payload"), exp))
	_, found, _ = other.Find("tok2")
	assert.False(t, found, "different secret must not verify")

	require.NoError(t, s.Delete("tok2"))
	_, found, _ = s.Find("tok2")
	assert.False(t, found)
}

type brokenStore struct{}

func (brokenStore) Find(string) ([]byte, bool, error)      { return nil, false, errors.New("conn refused") }
func (brokenStore) Commit(string, []byte, time.Time) error { return errors.New("conn refused") }
func (brokenStore) Delete(string) error                    { return errors.New("conn refused") }

func TestCurrentOnStoreError(t *testing.T) {
	sess := NewSessions(SessionOptions{Store: NewSignedStore(brokenStore{}, []byte("s"), zerolog.Nop())})
	mgr := NewManager(sess, NewLocalProvider(bcrypt.MinCost), nil, zerolog.Nop())

	ctx, err := sess.Load(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Nil(t, mgr.Current(ctx))
}

// fakeAdmin stands in for the Admin SDK auth client.
type fakeAdmin struct {
	users     map[string]*fbauth.UserRecord
	createErr error
}

func (f *fakeAdmin) CreateUser(_ context.Context, _ *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	rec := &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "new-uid", Email: "new@example.com", DisplayName: "New"}}
	return rec, nil
}

func (f *fakeAdmin) GetUser(_ context.Context, uid string) (*fbauth.UserRecord, error) {
	rec, ok := f.users[uid]
	if !ok {
		return nil, errors.New("user not found")
	}
	return rec, nil
}

func newToolkit(t *testing.T, handler http.HandlerFunc) *identitytoolkit.Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := identitytoolkit.NewService(context.Background(),
		option.WithAPIKey("web-key"),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return svc
}

func TestFirebaseVerifyPassword(t *testing.T) {
	admin := &fakeAdmin{users: map[string]*fbauth.UserRecord{
		"uid-1": {UserInfo: &fbauth.UserInfo{UID: "uid-1", Email: "a@example.com", DisplayName: "A"}},
	}}

	var body map[string]any
	toolkit := newToolkit(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "verifyPassword"), r.URL.Path)
		assert.Equal(t, "web-key", r.URL.Query().Get("key"))
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"localId":"uid-1","email":"a@example.com","registered":true}`))
	})

	p := newFirebaseProvider(admin, toolkit)

	u, err := p.VerifyPassword(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "a@example.com", body["email"])

	_, err = p.VerifyPassword(context.Background(), "a@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFirebaseVerifyPasswordWithoutAPIKey(t *testing.T) {
	p := newFirebaseProvider(&fakeAdmin{}, nil)
	_, err := p.VerifyPassword(context.Background(), "a@example.com", "secret1")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestFirebaseCreateUser(t *testing.T) {
	errExists := errors.New("EMAIL_EXISTS")
	admin := &fakeAdmin{}
	p := newFirebaseProvider(admin, nil)
	p.isDuplicate = func(err error) bool { return errors.Is(err, errExists) }

	u, err := p.CreateUser(context.Background(), "new@example.com", "New", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new-uid", u.ID)

	admin.createErr = errExists
	_, err = p.CreateUser(context.Background(), "new@example.com", "New", "secret1")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	admin.createErr = errors.New("backend down")
	_, err = p.CreateUser(context.Background(), "other@example.com", "O", "secret1")
	assert.ErrorIs(t, err, ErrProvider)
}
