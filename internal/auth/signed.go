package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
)

// SignedStore wraps an scs.Store and signs every committed payload with
// HMAC-SHA256 over the token and the data. A payload that fails
// verification, or a backend read error, reads as "no session".
type SignedStore struct {
	inner  scs.Store
	secret []byte
	log    zerolog.Logger
}

// NewSignedStore wraps inner with SESSION_SECRET.
func NewSignedStore(inner scs.Store, secret []byte, log zerolog.Logger) *SignedStore {
	return &SignedStore{inner: inner, secret: secret, log: log}
}

func (s *SignedStore) mac(token string, b []byte) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(token))
	m.Write([]byte{'|'})
	m.Write(b)
	return m.Sum(nil)
}

// Sign prefixes b with its signature.
func (s *SignedStore) Sign(token string, b []byte) []byte {
	sig := s.mac(token, b)
	out := make([]byte, 0, len(sig)+len(b))
	out = append(out, sig...)
	return append(out, b...)
}

// Verify checks a signed payload and returns the data.
func (s *SignedStore) Verify(token string, signed []byte) ([]byte, error) {
	if len(signed) < sha256.Size {
		return nil, ErrBadPayload
	}
	sig, b := signed[:sha256.Size], signed[sha256.Size:]
	if !hmac.Equal(sig, s.mac(token, b)) {
		return nil, ErrBadSig
	}
	return b, nil
}

func (s *SignedStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *SignedStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *SignedStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// FindCtx passes ctx on when the wrapped store accepts one.
func (s *SignedStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	var (
		signed []byte
		found  bool
		err    error
	)
	if cs, ok := s.inner.(scs.CtxStore); ok {
		signed, found, err = cs.FindCtx(ctx, token)
	} else {
		signed, found, err = s.inner.Find(token)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("session lookup failed")
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	b, err := s.Verify(token, signed)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding session")
		return nil, false, nil
	}
	return b, true, nil
}

func (s *SignedStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	if cs, ok := s.inner.(scs.CtxStore); ok {
		return cs.CommitCtx(ctx, token, s.Sign(token, b), expiry)
	}
	return s.inner.Commit(token, s.Sign(token, b), expiry)
}

func (s *SignedStore) DeleteCtx(ctx context.Context, token string) error {
	if cs, ok := s.inner.(scs.CtxStore); ok {
		return cs.DeleteCtx(ctx, token)
	}
	return s.inner.Delete(token)
}
