package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/testdb"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := map[string]struct {
		header  string
		want    string
		wantErr error
	}{
		"valid":            {header: "Bearer abc.def", want: "abc.def"},
		"case insensitive": {header: "bearer abc", want: "abc"},
		"missing":          {header: "", wantErr: ErrMissingCredential},
		"wrong scheme":     {header: "Basic abc", wantErr: ErrInvalidCredential},
		"no token":         {header: "Bearer", wantErr: ErrInvalidCredential},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier("secret")
	user := &models.User{ID: 7, Email: "ana@example.com"}

	token, err := v.Issue(user, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: 7, Email: "ana@example.com"}, id)

	_, err = NewJWTVerifier("other").Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestJWTVerifierRejectsExpiredAndUnsigned(t *testing.T) {
	v := NewJWTVerifier("secret")
	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := v.Issue(&models.User{ID: 1}, time.Hour)
	require.NoError(t, err)

	v.now = time.Now
	_, err = v.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JwtCustomClaims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

type fakeFirebase struct {
	tokens map[string]*fbauth.Token
}

func (f fakeFirebase) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("token rejected")
}

func TestFirebaseVerifier(t *testing.T) {
	db := testdb.Open(t)
	testdb.Seed(t, db, testdb.User(1, "ana"))
	users := repositories.NewPostgresUserRepository(db)

	fb := fakeFirebase{tokens: map[string]*fbauth.Token{
		"existing-email": {UID: "uid-ana", Claims: map[string]interface{}{"email": "ana@example.com"}},
		"new-user":       {UID: "uid-new", Claims: map[string]interface{}{"email": "new@example.com", "name": "Newt", "email_verified": true}},
		"no-email":       {UID: "uid-anon", Claims: map[string]interface{}{}},
	}}
	v := NewFirebaseVerifier(fb, users)
	ctx := context.Background()

	id, err := v.Verify(ctx, "existing-email")
	require.NoError(t, err)
	assert.Equal(t, uint(1), id.ID)

	linked, err := users.GetUserByFirebaseUID(ctx, "uid-ana")
	require.NoError(t, err)
	assert.Equal(t, uint(1), linked.ID)

	id, err = v.Verify(ctx, "new-user")
	require.NoError(t, err)
	created, err := users.GetUserByID(ctx, id.ID)
	require.NoError(t, err)
	assert.Equal(t, "Newt", created.Name)
	assert.True(t, created.IsVerified)

	again, err := v.Verify(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, id.ID, again.ID)

	_, err = v.Verify(ctx, "no-email")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = v.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

type stubVerifier struct {
	id  *Identity
	err error
}

func (s stubVerifier) Verify(context.Context, string) (*Identity, error) {
	return s.id, s.err
}

func TestChain(t *testing.T) {
	ana := &Identity{ID: 1}
	boom := errors.New("database unavailable")

	tests := map[string]struct {
		chain   Chain
		token   string
		want    *Identity
		wantErr error
	}{
		"first match wins": {
			chain: Chain{stubVerifier{err: ErrInvalidCredential}, stubVerifier{id: ana}},
			token: "t",
			want:  ana,
		},
		"all invalid": {
			chain:   Chain{stubVerifier{err: ErrInvalidCredential}, stubVerifier{err: ErrInvalidCredential}},
			token:   "t",
			wantErr: ErrInvalidCredential,
		},
		"infrastructure error surfaces": {
			chain:   Chain{stubVerifier{err: boom}, stubVerifier{err: ErrInvalidCredential}},
			token:   "t",
			wantErr: boom,
		},
		"empty token": {
			chain:   Chain{stubVerifier{id: ana}},
			wantErr: ErrMissingCredential,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := tt.chain.Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
