package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/example/stockdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	tok, claims, err := issuer.Issue("64b000000000000000000001")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Id)

	parsed, err := issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "64b000000000000000000001", parsed.UserID)
	assert.Equal(t, claims.Id, parsed.Id)
	assert.InDelta(t, time.Hour.Seconds(), parsed.ExpiresIn(time.Now()).Seconds(), 5)
}

func TestParseRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	tok, _, err := issuer.Issue("u1")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).Parse(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = issuer.Parse("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("u1")
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func TestIdentity(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Name: "Ann", Email: "ann@x.io", Role: models.RoleAdmin}
	id := IdentityOf(u)
	assert.True(t, id.IsAdmin())
	assert.True(t, id.Owns(u.ID))
	assert.False(t, id.Owns(primitive.NewObjectID()))
	assert.False(t, Identity{}.Owns(primitive.NilObjectID))
}
