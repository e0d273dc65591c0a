package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TokenServiceTestSuite struct {
	suite.Suite
	svc *TokenService
}

func (s *TokenServiceTestSuite) SetupTest() {
	s.svc = NewTokenService("test-secret", 0)
}

func (s *TokenServiceTestSuite) TestRoundTrip() {
	token, err := s.svc.Issue(Identity{UserID: "65f0c0ffee", Email: "jane@example.com", Role: RoleBuyer})
	s.Require().NoError(err)

	id, err := s.svc.Verify(token)
	s.Require().NoError(err)
	s.Equal("jane@example.com", id.Email)
	s.Equal("65f0c0ffee", id.UserID)
	s.Equal(RoleBuyer, id.Role)
}

func (s *TokenServiceTestSuite) TestBearerPrefix() {
	token, err := s.svc.Issue(Identity{Email: "jane@example.com"})
	s.Require().NoError(err)

	id, err := s.svc.Verify("Bearer " + token)
	s.Require().NoError(err)
	s.Equal("jane@example.com", id.Email)
}

func (s *TokenServiceTestSuite) TestDefaultWindowIsSevenDays() {
	issuedAt := time.Now()
	s.svc.now = func() time.Time { return issuedAt }

	token, err := s.svc.Issue(Identity{Email: "jane@example.com"})
	s.Require().NoError(err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	s.Require().NoError(err)
	s.Equal(issuedAt.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func (s *TokenServiceTestSuite) TestRejectsExpired() {
	s.svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, err := s.svc.Issue(Identity{Email: "jane@example.com"})
	s.Require().NoError(err)

	_, err = s.svc.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestRejectsForeignSignature() {
	other := NewTokenService("another-secret", 0)
	token, err := other.Issue(Identity{Email: "jane@example.com"})
	s.Require().NoError(err)

	_, err = s.svc.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestRejectsUnsignedAndGarbage() {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "jane@example.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	for _, tok := range []string{"", "garbage", unsigned} {
		_, err := s.svc.Verify(tok)
		s.ErrorIs(err, ErrInvalidToken, tok)
	}
}

func (s *TokenServiceTestSuite) TestIssueRequiresEmail() {
	_, err := s.svc.Issue(Identity{UserID: "x"})
	s.Error(err)
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	ok, err := VerifyPassword("s3cret!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("s3cret!", "not-a-bcrypt-hash")
	assert.ErrorIs(t, err, ErrCrypto)
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(RoleBuyer, CapShop))
	assert.False(t, Allows(RoleBuyer, CapManage))
	assert.True(t, Allows(RoleAdmin, CapManage))
	assert.True(t, Allows("ADMIN", CapManage))
	assert.False(t, Allows("", CapReadAnyOrders))
}

func TestCanReadOrdersOf(t *testing.T) {
	caller := Identity{UserID: "u1", Email: "a@example.com"}
	assert.True(t, CanReadOrdersOf(caller, RoleBuyer, "u1"))
	assert.False(t, CanReadOrdersOf(caller, RoleBuyer, "u2"))
	assert.True(t, CanReadOrdersOf(caller, RoleAdmin, "u2"))
}
