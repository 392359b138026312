package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueAndExtract(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	token, err := verifier.IssueToken("admin", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	sub, err := verifier.ExtractSubject(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestExtractSubjectStripsBearerPrefix(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	token, err := verifier.IssueToken("admin", time.Hour)
	assert.NoError(t, err)

	sub, err := verifier.ExtractSubject("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestExpiredTokenRejected(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	token, err := verifier.IssueToken("admin", -time.Minute)
	assert.NoError(t, err)

	_, err = verifier.ExtractSubject(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewTokenVerifier("secret-a")
	verifier := NewTokenVerifier("secret-b")

	token, err := issuer.IssueToken("admin", time.Hour)
	assert.NoError(t, err)

	_, err = verifier.ExtractSubject(token)
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	token, err := verifier.IssueToken("admin", time.Hour)
	assert.NoError(t, err)

	sub, ok := verifier.ValidateToken("Bearer " + token)
	assert.True(t, ok)
	assert.Equal(t, "admin", sub)

	_, ok = verifier.ValidateToken("")
	assert.False(t, ok)

	_, ok = verifier.ValidateToken("Bearer garbage")
	assert.False(t, ok)
}
