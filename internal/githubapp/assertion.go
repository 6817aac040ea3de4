package githubapp

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/temirov/issuebot/internal/githubauth"
)

const (
	// AssertionLifetime is the maximum validity GitHub accepts for an app assertion.
	AssertionLifetime = 10 * time.Minute

	issuedAtClaimNameConstant  = "iat"
	expiresAtClaimNameConstant = "exp"
	issuerClaimNameConstant    = "iss"
)

// SignedAssertion is the RS256 JWT presented as the app's bearer credential.
type SignedAssertion string

// Clock reports the current time.
type Clock func() time.Time

// AssertionSigner builds short-lived assertions for a GitHub App.
type AssertionSigner struct {
	Clock Clock
}

// Sign produces an assertion issued now and expiring after AssertionLifetime.
func (signer AssertionSigner) Sign(credential githubauth.AppCredential) (SignedAssertion, error) {
	privateKey, parseError := jwt.ParseRSAPrivateKeyFromPEM([]byte(credential.PrivateKey))
	if parseError != nil {
		return "", AssertionSigningError{Cause: parseError}
	}

	clock := signer.Clock
	if clock == nil {
		clock = time.Now
	}
	issuedAt := clock()

	claims := jwt.MapClaims{
		issuedAtClaimNameConstant:  issuedAt.Unix(),
		expiresAtClaimNameConstant: issuedAt.Add(AssertionLifetime).Unix(),
		issuerClaimNameConstant:    credential.AppID,
	}

	signedToken, signingError := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
	if signingError != nil {
		return "", AssertionSigningError{Cause: signingError}
	}

	return SignedAssertion(signedToken), nil
}
