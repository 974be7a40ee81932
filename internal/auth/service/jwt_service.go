package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// refreshTokenType marks refresh tokens so an access token can never be
// replayed on the refresh endpoint and vice versa.
const refreshTokenType = "refresh"

// jwtService implements TokenService using HS256-signed JWTs with separate
// signing secrets for the access and refresh families.
type jwtService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a TokenService. Both signing secrets are mandatory;
// an empty secret is a configuration error surfaced at construction, not per
// request.
func NewJWTService(
	accessSecret string,
	refreshSecret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) (TokenService, error) {
	if accessSecret == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "access token signing secret is not set")
	}
	if refreshSecret == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "refresh token signing secret is not set")
	}

	return &jwtService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssuePair signs a fresh access/refresh pair for the user. The refresh token
// carries a random jti claim so two pairs issued in the same second still
// hash to distinct server-side records.
func (j *jwtService) IssuePair(userID uuid.UUID) (*authDomain.TokenPair, error) {
	now := time.Now().UTC()
	accessExpiry := now.Add(j.accessTTL)

	accessClaims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": accessExpiry.Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString(j.accessSecret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign access token")
	}

	refreshClaims := jwt.MapClaims{
		"sub": userID.String(),
		"typ": refreshTokenType,
		"jti": uuid.Must(uuid.NewV7()).String(),
		"iat": now.Unix(),
		"exp": now.Add(j.refreshTTL).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString(j.refreshSecret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign refresh token")
	}

	return &authDomain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

// ParseAccess validates an access token and returns the embedded user ID.
// Any parse or validation failure maps to the generic credentials error.
func (j *jwtService) ParseAccess(token string) (uuid.UUID, error) {
	claims, err := j.parse(token, j.accessSecret)
	if err != nil {
		return uuid.Nil, err
	}

	// Reject refresh tokens presented as access tokens.
	if typ, _ := claims["typ"].(string); typ == refreshTokenType {
		return uuid.Nil, authDomain.ErrInvalidCredentials
	}

	return subjectID(claims)
}

// ParseRefresh validates a refresh token, including its type marker.
func (j *jwtService) ParseRefresh(token string) (uuid.UUID, error) {
	claims, err := j.parse(token, j.refreshSecret)
	if err != nil {
		return uuid.Nil, err
	}

	if typ, _ := claims["typ"].(string); typ != refreshTokenType {
		return uuid.Nil, authDomain.ErrInvalidCredentials
	}

	return subjectID(claims)
}

// HashToken hashes an opaque token with SHA-256 for server-side storage.
// Storing only hashes keeps a leaked database from refreshing sessions.
func (j *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// parse verifies signature, algorithm, and expiry against the given secret.
func (j *jwtService) parse(token string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (any, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, authDomain.ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authDomain.ErrInvalidCredentials
	}

	return claims, nil
}

// subjectID extracts and parses the sub claim.
func subjectID(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, authDomain.ErrInvalidCredentials
	}
	return userID, nil
}
