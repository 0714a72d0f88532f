package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60}, now)
	require.NoError(t, err)
	return svc
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewJWTService_WeakSecret(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestService(t, testSecret, fixedClock(fixedTime))

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		at      time.Time
		wantErr error
	}{
		{
			name: "valid token",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, testSecret, fixedClock(fixedTime)).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return tok
			},
			at: fixedTime.Add(30 * time.Minute),
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, testSecret, fixedClock(fixedTime)).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return tok
			},
			at:      fixedTime.Add(2 * time.Hour),
			wantErr: ErrExpiredToken,
		},
		{
			name: "within clock skew after expiry",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, testSecret, fixedClock(fixedTime)).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return tok
			},
			at: fixedTime.Add(time.Hour + time.Minute),
		},
		{
			name: "wrong signing key",
			token: func(t *testing.T) string {
				other := newTestService(t, "another-secret-that-is-long-enough-too", fixedClock(fixedTime))
				tok, err := other.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return tok
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   func(t *testing.T) string { return "not.a.jwt" },
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty token",
			token:   func(t *testing.T) string { return "" },
			at:      fixedTime,
			wantErr: ErrMissingToken,
		},
		{
			name: "unexpected signing method",
			token: func(t *testing.T) string {
				claims := jwtCustomClaims{
					UserID:    userID,
					TokenType: tokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing user id",
			token: func(t *testing.T) string {
				claims := jwtCustomClaims{
					TokenType: tokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return tok
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestService(t, testSecret, fixedClock(tt.at))
			claims, err := svc.ValidateToken(context.Background(), tt.token(t))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
