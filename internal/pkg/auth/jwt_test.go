package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusmeet/backend/internal/app/models"
)

func testService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:   "test-secret-key-for-signing",
		TokenExp:    exp,
		TokenIssuer: "campusmeet-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService(time.Hour)

	meetupID := int64(7)
	user := &models.User{
		ID:       "201900123",
		Name:     "Anonymous otter",
		Gender:   models.GenderFemale,
		MeetupID: &meetupID,
	}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "201900123", claims.UserID)
	require.Equal(t, "Anonymous otter", claims.Name)
	require.Equal(t, "FEMALE", claims.Gender)
	require.NotNil(t, claims.MeetupID)
	require.Equal(t, int64(7), *claims.MeetupID)
}

func TestTokenWithoutMeetup(t *testing.T) {
	svc := testService(time.Hour)

	token, err := svc.GenerateToken(&models.User{ID: "201900123", Name: "Anonymous fox", Gender: models.GenderMale})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Nil(t, claims.MeetupID)
}

func TestExpiredToken(t *testing.T) {
	svc := testService(-time.Minute)

	token, err := svc.GenerateToken(&models.User{ID: "201900123", Name: "Anonymous fox", Gender: models.GenderMale})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestTamperedToken(t *testing.T) {
	svc := testService(time.Hour)

	token, err := svc.GenerateToken(&models.User{ID: "201900123", Name: "Anonymous fox", Gender: models.GenderMale})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "a-different-secret", TokenExp: time.Hour, TokenIssuer: "campusmeet-test"})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestValidateAndExtractClaims(t *testing.T) {
	svc := testService(time.Hour)

	_, err := svc.ValidateAndExtractClaims("")
	require.ErrorIs(t, err, ErrInvalidToken)

	token, err := svc.GenerateToken(&models.User{ID: "201900123", Name: "Anonymous fox", Gender: models.GenderMale})
	require.NoError(t, err)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	require.Equal(t, "201900123", claims.UserID)
}
