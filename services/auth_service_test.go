package services

import (
	"testing"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"
	"github.com/S-A-M-22/BiteBuilder-sub000/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAuthService captures outbound codes instead of hitting SES.
func newTestAuthService(t *testing.T) (*AuthService, *string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	var lastCode string
	svc := NewAuthService()
	svc.sendOTP = func(to, code string) error {
		lastCode = code
		return nil
	}
	svc.sendReset = func(to, code string) error {
		lastCode = code
		return nil
	}
	return svc, &lastCode
}

func TestRegisterValidation(t *testing.T) {
	setupTestDB(t)
	svc, _ := newTestAuthService(t)

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@b.com", "password123"},
		{"bad username chars", "has space", "a@b.com", "password123"},
		{"bad email", "validname", "not-an-email", "password123"},
		{"short password", "validname", "a@b.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.username, tc.email, tc.password)
			assert.Error(t, err)
		})
	}

	profile, err := svc.Register("validname", "A@B.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", profile.Email, "email is lowercased")
	assert.NotEqual(t, "password123", profile.Password, "stored hashed")

	_, err = svc.Register("validname", "other@b.com", "password123")
	assert.Error(t, err, "duplicate username")
}

func TestLoginOTPFlow(t *testing.T) {
	setupTestDB(t)
	svc, lastCode := newTestAuthService(t)

	profile, err := svc.Register("otpuser", "otp@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login("otpuser", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// login by username or email both work and issue an unverified token
	token, err := svc.Login("otp@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, *lastCode)
	claims, err := utils.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
	assert.False(t, claims.OTPVerified)

	_, err = svc.VerifyOTP(profile.ID, "000000")
	if *lastCode != "000000" {
		assert.ErrorIs(t, err, ErrOTPMismatch)
	}

	verified, err := svc.VerifyOTP(profile.ID, *lastCode)
	require.NoError(t, err)
	claims, err = utils.ParseJWT(verified)
	require.NoError(t, err)
	assert.True(t, claims.OTPVerified)

	// code is single use
	_, err = svc.VerifyOTP(profile.ID, *lastCode)
	assert.ErrorIs(t, err, ErrOTPMismatch)
}

func TestVerifyOTPExpired(t *testing.T) {
	setupTestDB(t)
	svc, lastCode := newTestAuthService(t)

	profile, err := svc.Register("lateuser", "late@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.Login("lateuser", "password123")
	require.NoError(t, err)

	require.NoError(t, config.DB.Model(&models.OTPCode{}).
		Where("user_id = ?", profile.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.VerifyOTP(profile.ID, *lastCode)
	assert.ErrorIs(t, err, ErrOTPExpired)

	// expired row is consumed; a fresh login issues a new code
	var count int64
	require.NoError(t, config.DB.Model(&models.OTPCode{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginReissuesOTP(t *testing.T) {
	setupTestDB(t)
	svc, lastCode := newTestAuthService(t)

	profile, err := svc.Register("again", "again@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login("again", "password123")
	require.NoError(t, err)
	first := *lastCode

	_, err = svc.Login("again", "password123")
	require.NoError(t, err)

	// one pending row per (user, purpose), latest code wins
	var count int64
	require.NoError(t, config.DB.Model(&models.OTPCode{}).
		Where("user_id = ? AND purpose = ?", profile.ID, "login").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	if first != *lastCode {
		_, err = svc.VerifyOTP(profile.ID, first)
		assert.ErrorIs(t, err, ErrOTPMismatch)
	}
	_, err = svc.VerifyOTP(profile.ID, *lastCode)
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	setupTestDB(t)
	svc, lastCode := newTestAuthService(t)

	_, err := svc.Register("resetter", "reset@example.com", "oldpassword1")
	require.NoError(t, err)

	// unknown accounts are not revealed
	require.NoError(t, svc.RequestPasswordReset("ghost@example.com", "newpassword1"))

	require.NoError(t, svc.RequestPasswordReset("resetter", "newpassword1"))
	require.NotEmpty(t, *lastCode)

	// old password still valid until the code is confirmed
	_, err = svc.Login("resetter", "oldpassword1")
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset("resetter", "999999")
	if *lastCode != "999999" {
		assert.ErrorIs(t, err, ErrOTPMismatch)
	}

	// request again since the login above may have changed lastCode
	require.NoError(t, svc.RequestPasswordReset("resetter", "newpassword1"))
	require.NoError(t, svc.ConfirmPasswordReset("resetter", *lastCode))

	_, err = svc.Login("resetter", "oldpassword1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("resetter", "newpassword1")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	setupTestDB(t)
	svc, _ := newTestAuthService(t)

	profile, err := svc.Register("renameme", "rename@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.Register("occupied", "occupied@example.com", "password123")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(profile.ID, "renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "rename@example.com", updated.Email, "empty field untouched")

	_, err = svc.UpdateProfile(profile.ID, "occupied", "")
	assert.Error(t, err, "username collision")

	_, err = svc.UpdateProfile(profile.ID, "", "not-an-email")
	assert.Error(t, err)
}
