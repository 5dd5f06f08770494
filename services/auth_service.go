// services/auth_service.go
package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"
	"github.com/S-A-M-22/BiteBuilder-sub000/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const otpTTL = 2 * time.Minute

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPExpired         = errors.New("code expired, request a new one")
	ErrOTPMismatch        = errors.New("incorrect code")
)

type AuthService struct {
	log *zap.Logger

	// overridable so tests never touch SES
	sendOTP   func(to, code string) error
	sendReset func(to, code string) error
}

func NewAuthService() *AuthService {
	return &AuthService{
		log:       config.Log,
		sendOTP:   utils.SendOTPEmail,
		sendReset: utils.SendResetEmail,
	}
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return errors.New("password must be between 8 and 128 characters")
	}
	return nil
}

// Register creates a profile after validating username, email and password.
func (s *AuthService) Register(username, email, password string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if !usernameRe.MatchString(username) {
		return nil, errors.New("username must be 3-32 characters of letters, digits or underscore")
	}
	if !emailRe.MatchString(email) {
		return nil, errors.New("invalid email address")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	var count int64
	if err := config.DB.Model(&models.Profile{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("username or email already taken")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := config.DB.Create(profile).Error; err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", profile.ID))
	return profile, nil
}

func (s *AuthService) findByIdentifier(identifier string) (*models.Profile, error) {
	identifier = strings.TrimSpace(identifier)
	var profile models.Profile
	err := config.DB.
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *AuthService) issueOTP(profile *models.Profile, purpose, temp string) (string, error) {
	code := utils.GenerateOTPCode()
	codeHash, err := utils.HashPassword(code)
	if err != nil {
		return "", err
	}

	otp := models.OTPCode{
		UserID:    profile.ID,
		Email:     profile.Email,
		Purpose:   purpose,
		CodeHash:  codeHash,
		Temp:      temp,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	err = config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "code_hash", "temp", "expires_at"}),
	}).Create(&otp).Error
	if err != nil {
		return "", err
	}
	return code, nil
}

// Login checks credentials, emails a one-time code and returns a token that
// is not yet OTP-verified.
func (s *AuthService) Login(identifier, password string) (string, error) {
	profile, err := s.findByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !utils.CheckPasswordHash(password, profile.Password) {
		return "", ErrInvalidCredentials
	}

	code, err := s.issueOTP(profile, "login", "")
	if err != nil {
		return "", err
	}
	if err := s.sendOTP(profile.Email, code); err != nil {
		s.log.Error("failed to send OTP email", zap.Error(err))
		return "", errors.New("failed to send verification code")
	}

	return utils.GenerateJWT(profile.ID, profile.Email, false)
}

// VerifyOTP consumes a pending login code and issues a fully verified token.
func (s *AuthService) VerifyOTP(userID, code string) (string, error) {
	var otp models.OTPCode
	err := config.DB.
		Where("user_id = ? AND purpose = ?", userID, "login").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOTPMismatch
		}
		return "", err
	}

	if time.Now().After(otp.ExpiresAt) {
		config.DB.Delete(&otp)
		return "", ErrOTPExpired
	}
	if !utils.CheckPasswordHash(code, otp.CodeHash) {
		return "", ErrOTPMismatch
	}

	if err := config.DB.Delete(&otp).Error; err != nil {
		return "", err
	}

	s.log.Info("login verified", zap.String("user_id", userID))
	return utils.GenerateJWT(userID, otp.Email, true)
}

// RequestPasswordReset stages a new password behind an emailed code. The
// current password stays valid until the code is confirmed.
func (s *AuthService) RequestPasswordReset(identifier, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	profile, err := s.findByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// do not reveal whether the account exists
			return nil
		}
		return err
	}

	pendingHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	code, err := s.issueOTP(profile, "reset", pendingHash)
	if err != nil {
		return err
	}
	if err := s.sendReset(profile.Email, code); err != nil {
		s.log.Error("failed to send reset email", zap.Error(err))
		return errors.New("failed to send reset code")
	}
	return nil
}

// ConfirmPasswordReset applies the staged password once the code checks out.
func (s *AuthService) ConfirmPasswordReset(identifier, code string) error {
	profile, err := s.findByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPMismatch
		}
		return err
	}

	var otp models.OTPCode
	err = config.DB.
		Where("user_id = ? AND purpose = ?", profile.ID, "reset").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPMismatch
		}
		return err
	}

	if time.Now().After(otp.ExpiresAt) {
		config.DB.Delete(&otp)
		return ErrOTPExpired
	}
	if !utils.CheckPasswordHash(code, otp.CodeHash) {
		return ErrOTPMismatch
	}

	if err := config.DB.Model(profile).Update("password", otp.Temp).Error; err != nil {
		return err
	}
	if err := config.DB.Delete(&otp).Error; err != nil {
		return err
	}

	s.log.Info("password reset", zap.String("user_id", profile.ID))
	return nil
}

// GetProfile returns the account record for a user ID.
func (s *AuthService) GetProfile(userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile changes username and/or email, enforcing the same rules as
// registration. Empty fields are left untouched.
func (s *AuthService) UpdateProfile(userID, username, email string) (*models.Profile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if username != "" {
		username = strings.TrimSpace(username)
		if !usernameRe.MatchString(username) {
			return nil, errors.New("username must be 3-32 characters of letters, digits or underscore")
		}
		profile.Username = username
	}
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !emailRe.MatchString(email) {
			return nil, errors.New("invalid email address")
		}
		profile.Email = email
	}

	var count int64
	if err := config.DB.Model(&models.Profile{}).
		Where("(username = ? OR email = ?) AND id <> ?", profile.Username, profile.Email, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("username or email already taken")
	}

	if err := config.DB.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
