package controllers

import (
	"errors"

	"github.com/S-A-M-22/BiteBuilder-sub000/services"

	"github.com/gin-gonic/gin"
)

func Register(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAuthService()
	profile, err := svc.Register(body.Username, body.Email, body.Password)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, profile)
}

func Login(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier"` // username or email
		Password   string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAuthService()
	token, err := svc.Login(body.Identifier, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(401, gin.H{"error": err.Error()})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"token": token, "otp_required": true})
}

func VerifyOTP(c *gin.Context) {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAuthService()
	token, err := svc.VerifyOTP(c.GetString("userID"), body.Code)
	if err != nil {
		if errors.Is(err, services.ErrOTPExpired) || errors.Is(err, services.ErrOTPMismatch) {
			c.JSON(401, gin.H{"error": err.Error()})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"token": token})
}

func RequestPasswordReset(c *gin.Context) {
	var body struct {
		Identifier  string `json:"identifier"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAuthService()
	if err := svc.RequestPasswordReset(body.Identifier, body.NewPassword); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "if the account exists, a code was sent"})
}

func ConfirmPasswordReset(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier"`
		Code       string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAuthService()
	if err := svc.ConfirmPasswordReset(body.Identifier, body.Code); err != nil {
		if errors.Is(err, services.ErrOTPExpired) || errors.Is(err, services.ErrOTPMismatch) {
			c.JSON(401, gin.H{"error": err.Error()})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "password updated"})
}

// VerifySession reports what the presented token carries. Served behind the
// pending middleware so clients can poll verification state mid-login.
func VerifySession(c *gin.Context) {
	c.JSON(200, gin.H{
		"user_id": c.GetString("userID"),
		"email":   c.GetString("email"),
	})
}

// Logout is stateless with bearer tokens; the client discards its copy.
func Logout(c *gin.Context) {
	c.JSON(200, gin.H{"message": "logged out"})
}

func GetProfile(c *gin.Context) {
	svc := services.NewAuthService()
	profile, err := svc.GetProfile(c.GetString("userID"))
	if err != nil {
		c.JSON(404, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(200, profile)
}

func UpdateProfile(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	profile, err := services.NewAuthService().UpdateProfile(c.GetString("userID"), body.Username, body.Email)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, profile)
}
