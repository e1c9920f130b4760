package authControllers

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/models"
)

const tokenLifetime = 30 * 24 * time.Hour

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account and returns the created user with a signed
// token.
func Signup(ctx context.Context, db *gorm.DB, tags *cache.Tags, input SignupInput) (*models.User, string, error) {
	if fields := validateSignup(input); len(fields) > 0 {
		return nil, "", apperr.Validation("Please enter valid signup information", fields)
	}

	var existing models.User
	err := db.First(&existing, "email = ?", input.Email).Error
	if err == nil {
		return nil, "", apperr.Validation("This email is already in use", map[string]string{"email": "This email is already in use"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.Transient("Signup failed. Please try again later", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Transient("Signup failed. Please try again later", err)
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Role:     models.UserRoleUser,
		Status:   models.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, "", apperr.Transient("Signup failed. Please try again later", err)
	}

	token, err := GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperr.Transient("Signup failed. Please try again later", err)
	}

	if err := tags.Invalidate(ctx, cache.KindUsers, user.ID); err != nil {
		log.Printf("Failed to invalidate user cache for %s: %v", user.ID, err)
	}

	return &user, token, nil
}

// Signin verifies credentials and returns the user with a fresh token.
func Signin(db *gorm.DB, input SigninInput) (*models.User, string, error) {
	if input.Email == "" || input.Password == "" {
		return nil, "", apperr.Validation("Please enter your email and password", nil)
	}

	var user models.User
	if err := db.First(&user, "email = ?", input.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.Validation("Incorrect email or password", nil)
		}
		return nil, "", apperr.Transient("Signin failed. Please try again later", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, "", apperr.InvalidState("Your account has been suspended")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, "", apperr.Validation("Incorrect email or password", nil)
	}

	token, err := GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperr.Transient("Signin failed. Please try again later", err)
	}

	return &user, token, nil
}

// GenerateToken signs an HS256 token carrying the user id, valid for 30 days.
func GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func validateSignup(input SignupInput) map[string]string {
	fields := make(map[string]string)
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		fields["email"] = "A valid email is required"
	}
	if len(input.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if input.Password != input.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
