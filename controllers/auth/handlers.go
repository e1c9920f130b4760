package authControllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
)

const tokenCookieMaxAge = 60 * 60 * 24 * 30 // 30 days

// POST /auth/signup
func SignupHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, token, err := Signup(c.Request.Context(), db, tags, input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		setTokenCookie(c, token)
		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

// POST /auth/signin
func SigninHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SigninInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, token, err := Signin(db, input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		setTokenCookie(c, token)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

// POST /auth/signout
func SignoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("token", "", -1, "/", "", secureCookies(), true)
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
	}
}

func setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, tokenCookieMaxAge, "/", "", secureCookies(), true)
}

func secureCookies() bool {
	return os.Getenv("GIN_MODE") == "release"
}
