package authControllers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestValidateSignup(t *testing.T) {
	valid := SignupInput{Name: "Jane", Email: "jane@example.com", Password: "longenough", ConfirmPassword: "longenough"}
	assert.Nil(t, validateSignup(valid))

	fields := validateSignup(SignupInput{Email: "not-an-email", Password: "short", ConfirmPassword: "different"})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "confirm_password")
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("u1")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "u1", claims["id"])
	assert.NotNil(t, claims["exp"])
}

func TestSignin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db, mock := newMockDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "status"}).
			AddRow("u1", "jane@example.com", string(hashed), "User", "Active"))

	user, token, err := Signin(db, SigninInput{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSigninWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "status"}).
			AddRow("u1", "jane@example.com", string(hashed), "User", "Active"))

	_, _, err = Signin(db, SigninInput{Email: "jane@example.com", Password: "battery-staple"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSigninUnknownEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "status"}))

	_, _, err := Signin(db, SigninInput{Email: "ghost@example.com", Password: "whatever"})

	// Same message as a wrong password so the response does not leak which
	// emails exist.
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Incorrect email or password", err.Error())
}

func TestSigninSuspendedAccount(t *testing.T) {
	db, mock := newMockDB(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "status"}).
			AddRow("u1", "jane@example.com", string(hashed), "User", "Banned"))

	_, _, err = Signin(db, SigninInput{Email: "jane@example.com", Password: "correct-horse"})
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestSigninMissingCredentials(t *testing.T) {
	db, mock := newMockDB(t)
	_ = mock

	_, _, err := Signin(db, SigninInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
