package test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestRegisterAndLogin(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("alice")
	resp, result := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"username": name,
		"password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user := result["data"].(map[string]interface{})
	assert.Equal(t, name+"@example.com", user["email"])
	assert.Equal(t, name, user["username"])
	// The hash never leaves the server, under any key.
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
	// Preference defaults.
	assert.Equal(t, false, user["dark_mode"])
	assert.Equal(t, true, user["email_notifications"])
	assert.Equal(t, true, user["task_reminders"])

	resp, result = DoJSON(t, app, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "Passw0rd",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := result["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "bearer", data["token_type"])
	assert.Equal(t, name, data["user"].(map[string]interface{})["username"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("dupemail")
	resp, _ := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"username": name,
		"password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, result := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"username": name + "_other",
		"password": "Passw0rd",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", result["message"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("dupuser")
	resp, _ := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"username": name,
		"password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, result := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "_other@example.com",
		"username": name,
		"password": "Passw0rd",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already taken", result["message"])
}

func TestRegisterValidationAggregation(t *testing.T) {
	app := NewTestApp(t)

	// Everything wrong at once: one 422 listing every violation.
	resp, result := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"username": "x",
		"password": "weak",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	errs, ok := result["errors"].([]interface{})
	require.True(t, ok, "expected errors list in 422 response")
	assert.Len(t, errs, 3)
}

func TestRegisterPasswordOverBcryptLimit(t *testing.T) {
	app := NewTestApp(t)

	// Satisfies every complexity rule but exceeds the 72 bytes bcrypt
	// reads; must come back as a field violation, not a 500.
	name := uniqueName("longpw")
	resp, result := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"username": name,
		"password": "Aa1" + strings.Repeat("x", 80),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	errs, ok := result["errors"].([]interface{})
	require.True(t, ok, "expected errors list in 422 response")
	require.Len(t, errs, 1)
	assert.Equal(t, "Password", errs[0].(map[string]interface{})["field"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("loginfail")
	resp, _ := DoJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"username": name,
		"password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Known email, wrong password.
	respWrongPw, wrongPw := DoJSON(t, app, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "WrongPassw0rd",
	})
	// Unknown email entirely.
	respNoUser, noUser := DoJSON(t, app, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    name + "_ghost@example.com",
		"password": "Passw0rd",
	})

	assert.Equal(t, http.StatusUnauthorized, respWrongPw.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respNoUser.StatusCode)
	// Same body either way: no hint which part was wrong.
	assert.Equal(t, wrongPw, noUser)
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := NewTestApp(t)

	// No token at all.
	resp, _ := DoJSON(t, app, "GET", "/api/v1/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token.
	resp, _ = DoJSON(t, app, "GET", "/api/v1/tasks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Expired token signed with the real secret.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-1 * time.Hour).Unix(),
	})
	expiredString, err := expired.SignedString([]byte(TestSecret))
	require.NoError(t, err)
	resp, _ = DoJSON(t, app, "GET", "/api/v1/tasks", expiredString, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid-looking token signed with a different secret.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forgedString, err := forged.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	resp, _ = DoJSON(t, app, "GET", "/api/v1/tasks", forgedString, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("ghost")
	token, _ := RegisterAndLogin(t, app, name+"@example.com", name, "Passw0rd")

	resp, _ := DoJSON(t, app, "DELETE", "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The token is still cryptographically valid, but the account is
	// gone, so the gate rejects it.
	resp, result := DoJSON(t, app, "GET", "/api/v1/tasks", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "User not found", result["message"])
}
