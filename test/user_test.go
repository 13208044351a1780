package test

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"taskhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("me")
	token, userID := RegisterAndLogin(t, app, name+"@example.com", name, "Passw0rd")

	resp, result := DoJSON(t, app, "GET", "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user := result["data"].(map[string]interface{})
	assert.Equal(t, float64(userID), user["id"])
	assert.Equal(t, name+"@example.com", user["email"])
	assert.NotContains(t, user, "password")
}

func TestUpdateProfile(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("profile")
	token, _ := RegisterAndLogin(t, app, name+"@example.com", name, "Passw0rd")

	resp, result := DoJSON(t, app, "PUT", "/api/v1/users/me", token, map[string]string{
		"username": name + "_renamed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := result["data"].(map[string]interface{})
	assert.Equal(t, name+"_renamed", user["username"])
	// Email untouched.
	assert.Equal(t, name+"@example.com", user["email"])

	// Bad username shape is a 422.
	resp, _ = DoJSON(t, app, "PUT", "/api/v1/users/me", token, map[string]string{
		"username": "has spaces",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUpdateProfileDuplicate(t *testing.T) {
	app := NewTestApp(t)

	nameA := uniqueName("taken")
	nameB := uniqueName("renamer")
	_, _ = RegisterAndLogin(t, app, nameA+"@example.com", nameA, "Passw0rd")
	tokenB, _ := RegisterAndLogin(t, app, nameB+"@example.com", nameB, "Passw0rd")

	resp, result := DoJSON(t, app, "PUT", "/api/v1/users/me", tokenB, map[string]string{
		"username": nameA,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already taken", result["message"])

	resp, result = DoJSON(t, app, "PUT", "/api/v1/users/me", tokenB, map[string]string{
		"email": nameA + "@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", result["message"])
}

func TestUpdatePreferences(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("prefs")
	token, _ := RegisterAndLogin(t, app, name+"@example.com", name, "Passw0rd")

	resp, result := DoJSON(t, app, "PUT", "/api/v1/users/me/preferences", token, map[string]bool{
		"dark_mode":           true,
		"email_notifications": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user := result["data"].(map[string]interface{})
	assert.Equal(t, true, user["dark_mode"])
	assert.Equal(t, false, user["email_notifications"])
	// Omitted flag keeps its default.
	assert.Equal(t, true, user["task_reminders"])
}

// TestAccountDeletionCascade deletes an account and checks every task
// it owned went with it.
func TestAccountDeletionCascade(t *testing.T) {
	app := NewTestApp(t)

	name := uniqueName("cascade")
	token, userID := RegisterAndLogin(t, app, name+"@example.com", name, "Passw0rd")

	taskIDs := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, result := DoJSON(t, app, "POST", "/api/v1/tasks/", token, map[string]string{
			"title": fmt.Sprintf("Doomed task %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		taskIDs = append(taskIDs, int(result["data"].(map[string]interface{})["id"].(float64)))
	}

	resp, _ := DoJSON(t, app, "DELETE", "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Straight to the store: the user row and every task row are gone.
	_, err := repository.GetUserByID(testDB, userID)
	assert.Equal(t, sql.ErrNoRows, err)
	for _, taskID := range taskIDs {
		_, err := repository.GetTaskByID(testDB, taskID)
		assert.Equal(t, sql.ErrNoRows, err, "task %d should be gone", taskID)
	}

	// And logging in again fails the generic way.
	resp, _ = DoJSON(t, app, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "Passw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
