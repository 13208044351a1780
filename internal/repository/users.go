package repository

import (
	"database/sql"

	"taskhub/internal/models"
)

const userColumns = "id, email, username, password, dark_mode, email_notifications, task_reminders, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.DarkMode, &u.EmailNotifications, &u.TaskReminders, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateUser(db *sql.DB, email, username, passwordHash string) (*models.User, error) {
	row := db.QueryRow(
		"INSERT INTO users (email, username, password) VALUES ($1, $2, $3) RETURNING "+userColumns,
		email, username, passwordHash)
	return scanUser(row)
}

func GetUserByID(db *sql.DB, id int) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

// UpdateUserProfile changes only the fields that were sent; nil means
// keep the current value.
func UpdateUserProfile(db *sql.DB, id int, email, username *string) (*models.User, error) {
	row := db.QueryRow(`
        UPDATE users
        SET email = COALESCE($1, email),
            username = COALESCE($2, username)
        WHERE id = $3
        RETURNING `+userColumns,
		email, username, id)
	return scanUser(row)
}

func UpdateUserPreferences(db *sql.DB, id int, darkMode, emailNotifications, taskReminders *bool) (*models.User, error) {
	row := db.QueryRow(`
        UPDATE users
        SET dark_mode = COALESCE($1, dark_mode),
            email_notifications = COALESCE($2, email_notifications),
            task_reminders = COALESCE($3, task_reminders)
        WHERE id = $4
        RETURNING `+userColumns,
		darkMode, emailNotifications, taskReminders, id)
	return scanUser(row)
}

// DeleteUserCascade removes the user's tasks and then the user row as
// one transaction, so a failure midway leaves both intact.
func DeleteUserCascade(db *sql.DB, id int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks WHERE user_id = $1", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
