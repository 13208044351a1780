package repository

import (
	"database/sql"

	"taskhub/internal/models"
)

const taskColumns = "id, user_id, title, description, is_completed, created_at, updated_at"

func scanTask(row *sql.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description,
		&t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateTask(db *sql.DB, userID int, title string, description *string) (*models.Task, error) {
	row := db.QueryRow(
		"INSERT INTO tasks (user_id, title, description) VALUES ($1, $2, $3) RETURNING "+taskColumns,
		userID, title, description)
	return scanTask(row)
}

func GetTaskByID(db *sql.DB, id int) (*models.Task, error) {
	return scanTask(db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
}

func ListTasksByUser(db *sql.DB, userID int) ([]models.Task, error) {
	rows, err := db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description,
			&t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update and refreshes updated_at. A nil
// field keeps the current value.
func UpdateTask(db *sql.DB, id int, title, description *string, isCompleted *bool) (*models.Task, error) {
	row := db.QueryRow(`
        UPDATE tasks
        SET title = COALESCE($1, title),
            description = COALESCE($2, description),
            is_completed = COALESCE($3, is_completed),
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $4
        RETURNING `+taskColumns,
		title, description, isCompleted, id)
	return scanTask(row)
}

// ToggleTask flips is_completed and refreshes updated_at.
func ToggleTask(db *sql.DB, id int) (*models.Task, error) {
	row := db.QueryRow(`
        UPDATE tasks
        SET is_completed = NOT is_completed,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING `+taskColumns, id)
	return scanTask(row)
}

func DeleteTask(db *sql.DB, id int) error {
	res, err := db.Exec("DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
