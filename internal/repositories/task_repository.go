package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Jdholguin19/tareas/internal/models"
)

// The tareas table keeps the column names of the original schema
// (titulo, progreso, tarea_padre_id, ...); a NULL tarea_padre_id maps
// to the root sentinel 0 on the model.
type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAllByOwner(ctx context.Context, ownerID int64) ([]models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateProgress(ctx context.Context, id int64, progress int, state models.TaskState) error
	Delete(ctx context.Context, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, titulo, descripcion, estado, progreso, fecha_creacion,
       fecha_vencimiento, creado_por, asignado_a, proyecto_id, tarea_padre_id, adjuntos_url`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	query := `
		INSERT INTO tareas (
			titulo, descripcion, estado, progreso, fecha_creacion,
			fecha_vencimiento, creado_por, asignado_a, proyecto_id, tarea_padre_id, adjuntos_url
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, fecha_creacion`
	return r.db.QueryRowContext(ctx, query,
		task.Title, nullString(task.Description), task.State, task.Progress, task.CreatedAt,
		task.DueDate, task.OwnerID, task.AssigneeID, task.ProjectID,
		nullParentID(task.ParentID), string(attachments),
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tareas WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAllByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	owner := ownerID
	return r.FindAll(ctx, models.TaskFilter{OwnerID: &owner})
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tareas`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("creado_por = $%d", argID))
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("asignado_a = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("proyecto_id = $%d", argID))
		args = append(args, *filter.ProjectID)
		argID++
	}
	if filter.ParentID != nil {
		if *filter.ParentID == models.RootParentID {
			conditions = append(conditions, "tarea_padre_id IS NULL")
		} else {
			conditions = append(conditions, fmt.Sprintf("tarea_padre_id = $%d", argID))
			args = append(args, *filter.ParentID)
			argID++
		}
	}
	if filter.State != nil {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", argID))
		args = append(args, *filter.State)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY fecha_creacion DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	query := `
		UPDATE tareas SET
			titulo=$1, descripcion=$2, estado=$3, progreso=$4,
			fecha_vencimiento=$5, asignado_a=$6, proyecto_id=$7, adjuntos_url=$8
		WHERE id=$9`
	_, err = r.db.ExecContext(ctx, query,
		task.Title, nullString(task.Description), task.State, task.Progress,
		task.DueDate, task.AssigneeID, task.ProjectID, string(attachments), task.ID,
	)
	return err
}

func (r *taskRepository) UpdateProgress(ctx context.Context, id int64, progress int, state models.TaskState) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tareas SET progreso=$1, estado=$2 WHERE id=$3`, progress, state, id)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tareas WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var (
		description sql.NullString
		assignee    sql.NullInt64
		project     sql.NullInt64
		parent      sql.NullInt64
		attachments sql.NullString
	)
	if err := row.Scan(
		&task.ID, &task.Title, &description, &task.State, &task.Progress, &task.CreatedAt,
		&task.DueDate, &task.OwnerID, &assignee, &project, &parent, &attachments,
	); err != nil {
		return nil, err
	}
	task.Description = description.String
	if assignee.Valid {
		task.AssigneeID = &assignee.Int64
	}
	if project.Valid {
		task.ProjectID = &project.Int64
	}
	if parent.Valid {
		task.ParentID = parent.Int64
	} else {
		task.ParentID = models.RootParentID
	}
	task.Attachments = []string{}
	if attachments.Valid && attachments.String != "" {
		if err := json.Unmarshal([]byte(attachments.String), &task.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal attachments for task %d: %w", task.ID, err)
		}
	}
	return task, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullParentID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != models.RootParentID}
}
