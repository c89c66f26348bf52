package repositories

import (
	"context"
	"database/sql"

	"github.com/Jdholguin19/tareas/internal/models"
)

type ProjectRepository interface {
	FindAll(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre FROM proyectos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nombre FROM proyectos WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
