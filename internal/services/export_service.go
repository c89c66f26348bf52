package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Jdholguin19/tareas/internal/models"
)

// ExportService renders a task collection as CSV with the column set
// the original export always produced, so existing spreadsheets keep
// importing cleanly.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

var csvHeaders = []string{
	"ID", "Titulo", "Descripcion", "Estado", "Porcentaje_Avance",
	"Fecha_Creacion", "Fecha_Vencimiento", "Usuario_Creador_ID",
	"Usuario_Asignado_ID", "Proyecto", "Parent_ID", "Adjuntos_URL",
}

func (s *ExportService) WriteCSV(w io.Writer, tasks []models.Task, projects []models.Project) error {
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		assignee := ""
		if t.AssigneeID != nil {
			assignee = strconv.FormatInt(*t.AssigneeID, 10)
		}
		project := models.DefaultProjectName
		if t.ProjectID != nil {
			if name, ok := names[*t.ProjectID]; ok {
				project = name
			}
		}
		attachments, err := json.Marshal(t.Attachments)
		if err != nil {
			return fmt.Errorf("marshal attachments for task %d: %w", t.ID, err)
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			string(t.State),
			strconv.Itoa(t.Progress),
			t.CreatedAt.Format("2006-01-02 15:04:05"),
			due,
			strconv.FormatInt(t.OwnerID, 10),
			assignee,
			project,
			strconv.FormatInt(t.ParentID, 10),
			string(attachments),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
