package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Jdholguin19/tareas/internal/models"
)

// Generator renders the downloadable task report.
type Generator interface {
	GenerateReport(w io.Writer, data ReportData) error
}

type ReportGenerator struct {
	fontName string
}

type ReportData struct {
	Username    string
	GeneratedAt time.Time
	Counts      models.BucketCounts
	Overdue     []models.Task
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{fontName: "Helvetica"}
}

// GenerateReport writes a one-page summary PDF: bucket counts followed
// by the overdue list.
func (g *ReportGenerator) GenerateReport(w io.Writer, data ReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task report", false)
	pdf.SetAuthor("Mis Tareas", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "TASK REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("%s  —  %s", tr(data.Username), data.GeneratedAt.Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "Due today", fmt.Sprintf("%d", data.Counts.DueToday))
	g.kvLine(pdf, "No due date", fmt.Sprintf("%d", data.Counts.NoDueDate))
	g.kvLine(pdf, "Overdue", fmt.Sprintf("%d", data.Counts.Overdue))
	g.kvLine(pdf, "Completed", fmt.Sprintf("%d", data.Counts.Completed))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Overdue tasks")
	pdf.SetFont(g.fontName, "", 11)
	if len(data.Overdue) == 0 {
		pdf.MultiCell(0, 6, "Nothing overdue. Well done.", "", "L", false)
	}
	for _, t := range data.Overdue {
		due := "—"
		if t.DueDate != nil {
			due = t.DueDate.Format("02.01.2006")
		}
		line := fmt.Sprintf("• %s  (due %s, %d%%)", t.Title, due, t.Progress)
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	return pdf.Output(w)
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
