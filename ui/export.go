package ui

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"

	"ideaverse/internal/errors"
	"ideaverse/models"
)

// Export endpoints serve the current session's artifacts as downloads.

func (s *Server) handleExportSession(c *gin.Context) {
	session := s.engine.Snapshot()
	if session == nil {
		respondError(c, errors.InvalidInput("no active session"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="session-%s.json"`, session.ID))
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleExportMindMap(c *gin.Context) {
	session := s.engine.Snapshot()
	if session == nil {
		respondError(c, errors.InvalidInput("no active session"))
		return
	}
	if session.MindMap == "" {
		respondError(c, errors.InvalidInput("no mind map has been generated"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="mindmap-%s.md"`, session.ID))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(session.MindMap))
}

func (s *Server) handleExportReportHTML(c *gin.Context) {
	session := s.engine.Snapshot()
	if session == nil {
		respondError(c, errors.InvalidInput("no active session"))
		return
	}
	if session.DeepAnalysisReport == "" {
		respondError(c, errors.InvalidInput("no analysis report has been generated"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.html"`, session.ID))
	c.Data(http.StatusOK, "text/html; charset=utf-8", renderMarkdownHTML(session.DeepAnalysisReport))
}

// renderMarkdownHTML converts stored markdown to a standalone HTML document
func renderMarkdownHTML(source string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(source))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)

	out := []byte("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n")
	out = append(out, body...)
	out = append(out, []byte("\n</body></html>\n")...)
	return out
}

func (s *Server) handleExportSolutionsXLSX(c *gin.Context) {
	session := s.engine.Snapshot()
	if session == nil {
		respondError(c, errors.InvalidInput("no active session"))
		return
	}
	if len(session.Solutions) == 0 {
		respondError(c, errors.InvalidInput("no solutions to export"))
		return
	}

	f, err := buildSolutionsWorkbook(session.Solutions, session.Recommendation)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="solutions-%s.xlsx"`, session.ID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		respondError(c, errors.Wrap(err, "write workbook"))
	}
}

var solutionHeaders = []string{
	"ID", "Name", "Description", "Implementation",
	"Effectiveness", "Feasibility", "Sustainability", "Weighted Score",
	"Cost/Benefit", "Worst Case", "Countermeasure", "Timeframe", "Resources",
	"Recommended",
}

// buildSolutionsWorkbook renders the solution set as a single-sheet workbook
func buildSolutionsWorkbook(solutions []models.Solution, rec *models.Recommendation) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Solutions"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range solutionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, errors.Wrap(err, "write workbook header")
		}
	}

	for row, sol := range solutions {
		recommended := ""
		if rec != nil && rec.BestSolution == sol.ID {
			recommended = "yes"
		}
		values := []interface{}{
			sol.ID, sol.Name, sol.Description, sol.Implementation,
			sol.Effectiveness, sol.Feasibility, sol.Sustainability, sol.WeightedScore,
			sol.CostBenefit, sol.WorstCase, sol.Countermeasure, sol.Timeframe, sol.Resources,
			recommended,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, errors.Wrap(err, "write workbook row")
			}
		}
	}

	return f, nil
}
