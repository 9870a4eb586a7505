package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// utf8BOM keeps Excel from misreading UTF-8 names.
const utf8BOM = "\xef\xbb\xbf"

// ExportWinnersCSV downloads the winners history in draw order.
func (h *HTTPHandler) ExportWinnersCSV(c *gin.Context) {
	winners := h.service.Winners(TenantID(c))

	rows := make([][]string, 0, len(winners))
	for _, w := range winners {
		rows = append(rows, []string{strconv.Itoa(w.Ordinal), w.ParticipantID, w.Name})
	}
	writeCSV(c, "winners.csv", []string{"Draw", "Participant ID", "Name"}, rows)
}

// ExportGroupsCSV downloads the current groups, one member per row.
func (h *HTTPHandler) ExportGroupsCSV(c *gin.Context) {
	groups := h.service.Groups(TenantID(c))

	var rows [][]string
	for i, g := range groups {
		for _, m := range g.Members {
			rows = append(rows, []string{strconv.Itoa(i + 1), g.Name, m.ID, m.Name})
		}
	}
	writeCSV(c, "groups.csv", []string{"Group", "Group Name", "Participant ID", "Name"}, rows)
}

func writeCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment;filename="+filename)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write([]byte(utf8BOM)); err != nil {
		logger.Errorf("Error writing CSV BOM: %v", err)
		return
	}

	w := csv.NewWriter(c.Writer)
	if err := w.Write(header); err != nil {
		logger.Errorf("Error writing CSV header: %v", err)
		return
	}
	if err := w.WriteAll(rows); err != nil {
		logger.Errorf("Error writing CSV rows: %v", err)
	}
}
