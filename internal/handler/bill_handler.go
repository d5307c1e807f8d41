package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/billgen/internal/logger"
	"github.com/locvowork/billgen/internal/service"
)

const (
	statementField = "statement"
	templateField  = "template"
)

// BillHandler exposes bill generation over HTTP.
type BillHandler struct {
	svc     *service.BillService
	metrics *Metrics
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(svc *service.BillService, metrics *Metrics) *BillHandler {
	return &BillHandler{svc: svc, metrics: metrics}
}

// HealthHandler handles GET /health
func (h *BillHandler) HealthHandler(c echo.Context) error {
	return respondJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

// GenerateHandler handles POST /bills. It takes a multipart form with the
// statement and template workbooks and answers with a zip of the bills.
func (h *BillHandler) GenerateHandler(c echo.Context) error {
	ctx := c.Request().Context()

	stmtHeader, err := c.FormFile(statementField)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Missing statement file", err)
	}
	tmplHeader, err := c.FormFile(templateField)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Missing template file", err)
	}

	stmt, err := stmtHeader.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Failed to read statement file", err)
	}
	defer stmt.Close()

	tmpl, err := tmplHeader.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Failed to read template file", err)
	}
	defer tmpl.Close()

	logger.InfoLog(ctx, "POST /bills statement=%s template=%s", stmtHeader.Filename, tmplHeader.Filename)

	// Build the archive in memory so a failure can still be reported as JSON.
	var buf bytes.Buffer
	summary, err := h.svc.WriteArchive(ctx, &buf, stmt, filepath.Ext(stmtHeader.Filename), tmpl)
	if err != nil {
		return respondError(c, http.StatusUnprocessableEntity, "Failed to generate bills", err)
	}

	h.metrics.AddBills(len(summary.Files))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bills_%s.zip"`, summary.Reference.Format("2006-01")))
	c.Response().Header().Set("X-Bill-Count", strconv.Itoa(len(summary.Files)))
	return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
}
