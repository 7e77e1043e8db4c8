package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/application/dto"
	"github.com/vsinha/lotalloc/pkg/application/services/orchestration"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/tabular"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/xlsx"
	"github.com/vsinha/lotalloc/pkg/interfaces/cli/output"
)

const (
	inventoryField = "inventory"
	ordersField    = "orders"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AllocationQuery holds the optional query parameters of allocation requests
type AllocationQuery struct {
	SKU       string `form:"sku"`
	Warehouse string `form:"warehouse"`
	CutoffDay *int   `form:"cutoff_day" binding:"omitempty,min=0,max=31"`
	Format    string `form:"format" binding:"omitempty,oneof=xlsx csv html"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// allocate runs an allocation over the uploaded files and returns the JSON document
func (s *Server) allocate(c *gin.Context) {
	run, query, ok := s.runUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, output.NewJSONDocument(run, run.Report.Filter(query.SKU, query.Warehouse)))
}

// export runs an allocation and returns the report as a file attachment
func (s *Server) export(c *gin.Context) {
	run, query, ok := s.runUpload(c)
	if !ok {
		return
	}
	report := run.Report.Filter(query.SKU, query.Warehouse)

	var (
		buf         bytes.Buffer
		err         error
		filename    string
		contentType string
	)
	switch query.Format {
	case "csv":
		filename, contentType = output.CSVFileName, "text/csv; charset=utf-8"
		err = output.WriteReportCSV(&buf, report)
	case "html":
		filename, contentType = output.HTMLFileName, "text/html; charset=utf-8"
		err = output.WriteHTML(&buf, run, report, query.SKU, query.Warehouse)
	default:
		filename, contentType = output.XLSXFileName, contentTypeXLSX
		err = xlsx.WriteReport(&buf, report, s.cfg.Output.SheetName)
	}
	if err != nil {
		GetLogger(c).Error("failed to render export", zap.Error(err))
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, ErrCodeInternal, "failed to render report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// runUpload validates the request and runs the allocation. On failure it has
// already written the error response and returns false.
func (s *Server) runUpload(c *gin.Context) (*dto.AllocationRun, AllocationQuery, bool) {
	logger := GetLogger(c)

	var query AllocationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return nil, query, false
	}

	inventory, err := s.uploadSource(c, inventoryField)
	if err != nil {
		writeUploadError(c, inventoryField, err)
		return nil, query, false
	}
	orders, err := s.uploadSource(c, ordersField)
	if err != nil {
		writeUploadError(c, ordersField, err)
		return nil, query, false
	}

	cfg := *s.cfg
	if query.CutoffDay != nil {
		cfg.Allocation.PromotionCutoffDay = *query.CutoffDay
	}

	run, err := orchestration.NewAllocationOrchestrator(&cfg, logger).Run(c.Request.Context(),
		orchestration.RunInput{Inventory: inventory, Orders: orders})
	if err != nil {
		writeRunError(c, err)
		return nil, query, false
	}
	return run, query, true
}

func (s *Server) uploadSource(c *gin.Context, field string) (*tabular.Source, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return tabular.StreamSource(fh.Filename, openUpload(fh), s.cfg.Input, GetLogger(c))
}

func openUpload(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func writeUploadError(c *gin.Context, field string, err error) {
	if errors.Is(err, http.ErrMissingFile) {
		abortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, field+" file is required")
		return
	}
	writeRunError(c, fmt.Errorf("%s upload: %w", field, err))
}
