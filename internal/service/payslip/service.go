package payslip

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/storage"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

type payslipServiceImpl struct {
	payroll payroll.PayrollService
	storage storage.FileStorage
	pdf     PDFRenderer
	logger  *slog.Logger
}

// NewPayslipService wires the exporter. storage and pdf may be nil: without
// storage artifacts are only returned, without pdf only HTML is available.
func NewPayslipService(payrollService payroll.PayrollService, fileStorage storage.FileStorage, pdf PDFRenderer, logger *slog.Logger) payroll.PayslipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &payslipServiceImpl{
		payroll: payrollService,
		storage: fileStorage,
		pdf:     pdf,
		logger:  logger.With(slog.String("component", "payslip.service")),
	}
}

// Export computes the payroll for req (finalizing it when req.Finalize is set)
// and renders the payslip for it.
func (s *payslipServiceImpl) Export(ctx context.Context, actor auth.Actor, req payroll.ComputeRequest, format payroll.PayslipFormat) (payroll.Artifact, error) {
	if err := s.checkFormat(format); err != nil {
		return payroll.Artifact{}, err
	}

	result, err := s.payroll.Compute(ctx, actor, req)
	if err != nil {
		return payroll.Artifact{}, err
	}
	return s.build(ctx, result, format)
}

// ExportCycle renders the payslip of an already finalized cycle.
func (s *payslipServiceImpl) ExportCycle(ctx context.Context, actor auth.Actor, employeeID string, year, month int, format payroll.PayslipFormat) (payroll.Artifact, error) {
	if err := s.checkFormat(format); err != nil {
		return payroll.Artifact{}, err
	}

	result, err := s.payroll.LoadCycleDetail(ctx, actor, employeeID, year, month, nil)
	if err != nil {
		return payroll.Artifact{}, err
	}
	return s.build(ctx, result, format)
}

func (s *payslipServiceImpl) checkFormat(format payroll.PayslipFormat) error {
	switch format {
	case payroll.PayslipFormatHTML:
		return nil
	case payroll.PayslipFormatPDF:
		if s.pdf == nil {
			return payroll.ErrPDFUnavailable
		}
		return nil
	}
	return fmt.Errorf("%w: %s", payroll.ErrUnsupportedFormat, format)
}

func (s *payslipServiceImpl) build(ctx context.Context, result payroll.ComputeResult, format payroll.PayslipFormat) (payroll.Artifact, error) {
	if err := result.Check(); err != nil {
		return payroll.Artifact{}, err
	}

	doc := Compose(*result.Employee, *result.Payroll, result.Period, &result.Totals)
	body, err := RenderHTML(doc)
	if err != nil {
		return payroll.Artifact{}, err
	}

	artifact := payroll.Artifact{
		Filename:    Filename(result.Employee.ID, result.Period.Year, result.Period.Month, string(format)),
		ContentType: ContentTypeHTML,
		Body:        body,
	}

	if format == payroll.PayslipFormatPDF {
		pdfBody, err := s.pdf.Render(ctx, body)
		if err != nil {
			return payroll.Artifact{}, fmt.Errorf("render payslip pdf: %w", err)
		}
		artifact.Body = pdfBody
		artifact.ContentType = ContentTypePDF
	}

	if s.storage == nil {
		return artifact, nil
	}

	key := path.Join("payslips", result.Employee.ID, artifact.Filename)
	stored, err := s.storage.Upload(ctx, bytes.NewReader(artifact.Body), key, artifact.ContentType)
	if err != nil {
		// Archive failures do not fail the export.
		s.logger.Warn("payslip archive failed",
			slog.String("employee_id", result.Employee.ID),
			slog.String("filename", artifact.Filename),
			slog.Any("error", err),
		)
		return artifact, nil
	}
	artifact.Path = stored
	return artifact, nil
}
