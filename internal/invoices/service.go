package invoices

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"os"
	"path/filepath"

	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Service renders invoices and confirmation emails for finished checkouts.
type Service interface {
	// Generate renders the invoice PDF, stores it and returns its relative
	// path plus the raw bytes for mail attachment.
	Generate(ctx context.Context, order *models.Order) (string, []byte, error)
	// RenderEmail returns the confirmation email HTML.
	RenderEmail(order *models.Order) (string, error)
}

type service struct {
	pdf       renderer
	outputDir string
}

// NewService builds the invoice service. The output directory is created
// lazily per customer.
func NewService(pdf renderer, cfg config.PDFConfig) (Service, error) {
	if pdf == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pdf renderer is required")
	}
	return &service{pdf: pdf, outputDir: cfg.OutputDir}, nil
}

func (s *service) Generate(ctx context.Context, order *models.Order) (string, []byte, error) {
	data, err := BuildData(order)
	if err != nil {
		return "", nil, err
	}

	var html bytes.Buffer
	if err := templates.ExecuteTemplate(&html, "invoice.html", data); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering invoice template")
	}

	document, err := s.pdf.Render(ctx, html.String())
	if err != nil {
		return "", nil, err
	}

	relative := StoragePath(order)
	target := filepath.Join(s.outputDir, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invoice directory")
	}
	if err := os.WriteFile(target, document, 0o644); err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing invoice pdf")
	}
	return relative, document, nil
}

func (s *service) RenderEmail(order *models.Order) (string, error) {
	data, err := BuildEmailData(order)
	if err != nil {
		return "", err
	}
	var html bytes.Buffer
	if err := templates.ExecuteTemplate(&html, "order_email.html", data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering email template")
	}
	return html.String(), nil
}
