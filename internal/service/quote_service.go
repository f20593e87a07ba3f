package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/antstech/quotation-service/internal/config"
	"github.com/antstech/quotation-service/internal/model"
	"github.com/antstech/quotation-service/internal/pricing"
	"github.com/antstech/quotation-service/internal/repository"
	"github.com/antstech/quotation-service/internal/sheet"
)

// Worksheet titles cap out at 31 characters.
const maxNameLength = 31

type PDFGenerator interface {
	Generate(doc model.QuotationDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(doc model.QuotationDocument) ([]byte, error)
}

type QuoteService struct {
	repo  *repository.QuotationRepository
	pdf   PDFGenerator
	excel ExcelGenerator
	cfg   *config.Config
}

func NewQuoteService(repo *repository.QuotationRepository, pdf PDFGenerator, excel ExcelGenerator, cfg *config.Config) *QuoteService {
	return &QuoteService{
		repo:  repo,
		pdf:   pdf,
		excel: excel,
		cfg:   cfg,
	}
}

type SaveQuotationInput struct {
	Name      string
	Items     []model.QuotationItem
	Terms     model.Terms
	Revision  *int // item row count the client loaded; nil skips the stale check
	Principal model.Principal
}

type QuotationView struct {
	Quotation model.Quotation
	Totals    model.Totals
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *QuoteService) List(ctx context.Context, query string) ([]string, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if query == "" {
		return names, nil
	}
	q := strings.ToLower(query)
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}

func (s *QuoteService) Get(ctx context.Context, name string) (*QuotationView, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	q, err := s.repo.Load(ctx, name)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return s.buildView(*q), nil
}

func (s *QuoteService) Create(ctx context.Context, principal model.Principal, name string) (*QuotationView, error) {
	if !principal.IsEditor() {
		return nil, ErrPermissionDenied
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, name); err != nil {
		return nil, mapStoreError(err)
	}
	return s.buildView(model.Quotation{Name: name}), nil
}

// Save replaces the quotation's items and terms. Incoming item numbers are
// only used for duplicate detection; the saved sequence is renumbered from
// slice order and every subtotal is recomputed before writing.
func (s *QuoteService) Save(ctx context.Context, input SaveQuotationInput) (*QuotationView, error) {
	if !input.Principal.IsEditor() {
		return nil, ErrPermissionDenied
	}
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if err := validateTerms(input.Terms); err != nil {
		return nil, err
	}

	q := model.Quotation{
		Name:  input.Name,
		Items: append([]model.QuotationItem(nil), input.Items...),
		Terms: input.Terms,
	}
	pricing.Renumber(q.Items)
	pricing.Recalculate(q.Items, s.cfg.Quotes.Currency)

	expectedRows := -1
	if input.Revision != nil {
		expectedRows = *input.Revision
	}
	if err := s.repo.Save(ctx, q, expectedRows); err != nil {
		return nil, mapStoreError(err)
	}
	q.Revision = len(q.Items)
	return s.buildView(q), nil
}

func (s *QuoteService) UpdateTerms(ctx context.Context, principal model.Principal, name string, terms model.Terms) error {
	if !principal.IsEditor() {
		return ErrPermissionDenied
	}
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateTerms(terms); err != nil {
		return err
	}
	if err := s.repo.SaveTerms(ctx, name, terms); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *QuoteService) Delete(ctx context.Context, principal model.Principal, name string) error {
	if !principal.IsEditor() {
		return ErrPermissionDenied
	}
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *QuoteService) ExportPDF(ctx context.Context, name string) (*ExportResult, error) {
	doc, err := s.document(ctx, name)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildFileName(name, "pdf", doc.GeneratedAt),
		Content:  content,
	}, nil
}

func (s *QuoteService) ExportExcel(ctx context.Context, name string) (*ExportResult, error) {
	doc, err := s.document(ctx, name)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildFileName(name, "xlsx", doc.GeneratedAt),
		Content:  content,
	}, nil
}

func (s *QuoteService) document(ctx context.Context, name string) (*model.QuotationDocument, error) {
	view, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return &model.QuotationDocument{
		Quotation: view.Quotation,
		Totals:    view.Totals,
		Company: model.Company{
			Name:    s.cfg.Quotes.CompanyName,
			Tagline: s.cfg.Quotes.CompanyTagline,
		},
		Currency:    s.cfg.Quotes.Currency,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *QuoteService) buildView(q model.Quotation) *QuotationView {
	currency := s.cfg.Quotes.Currency
	pricing.Renumber(q.Items)
	pricing.Recalculate(q.Items, currency)
	totals := pricing.ComputeTotals(q.Items, q.Terms, s.vatRate(), currency)
	return &QuotationView{Quotation: q, Totals: totals}
}

func (s *QuoteService) vatRate() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.Quotes.VATRate)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, sheet.ErrSheetNotFound):
		return ErrNotFound
	case errors.Is(err, sheet.ErrSheetExists):
		return ErrAlreadyExists
	case errors.Is(err, sheet.ErrUnavailable):
		return ErrUnavailable
	case errors.Is(err, repository.ErrRowsChanged):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrMalformedRow):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: name must not have leading or trailing spaces", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLength)
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return fmt.Errorf("%w: name contains characters not allowed in worksheet titles", ErrInvalidInput)
	}
	return nil
}

func validateItems(items []model.QuotationItem) error {
	seen := make(map[int]int, len(items))
	for i, item := range items {
		if item.Quantity.IsNegative() {
			return fmt.Errorf("%w: item %d: quantity must not be negative", ErrInvalidInput, i+1)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d: unit price must not be negative", ErrInvalidInput, i+1)
		}
		if item.Number > 0 {
			if prev, ok := seen[item.Number]; ok {
				return fmt.Errorf("%w: duplicate item number %d (rows %d and %d)", ErrInvalidInput, item.Number, prev+1, i+1)
			}
			seen[item.Number] = i
		}
	}
	return nil
}

func validateTerms(terms model.Terms) error {
	if terms.Discount.IsNegative() {
		return fmt.Errorf("%w: discount must not be negative", ErrInvalidInput)
	}
	return nil
}

func buildFileName(name, ext string, at time.Time) string {
	base := sanitizeFileName(name)
	if base == "" {
		base = "quotation"
	}
	return fmt.Sprintf("quotation-%s-%s.%s", base, at.Format("20060102"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
