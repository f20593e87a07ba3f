package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/antstech/quotation-service/internal/http/middleware"
	"github.com/antstech/quotation-service/internal/model"
	"github.com/antstech/quotation-service/internal/service"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	quotes *service.QuoteService
	log    zerolog.Logger
}

func NewHandler(quotes *service.QuoteService, log zerolog.Logger) *Handler {
	return &Handler{quotes: quotes, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/quotations", h.listQuotations)
	protected.POST("/quotations", h.createQuotation)
	protected.GET("/quotations/:name", h.getQuotation)
	protected.PUT("/quotations/:name", h.saveQuotation)
	protected.DELETE("/quotations/:name", h.deleteQuotation)
	protected.PUT("/quotations/:name/terms", h.updateTerms)
	protected.GET("/quotations/:name/export/pdf", h.exportPDF)
	protected.GET("/quotations/:name/export/xlsx", h.exportExcel)
}

type itemPayload struct {
	Number      int             `json:"number"`
	PartNumber  string          `json:"part_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type termsPayload struct {
	TermsOfPayment string          `json:"terms_of_payment"`
	Delivery       string          `json:"delivery"`
	Warranty       string          `json:"warranty"`
	PriceValidity  string          `json:"price_validity"`
	Discount       decimal.Decimal `json:"discount"`
}

type totalsPayload struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	VATRate   decimal.Decimal `json:"vat_rate"`
	VAT       decimal.Decimal `json:"vat"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

type quotationResponse struct {
	Name     string        `json:"name"`
	Items    []itemPayload `json:"items"`
	Terms    termsPayload  `json:"terms"`
	Totals   totalsPayload `json:"totals"`
	Revision int           `json:"revision"`
}

type createQuotationRequest struct {
	Name string `json:"name" binding:"required"`
}

type saveQuotationRequest struct {
	Items    []itemPayload `json:"items"`
	Terms    termsPayload  `json:"terms"`
	Revision *int          `json:"revision"`
}

func (h *Handler) listQuotations(c *gin.Context) {
	names, err := h.quotes.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotations": names})
}

func (h *Handler) createQuotation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.quotes.Create(c.Request.Context(), principal, req.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuotationResponse(view))
}

func (h *Handler) getQuotation(c *gin.Context) {
	view, err := h.quotes.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(view))
}

func (h *Handler) saveQuotation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req saveQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.quotes.Save(c.Request.Context(), service.SaveQuotationInput{
		Name:      c.Param("name"),
		Items:     itemsToModel(req.Items),
		Terms:     termsToModel(req.Terms),
		Revision:  req.Revision,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(view))
}

func (h *Handler) deleteQuotation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	if err := h.quotes.Delete(c.Request.Context(), principal, c.Param("name")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateTerms(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req termsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quotes.UpdateTerms(c.Request.Context(), principal, c.Param("name"), termsToModel(req)); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportPDF(c *gin.Context) {
	result, err := h.quotes.ExportPDF(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) exportExcel(c *gin.Context) {
	result, err := h.quotes.ExportExcel(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, excelContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toQuotationResponse(view *service.QuotationView) quotationResponse {
	items := make([]itemPayload, 0, len(view.Quotation.Items))
	for _, item := range view.Quotation.Items {
		items = append(items, itemPayload{
			Number:      item.Number,
			PartNumber:  item.PartNumber,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	terms := view.Quotation.Terms
	totals := view.Totals
	return quotationResponse{
		Name:  view.Quotation.Name,
		Items: items,
		Terms: termsPayload{
			TermsOfPayment: terms.TermsOfPayment,
			Delivery:       terms.Delivery,
			Warranty:       terms.Warranty,
			PriceValidity:  terms.PriceValidity,
			Discount:       terms.Discount,
		},
		Totals: totalsPayload{
			Subtotal:  totals.Subtotal,
			Discount:  totals.Discount,
			VATRate:   totals.VATRate,
			VAT:       totals.VAT,
			AmountDue: totals.AmountDue,
		},
		Revision: view.Quotation.Revision,
	}
}

func itemsToModel(items []itemPayload) []model.QuotationItem {
	result := make([]model.QuotationItem, 0, len(items))
	for _, item := range items {
		result = append(result, model.QuotationItem{
			Number:      item.Number,
			PartNumber:  item.PartNumber,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
		})
	}
	return result
}

func termsToModel(terms termsPayload) model.Terms {
	return model.Terms{
		TermsOfPayment: terms.TermsOfPayment,
		Delivery:       terms.Delivery,
		Warranty:       terms.Warranty,
		PriceValidity:  terms.PriceValidity,
		Discount:       terms.Discount,
	}
}
