package httpserver

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/repository/payment"
)

var (
	nonDigits     = regexp.MustCompile(`\D+`)
	expirationFmt = regexp.MustCompile(`^(\d{1,2})/(\d{2}|\d{4})$`)
)

type paymentHandlers struct {
	repo   payment.Repository
	logger *log.Logger
}

type createPaymentRequest struct {
	FullName     string           `json:"full_name"`
	Email        string           `json:"email"`
	Address      string           `json:"address"`
	City         string           `json:"city"`
	Country      string           `json:"country"`
	CardNumber   string           `json:"card_number"`
	Expiration   string           `json:"expiration"`
	CCV          string           `json:"ccv"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     string           `json:"currency"`
	PaymentToken *string          `json:"payment_token"`
}

type updatePaymentRequest struct {
	FullName *string          `json:"full_name"`
	Email    *string          `json:"email"`
	Address  *string          `json:"address"`
	City     *string          `json:"city"`
	Country  *string          `json:"country"`
	Amount   *decimal.Decimal `json:"amount"`
	Currency *string          `json:"currency"`
}

// paymentResponse matches the wire shape the storefront expects: snake
// case fields with the amount serialized as a decimal string.
type paymentResponse struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Country      *string `json:"country"`
	CardLast4    string  `json:"card_last4"`
	ExpMonth     int     `json:"exp_month"`
	ExpYear      int     `json:"exp_year"`
	Amount       string  `json:"amount"`
	Currency     string  `json:"currency"`
	PaymentToken *string `json:"payment_token"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type paginatedResponse struct {
	CurrentPage int               `json:"current_page"`
	Data        []paymentResponse `json:"data"`
	PerPage     int               `json:"per_page"`
	Total       int               `json:"total"`
}

func (h *paymentHandlers) create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "The given data was invalid.", gin.H{"body": []string{"Malformed JSON body."}})
		return
	}

	fieldErrors := map[string][]string{}
	requireField(fieldErrors, "full_name", req.FullName)
	requireField(fieldErrors, "email", req.Email)
	requireField(fieldErrors, "card_number", req.CardNumber)
	requireField(fieldErrors, "expiration", req.Expiration)
	requireField(fieldErrors, "ccv", req.CCV)

	digits := nonDigits.ReplaceAllString(req.CardNumber, "")
	if req.CardNumber != "" && len(digits) < 12 {
		fieldErrors["card_number"] = append(fieldErrors["card_number"], "The card number is invalid.")
	}
	expMonth, expYear, expOK := parseExpiration(req.Expiration)
	if req.Expiration != "" && !expOK {
		fieldErrors["expiration"] = append(fieldErrors["expiration"], "The expiration must match MM/YY or MM/YYYY.")
	}
	if req.Amount == nil || req.Amount.IsNegative() || req.Amount.IsZero() {
		fieldErrors["amount"] = append(fieldErrors["amount"], "The amount must be greater than zero.")
	}
	if len(fieldErrors) > 0 {
		validationError(c, "The given data was invalid.", fieldErrors)
		return
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	rec, err := h.repo.Create(c.Request.Context(), payment.CreateInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Address:      optional(req.Address),
		City:         optional(req.City),
		Country:      optional(req.Country),
		CardLast4:    digits[len(digits)-4:],
		ExpMonth:     expMonth,
		ExpYear:      expYear,
		Amount:       *req.Amount,
		Currency:     currency,
		PaymentToken: req.PaymentToken,
	})
	if err != nil {
		h.logger.Printf("create payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not store the payment."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toResponse(*rec)})
}

func (h *paymentHandlers) list(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", 15)

	records, total, err := h.repo.List(c.Request.Context(), page, perPage)
	if err != nil {
		h.logger.Printf("list payments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list payments."})
		return
	}

	data := make([]paymentResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toResponse(rec))
	}
	c.JSON(http.StatusOK, paginatedResponse{
		CurrentPage: page,
		Data:        data,
		PerPage:     perPage,
		Total:       total,
	})
}

func (h *paymentHandlers) get(c *gin.Context) {
	rec, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Could not fetch the payment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toResponse(*rec)})
}

func (h *paymentHandlers) update(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "The given data was invalid.", gin.H{"body": []string{"Malformed JSON body."}})
		return
	}

	rec, err := h.repo.Update(c.Request.Context(), c.Param("id"), payment.UpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		h.respondError(c, err, "Could not update the payment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toResponse(*rec)})
}

func (h *paymentHandlers) delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Could not delete the payment.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *paymentHandlers) respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Payment not found."})
		return
	}
	h.logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
}

func validationError(c *gin.Context, message string, errs interface{}) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": message, "errors": errs})
}

func requireField(errs map[string][]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = append(errs[field], "The "+strings.ReplaceAll(field, "_", " ")+" field is required.")
	}
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseExpiration accepts MM/YY or MM/YYYY, clamping the month into
// [1, 12] and widening two-digit years into the 2000s.
func parseExpiration(raw string) (month, year int, ok bool) {
	m := expirationFmt.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(m[1])
	if month < 1 {
		month = 1
	}
	if month > 12 {
		month = 12
	}
	year, _ = strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		year += 2000
	}
	return month, year, true
}

func toResponse(rec payment.Record) paymentResponse {
	return paymentResponse{
		ID:           rec.ID,
		FullName:     rec.FullName,
		Email:        rec.Email,
		Address:      rec.Address,
		City:         rec.City,
		Country:      rec.Country,
		CardLast4:    rec.CardLast4,
		ExpMonth:     rec.ExpMonth,
		ExpYear:      rec.ExpYear,
		Amount:       rec.Amount.StringFixed(2),
		Currency:     rec.Currency,
		PaymentToken: rec.PaymentToken,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
