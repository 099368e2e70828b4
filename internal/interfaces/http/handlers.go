package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/service"
	"github.com/finly-app/expense-service/internal/domain/approval"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/infrastructure/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenseService service.ExpenseService
	ruleService    service.RuleService
	authService    service.AuthService
	exporter       *export.ExcelWriter
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	expenseService service.ExpenseService,
	ruleService service.RuleService,
	authService service.AuthService,
	exporter *export.ExcelWriter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		expenseService: expenseService,
		ruleService:    ruleService,
		authService:    authService,
		exporter:       exporter,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// CreateExpenseRequest carries the fields of a new draft expense
type CreateExpenseRequest struct {
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
}

// ActionRequest carries an approver's decision
type ActionRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// RuleRequest carries the editable fields of an approval rule
type RuleRequest struct {
	Name       string                  `json:"name" binding:"required"`
	IsActive   bool                    `json:"is_active"`
	Priority   int                     `json:"priority"`
	Conditions entity.RuleConditions   `json:"conditions"`
	Workflow   entity.ApprovalWorkflow `json:"workflow"`
}

// ResolveRulesRequest describes a hypothetical expense for rule preview.
// Amount is in the company base currency.
type ResolveRulesRequest struct {
	Amount        string `json:"amount" binding:"required"`
	Category      string `json:"category"`
	Department    string `json:"department"`
	SubmitterRole string `json:"submitter_role"`
	SubmitterID   string `json:"submitter_id"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid login payload")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
			return
		}
		h.serverError(c, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: LoginResponse{Token: token, User: user}})
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid expense payload")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.badRequest(c, "invalid amount")
		return
	}

	claims := identity(c)
	expense, err := h.expenseService.CreateDraft(c.Request.Context(), service.CreateExpenseInput{
		CompanyID:   claims.CompanyID,
		SubmittedBy: claims.Subject,
		Description: req.Description,
		Category:    req.Category,
		Amount:      amount,
		Currency:    strings.ToUpper(req.Currency),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// ListExpensesRequest represents query parameters for listing expenses
type ListExpensesRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	var statuses []string
	if req.Status != "" {
		statuses = strings.Split(strings.ToUpper(req.Status), ",")
	}

	expenses, err := h.expenseService.ListByCompany(
		c.Request.Context(), identity(c).CompanyID, statuses, req.Limit, req.Offset)
	if err != nil {
		h.serverError(c, "failed to list expenses", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: expenses})
}

// SubmitExpense handles POST /api/expenses/:id/submit
func (h *Handlers) SubmitExpense(c *gin.Context) {
	expense, err := h.expenseService.Submit(c.Request.Context(), c.Param("id"), identity(c).Subject)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// ActOnExpense handles POST /api/expenses/:id/actions
func (h *Handlers) ActOnExpense(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid action payload")
		return
	}

	expense, err := h.expenseService.Act(
		c.Request.Context(), c.Param("id"), identity(c).Subject,
		strings.ToUpper(req.Action), req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// MarkExpensePaid handles POST /api/expenses/:id/paid
func (h *Handlers) MarkExpensePaid(c *gin.Context) {
	expense, err := h.expenseService.MarkPaid(c.Request.Context(), c.Param("id"), identity(c).Subject)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// ExpenseHistory handles GET /api/expenses/:id/history
func (h *Handlers) ExpenseHistory(c *gin.Context) {
	history, err := h.expenseService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// ExportExpenses handles GET /api/reports/expenses
func (h *Handlers) ExportExpenses(c *gin.Context) {
	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 1000
	}

	var statuses []string
	if req.Status != "" {
		statuses = strings.Split(strings.ToUpper(req.Status), ",")
	}

	expenses, err := h.expenseService.ListByCompany(
		c.Request.Context(), identity(c).CompanyID, statuses, req.Limit, 0)
	if err != nil {
		h.serverError(c, "failed to list expenses", err)
		return
	}

	filename := fmt.Sprintf("expenses-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.exporter.WriteReport(c.Writer, expenses); err != nil {
		h.logger.Error("Failed to write expense report", zap.Error(err))
	}
}

// CreateRule handles POST /api/rules
func (h *Handlers) CreateRule(c *gin.Context) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid rule payload")
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), service.RuleInput{
		CompanyID:  identity(c).CompanyID,
		Name:       req.Name,
		IsActive:   req.IsActive,
		Priority:   req.Priority,
		Conditions: req.Conditions,
		Workflow:   req.Workflow,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: rule})
}

// UpdateRule handles PUT /api/rules/:id
func (h *Handlers) UpdateRule(c *gin.Context) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid rule payload")
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), c.Param("id"), service.RuleInput{
		CompanyID:  identity(c).CompanyID,
		Name:       req.Name,
		IsActive:   req.IsActive,
		Priority:   req.Priority,
		Conditions: req.Conditions,
		Workflow:   req.Workflow,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rule})
}

// GetRule handles GET /api/rules/:id
func (h *Handlers) GetRule(c *gin.Context) {
	rule, err := h.ruleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rule})
}

// ListRules handles GET /api/rules
func (h *Handlers) ListRules(c *gin.Context) {
	rules, err := h.ruleService.ListByCompany(c.Request.Context(), identity(c).CompanyID)
	if err != nil {
		h.serverError(c, "failed to list rules", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rules})
}

// DeleteRule handles DELETE /api/rules/:id
func (h *Handlers) DeleteRule(c *gin.Context) {
	if err := h.ruleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ResolveRules handles POST /api/rules/resolve
func (h *Handlers) ResolveRules(c *gin.Context) {
	var req ResolveRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid resolve payload")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.badRequest(c, "invalid amount")
		return
	}

	rules, err := h.ruleService.ResolveApplicable(c.Request.Context(), identity(c).CompanyID, service.PreviewQuery{
		Amount:        amount,
		Category:      strings.ToUpper(req.Category),
		Department:    req.Department,
		SubmitterRole: strings.ToUpper(req.SubmitterRole),
		SubmitterID:   req.SubmitterID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rules})
}

// respondError maps domain errors to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, approval.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, approval.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, approval.ErrConflict),
		errors.Is(err, approval.ErrInvalidState),
		errors.Is(err, service.ErrRuleInUse):
		status = http.StatusConflict
	case errors.Is(err, approval.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, approval.ErrConfiguration):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func (h *Handlers) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}
