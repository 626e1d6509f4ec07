package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/usecase"
	"github.com/ErlanBelekov/companydesk/internal/validation"
	"github.com/gin-gonic/gin"
)

type companyUsecaser interface {
	List(ctx context.Context, email string) ([]*domain.Company, error)
	Lookup(ctx context.Context, siret string) (*domain.Company, error)
	Create(ctx context.Context, email string, in usecase.CompanyInput) (*domain.Company, error)
	Update(ctx context.Context, email string, in usecase.CompanyInput) (*domain.Company, bool, error)
	Delete(ctx context.Context, email, siret string) error
}

type CompanyHandler struct {
	companyUsecase companyUsecaser
	validator      fieldValidator
	logger         *slog.Logger
}

func NewCompanyHandler(companyUsecase companyUsecaser, validator fieldValidator, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyUsecase: companyUsecase,
		validator:      validator,
		logger:         logger.With("component", "company_handler"),
	}
}

type companyResponse struct {
	SIRET     string     `json:"siret"`
	SIREN     string     `json:"siren"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	TVA       string     `json:"tva"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toCompanyResponse(c *domain.Company) companyResponse {
	resp := companyResponse{
		SIRET:   c.SIRET,
		SIREN:   c.SIREN,
		Name:    c.Name,
		Address: c.Address,
		TVA:     c.TVA,
	}
	// Registry lookups are never stored and carry no timestamps.
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = &c.CreatedAt
		resp.UpdatedAt = &c.UpdatedAt
	}
	return resp
}

// GET /companies
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companyUsecase.List(c.Request.Context(), c.GetString("email"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list companies", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]companyResponse, len(companies))
	for i, co := range companies {
		out[i] = toCompanyResponse(co)
	}
	c.JSON(http.StatusOK, gin.H{"companies": out})
}

// GET /companies/lookup/:siret
func (h *CompanyHandler) Lookup(c *gin.Context) {
	fields, err := h.validator.Validate(map[string]string{validation.FieldSIRET: c.Param("siret")}, validation.FieldSIRET)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	co, err := h.companyUsecase.Lookup(c.Request.Context(), fields[validation.FieldSIRET])
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCompanyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errCompanyNotFound})
		case errors.Is(err, domain.ErrRegistryRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": errRegistryRateLimit})
		default:
			h.logger.ErrorContext(c.Request.Context(), "registry lookup", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errServiceUnavailable})
		}
		return
	}

	c.JSON(http.StatusOK, toCompanyResponse(co))
}

// POST /companies
func (h *CompanyHandler) Create(c *gin.Context) {
	fields, err := h.validator.Validate(bodyFields(c),
		validation.FieldSIRET, validation.FieldName, validation.FieldAddress, validation.FieldSIREN, validation.FieldTVA)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	co, err := h.companyUsecase.Create(c.Request.Context(), c.GetString("email"), usecase.CompanyInput{
		SIRET:   fields[validation.FieldSIRET],
		SIREN:   fields[validation.FieldSIREN],
		Name:    fields[validation.FieldName],
		Address: fields[validation.FieldAddress],
		TVA:     fields[validation.FieldTVA],
	})
	if err != nil {
		if errors.Is(err, domain.ErrCompanyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": errDuplicateCompany})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "create company", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toCompanyResponse(co))
}

// PUT /companies
func (h *CompanyHandler) Update(c *gin.Context) {
	fields, err := h.validator.Validate(bodyFields(c),
		validation.FieldSIRET, validation.FieldName, validation.FieldAddress, validation.FieldTVA)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	co, modified, err := h.companyUsecase.Update(c.Request.Context(), c.GetString("email"), usecase.CompanyInput{
		SIRET:   fields[validation.FieldSIRET],
		Name:    fields[validation.FieldName],
		Address: fields[validation.FieldAddress],
		TVA:     fields[validation.FieldTVA],
	})
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errCompanyNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "update company", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"company": toCompanyResponse(co), "modified": modified})
}

// DELETE /companies/:siret
func (h *CompanyHandler) Delete(c *gin.Context) {
	fields, err := h.validator.Validate(map[string]string{validation.FieldSIRET: c.Param("siret")}, validation.FieldSIRET)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.companyUsecase.Delete(c.Request.Context(), c.GetString("email"), fields[validation.FieldSIRET]); err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errCompanyNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "delete company", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}
