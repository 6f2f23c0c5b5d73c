package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/audit"
	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/repository"
)

// CertificateHandler issues and manages work certificates (attestations
// de travail).  References are allocated server-side and never accepted
// from the client.
type CertificateHandler struct {
	Certs    *repository.CertificateRepo
	Recorder *audit.Recorder
}

func NewCertificateHandler(r *repository.CertificateRepo, rec *audit.Recorder) *CertificateHandler {
	return &CertificateHandler{Certs: r, Recorder: rec}
}

type createCertReq struct {
	EmployeeID uint64 `json:"employee_id"`
	Issuer     string `json:"issuer"`
}

type updateCertReq struct {
	Issuer string `json:"issuer"`
}

type certResp struct {
	ID           uint64 `json:"id"`
	Reference    string `json:"reference"`
	EmployeeID   uint64 `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	IssueDate    string `json:"issue_date"`
	Issuer       string `json:"issuer"`
}

func toCertResp(c model.WorkCertificate) certResp {
	return certResp{
		ID:           c.ID,
		Reference:    c.Reference,
		EmployeeID:   c.EmployeeID,
		EmployeeName: c.EmployeeName,
		IssueDate:    dateStr(c.IssueDate),
		Issuer:       c.Issuer,
	}
}

func toCertList(list []model.WorkCertificate) []certResp {
	out := make([]certResp, 0, len(list))
	for _, c := range list {
		out = append(out, toCertResp(c))
	}
	return out
}

// Create issues a certificate for an employee.  When the request omits an
// issuer, the acting user's display name is used, falling back to the
// school's standing issuer line.
func (h *CertificateHandler) Create(c echo.Context) error {
	var req createCertReq
	if err := c.Bind(&req); err != nil || req.EmployeeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_id required"})
	}
	issuer := strings.TrimSpace(req.Issuer)
	if issuer == "" {
		issuer = getName(c)
	}
	if issuer == "" {
		issuer = model.DefaultIssuer
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cert, err := h.Certs.Create(ctx, req.EmployeeID, issuer, time.Now())
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionCreate, model.TargetAttestation, cert.ID,
		"Création de l'attestation "+cert.Reference))
	return c.JSON(http.StatusCreated, toCertResp(cert))
}

func (h *CertificateHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Certs.List(ctx, strings.TrimSpace(c.QueryParam("search")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toCertList(list))
}

// ListByEmployee returns every certificate issued to ?employee_id=.
func (h *CertificateHandler) ListByEmployee(c echo.Context) error {
	employeeID, err := strconv.ParseUint(c.QueryParam("employee_id"), 10, 64)
	if err != nil || employeeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, lerr := h.Certs.ListByEmployee(ctx, employeeID)
	if lerr != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toCertList(list))
}

func (h *CertificateHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cert, err := h.Certs.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attestation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionView, model.TargetAttestation, id,
		"Consultation de l'attestation "+cert.Reference))
	return c.JSON(http.StatusOK, toCertResp(cert))
}

// Update rewrites the issuer line only.  Reference and issue date are
// fixed at creation.
func (h *CertificateHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateCertReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Issuer) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "issuer required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Certs.UpdateIssuer(ctx, id, strings.TrimSpace(req.Issuer)); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attestation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	cert, err := h.Certs.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetAttestation, id,
		"Mise à jour de l'attestation "+cert.Reference))
	return c.JSON(http.StatusOK, toCertResp(cert))
}

func (h *CertificateHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cert, err := h.Certs.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attestation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Certs.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionDelete, model.TargetAttestation, id,
		"Suppression de l'attestation "+cert.Reference))
	return c.NoContent(http.StatusNoContent)
}
