package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/audit"
	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/repository"
)

const dateLayout = "2006-01-02"

// EmployeeHandler exposes the HR employee registry.  Writes are admin
// only; reads are open to every authenticated role.
type EmployeeHandler struct {
	Employees *repository.EmployeeRepo
	Recorder  *audit.Recorder
}

func NewEmployeeHandler(e *repository.EmployeeRepo, rec *audit.Recorder) *EmployeeHandler {
	return &EmployeeHandler{Employees: e, Recorder: rec}
}

type employeeReq struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	BirthDate       string `json:"birth_date"`
	BirthPlace      string `json:"birth_place"`
	Grade           string `json:"grade"`
	Fonction        string `json:"fonction"`
	Categorie       string `json:"categorie"`
	HireDate        string `json:"hire_date"`
	DepartureDate   string `json:"departure_date"`
	Service         string `json:"service"`
	Statut          string `json:"statut"`
	IDDocNumber     string `json:"id_doc_number"`
	IDDocIssueDate  string `json:"id_doc_issue_date"`
	IDDocIssuePlace string `json:"id_doc_issue_place"`
}

type employeeResp struct {
	ID              uint64                 `json:"id"`
	FirstName       string                 `json:"first_name"`
	LastName        string                 `json:"last_name"`
	FullName        string                 `json:"full_name"`
	BirthDate       string                 `json:"birth_date"`
	BirthPlace      string                 `json:"birth_place"`
	Grade           string                 `json:"grade"`
	Fonction        string                 `json:"fonction"`
	Categorie       model.EmployeeCategory `json:"categorie"`
	HireDate        string                 `json:"hire_date"`
	DepartureDate   *string                `json:"departure_date"`
	Service         string                 `json:"service"`
	Statut          model.EmploymentStatus `json:"statut"`
	IDDocNumber     string                 `json:"id_doc_number"`
	IDDocIssueDate  *string                `json:"id_doc_issue_date"`
	IDDocIssuePlace string                 `json:"id_doc_issue_place"`
}

func dateStr(t time.Time) string { return t.Format(dateLayout) }

func dateStrPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func toEmployeeResp(e model.Employee) employeeResp {
	return employeeResp{
		ID:              e.ID,
		FirstName:       e.FirstName,
		LastName:        e.LastName,
		FullName:        e.FullName(),
		BirthDate:       dateStr(e.BirthDate),
		BirthPlace:      e.BirthPlace,
		Grade:           e.Grade,
		Fonction:        e.Fonction,
		Categorie:       e.Categorie,
		HireDate:        dateStr(e.HireDate),
		DepartureDate:   dateStrPtr(e.DepartureDate),
		Service:         e.Service,
		Statut:          e.Statut,
		IDDocNumber:     e.IDDocNumber,
		IDDocIssueDate:  dateStrPtr(e.IDDocIssueDate),
		IDDocIssuePlace: e.IDDocIssuePlace,
	}
}

func toEmployeeList(list []model.Employee) []employeeResp {
	out := make([]employeeResp, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeResp(e))
	}
	return out
}

// buildEmployee validates and converts a request body into a model value.
// The returned message is a client-facing validation error, empty on
// success.
func buildEmployee(req employeeReq) (model.Employee, string) {
	var e model.Employee
	e.FirstName = strings.TrimSpace(req.FirstName)
	e.LastName = strings.TrimSpace(req.LastName)
	if e.FirstName == "" || e.LastName == "" {
		return e, "first_name and last_name are required"
	}
	bd, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		return e, "birth_date must be YYYY-MM-DD"
	}
	e.BirthDate = bd
	e.BirthPlace = strings.TrimSpace(req.BirthPlace)
	e.Grade = strings.TrimSpace(req.Grade)
	e.Fonction = strings.TrimSpace(req.Fonction)

	cat, ok := model.ParseEmployeeCategory(req.Categorie)
	if !ok {
		return e, "categorie must be ENSEIGNANT, ADMINISTRATIF, TECHNIQUE or OUVRIER"
	}
	e.Categorie = cat

	hd, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return e, "hire_date must be YYYY-MM-DD"
	}
	e.HireDate = hd

	if req.DepartureDate != "" {
		dd, err := time.Parse(dateLayout, req.DepartureDate)
		if err != nil {
			return e, "departure_date must be YYYY-MM-DD"
		}
		e.DepartureDate = &dd
	}
	e.Service = strings.TrimSpace(req.Service)

	if req.Statut == "" {
		e.Statut = model.StatusActif
	} else {
		st, ok := model.ParseEmploymentStatus(req.Statut)
		if !ok {
			return e, "statut must be ACTIF, DEMISSION or RETRAITE"
		}
		e.Statut = st
	}

	e.IDDocNumber = strings.TrimSpace(req.IDDocNumber)
	if req.IDDocIssueDate != "" {
		idd, err := time.Parse(dateLayout, req.IDDocIssueDate)
		if err != nil {
			return e, "id_doc_issue_date must be YYYY-MM-DD"
		}
		e.IDDocIssueDate = &idd
	}
	e.IDDocIssuePlace = strings.TrimSpace(req.IDDocIssuePlace)
	return e, ""
}

func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, msg := buildEmployee(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Employees.Create(ctx, &e)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	e.ID = id

	h.Recorder.Record(newEvent(c, model.ActionCreate, model.TargetEmployee, id,
		"Création de l'employé "+e.FullName()))
	return c.JSON(http.StatusCreated, toEmployeeResp(e))
}

// List returns employees ordered by name; ?search= filters across names,
// grade, fonction and service.
func (h *EmployeeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Employees.List(ctx, strings.TrimSpace(c.QueryParam("search")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeList(list))
}

// ListActive returns employees whose statut is ACTIF.
func (h *EmployeeHandler) ListActive(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Employees.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeList(list))
}

// ListByCategory filters on the categorie enum passed as ?category=.
func (h *EmployeeHandler) ListByCategory(c echo.Context) error {
	cat, ok := model.ParseEmployeeCategory(c.QueryParam("category"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category must be ENSEIGNANT, ADMINISTRATIF, TECHNIQUE or OUVRIER"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Employees.ListByCategory(ctx, cat)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeList(list))
}

func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionView, model.TargetEmployee, id,
		"Consultation de l'employé "+e.FullName()))
	return c.JSON(http.StatusOK, toEmployeeResp(e))
}

func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, msg := buildEmployee(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	e.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Employees.Update(ctx, &e); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetEmployee, id,
		"Mise à jour de l'employé "+e.FullName()))
	return c.JSON(http.StatusOK, toEmployeeResp(e))
}

func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Employees.Delete(ctx, id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "employee has documents and cannot be deleted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionDelete, model.TargetEmployee, id,
		"Suppression de l'employé "+e.FullName()))
	return c.NoContent(http.StatusNoContent)
}
