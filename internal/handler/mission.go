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

// defaultLieuDepart is stamped on orders that do not name a departure
// city.
const defaultLieuDepart = "Alger"

// MissionHandler manages mission orders (ordres de mission) and their
// itinerary legs.  The order and its legs form one aggregate: legs are
// created with the order, replaced as a set on update and removed with
// the parent.
type MissionHandler struct {
	Missions *repository.MissionRepo
	Recorder *audit.Recorder
}

func NewMissionHandler(r *repository.MissionRepo, rec *audit.Recorder) *MissionHandler {
	return &MissionHandler{Missions: r, Recorder: rec}
}

type legReq struct {
	LieuDepart  string `json:"lieu_depart"`
	LieuArrivee string `json:"lieu_arrivee"`
	DateDepart  string `json:"date_depart"`
	DateArrivee string `json:"date_arrivee"`
	Transport   string `json:"transport"`
}

type missionReq struct {
	EmployeeID       uint64   `json:"employee_id"`
	Objet            string   `json:"objet"`
	LieuDepart       string   `json:"lieu_depart"`
	LieuDestination  string   `json:"lieu_destination"`
	DateDepart       string   `json:"date_depart"`
	DateRetour       string   `json:"date_retour"`
	Transport        string   `json:"transport"`
	Avance           *float64 `json:"avance"`
	NumeroAvance     string   `json:"numero_avance"`
	DateAvance       string   `json:"date_avance"`
	LieuAvance       string   `json:"lieu_avance"`
	NuitsHebergement uint16   `json:"nuits_hebergement"`
	DureeJours       uint16   `json:"duree_jours"`
	DureeHeures      uint16   `json:"duree_heures"`
	// nil keeps existing legs on update; an empty array clears them.
	Etapes *[]legReq `json:"etapes"`
}

type legResp struct {
	ID          uint64              `json:"id"`
	LieuDepart  string              `json:"lieu_depart"`
	LieuArrivee string              `json:"lieu_arrivee"`
	DateDepart  time.Time           `json:"date_depart"`
	DateArrivee time.Time           `json:"date_arrivee"`
	Transport   model.TransportMode `json:"transport"`
}

type missionResp struct {
	ID               uint64              `json:"id"`
	Reference        string              `json:"reference"`
	EmployeeID       uint64              `json:"employee_id"`
	EmployeeName     string              `json:"employee_name"`
	Objet            string              `json:"objet"`
	LieuDepart       string              `json:"lieu_depart"`
	LieuDestination  string              `json:"lieu_destination"`
	DateDepart       time.Time           `json:"date_depart"`
	DateRetour       time.Time           `json:"date_retour"`
	Transport        model.TransportMode `json:"transport"`
	Avance           *float64            `json:"avance"`
	NumeroAvance     string              `json:"numero_avance"`
	DateAvance       *string             `json:"date_avance"`
	LieuAvance       string              `json:"lieu_avance"`
	NuitsHebergement uint16              `json:"nuits_hebergement"`
	DureeJours       uint16              `json:"duree_jours"`
	DureeHeures      uint16              `json:"duree_heures"`
	DateCreation     string              `json:"date_creation"`
	Responsable      string              `json:"responsable"`
	Etapes           []legResp           `json:"etapes"`
}

func toLegResp(l model.MissionLeg) legResp {
	return legResp{
		ID:          l.ID,
		LieuDepart:  l.LieuDepart,
		LieuArrivee: l.LieuArrivee,
		DateDepart:  l.DateDepart,
		DateArrivee: l.DateArrivee,
		Transport:   l.Transport,
	}
}

func toMissionResp(m model.MissionOrder) missionResp {
	legs := make([]legResp, 0, len(m.Legs))
	for _, l := range m.Legs {
		legs = append(legs, toLegResp(l))
	}
	return missionResp{
		ID:               m.ID,
		Reference:        m.Reference,
		EmployeeID:       m.EmployeeID,
		EmployeeName:     m.EmployeeName,
		Objet:            m.Objet,
		LieuDepart:       m.LieuDepart,
		LieuDestination:  m.LieuDestination,
		DateDepart:       m.DateDepart,
		DateRetour:       m.DateRetour,
		Transport:        m.Transport,
		Avance:           m.Avance,
		NumeroAvance:     m.NumeroAvance,
		DateAvance:       dateStrPtr(m.DateAvance),
		LieuAvance:       m.LieuAvance,
		NuitsHebergement: m.NuitsHebergement,
		DureeJours:       m.DureeJours,
		DureeHeures:      m.DureeHeures,
		DateCreation:     dateStr(m.DateCreation),
		Responsable:      m.Responsable,
		Etapes:           legs,
	}
}

func toMissionList(list []model.MissionOrder) []missionResp {
	out := make([]missionResp, 0, len(list))
	for _, m := range list {
		out = append(out, toMissionResp(m))
	}
	return out
}

// parseDateTime accepts RFC 3339 timestamps and bare dates.
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, s)
}

// buildLegs validates leg requests into model values.  The returned
// message is a client-facing validation error, empty on success.
func buildLegs(reqs []legReq) ([]model.MissionLeg, string) {
	legs := make([]model.MissionLeg, 0, len(reqs))
	for _, lr := range reqs {
		var l model.MissionLeg
		l.LieuDepart = strings.TrimSpace(lr.LieuDepart)
		l.LieuArrivee = strings.TrimSpace(lr.LieuArrivee)
		if l.LieuDepart == "" || l.LieuArrivee == "" {
			return nil, "etape lieu_depart and lieu_arrivee are required"
		}
		dd, err := parseDateTime(lr.DateDepart)
		if err != nil {
			return nil, "etape date_depart must be a date or RFC 3339 timestamp"
		}
		da, err := parseDateTime(lr.DateArrivee)
		if err != nil {
			return nil, "etape date_arrivee must be a date or RFC 3339 timestamp"
		}
		l.DateDepart, l.DateArrivee = dd, da
		tr, ok := model.ParseTransportMode(lr.Transport)
		if !ok {
			return nil, "etape transport is not a recognized mode"
		}
		l.Transport = tr
		legs = append(legs, l)
	}
	return legs, ""
}

// buildMission validates the scalar fields of an order request.
func buildMission(req missionReq) (model.MissionOrder, string) {
	var m model.MissionOrder
	if req.EmployeeID == 0 {
		return m, "employee_id required"
	}
	m.EmployeeID = req.EmployeeID
	m.Objet = strings.TrimSpace(req.Objet)
	if m.Objet == "" {
		return m, "objet required"
	}
	m.LieuDepart = strings.TrimSpace(req.LieuDepart)
	if m.LieuDepart == "" {
		m.LieuDepart = defaultLieuDepart
	}
	m.LieuDestination = strings.TrimSpace(req.LieuDestination)
	if m.LieuDestination == "" {
		return m, "lieu_destination required"
	}
	dd, err := parseDateTime(req.DateDepart)
	if err != nil {
		return m, "date_depart must be a date or RFC 3339 timestamp"
	}
	dr, err := parseDateTime(req.DateRetour)
	if err != nil {
		return m, "date_retour must be a date or RFC 3339 timestamp"
	}
	m.DateDepart, m.DateRetour = dd, dr

	tr, ok := model.ParseTransportMode(req.Transport)
	if !ok {
		return m, "transport is not a recognized mode"
	}
	m.Transport = tr

	m.Avance = req.Avance
	m.NumeroAvance = strings.TrimSpace(req.NumeroAvance)
	if req.DateAvance != "" {
		da, err := parseDateTime(req.DateAvance)
		if err != nil {
			return m, "date_avance must be a date or RFC 3339 timestamp"
		}
		m.DateAvance = &da
	}
	m.LieuAvance = strings.TrimSpace(req.LieuAvance)
	m.NuitsHebergement = req.NuitsHebergement
	m.DureeJours = req.DureeJours
	m.DureeHeures = req.DureeHeures
	return m, ""
}

// Create issues a mission order, allocating its reference and recording
// the acting user as responsable.  Legs supplied in the body are inserted
// in the same transaction.
func (h *MissionHandler) Create(c echo.Context) error {
	var req missionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m, msg := buildMission(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	var legs []model.MissionLeg
	if req.Etapes != nil {
		legs, msg = buildLegs(*req.Etapes)
		if msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}
	m.Responsable = getName(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Missions.CreateWithLegs(ctx, &m, legs, time.Now())
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	created, err := h.Missions.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	h.Recorder.Record(newEvent(c, model.ActionCreate, model.TargetMission, id,
		"Création de l'ordre de mission "+created.Reference))
	return c.JSON(http.StatusCreated, toMissionResp(created))
}

func (h *MissionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Missions.List(ctx, strings.TrimSpace(c.QueryParam("search")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toMissionList(list))
}

// ListByEmployee returns every order issued to ?employee_id=.
func (h *MissionHandler) ListByEmployee(c echo.Context) error {
	employeeID, err := strconv.ParseUint(c.QueryParam("employee_id"), 10, 64)
	if err != nil || employeeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, lerr := h.Missions.ListByEmployee(ctx, employeeID)
	if lerr != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toMissionList(list))
}

func (h *MissionHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Missions.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionView, model.TargetMission, id,
		"Consultation de l'ordre de mission "+m.Reference))
	return c.JSON(http.StatusOK, toMissionResp(m))
}

// Update rewrites the order's fields.  Supplying etapes replaces the
// whole leg set in the same transaction; omitting it keeps the current
// legs.  Reference, creation date and responsable never change.
func (h *MissionHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req missionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m, msg := buildMission(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	m.ID = id

	var legs []model.MissionLeg
	if req.Etapes != nil {
		legs, msg = buildLegs(*req.Etapes)
		if msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		if legs == nil {
			legs = []model.MissionLeg{} // non-nil empty set still clears
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Missions.Update(ctx, &m, legs); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	updated, err := h.Missions.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetMission, id,
		"Mise à jour de l'ordre de mission "+updated.Reference))
	return c.JSON(http.StatusOK, toMissionResp(updated))
}

func (h *MissionHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Missions.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Missions.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionDelete, model.TargetMission, id,
		"Suppression de l'ordre de mission "+m.Reference))
	return c.NoContent(http.StatusNoContent)
}

// ListLegs returns an order's legs ordered by departure time.
func (h *MissionHandler) ListLegs(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Missions.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	legs, err := h.Missions.ListLegs(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]legResp, 0, len(legs))
	for _, l := range legs {
		out = append(out, toLegResp(l))
	}
	return c.JSON(http.StatusOK, out)
}

// AddLeg appends one leg to an existing order.
func (h *MissionHandler) AddLeg(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req legReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	legs, msg := buildLegs([]legReq{req})
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	leg := legs[0]
	leg.OrderID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	legID, err := h.Missions.AddLeg(ctx, &leg)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	leg.ID = legID

	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetMission, id,
		"Ajout d'une étape à l'ordre de mission"))
	return c.JSON(http.StatusCreated, toLegResp(leg))
}

// parseLegParams pulls the order and leg IDs out of the nested route.
func parseLegParams(c echo.Context) (orderID, legID uint64, err error) {
	if orderID, err = parseIDParam(c, "id"); err != nil {
		return 0, 0, err
	}
	if legID, err = parseIDParam(c, "legId"); err != nil {
		return 0, 0, err
	}
	return orderID, legID, nil
}

// GetLeg returns one leg of an order.
func (h *MissionHandler) GetLeg(c echo.Context) error {
	orderID, legID, err := parseLegParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	leg, err := h.Missions.GetLeg(ctx, orderID, legID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "etape not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toLegResp(leg))
}

// UpdateLeg rewrites one leg of an order in place.  The whole-set
// replacement through the parent update stays available for callers that
// resubmit the itinerary.
func (h *MissionHandler) UpdateLeg(c echo.Context) error {
	orderID, legID, err := parseLegParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req legReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	legs, msg := buildLegs([]legReq{req})
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	leg := legs[0]
	leg.ID = legID
	leg.OrderID = orderID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Missions.UpdateLeg(ctx, &leg); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "etape not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetMission, orderID,
		"Mise à jour d'une étape de l'ordre de mission"))
	return c.JSON(http.StatusOK, toLegResp(leg))
}

// DeleteLeg removes one leg of an order.
func (h *MissionHandler) DeleteLeg(c echo.Context) error {
	orderID, legID, err := parseLegParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Missions.DeleteLeg(ctx, orderID, legID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "etape not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	h.Recorder.Record(newEvent(c, model.ActionUpdate, model.TargetMission, orderID,
		"Suppression d'une étape de l'ordre de mission"))
	return c.NoContent(http.StatusNoContent)
}
