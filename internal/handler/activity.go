package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/repository"
)

// recentActivityWindow bounds the /activities/recent listing.
const recentActivityWindow = 7 * 24 * time.Hour

// ActivityHandler gives read access to the audit trail.  Entries are
// append-only; there are no write endpoints.
type ActivityHandler struct {
	Activities *repository.ActivityRepo
}

func NewActivityHandler(a *repository.ActivityRepo) *ActivityHandler {
	return &ActivityHandler{Activities: a}
}

type activityResp struct {
	ID          uint64           `json:"id"`
	ActorID     *uint64          `json:"actor_id"`
	ActorName   string           `json:"actor_name"`
	Action      model.ActionKind `json:"action"`
	Target      model.TargetKind `json:"target"`
	TargetID    *uint64          `json:"target_id"`
	Description string           `json:"description"`
	IP          string           `json:"ip"`
	UserAgent   string           `json:"user_agent"`
	Timestamp   time.Time        `json:"timestamp"`
}

func toActivityResp(e model.ActivityLog) activityResp {
	return activityResp{
		ID:          e.ID,
		ActorID:     e.ActorID,
		ActorName:   e.ActorName,
		Action:      e.Action,
		Target:      e.Target,
		TargetID:    e.TargetID,
		Description: e.Description,
		IP:          e.IP,
		UserAgent:   e.UserAgent,
		Timestamp:   e.Timestamp,
	}
}

func toActivityList(list []model.ActivityLog) []activityResp {
	out := make([]activityResp, 0, len(list))
	for _, e := range list {
		out = append(out, toActivityResp(e))
	}
	return out
}

// List returns audit entries newest first, filtered by the optional
// actor_id, action, target, start_date and end_date query parameters.
// Unknown enum values are rejected rather than silently matching nothing.
func (h *ActivityHandler) List(c echo.Context) error {
	var f repository.ActivityFilter

	if raw := c.QueryParam("actor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor_id must be numeric"})
		}
		f.ActorID = id
	}
	if raw := c.QueryParam("action"); raw != "" {
		action, ok := model.ParseActionKind(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "action is not a recognized kind"})
		}
		f.Action = action
	}
	if raw := c.QueryParam("target"); raw != "" {
		target, ok := model.ParseTargetKind(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "target is not a recognized kind"})
		}
		f.Target = target
	}
	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
		}
		f.StartDate = t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		// End of the named day, inclusive.
		f.EndDate = t.Add(24*time.Hour - time.Nanosecond)
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		f.Limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Activities.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toActivityList(list))
}

// Recent returns the last seven days of audit entries.
func (h *ActivityHandler) Recent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Activities.RecentSince(ctx, time.Now().UTC().Add(-recentActivityWindow))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toActivityList(list))
}
