package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxDurationHours = 8

var (
	errFieldInactive = errors.New("mockapi: field is not active")
	errPastStart     = errors.New("mockapi: start time in the past")
	errClosed        = errors.New("mockapi: field closed at requested time")
	errCancelled     = errors.New("mockapi: reservation already cancelled")
)

var scheduleDetails = map[error]string{
	errFieldInactive: "Field is not active",
	errPastStart:     "Cannot book a time in the past",
	errClosed:        "The field is closed at the requested time",
	errCancelled:     "Reservation already cancelled",
}

// wallNow returns the current wall clock time in the zone-less frame reservations use.
func (g *Gateway) wallNow() time.Time {
	n := g.now()
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), 0, time.UTC)
}

// schedule fills end time, price and field snapshot of r after validating the slot against field.
func (g *Gateway) schedule(r *Reservation, field Field) error {
	if !field.IsActive {
		return errFieldInactive
	}
	start := r.StartTime.Time
	if start.Before(g.wallNow()) {
		return errPastStart
	}
	end := start.Add(time.Duration(r.DurationHours) * time.Hour)
	open, _ := parseClock(field.OpeningTime)
	closing, _ := parseClock(field.ClosingTime)
	if !sameDay(start, end.Add(-time.Minute)) || minutesOfDay(start) < open || minutesOfDay(start)+r.DurationHours*60 > closing {
		return errClosed
	}
	r.EndTime = Stamp{end}
	r.TotalPrice = field.PricePerHour * float64(r.DurationHours)
	r.FieldName = field.Name
	r.FieldLocation = field.Location
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (g *Gateway) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		writeDetail(w, http.StatusConflict, "The field is already booked for the requested time")
	case errors.Is(err, ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Reservation not found")
	case scheduleDetails[err] != "":
		writeDetail(w, http.StatusBadRequest, scheduleDetails[err])
	default:
		g.logger.Error("reservation failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Failed to process reservation")
	}
}

type reservationPayload struct {
	FieldID       *int64  `json:"field_id"`
	StartTime     *string `json:"start_time"`
	DurationHours *int    `json:"duration_hours"`
	Notes         *string `json:"notes"`
}

func (p reservationPayload) issues(create bool) ([]Issue, time.Time) {
	var issues []Issue
	var start time.Time
	if create && (p.FieldID == nil || *p.FieldID <= 0) {
		issues = append(issues, missing("field_id"))
	}
	if p.StartTime != nil {
		var err error
		if start, err = parseStamp(*p.StartTime); err != nil {
			issues = append(issues, invalid("start_time", "invalid datetime format"))
		}
	} else if create {
		issues = append(issues, missing("start_time"))
	}
	if p.DurationHours != nil && (*p.DurationHours < 1 || *p.DurationHours > maxDurationHours) {
		issues = append(issues, invalid("duration_hours", "duration must be between 1 and 8 hours"))
	}
	return issues, start
}

func (g *Gateway) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationPayload
	if !decode(w, r, &req) {
		return
	}
	issues, start := req.issues(true)
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	field, err := g.store.Field(*req.FieldID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}
	user, _ := userFromContext(r.Context())
	now := Stamp{g.now()}
	res := Reservation{
		FieldID:       field.ID,
		UserID:        user.ID,
		StartTime:     Stamp{start},
		DurationHours: 1,
		Status:        StatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.DurationHours != nil {
		res.DurationHours = *req.DurationHours
	}
	if req.Notes != nil {
		res.Notes = *req.Notes
	}
	if err := g.schedule(&res, field); err != nil {
		g.writeScheduleError(w, err)
		return
	}
	res, err = g.store.CreateReservation(res)
	if err != nil {
		g.writeScheduleError(w, err)
		return
	}
	g.logger.Info("reservation created", zap.Int64("reservation_id", res.ID), zap.Int64("field_id", res.FieldID))
	writeJSON(w, http.StatusCreated, res)
}

// owned loads reservation id and checks the caller may see it.
func (g *Gateway) owned(w http.ResponseWriter, r *http.Request) (Reservation, User, bool) {
	user, _ := userFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return Reservation{}, user, false
	}
	res, err := g.store.Reservation(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Reservation not found")
		return Reservation{}, user, false
	}
	if res.UserID != user.ID && !user.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return Reservation{}, user, false
	}
	return res, user, true
}

func (g *Gateway) getReservation(w http.ResponseWriter, r *http.Request) {
	res, _, ok := g.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (g *Gateway) updateReservation(w http.ResponseWriter, r *http.Request) {
	current, _, ok := g.owned(w, r)
	if !ok {
		return
	}
	var req reservationPayload
	if !decode(w, r, &req) {
		return
	}
	issues, start := req.issues(false)
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	fieldID := current.FieldID
	if req.FieldID != nil {
		fieldID = *req.FieldID
	}
	field, err := g.store.Field(fieldID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}

	res, err := g.store.UpdateReservation(current.ID, func(res *Reservation) error {
		if !res.active() {
			return errCancelled
		}
		res.FieldID = field.ID
		if req.StartTime != nil {
			res.StartTime = Stamp{start}
		}
		if req.DurationHours != nil {
			res.DurationHours = *req.DurationHours
		}
		if req.Notes != nil {
			res.Notes = *req.Notes
		}
		res.UpdatedAt = Stamp{g.now()}
		return g.schedule(res, field)
	})
	if err != nil {
		g.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (g *Gateway) cancelReservation(w http.ResponseWriter, r *http.Request) {
	current, user, ok := g.owned(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := g.store.UpdateReservation(current.ID, func(res *Reservation) error {
		if !res.active() {
			return errCancelled
		}
		now := Stamp{g.now()}
		by := user.ID
		res.Status = StatusCancelled
		res.CancelledAt = &now
		res.CancelledBy = &by
		res.CancelReason = req.Reason
		res.UpdatedAt = now
		return nil
	})
	if err != nil {
		g.writeScheduleError(w, err)
		return
	}
	g.logger.Info("reservation cancelled", zap.Int64("reservation_id", res.ID), zap.String("reason", req.Reason))
	writeJSON(w, http.StatusOK, res)
}

func reservationFilter(r *http.Request, userID int64) func(*Reservation) bool {
	q := r.URL.Query()
	status := q.Get("status")
	fieldID, _ := strconv.ParseInt(q.Get("field_id"), 10, 64)
	if userID == 0 {
		userID, _ = strconv.ParseInt(q.Get("user_id"), 10, 64)
	}
	return func(res *Reservation) bool {
		if status != "" && status != "all" && res.Status != status {
			return false
		}
		if fieldID > 0 && res.FieldID != fieldID {
			return false
		}
		if userID > 0 && res.UserID != userID {
			return false
		}
		return true
	}
}

func (g *Gateway) writeReservationsPage(w http.ResponseWriter, r *http.Request, all []Reservation) {
	items, page := window(all, queryInt(r, "skip", 0), queryInt(r, "limit", 10))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": items,
		"total":        len(all),
		"page":         page,
		"size":         len(items),
	})
}

func (g *Gateway) listReservations(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var scope int64
	if !user.IsAdmin {
		scope = user.ID
	}
	g.writeReservationsPage(w, r, g.store.Reservations(reservationFilter(r, scope)))
}

func (g *Gateway) myReservations(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	g.writeReservationsPage(w, r, g.store.Reservations(reservationFilter(r, user.ID)))
}

func (g *Gateway) checkAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fieldID, errField := strconv.ParseInt(q.Get("field_id"), 10, 64)
	start, errStart := parseStamp(q.Get("date") + "T" + strings.TrimSpace(q.Get("start_time")))
	if errField != nil || errStart != nil {
		writeIssues(w, []Issue{{Loc: []string{"query"}, Msg: "field_id, date and start_time are required", Type: "value_error"}})
		return
	}
	duration := queryInt(r, "duration", 1)
	if duration < 1 || duration > maxDurationHours {
		writeIssues(w, []Issue{{Loc: []string{"query", "duration"}, Msg: "duration must be between 1 and 8 hours", Type: "value_error"}})
		return
	}
	field, err := g.store.Field(fieldID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}

	probe := Reservation{FieldID: field.ID, StartTime: Stamp{start}, DurationHours: duration}
	available := g.schedule(&probe, field) == nil && !g.store.SlotTaken(field.ID, probe.StartTime.Time, probe.EndTime.Time)
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (g *Gateway) reservationsForFieldOnDate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	day, err := time.Parse("2006-01-02", muxVar(r, "date"))
	if err != nil {
		writeIssues(w, []Issue{{Loc: []string{"path", "date"}, Msg: "invalid date format, expected YYYY-MM-DD", Type: "value_error"}})
		return
	}
	list := g.store.Reservations(func(res *Reservation) bool {
		return res.FieldID == id && res.active() && sameDay(res.StartTime.Time, day)
	})
	writeJSON(w, http.StatusOK, list)
}
