package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// parseClock converts HH:MM (optionally HH:MM:SS) to minutes after midnight.
func parseClock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

type fieldPayload struct {
	Name         *string  `json:"name"`
	Location     *string  `json:"location"`
	Capacity     *int     `json:"capacity"`
	PricePerHour *float64 `json:"price_per_hour"`
	Description  *string  `json:"description"`
	OpeningTime  *string  `json:"opening_time"`
	ClosingTime  *string  `json:"closing_time"`
	IsActive     *bool    `json:"is_active"`
}

func (p fieldPayload) apply(f *Field) {
	if p.Name != nil {
		f.Name = strings.TrimSpace(*p.Name)
	}
	if p.Location != nil {
		f.Location = strings.TrimSpace(*p.Location)
	}
	if p.Capacity != nil {
		f.Capacity = *p.Capacity
	}
	if p.PricePerHour != nil {
		f.PricePerHour = *p.PricePerHour
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.OpeningTime != nil {
		f.OpeningTime = *p.OpeningTime
	}
	if p.ClosingTime != nil {
		f.ClosingTime = *p.ClosingTime
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
}

func validateField(f Field) []Issue {
	var issues []Issue
	if f.Name == "" {
		issues = append(issues, missing("name"))
	}
	if f.Location == "" {
		issues = append(issues, missing("location"))
	}
	if f.Capacity <= 0 {
		issues = append(issues, invalid("capacity", "ensure this value is greater than 0"))
	}
	if f.PricePerHour <= 0 {
		issues = append(issues, invalid("price_per_hour", "ensure this value is greater than 0"))
	}
	open, errOpen := parseClock(f.OpeningTime)
	if errOpen != nil {
		issues = append(issues, invalid("opening_time", "invalid time format, expected HH:MM"))
	}
	closing, errClose := parseClock(f.ClosingTime)
	if errClose != nil {
		issues = append(issues, invalid("closing_time", "invalid time format, expected HH:MM"))
	}
	if errOpen == nil && errClose == nil && closing <= open {
		issues = append(issues, invalid("closing_time", "closing time must be after opening time"))
	}
	return issues
}

func (g *Gateway) listFields(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	all := g.store.Fields()
	visible := make([]Field, 0, len(all))
	for _, f := range all {
		if f.IsActive || user.IsAdmin {
			visible = append(visible, f)
		}
	}
	items, page := window(visible, queryInt(r, "skip", 0), queryInt(r, "limit", 100))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": items,
		"total":  len(visible),
		"page":   page,
		"size":   len(items),
	})
}

func (g *Gateway) getField(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	field, err := g.store.Field(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (g *Gateway) createField(w http.ResponseWriter, r *http.Request) {
	var req fieldPayload
	if !decode(w, r, &req) {
		return
	}
	field := Field{Capacity: 10, OpeningTime: "08:00", ClosingTime: "22:00", IsActive: true}
	req.apply(&field)
	if issues := validateField(field); len(issues) > 0 {
		writeIssues(w, issues)
		return
	}
	now := Stamp{g.now()}
	field.CreatedAt, field.UpdatedAt = now, now
	field = g.store.CreateField(field)
	g.logger.Info("field created", zap.Int64("field_id", field.ID))
	writeJSON(w, http.StatusCreated, field)
}

func (g *Gateway) updateField(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req fieldPayload
	if !decode(w, r, &req) {
		return
	}
	current, err := g.store.Field(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}
	req.apply(&current)
	if issues := validateField(current); len(issues) > 0 {
		writeIssues(w, issues)
		return
	}
	field, err := g.store.UpdateField(id, func(f *Field) {
		req.apply(f)
		f.UpdatedAt = Stamp{g.now()}
	})
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (g *Gateway) deleteField(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := g.store.DeleteField(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Field not found")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Failed to delete field")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Field deleted successfully"})
}

func (g *Gateway) fieldAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	dateRaw := r.URL.Query().Get("date")
	day, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		writeIssues(w, []Issue{{Loc: []string{"query", "date"}, Msg: "invalid date format, expected YYYY-MM-DD", Type: "value_error"}})
		return
	}
	field, err := g.store.Field(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Field not found")
		return
	}

	hours := make([]string, 0)
	open, _ := parseClock(field.OpeningTime)
	closing, _ := parseClock(field.ClosingTime)
	for m := open; m+60 <= closing; m += 60 {
		start := day.Add(time.Duration(m) * time.Minute)
		if !g.store.SlotTaken(field.ID, start, start.Add(time.Hour)) {
			hours = append(hours, start.Format("15:04"))
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"field_id":        field.ID,
		"date":            dateRaw,
		"available_hours": hours,
	})
}
