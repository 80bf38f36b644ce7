package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampAcceptsServerLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-01-25T16:00:00"`:        time.Date(2024, 1, 25, 16, 0, 0, 0, time.UTC),
		`"2024-01-25T16:00:00Z"`:       time.Date(2024, 1, 25, 16, 0, 0, 0, time.UTC),
		`"2024-01-25T16:00:00.123456"`: time.Date(2024, 1, 25, 16, 0, 0, 123456000, time.UTC),
		`"2024-01-25T16:00"`:           time.Date(2024, 1, 25, 16, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("unmarshal %s: got %s want %s", raw, ts.Time, want)
		}
	}
}

func TestTimestampNullAndInvalid(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Fatalf("null should decode to zero, got %v err=%v", ts, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
	if err := json.Unmarshal([]byte(`12`), &ts); err == nil {
		t.Fatalf("expected error for non-string")
	}
}

func TestTimestampEncodesZoneless(t *testing.T) {
	req := ReservationCreateRequest{
		FieldID:       3,
		StartTime:     NewTimestamp(time.Date(2024, 1, 25, 16, 0, 0, 0, time.UTC)),
		DurationHours: 2,
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"field_id":3,"start_time":"2024-01-25T16:00:00","duration_hours":2}`
	if string(data) != want {
		t.Fatalf("got %s want %s", data, want)
	}
}

func TestReservationStatusValid(t *testing.T) {
	if !StatusCancelled.Valid() || ReservationStatus("archived").Valid() {
		t.Fatalf("unexpected status validity")
	}
}
