package mockapi

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStoreRejectsOverlappingReservations(t *testing.T) {
	s := NewStore()
	field := s.CreateField(Field{Name: "A", IsActive: true})
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	first, err := s.CreateReservation(Reservation{FieldID: field.ID, StartTime: Stamp{start}, EndTime: Stamp{start.Add(2 * time.Hour)}, Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = s.CreateReservation(Reservation{FieldID: field.ID, StartTime: Stamp{start.Add(time.Hour)}, EndTime: Stamp{start.Add(3 * time.Hour)}, Status: StatusConfirmed})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Back to back slots do not overlap.
	if _, err := s.CreateReservation(Reservation{FieldID: field.ID, StartTime: Stamp{start.Add(2 * time.Hour)}, EndTime: Stamp{start.Add(3 * time.Hour)}, Status: StatusConfirmed}); err != nil {
		t.Fatalf("adjacent slot: %v", err)
	}

	if _, err := s.UpdateReservation(first.ID, func(r *Reservation) error {
		r.Status = StatusCancelled
		return nil
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.SlotTaken(field.ID, start, start.Add(time.Hour)) {
		t.Fatalf("cancelled reservation still holds its slot")
	}
}

func TestStoreConcurrentBookingsOfOneSlot(t *testing.T) {
	s := NewStore()
	field := s.CreateField(Field{Name: "A", IsActive: true})
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateReservation(Reservation{FieldID: field.ID, StartTime: Stamp{start}, EndTime: Stamp{start.Add(time.Hour)}, Status: StatusConfirmed})
			if err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if won != 1 {
		t.Fatalf("expected exactly one booking, got %d", won)
	}
}

func TestStoreEmailsAreCaseInsensitive(t *testing.T) {
	s := NewStore()
	if _, err := s.CreateUser(User{Email: " Ana@Example.com "}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(User{Email: "ana@example.com"}); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
	if _, err := s.UserByEmail("ANA@example.com"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
}

func TestStampJSON(t *testing.T) {
	var s Stamp
	if err := s.UnmarshalJSON([]byte(`"2030-01-02T03:04:05"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2030-01-02T03:04:05"` {
		t.Fatalf("unexpected %s", out)
	}
	out, _ = Stamp{}.MarshalJSON()
	if string(out) != "null" {
		t.Fatalf("zero stamp should be null, got %s", out)
	}
}
