package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("mockapi: not found")
	// ErrEmailInUse is returned when registering a duplicate email.
	ErrEmailInUse = errors.New("mockapi: email already registered")
	// ErrNameInUse is returned when creating a duplicate role or permission.
	ErrNameInUse = errors.New("mockapi: name already in use")
	// ErrSlotTaken is returned when a reservation overlaps an active one on the same field.
	ErrSlotTaken = errors.New("mockapi: time slot not available")
)

// Store keeps every service's records in memory.
type Store struct {
	mu sync.RWMutex

	seq          int64
	users        map[int64]*User
	emails       map[string]int64
	fields       map[int64]*Field
	reservations map[int64]*Reservation
	roles        map[int64]*Role
	permissions  map[int64]*Permission
	userRoles    map[int64]int64
	rolePerms    map[int64]map[int64]bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[int64]*User),
		emails:       make(map[string]int64),
		fields:       make(map[int64]*Field),
		reservations: make(map[int64]*Reservation),
		roles:        make(map[int64]*Role),
		permissions:  make(map[int64]*Permission),
		userRoles:    make(map[int64]int64),
		rolePerms:    make(map[int64]map[int64]bool),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts user and assigns its ID.
func (s *Store) CreateUser(user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if _, ok := s.emails[user.Email]; ok {
		return User{}, ErrEmailInUse
	}
	user.ID = s.nextID()
	s.users[user.ID] = &user
	s.emails[user.Email] = user.ID
	return user, nil
}

// UserByEmail looks a user up by normalized email.
func (s *Store) UserByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return *s.users[id], nil
}

// UserByID looks a user up by ID.
func (s *Store) UserByID(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *user, nil
}

// UpdateUser applies fn to the stored user.
func (s *Store) UpdateUser(id int64, fn func(*User)) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	fn(user)
	return *user, nil
}

// Users returns every user ordered by ID.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateField inserts field and assigns its ID.
func (s *Store) CreateField(field Field) Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	field.ID = s.nextID()
	s.fields[field.ID] = &field
	return field
}

// Field looks a field up by ID.
func (s *Store) Field(id int64) (Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	field, ok := s.fields[id]
	if !ok {
		return Field{}, ErrNotFound
	}
	return *field, nil
}

// UpdateField applies fn to the stored field.
func (s *Store) UpdateField(id int64, fn func(*Field)) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, ok := s.fields[id]
	if !ok {
		return Field{}, ErrNotFound
	}
	fn(field)
	return *field, nil
}

// DeleteField removes a field.
func (s *Store) DeleteField(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[id]; !ok {
		return ErrNotFound
	}
	delete(s.fields, id)
	return nil
}

// Fields returns every field ordered by ID.
func (s *Store) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateReservation inserts res unless it overlaps an active reservation of the same field.
func (s *Store) CreateReservation(res Reservation) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slotTakenLocked(res.FieldID, 0, res.StartTime.Time, res.EndTime.Time) {
		return Reservation{}, ErrSlotTaken
	}
	res.ID = s.nextID()
	s.reservations[res.ID] = &res
	return res, nil
}

// Reservation looks a reservation up by ID.
func (s *Store) Reservation(id int64) (Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.reservations[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	return *res, nil
}

// UpdateReservation applies fn to a copy of the reservation and stores it when fn succeeds and
// the resulting slot does not overlap another active reservation.
func (s *Store) UpdateReservation(id int64, fn func(*Reservation) error) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reservations[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	next := *current
	if err := fn(&next); err != nil {
		return Reservation{}, err
	}
	if next.active() && s.slotTakenLocked(next.FieldID, id, next.StartTime.Time, next.EndTime.Time) {
		return Reservation{}, ErrSlotTaken
	}
	s.reservations[id] = &next
	return next, nil
}

// SlotTaken reports whether [start, end) overlaps an active reservation of fieldID.
func (s *Store) SlotTaken(fieldID int64, start, end time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotTakenLocked(fieldID, 0, start, end)
}

func (s *Store) slotTakenLocked(fieldID, exclude int64, start, end time.Time) bool {
	for id, r := range s.reservations {
		if id == exclude || r.FieldID != fieldID || !r.active() {
			continue
		}
		if r.overlaps(start, end) {
			return true
		}
	}
	return false
}

// Reservations returns reservations matching keep, newest start first.
func (s *Store) Reservations(keep func(*Reservation) bool) []Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reservation, 0)
	for _, r := range s.reservations {
		if keep == nil || keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartTime.After(out[j].StartTime.Time)
	})
	return out
}

// CreateRole inserts a role with a unique name.
func (s *Store) CreateRole(role Role) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roles {
		if strings.EqualFold(r.Name, role.Name) {
			return Role{}, ErrNameInUse
		}
	}
	role.ID = s.nextID()
	s.roles[role.ID] = &role
	return role, nil
}

// CreatePermission inserts a permission with a unique name.
func (s *Store) CreatePermission(perm Permission) (Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.permissions {
		if strings.EqualFold(p.Name, perm.Name) {
			return Permission{}, ErrNameInUse
		}
	}
	perm.ID = s.nextID()
	s.permissions[perm.ID] = &perm
	return perm, nil
}

// AssignRole sets the role of a user, replacing any previous one.
func (s *Store) AssignRole(userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.roles[roleID]; !ok {
		return ErrNotFound
	}
	s.userRoles[userID] = roleID
	return nil
}

// AssignPermission attaches a permission to a role.
func (s *Store) AssignPermission(roleID, permissionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[roleID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.permissions[permissionID]; !ok {
		return ErrNotFound
	}
	if s.rolePerms[roleID] == nil {
		s.rolePerms[roleID] = make(map[int64]bool)
	}
	s.rolePerms[roleID][permissionID] = true
	return nil
}

// RoleName returns the assigned role name of a user, or "" when none.
func (s *Store) RoleName(userID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if role, ok := s.roles[s.userRoles[userID]]; ok {
		return role.Name
	}
	return ""
}

// HasPermission reports whether the active role of userID grants action on resource.
func (s *Store) HasPermission(userID int64, resource, action string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roleID, ok := s.userRoles[userID]
	if !ok {
		return false
	}
	if role, ok := s.roles[roleID]; !ok || !role.IsActive {
		return false
	}
	for permID := range s.rolePerms[roleID] {
		p, ok := s.permissions[permID]
		if ok && p.IsActive && p.Resource == resource && p.Action == action {
			return true
		}
	}
	return false
}
