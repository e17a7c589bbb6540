package fakeapi

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errNotFound      = errors.New("not found")
	errEmailTaken    = errors.New("emailAlreadyExists")
	errInvalidLogin  = errors.New("invalid email or password")
	errPasswordShort = errors.New("password too short")
)

const minPasswordLength = 6

type record struct {
	user         adminapi.User
	passwordHash string
}

// store is an in-memory users table.
type store struct {
	mu      sync.RWMutex
	records map[adminapi.ID]*record
	order   []adminapi.ID
	nextID  int
	useUUID bool
	cost    int
}

func newStore(useUUID bool, cost int) *store {
	return &store{
		records: make(map[adminapi.ID]*record),
		nextID:  1,
		useUUID: useUUID,
		cost:    cost,
	}
}

func (s *store) newID() adminapi.ID {
	if s.useUUID {
		return adminapi.ID(uuid.NewString())
	}

	id := adminapi.ID(strconv.Itoa(s.nextID))
	s.nextID++

	return id
}

func (s *store) emailTaken(email string, except adminapi.ID) bool {
	for id, rec := range s.records {
		if id != except && strings.EqualFold(rec.user.Email, email) {
			return true
		}
	}

	return false
}

func (s *store) create(req *adminapi.UserCreateRequest) (adminapi.User, error) {
	if len(req.Password) < minPasswordLength {
		return adminapi.User{}, errPasswordShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return adminapi.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(req.Email, "") {
		return adminapi.User{}, errEmailTaken
	}

	role := req.Role
	if role == nil {
		role = adminapi.UserRole()
	}

	now := time.Now().UTC()
	user := adminapi.User{
		ID:        s.newID(),
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Photo:     req.Photo,
		Role:      role,
		Provider:  "email",
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	s.records[user.ID] = &record{user: user, passwordHash: string(hash)}
	s.order = append(s.order, user.ID)

	return user, nil
}

func (s *store) get(id adminapi.ID) (adminapi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return adminapi.User{}, errNotFound
	}

	return rec.user, nil
}

func (s *store) update(id adminapi.ID, req *adminapi.UserUpdateRequest) (adminapi.User, error) {
	var hash []byte

	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return adminapi.User{}, errPasswordShort
		}

		var err error

		hash, err = bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
		if err != nil {
			return adminapi.User{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return adminapi.User{}, errNotFound
	}

	if req.Email != nil {
		if s.emailTaken(*req.Email, id) {
			return adminapi.User{}, errEmailTaken
		}

		rec.user.Email = strings.ToLower(*req.Email)
	}

	if req.FirstName != nil {
		rec.user.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		rec.user.LastName = *req.LastName
	}

	if req.Photo != nil {
		rec.user.Photo = req.Photo
	}

	if req.Role != nil {
		rec.user.Role = req.Role
	}

	if hash != nil {
		rec.passwordHash = string(hash)
	}

	now := time.Now().UTC()
	rec.user.UpdatedAt = &now

	return rec.user, nil
}

func (s *store) delete(id adminapi.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errNotFound
	}

	delete(s.records, id)

	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return nil
}

func (s *store) authenticate(email, password string) (adminapi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if !strings.EqualFold(rec.user.Email, email) {
			continue
		}

		err := bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(password))
		if err != nil {
			return adminapi.User{}, errInvalidLogin
		}

		return rec.user, nil
	}

	return adminapi.User{}, errInvalidLogin
}

type listQuery struct {
	page      int
	limit     int
	email     string
	sortField string
	sortDesc  bool
}

// list returns one page in insertion order unless a sort field is given.
func (s *store) list(query listQuery) ([]adminapi.User, bool) {
	s.mu.RLock()

	users := make([]adminapi.User, 0, len(s.order))

	for _, id := range s.order {
		user := s.records[id].user
		if query.email != "" && !strings.EqualFold(user.Email, query.email) {
			continue
		}

		users = append(users, user)
	}

	s.mu.RUnlock()

	if query.sortField != "" {
		sort.SliceStable(users, func(i, j int) bool {
			less := compareUsers(users[i], users[j], query.sortField)
			if query.sortDesc {
				return compareUsers(users[j], users[i], query.sortField)
			}

			return less
		})
	}

	start := (query.page - 1) * query.limit
	if start >= len(users) {
		return []adminapi.User{}, false
	}

	end := start + query.limit
	if end > len(users) {
		end = len(users)
	}

	return users[start:end], end < len(users)
}

func compareUsers(a, b adminapi.User, field string) bool {
	switch field {
	case "email":
		return a.Email < b.Email
	case "firstName":
		return a.FirstName < b.FirstName
	case "lastName":
		return a.LastName < b.LastName
	case "createdAt":
		return a.CreatedAt.Before(*b.CreatedAt)
	default:
		return lessID(a.ID, b.ID)
	}
}

func lessID(a, b adminapi.ID) bool {
	left, errLeft := strconv.Atoi(a.String())
	right, errRight := strconv.Atoi(b.String())

	if errLeft == nil && errRight == nil {
		return left < right
	}

	return a < b
}

// sortFields lists the fields a listing can be sorted by.
var sortFields = map[string]bool{
	"id":        true,
	"email":     true,
	"firstName": true,
	"lastName":  true,
	"createdAt": true,
}

func isDirection(value string) bool {
	value = strings.ToLower(value)

	return value == string(adminapi.SortAsc) || value == string(adminapi.SortDesc)
}
