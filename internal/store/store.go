// Package store provides storage backends for BankBook.
//
// It defines the repository interface consumed by the dialogue engine and
// ships an in-memory store alongside the SQLite and PostgreSQL backends.
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/daftarche/bankbook/internal/models"
)

// Sentinel errors reported by every backend. Anything else returned from a
// Store method is treated as a connectivity failure by the engine.
var (
	// ErrDuplicateName signals a person name uniqueness violation.
	ErrDuplicateName = errors.New("person name already exists")
	// ErrNotFound signals that the referenced record no longer exists.
	ErrNotFound = errors.New("record not found")
)

// accountColumns is the closed field→column table used by the SQL backends.
// User input never reaches a column name except through this map.
var accountColumns = map[models.AccountField]string{
	models.FieldAccountName:   "account_name",
	models.FieldBankName:      "bank_name",
	models.FieldAccountNumber: "account_number",
	models.FieldCardNumber:    "card_number",
	models.FieldShabaNumber:   "shaba_number",
	models.FieldCardPhoto:     "card_photo_id",
}

// Store is the repository consumed by the dialogue engine.
type Store interface {
	// AuthorizeUser reports whether the user id is in the users table. An
	// error means the backing store is unreachable, which is distinct from
	// "not authorized".
	AuthorizeUser(id int64) (bool, error)
	UpsertUser(u models.User) error
	ListUsers() ([]models.User, error)
	// DeleteUser reports whether a row was actually removed.
	DeleteUser(id int64) (bool, error)

	CreatePerson(name string) (int64, error)
	ListPersons() ([]models.Person, error)
	RenamePerson(id int64, name string) error
	// DeletePerson cascades to the person's accounts and documents.
	DeletePerson(id int64) error

	CreateAccount(a models.Account) (int64, error)
	ListAccounts(personID int64) ([]models.Account, error)
	GetAccount(id int64) (*models.Account, error)
	UpdateAccountField(id int64, field models.AccountField, value string) error
	DeleteAccount(id int64) error

	CreateDocument(d models.Document) (int64, error)
	ListDocuments(personID int64) ([]models.Document, error)
	GetDocument(id int64) (*models.Document, error)

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN configures an SQLite store at the given file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN configures a PostgreSQL store with the given connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". PostgreSQL is
// recognized by URL scheme or key=value connection parameters; everything
// else is treated as an SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a map-backed Store used in tests and as a fallback when
// no database DSN is configured. The cascade behavior of the SQL backends is
// replicated explicitly.
type InMemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]models.User
	persons   map[int64]models.Person
	accounts  map[int64]models.Account
	documents map[int64]models.Document
	nextID    int64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:     make(map[int64]models.User),
		persons:   make(map[int64]models.Person),
		accounts:  make(map[int64]models.Account),
		documents: make(map[int64]models.Document),
	}
}

func (s *InMemoryStore) nextSerial() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemoryStore) AuthorizeUser(id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *InMemoryStore) UpsertUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) ListUsers() ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FirstName < users[j].FirstName })
	return users, nil
}

func (s *InMemoryStore) DeleteUser(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *InMemoryStore) CreatePerson(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.persons {
		if p.Name == name {
			return 0, ErrDuplicateName
		}
	}
	id := s.nextSerial()
	s.persons[id] = models.Person{ID: id, Name: name}
	return id, nil
}

func (s *InMemoryStore) ListPersons() ([]models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	persons := make([]models.Person, 0, len(s.persons))
	for _, p := range s.persons {
		persons = append(persons, p)
	}
	sort.Slice(persons, func(i, j int) bool { return persons[i].Name < persons[j].Name })
	return persons, nil
}

func (s *InMemoryStore) RenamePerson(id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.persons[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range s.persons {
		if otherID != id && other.Name == name {
			return ErrDuplicateName
		}
	}
	p.Name = name
	s.persons[id] = p
	return nil
}

func (s *InMemoryStore) DeletePerson(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[id]; !ok {
		return ErrNotFound
	}
	delete(s.persons, id)
	for accID, a := range s.accounts {
		if a.PersonID == id {
			delete(s.accounts, accID)
		}
	}
	for docID, d := range s.documents {
		if d.PersonID == id {
			delete(s.documents, docID)
		}
	}
	return nil
}

func (s *InMemoryStore) CreateAccount(a models.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[a.PersonID]; !ok {
		return 0, ErrNotFound
	}
	a.ID = s.nextSerial()
	s.accounts[a.ID] = a
	return a.ID, nil
}

func (s *InMemoryStore) ListAccounts(personID int64) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var accounts []models.Account
	for _, a := range s.accounts {
		if a.PersonID == personID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountName < accounts[j].AccountName })
	return accounts, nil
}

func (s *InMemoryStore) GetAccount(id int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryStore) UpdateAccountField(id int64, field models.AccountField, value string) error {
	if _, ok := accountColumns[field]; !ok {
		return errors.New("unknown account field: " + string(field))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	switch field {
	case models.FieldAccountName:
		a.AccountName = value
	case models.FieldBankName:
		a.BankName = value
	case models.FieldAccountNumber:
		a.AccountNumber = value
	case models.FieldCardNumber:
		a.CardNumber = value
	case models.FieldShabaNumber:
		a.ShabaNumber = value
	case models.FieldCardPhoto:
		a.CardPhotoID = value
	}
	s.accounts[id] = a
	return nil
}

func (s *InMemoryStore) DeleteAccount(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *InMemoryStore) CreateDocument(d models.Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[d.PersonID]; !ok {
		return 0, ErrNotFound
	}
	d.ID = s.nextSerial()
	d.FileIDs = append([]string(nil), d.FileIDs...)
	s.documents[d.ID] = d
	return d.ID, nil
}

func (s *InMemoryStore) ListDocuments(personID int64) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var documents []models.Document
	for _, d := range s.documents {
		if d.PersonID == personID {
			documents = append(documents, d)
		}
	}
	sort.Slice(documents, func(i, j int) bool { return documents[i].DocName < documents[j].DocName })
	return documents, nil
}

func (s *InMemoryStore) GetDocument(id int64) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
