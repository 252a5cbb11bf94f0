package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/daftarche/bankbook/internal/models"
	"github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")
	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// isPostgresUniqueViolation reports whether err is a unique constraint violation.
func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) AuthorizeUser(id int64) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM users WHERE telegram_id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.Error("PostgresStore AuthorizeUser failed", "error", err, "id", id)
		return false, fmt.Errorf("failed to check authorization for %d: %w", id, err)
	}
	return true, nil
}

func (s *PostgresStore) UpsertUser(u models.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (telegram_id, first_name) VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET first_name = EXCLUDED.first_name`,
		u.ID, u.FirstName)
	if err != nil {
		slog.Error("PostgresStore UpsertUser failed", "error", err, "id", u.ID)
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	slog.Debug("PostgresStore UpsertUser succeeded", "id", u.ID)
	return nil
}

func (s *PostgresStore) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT telegram_id, first_name FROM users ORDER BY first_name`)
	if err != nil {
		slog.Error("PostgresStore ListUsers query failed", "error", err)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) DeleteUser(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM users WHERE telegram_id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeleteUser failed", "error", err, "id", id)
		return false, fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	slog.Debug("PostgresStore DeleteUser succeeded", "id", id, "deleted", n > 0)
	return n > 0, nil
}

func (s *PostgresStore) CreatePerson(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`INSERT INTO persons (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			slog.Debug("PostgresStore CreatePerson duplicate name", "name", name)
			return 0, ErrDuplicateName
		}
		slog.Error("PostgresStore CreatePerson failed", "error", err, "name", name)
		return 0, fmt.Errorf("failed to insert person %q: %w", name, err)
	}
	slog.Debug("PostgresStore CreatePerson succeeded", "id", id, "name", name)
	return id, nil
}

func (s *PostgresStore) ListPersons() ([]models.Person, error) {
	rows, err := s.db.Query(`SELECT id, name FROM persons ORDER BY name`)
	if err != nil {
		slog.Error("PostgresStore ListPersons query failed", "error", err)
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate person rows: %w", err)
	}
	return persons, nil
}

func (s *PostgresStore) RenamePerson(id int64, name string) error {
	res, err := s.db.Exec(`UPDATE persons SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return ErrDuplicateName
		}
		slog.Error("PostgresStore RenamePerson failed", "error", err, "id", id)
		return fmt.Errorf("failed to rename person %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeletePerson(id int64) error {
	res, err := s.db.Exec(`DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeletePerson failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete person %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.Debug("PostgresStore DeletePerson succeeded", "id", id)
	return nil
}

func (s *PostgresStore) CreateAccount(a models.Account) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO accounts (person_id, account_name, bank_name, account_number, card_number, shaba_number, card_photo_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		a.PersonID, a.AccountName, nilIfEmpty(a.BankName), nilIfEmpty(a.AccountNumber),
		nilIfEmpty(a.CardNumber), nilIfEmpty(a.ShabaNumber), nilIfEmpty(a.CardPhotoID)).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore CreateAccount failed", "error", err, "personID", a.PersonID)
		return 0, fmt.Errorf("failed to insert account for person %d: %w", a.PersonID, err)
	}
	slog.Debug("PostgresStore CreateAccount succeeded", "id", id, "personID", a.PersonID)
	return id, nil
}

func (s *PostgresStore) ListAccounts(personID int64) ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, account_name, bank_name, account_number, card_number, shaba_number, card_photo_id
		FROM accounts WHERE person_id = $1 ORDER BY account_name`, personID)
	if err != nil {
		slog.Error("PostgresStore ListAccounts query failed", "error", err, "personID", personID)
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return accounts, nil
}

func (s *PostgresStore) GetAccount(id int64) (*models.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, person_id, account_name, bank_name, account_number, card_number, shaba_number, card_photo_id
		FROM accounts WHERE id = $1`, id)
	a, err := scanAccountRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetAccount failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return &a, nil
}

func (s *PostgresStore) UpdateAccountField(id int64, field models.AccountField, value string) error {
	column, ok := accountColumns[field]
	if !ok {
		return fmt.Errorf("unknown account field: %s", field)
	}
	// column comes from the closed accountColumns table, never from user input.
	res, err := s.db.Exec(`UPDATE accounts SET `+column+` = $1 WHERE id = $2`, nilIfEmpty(value), id)
	if err != nil {
		slog.Error("PostgresStore UpdateAccountField failed", "error", err, "id", id, "field", field)
		return fmt.Errorf("failed to update account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.Debug("PostgresStore UpdateAccountField succeeded", "id", id, "field", field)
	return nil
}

func (s *PostgresStore) DeleteAccount(id int64) error {
	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeleteAccount failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateDocument(d models.Document) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO documents (person_id, doc_name, doc_text, file_ids)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		d.PersonID, d.DocName, nilIfEmpty(d.DocText), pq.Array(d.FileIDs)).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore CreateDocument failed", "error", err, "personID", d.PersonID)
		return 0, fmt.Errorf("failed to insert document for person %d: %w", d.PersonID, err)
	}
	slog.Debug("PostgresStore CreateDocument succeeded", "id", id, "personID", d.PersonID)
	return id, nil
}

func (s *PostgresStore) ListDocuments(personID int64) ([]models.Document, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, doc_name, doc_text, file_ids
		FROM documents WHERE person_id = $1 ORDER BY doc_name`, personID)
	if err != nil {
		slog.Error("PostgresStore ListDocuments query failed", "error", err, "personID", personID)
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var d models.Document
		var text sql.NullString
		if err := rows.Scan(&d.ID, &d.PersonID, &d.DocName, &text, pq.Array(&d.FileIDs)); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		d.DocText = text.String
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return documents, nil
}

func (s *PostgresStore) GetDocument(id int64) (*models.Document, error) {
	var d models.Document
	var text sql.NullString
	err := s.db.QueryRow(`
		SELECT id, person_id, doc_name, doc_text, file_ids FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.PersonID, &d.DocName, &text, pq.Array(&d.FileIDs))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetDocument failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get document %d: %w", id, err)
	}
	d.DocText = text.String
	return &d, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
