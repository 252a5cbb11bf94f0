package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/daftarche/bankbook/internal/models"
	"github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// The delete cascades rely on foreign key enforcement.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		slog.Error("Failed to enable SQLite foreign keys", "error", err)
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// isSQLiteUniqueViolation reports whether err is a unique constraint failure.
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func (s *SQLiteStore) AuthorizeUser(id int64) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM users WHERE telegram_id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.Error("SQLiteStore AuthorizeUser failed", "error", err, "id", id)
		return false, fmt.Errorf("failed to check authorization for %d: %w", id, err)
	}
	return true, nil
}

func (s *SQLiteStore) UpsertUser(u models.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (telegram_id, first_name) VALUES (?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET first_name = excluded.first_name`,
		u.ID, u.FirstName)
	if err != nil {
		slog.Error("SQLiteStore UpsertUser failed", "error", err, "id", u.ID)
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	slog.Debug("SQLiteStore UpsertUser succeeded", "id", u.ID)
	return nil
}

func (s *SQLiteStore) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT telegram_id, first_name FROM users ORDER BY first_name`)
	if err != nil {
		slog.Error("SQLiteStore ListUsers query failed", "error", err)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName); err != nil {
			slog.Error("SQLiteStore ListUsers scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) DeleteUser(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM users WHERE telegram_id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteUser failed", "error", err, "id", id)
		return false, fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	slog.Debug("SQLiteStore DeleteUser succeeded", "id", id, "deleted", n > 0)
	return n > 0, nil
}

func (s *SQLiteStore) CreatePerson(name string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO persons (name) VALUES (?)`, name)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			slog.Debug("SQLiteStore CreatePerson duplicate name", "name", name)
			return 0, ErrDuplicateName
		}
		slog.Error("SQLiteStore CreatePerson failed", "error", err, "name", name)
		return 0, fmt.Errorf("failed to insert person %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Debug("SQLiteStore CreatePerson succeeded", "id", id, "name", name)
	return id, nil
}

func (s *SQLiteStore) ListPersons() ([]models.Person, error) {
	rows, err := s.db.Query(`SELECT id, name FROM persons ORDER BY name`)
	if err != nil {
		slog.Error("SQLiteStore ListPersons query failed", "error", err)
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

func (s *SQLiteStore) RenamePerson(id int64, name string) error {
	res, err := s.db.Exec(`UPDATE persons SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateName
		}
		slog.Error("SQLiteStore RenamePerson failed", "error", err, "id", id)
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

func (s *SQLiteStore) DeletePerson(id int64) error {
	res, err := s.db.Exec(`DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeletePerson failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete person %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.Debug("SQLiteStore DeletePerson succeeded", "id", id)
	return nil
}

func (s *SQLiteStore) CreateAccount(a models.Account) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO accounts (person_id, account_name, bank_name, account_number, card_number, shaba_number, card_photo_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.PersonID, a.AccountName, nilIfEmpty(a.BankName), nilIfEmpty(a.AccountNumber),
		nilIfEmpty(a.CardNumber), nilIfEmpty(a.ShabaNumber), nilIfEmpty(a.CardPhotoID))
	if err != nil {
		slog.Error("SQLiteStore CreateAccount failed", "error", err, "personID", a.PersonID)
		return 0, fmt.Errorf("failed to insert account for person %d: %w", a.PersonID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Debug("SQLiteStore CreateAccount succeeded", "id", id, "personID", a.PersonID)
	return id, nil
}

func (s *SQLiteStore) ListAccounts(personID int64) ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, account_name, bank_name, account_number, card_number, shaba_number, card_photo_id
		FROM accounts WHERE person_id = ? ORDER BY account_name`, personID)
	if err != nil {
		slog.Error("SQLiteStore ListAccounts query failed", "error", err, "personID", personID)
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

func (s *SQLiteStore) GetAccount(id int64) (*models.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, person_id, account_name, bank_name, account_number, card_number, shaba_number, card_photo_id
		FROM accounts WHERE id = ?`, id)
	a, err := scanAccountRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetAccount failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) UpdateAccountField(id int64, field models.AccountField, value string) error {
	column, ok := accountColumns[field]
	if !ok {
		return fmt.Errorf("unknown account field: %s", field)
	}
	// column comes from the closed accountColumns table, never from user input.
	res, err := s.db.Exec(`UPDATE accounts SET `+column+` = ? WHERE id = ?`, nilIfEmpty(value), id)
	if err != nil {
		slog.Error("SQLiteStore UpdateAccountField failed", "error", err, "id", id, "field", field)
		return fmt.Errorf("failed to update account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.Debug("SQLiteStore UpdateAccountField succeeded", "id", id, "field", field)
	return nil
}

func (s *SQLiteStore) DeleteAccount(id int64) error {
	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteAccount failed", "error", err, "id", id)
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

func (s *SQLiteStore) CreateDocument(d models.Document) (int64, error) {
	// SQLite has no array type; the file id list is stored as JSON, the same
	// way state maps are serialized elsewhere in this codebase.
	var fileIDsJSON string
	if len(d.FileIDs) > 0 {
		jsonBytes, err := json.Marshal(d.FileIDs)
		if err != nil {
			slog.Error("SQLiteStore CreateDocument JSON marshal failed", "error", err, "personID", d.PersonID)
			return 0, err
		}
		fileIDsJSON = string(jsonBytes)
	}

	res, err := s.db.Exec(`
		INSERT INTO documents (person_id, doc_name, doc_text, file_ids) VALUES (?, ?, ?, ?)`,
		d.PersonID, d.DocName, nilIfEmpty(d.DocText), nilIfEmpty(fileIDsJSON))
	if err != nil {
		slog.Error("SQLiteStore CreateDocument failed", "error", err, "personID", d.PersonID)
		return 0, fmt.Errorf("failed to insert document for person %d: %w", d.PersonID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Debug("SQLiteStore CreateDocument succeeded", "id", id, "personID", d.PersonID)
	return id, nil
}

func (s *SQLiteStore) ListDocuments(personID int64) ([]models.Document, error) {
	rows, err := s.db.Query(`
		SELECT id, person_id, doc_name, doc_text, file_ids
		FROM documents WHERE person_id = ? ORDER BY doc_name`, personID)
	if err != nil {
		slog.Error("SQLiteStore ListDocuments query failed", "error", err, "personID", personID)
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		d, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document rows: %w", err)
	}
	return documents, nil
}

func (s *SQLiteStore) GetDocument(id int64) (*models.Document, error) {
	var d models.Document
	var text, fileIDsJSON sql.NullString
	err := s.db.QueryRow(`
		SELECT id, person_id, doc_name, doc_text, file_ids FROM documents WHERE id = ?`, id).
		Scan(&d.ID, &d.PersonID, &d.DocName, &text, &fileIDsJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetDocument failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get document %d: %w", id, err)
	}
	d.DocText = text.String
	if fileIDsJSON.String != "" {
		if err := json.Unmarshal([]byte(fileIDsJSON.String), &d.FileIDs); err != nil {
			slog.Error("SQLiteStore GetDocument JSON unmarshal failed", "error", err, "id", id)
			// Continue with an empty list rather than failing
			d.FileIDs = nil
		}
	}
	return &d, nil
}

func scanSQLiteDocument(rows *sql.Rows) (models.Document, error) {
	var d models.Document
	var text, fileIDsJSON sql.NullString
	if err := rows.Scan(&d.ID, &d.PersonID, &d.DocName, &text, &fileIDsJSON); err != nil {
		return d, err
	}
	d.DocText = text.String
	if fileIDsJSON.String != "" {
		if err := json.Unmarshal([]byte(fileIDsJSON.String), &d.FileIDs); err != nil {
			d.FileIDs = nil
		}
	}
	return d, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
