package store

import (
	"database/sql"

	"github.com/daftarche/bankbook/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanAccount scans an Account from sql.Rows with nullable optional columns.
func scanAccount(rows *sql.Rows) (models.Account, error) {
	var a models.Account
	var bank, number, card, shaba, photo sql.NullString
	err := rows.Scan(&a.ID, &a.PersonID, &a.AccountName, &bank, &number, &card, &shaba, &photo)
	if err != nil {
		return a, err
	}
	a.BankName = bank.String
	a.AccountNumber = number.String
	a.CardNumber = card.String
	a.ShabaNumber = shaba.String
	a.CardPhotoID = photo.String
	return a, nil
}

// scanAccountRow scans an Account from a single sql.Row.
func scanAccountRow(row *sql.Row) (models.Account, error) {
	var a models.Account
	var bank, number, card, shaba, photo sql.NullString
	err := row.Scan(&a.ID, &a.PersonID, &a.AccountName, &bank, &number, &card, &shaba, &photo)
	if err != nil {
		return a, err
	}
	a.BankName = bank.String
	a.AccountNumber = number.String
	a.CardNumber = card.String
	a.ShabaNumber = shaba.String
	a.CardPhotoID = photo.String
	return a, nil
}
