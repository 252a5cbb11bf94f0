// Package models defines the domain entities and transport types for BankBook.
package models

// User is an authorized bot user. The admin is a fixed, privileged User
// seeded at startup.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

// Person is a record owner. A Person exclusively owns its Accounts and
// Documents; deleting the Person cascades to both.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Account is a bank account belonging to a Person. All fields except
// AccountName are optional; an empty string means the field is absent.
type Account struct {
	ID            int64  `json:"id"`
	PersonID      int64  `json:"person_id"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	CardNumber    string `json:"card_number,omitempty"`
	ShabaNumber   string `json:"shaba_number,omitempty"`
	CardPhotoID   string `json:"card_photo_id,omitempty"`
}

// Document is a named record with optional free text and an ordered list of
// attachment identifiers. The attachments themselves are never fetched; the
// ids are opaque transport references.
type Document struct {
	ID       int64    `json:"id"`
	PersonID int64    `json:"person_id"`
	DocName  string   `json:"doc_name"`
	DocText  string   `json:"doc_text,omitempty"`
	FileIDs  []string `json:"file_ids,omitempty"`
}

// AccountField identifies one editable Account column. The set is closed;
// the store maps it to a column name through a fixed table and never accepts
// arbitrary column names.
type AccountField string

const (
	FieldAccountName   AccountField = "account_name"
	FieldBankName      AccountField = "bank_name"
	FieldAccountNumber AccountField = "account_number"
	FieldCardNumber    AccountField = "card_number"
	FieldShabaNumber   AccountField = "shaba_number"
	FieldCardPhoto     AccountField = "card_photo_id"
)

// EventKind classifies an inbound transport event.
type EventKind string

const (
	EventText  EventKind = "text"
	EventPhoto EventKind = "photo"
	EventFile  EventKind = "file"
)

// Event is one inbound user event delivered by the transport.
type Event struct {
	UserID    int64     `json:"user_id"`
	FirstName string    `json:"first_name,omitempty"`
	Kind      EventKind `json:"kind"`
	Text      string    `json:"text,omitempty"`
	FileID    string    `json:"file_id,omitempty"`
	Time      int64     `json:"time"`
}

// Keyboard is a layout of button rows shown with a prompt.
type Keyboard [][]string

// ChatUser is a transport-side identity, as returned by a profile lookup.
type ChatUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}
