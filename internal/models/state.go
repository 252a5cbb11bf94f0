// Package models defines dialogue state structures for BankBook flows.
package models

// Step names one point in the dialogue. Every user session is in exactly one
// Step at a time; the dialog package keeps the closed registry of all steps
// and their transitions.
type Step string

const (
	StepMainMenu Step = "MAIN_MENU"

	StepAdminMenu           Step = "ADMIN_MENU"
	StepAdminAddUserID      Step = "ADMIN_ADD_USER_ID"
	StepAdminAddUserConfirm Step = "ADMIN_ADD_USER_CONFIRM"
	StepAdminRemoveUser     Step = "ADMIN_REMOVE_USER"

	StepViewChoosePerson   Step = "VIEW_CHOOSE_PERSON"
	StepViewPersonItems    Step = "VIEW_PERSON_ITEMS"
	StepViewChooseDocument Step = "VIEW_CHOOSE_DOCUMENT"

	StepEditMenu Step = "EDIT_MENU"

	StepAddChoosePersonType     Step = "ADD_CHOOSE_PERSON_TYPE"
	StepAddNewPersonName        Step = "ADD_NEW_PERSON_NAME"
	StepAddChooseExistingPerson Step = "ADD_CHOOSE_EXISTING_PERSON"
	StepAddChooseItemType       Step = "ADD_CHOOSE_ITEM_TYPE"
	StepAddAccountName          Step = "ADD_ACCOUNT_NAME"
	StepAddAccountBank          Step = "ADD_ACCOUNT_BANK"
	StepAddAccountNumber        Step = "ADD_ACCOUNT_NUMBER"
	StepAddAccountCard          Step = "ADD_ACCOUNT_CARD"
	StepAddAccountShaba         Step = "ADD_ACCOUNT_SHABA"
	StepAddAccountPhoto         Step = "ADD_ACCOUNT_PHOTO"
	StepAddDocName              Step = "ADD_DOC_NAME"
	StepAddDocText              Step = "ADD_DOC_TEXT"
	StepAddDocTextConfirm       Step = "ADD_DOC_TEXT_CONFIRM"
	StepAddDocFiles             Step = "ADD_DOC_FILES"
	StepAddDocConfirm           Step = "ADD_DOC_CONFIRM"

	StepChangeChoosePerson  Step = "CHANGE_CHOOSE_PERSON"
	StepChangeChooseTarget  Step = "CHANGE_CHOOSE_TARGET"
	StepChangePersonName    Step = "CHANGE_PERSON_NAME"
	StepChangeChooseAccount Step = "CHANGE_CHOOSE_ACCOUNT"
	StepChangeChooseField   Step = "CHANGE_CHOOSE_FIELD"
	StepChangeFieldValue    Step = "CHANGE_FIELD_VALUE"

	StepDeleteChooseType          Step = "DELETE_CHOOSE_TYPE"
	StepDeleteChoosePerson        Step = "DELETE_CHOOSE_PERSON"
	StepDeleteConfirmPerson       Step = "DELETE_CONFIRM_PERSON"
	StepDeleteChooseAccountPerson Step = "DELETE_CHOOSE_ACCOUNT_PERSON"
	StepDeleteChooseAccount       Step = "DELETE_CHOOSE_ACCOUNT"
	StepDeleteConfirmAccount      Step = "DELETE_CONFIRM_ACCOUNT"
)

// AccountDraft accumulates a new account across the add sub-flow. Empty
// strings are "not provided"; they persist as NULL columns.
type AccountDraft struct {
	PersonID      int64
	AccountName   string
	BankName      string
	AccountNumber string
	CardNumber    string
	ShabaNumber   string
	CardPhotoID   string
}

// DocumentDraft accumulates a new document across the add sub-flow.
type DocumentDraft struct {
	PersonID int64
	DocName  string
	DocText  string
	FileIDs  []string
}

// FieldEditDraft tracks a single-column account edit in progress.
type FieldEditDraft struct {
	AccountID int64
	Field     AccountField
	Label     string
}

// DeleteTarget tracks the record picked for deletion, pending confirmation.
type DeleteTarget struct {
	Person bool
	ID     int64
	Label  string
}
