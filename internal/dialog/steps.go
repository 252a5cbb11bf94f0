package dialog

import (
	"context"

	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
)

// Menu button labels. Like the reserved control buttons these are matched
// verbatim, so they must stay distinct from each other and from the controls.
const (
	ViewButton  = "📄 View records"
	EditButton  = "✏️ Edit records"
	AdminButton = "🛠 Admin"

	AddButton    = "➕ Add"
	ChangeButton = "🔄 Change"
	DeleteButton = "🗑 Delete"

	NewPersonButton      = "🆕 New person"
	ExistingPersonButton = "👤 Existing person"
	AccountButton        = "💳 Account"
	DocumentButton       = "📄 Document"
	DocumentsButton      = "📄 Documents"

	RenamePersonButton = "✏️ Rename person"
	EditAccountButton  = "💳 Edit an account"

	PersonButton = "👤 Person"

	ListUsersButton  = "👥 List users"
	AddUserButton    = "➕ Add user"
	RemoveUserButton = "➖ Remove user"
)

// fieldChoices maps the field picker buttons of the change flow onto the
// closed editable-field set, in keyboard order.
var fieldChoices = []struct {
	Label string
	Field models.AccountField
}{
	{"🏷 Account name", models.FieldAccountName},
	{"🏦 Bank name", models.FieldBankName},
	{"🔢 Account number", models.FieldAccountNumber},
	{"💳 Card number", models.FieldCardNumber},
	{"🏧 SHABA number", models.FieldShabaNumber},
	{"🖼 Card photo", models.FieldCardPhoto},
}

type promptFunc func(ctx context.Context, e *Engine, s *session.Session) error
type handlerFunc func(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error

// stepDef is one node of the state machine: how the step prompts, where Back
// leads, which draft field to drop when leaving via Back, and how inbound
// input is handled. Home and Back themselves are dispatched by the engine
// before handle runs.
type stepDef struct {
	prompt  promptFunc
	back    models.Step
	discard func(s *session.Session)
	handle  handlerFunc
}

// steps is the closed registry of every dialogue step. The main menu is the
// only step without a Back target. It is populated in init to break the
// initialization cycle between the registry and the handlers it refers to.
var steps map[models.Step]stepDef

func init() {
	steps = map[models.Step]stepDef{
		models.StepMainMenu: {
			prompt: promptMainMenu,
			handle: handleMainMenu,
		},

		models.StepAdminMenu: {
			prompt: promptAdminMenu,
			back:   models.StepMainMenu,
			handle: handleAdminMenu,
		},
		models.StepAdminAddUserID: {
			prompt:  promptAdminAddUserID,
			back:    models.StepAdminMenu,
			discard: func(s *session.Session) { s.PendingUser = nil },
			handle:  handleAdminAddUserID,
		},
		models.StepAdminAddUserConfirm: {
			prompt: promptAdminAddUserConfirm,
			back:   models.StepAdminAddUserID,
			handle: handleAdminAddUserConfirm,
		},
		models.StepAdminRemoveUser: {
			prompt: promptAdminRemoveUser,
			back:   models.StepAdminMenu,
			handle: handleAdminRemoveUser,
		},

		models.StepViewChoosePerson: {
			prompt:  promptViewChoosePerson,
			back:    models.StepMainMenu,
			discard: clearPersonSelection,
			handle:  handleViewChoosePerson,
		},
		models.StepViewPersonItems: {
			prompt: promptViewPersonItems,
			back:   models.StepViewChoosePerson,
			handle: handleViewPersonItems,
		},
		models.StepViewChooseDocument: {
			prompt: promptViewChooseDocument,
			back:   models.StepViewPersonItems,
			handle: handleViewChooseDocument,
		},

		models.StepEditMenu: {
			prompt: promptEditMenu,
			back:   models.StepMainMenu,
			handle: handleEditMenu,
		},

		models.StepAddChoosePersonType: {
			prompt: promptAddChoosePersonType,
			back:   models.StepEditMenu,
			handle: handleAddChoosePersonType,
		},
		models.StepAddNewPersonName: {
			prompt:  promptAddNewPersonName,
			back:    models.StepAddChoosePersonType,
			discard: clearPersonSelection,
			handle:  handleAddNewPersonName,
		},
		models.StepAddChooseExistingPerson: {
			prompt:  promptAddChooseExistingPerson,
			back:    models.StepAddChoosePersonType,
			discard: clearPersonSelection,
			handle:  handleAddChooseExistingPerson,
		},
		models.StepAddChooseItemType: {
			prompt: promptAddChooseItemType,
			back:   models.StepAddChoosePersonType,
			discard: func(s *session.Session) {
				s.Account = nil
				s.Document = nil
			},
			handle: handleAddChooseItemType,
		},
		models.StepAddAccountName: {
			prompt: promptAddAccountName,
			back:   models.StepAddChooseItemType,
			discard: func(s *session.Session) {
				if s.Account != nil {
					s.Account.AccountName = ""
				}
			},
			handle: handleAddAccountName,
		},
		models.StepAddAccountBank: {
			prompt: promptAddAccountBank,
			back:   models.StepAddAccountName,
			discard: func(s *session.Session) {
				if s.Account != nil {
					s.Account.BankName = ""
				}
			},
			handle: handleAddAccountBank,
		},
		models.StepAddAccountNumber: {
			prompt: promptAddAccountNumber,
			back:   models.StepAddAccountBank,
			discard: func(s *session.Session) {
				if s.Account != nil {
					s.Account.AccountNumber = ""
				}
			},
			handle: handleAddAccountNumber,
		},
		models.StepAddAccountCard: {
			prompt: promptAddAccountCard,
			back:   models.StepAddAccountNumber,
			discard: func(s *session.Session) {
				if s.Account != nil {
					s.Account.CardNumber = ""
				}
			},
			handle: handleAddAccountCard,
		},
		models.StepAddAccountShaba: {
			prompt: promptAddAccountShaba,
			back:   models.StepAddAccountCard,
			discard: func(s *session.Session) {
				if s.Account != nil {
					s.Account.ShabaNumber = ""
				}
			},
			handle: handleAddAccountShaba,
		},
		models.StepAddAccountPhoto: {
			prompt: promptAddAccountPhoto,
			back:   models.StepAddAccountShaba,
			discard: func(s *session.Session) {
				if s.Account != nil {
					s.Account.CardPhotoID = ""
				}
			},
			handle: handleAddAccountPhoto,
		},
		models.StepAddDocName: {
			prompt: promptAddDocName,
			back:   models.StepAddChooseItemType,
			discard: func(s *session.Session) {
				if s.Document != nil {
					s.Document.DocName = ""
				}
			},
			handle: handleAddDocName,
		},
		models.StepAddDocText: {
			prompt: promptAddDocText,
			back:   models.StepAddDocName,
			discard: func(s *session.Session) {
				if s.Document != nil {
					s.Document.DocText = ""
				}
			},
			handle: handleAddDocText,
		},
		models.StepAddDocTextConfirm: {
			prompt: promptAddDocTextConfirm,
			back:   models.StepAddDocText,
			handle: handleAddDocTextConfirm,
		},
		models.StepAddDocFiles: {
			prompt: promptAddDocFiles,
			back:   models.StepAddDocText,
			discard: func(s *session.Session) {
				if s.Document != nil {
					s.Document.FileIDs = nil
				}
			},
			handle: handleAddDocFiles,
		},
		models.StepAddDocConfirm: {
			prompt: promptAddDocConfirm,
			back:   models.StepAddDocFiles,
			handle: handleAddDocConfirm,
		},

		models.StepChangeChoosePerson: {
			prompt:  promptChangeChoosePerson,
			back:    models.StepEditMenu,
			discard: clearPersonSelection,
			handle:  handleChangeChoosePerson,
		},
		models.StepChangeChooseTarget: {
			prompt: promptChangeChooseTarget,
			back:   models.StepChangeChoosePerson,
			handle: handleChangeChooseTarget,
		},
		models.StepChangePersonName: {
			prompt: promptChangePersonName,
			back:   models.StepChangeChooseTarget,
			handle: handleChangePersonName,
		},
		models.StepChangeChooseAccount: {
			prompt:  promptChangeChooseAccount,
			back:    models.StepChangeChooseTarget,
			discard: func(s *session.Session) { s.FieldEdit = nil },
			handle:  handleChangeChooseAccount,
		},
		models.StepChangeChooseField: {
			prompt: promptChangeChooseField,
			back:   models.StepChangeChooseAccount,
			discard: func(s *session.Session) {
				if s.FieldEdit != nil {
					s.FieldEdit.Field = ""
					s.FieldEdit.Label = ""
				}
			},
			handle: handleChangeChooseField,
		},
		models.StepChangeFieldValue: {
			prompt: promptChangeFieldValue,
			back:   models.StepChangeChooseField,
			handle: handleChangeFieldValue,
		},

		models.StepDeleteChooseType: {
			prompt: promptDeleteChooseType,
			back:   models.StepEditMenu,
			handle: handleDeleteChooseType,
		},
		models.StepDeleteChoosePerson: {
			prompt:  promptDeleteChoosePerson,
			back:    models.StepDeleteChooseType,
			discard: func(s *session.Session) { s.Delete = nil },
			handle:  handleDeleteChoosePerson,
		},
		models.StepDeleteConfirmPerson: {
			prompt: promptDeleteConfirmPerson,
			back:   models.StepDeleteChoosePerson,
			handle: handleDeleteConfirmPerson,
		},
		models.StepDeleteChooseAccountPerson: {
			prompt:  promptDeleteChooseAccountPerson,
			back:    models.StepDeleteChooseType,
			discard: clearPersonSelection,
			handle:  handleDeleteChooseAccountPerson,
		},
		models.StepDeleteChooseAccount: {
			prompt:  promptDeleteChooseAccount,
			back:    models.StepDeleteChooseAccountPerson,
			discard: func(s *session.Session) { s.Delete = nil },
			handle:  handleDeleteChooseAccount,
		},
		models.StepDeleteConfirmAccount: {
			prompt: promptDeleteConfirmAccount,
			back:   models.StepDeleteChooseAccount,
			handle: handleDeleteConfirmAccount,
		},
	}
}

func clearPersonSelection(s *session.Session) {
	s.PersonID = 0
	s.PersonName = ""
}
