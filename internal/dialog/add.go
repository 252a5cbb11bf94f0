package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
	"github.com/daftarche/bankbook/internal/store"
)

func promptAddChoosePersonType(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{NewPersonButton, ExistingPersonButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "➕ Add a record for a new person or an existing one?", kb)
}

func handleAddChoosePersonType(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case NewPersonButton:
		return e.gotoStep(ctx, s, models.StepAddNewPersonName)
	case ExistingPersonButton:
		return e.gotoStep(ctx, s, models.StepAddChooseExistingPerson)
	}
	return e.invalidInput(ctx, s)
}

func promptAddNewPersonName(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome([]string{keyboard.BackButton})
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the new person's name:", kb)
}

// handleAddNewPersonName creates the person row immediately; a duplicate
// name re-prompts the same step without losing the rest of the flow.
func handleAddNewPersonName(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.svc.SendMessage(ctx, s.UserID, "The name cannot be empty. Enter a name:")
	}
	id, err := e.store.CreatePerson(name)
	if errors.Is(err, store.ErrDuplicateName) {
		return e.svc.SendMessage(ctx, s.UserID, "A person with that name already exists. Enter a different name:")
	}
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	s.PersonID = id
	s.PersonName = name
	return e.gotoStep(ctx, s, models.StepAddChooseItemType)
}

func promptAddChooseExistingPerson(ctx context.Context, e *Engine, s *session.Session) error {
	return promptPersonList(ctx, e, s, "Choose the person to add a record for:")
}

func handleAddChooseExistingPerson(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	ok, err := e.selectPerson(ctx, s, text)
	if !ok || err != nil {
		return err
	}
	return e.gotoStep(ctx, s, models.StepAddChooseItemType)
}

func promptAddChooseItemType(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{AccountButton, DocumentButton},
		[]string{keyboard.BackButton},
	)
	title := fmt.Sprintf("What do you want to add for %s?", s.PersonName)
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}

func handleAddChooseItemType(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case AccountButton:
		s.Account = &models.AccountDraft{PersonID: s.PersonID}
		return e.gotoStep(ctx, s, models.StepAddAccountName)
	case DocumentButton:
		s.Document = &models.DocumentDraft{PersonID: s.PersonID}
		return e.gotoStep(ctx, s, models.StepAddDocName)
	}
	return e.invalidInput(ctx, s)
}

// accountDraft returns the session's account draft, recreating it if the
// session somehow lost it mid-flow.
func accountDraft(s *session.Session) *models.AccountDraft {
	if s.Account == nil {
		s.Account = &models.AccountDraft{PersonID: s.PersonID}
	}
	return s.Account
}

func documentDraft(s *session.Session) *models.DocumentDraft {
	if s.Document == nil {
		s.Document = &models.DocumentDraft{PersonID: s.PersonID}
	}
	return s.Document
}

func promptAddAccountName(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome([]string{keyboard.BackButton})
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter a name for this account:", kb)
}

func handleAddAccountName(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.svc.SendMessage(ctx, s.UserID, "The account name cannot be empty. Enter a name:")
	}
	accountDraft(s).AccountName = name
	return e.gotoStep(ctx, s, models.StepAddAccountBank)
}

func promptAddAccountBank(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.SkipButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the bank name:", kb)
}

func handleAddAccountBank(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if text == keyboard.SkipButton {
		// Skip is an explicit empty value, it overwrites anything a
		// previous pass through this step left behind.
		accountDraft(s).BankName = ""
	} else {
		if text == "" {
			return e.svc.SendMessage(ctx, s.UserID, "Enter the bank name, or skip:")
		}
		accountDraft(s).BankName = text
	}
	return e.gotoStep(ctx, s, models.StepAddAccountNumber)
}

func promptAddAccountNumber(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.SkipButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the account number:", kb)
}

func handleAddAccountNumber(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if text == keyboard.SkipButton {
		accountDraft(s).AccountNumber = ""
	} else {
		if text == "" {
			return e.svc.SendMessage(ctx, s.UserID, "Enter the account number, or skip:")
		}
		accountDraft(s).AccountNumber = normalizeInput(text)
	}
	return e.gotoStep(ctx, s, models.StepAddAccountCard)
}

func promptAddAccountCard(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.SkipButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the 16-digit card number:", kb)
}

func handleAddAccountCard(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if text == keyboard.SkipButton {
		accountDraft(s).CardNumber = ""
	} else {
		if !validCardNumber(text) {
			return e.svc.SendMessage(ctx, s.UserID, "❌ The card number must be 16 digits and start with 4, 5 or 6. Try again, or skip:")
		}
		accountDraft(s).CardNumber = normalizeInput(text)
	}
	return e.gotoStep(ctx, s, models.StepAddAccountShaba)
}

func promptAddAccountShaba(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.SkipButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the 24-digit SHABA number (digits only, no IR prefix):", kb)
}

func handleAddAccountShaba(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if text == keyboard.SkipButton {
		accountDraft(s).ShabaNumber = ""
	} else {
		if !validShabaNumber(text) {
			return e.svc.SendMessage(ctx, s.UserID, "❌ The SHABA number must be exactly 24 digits. Try again, or skip:")
		}
		accountDraft(s).ShabaNumber = normalizeInput(text)
	}
	return e.gotoStep(ctx, s, models.StepAddAccountPhoto)
}

func promptAddAccountPhoto(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.SkipButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Send a photo of the card:", kb)
}

func handleAddAccountPhoto(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch {
	case ev.Kind == models.EventPhoto:
		accountDraft(s).CardPhotoID = ev.FileID
	case strings.TrimSpace(ev.Text) == keyboard.SkipButton:
		accountDraft(s).CardPhotoID = ""
	default:
		return e.svc.SendMessage(ctx, s.UserID, "Send a photo of the card, or skip:")
	}
	return e.saveAccount(ctx, s)
}

func (e *Engine) saveAccount(ctx context.Context, s *session.Session) error {
	d := accountDraft(s)
	_, err := e.store.CreateAccount(models.Account{
		PersonID:      d.PersonID,
		AccountName:   d.AccountName,
		BankName:      d.BankName,
		AccountNumber: d.AccountNumber,
		CardNumber:    d.CardNumber,
		ShabaNumber:   d.ShabaNumber,
		CardPhotoID:   d.CardPhotoID,
	})
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	msg := fmt.Sprintf("✅ Account %q saved for %s.", d.AccountName, s.PersonName)
	if err := e.svc.SendMessage(ctx, s.UserID, msg); err != nil {
		return err
	}
	return e.finishFlow(ctx, s)
}

func promptAddDocName(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome([]string{keyboard.BackButton})
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter a name for this document:", kb)
}

func handleAddDocName(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.svc.SendMessage(ctx, s.UserID, "The document name cannot be empty. Enter a name:")
	}
	documentDraft(s).DocName = name
	return e.gotoStep(ctx, s, models.StepAddDocText)
}

func promptAddDocText(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.SkipButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the document's description text:", kb)
}

func handleAddDocText(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if text == keyboard.SkipButton {
		documentDraft(s).DocText = ""
		return e.gotoStep(ctx, s, models.StepAddDocFiles)
	}
	if text == "" {
		return e.svc.SendMessage(ctx, s.UserID, "Enter the description text, or skip:")
	}
	documentDraft(s).DocText = text
	return e.gotoStep(ctx, s, models.StepAddDocTextConfirm)
}

func promptAddDocTextConfirm(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.ContinueButton, keyboard.EditTextButton},
		[]string{keyboard.BackButton},
	)
	body := fmt.Sprintf("You entered:\n\n%s\n\nContinue with this text?", documentDraft(s).DocText)
	return e.svc.SendKeyboard(ctx, s.UserID, body, kb)
}

func handleAddDocTextConfirm(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case keyboard.ContinueButton:
		return e.gotoStep(ctx, s, models.StepAddDocFiles)
	case keyboard.EditTextButton:
		documentDraft(s).DocText = ""
		return e.gotoStep(ctx, s, models.StepAddDocText)
	}
	return e.invalidInput(ctx, s)
}

func promptAddDocFiles(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{keyboard.FinishButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "Send the document's photos and files one by one, then press finish.", kb)
}

// handleAddDocFiles appends attachments in arrival order until finish.
func handleAddDocFiles(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	d := documentDraft(s)
	switch {
	case ev.Kind == models.EventPhoto || ev.Kind == models.EventFile:
		d.FileIDs = append(d.FileIDs, ev.FileID)
		return e.svc.SendMessage(ctx, s.UserID, fmt.Sprintf("📎 Attachment %d received.", len(d.FileIDs)))
	case strings.TrimSpace(ev.Text) == keyboard.FinishButton:
		return e.gotoStep(ctx, s, models.StepAddDocConfirm)
	}
	return e.svc.SendMessage(ctx, s.UserID, "Send a photo or file, or press finish.")
}

func promptAddDocConfirm(ctx context.Context, e *Engine, s *session.Session) error {
	d := documentDraft(s)
	text := d.DocText
	if text == "" {
		text = "(none)"
	}
	body := fmt.Sprintf("📄 Name: %s\n📝 Text: %s\n📎 Attachments: %d\n\nSave this document?",
		d.DocName, text, len(d.FileIDs))
	kb := withHome(
		[]string{keyboard.YesButton, keyboard.NoButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, body, kb)
}

func handleAddDocConfirm(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case keyboard.YesButton:
		d := documentDraft(s)
		_, err := e.store.CreateDocument(models.Document{
			PersonID: d.PersonID,
			DocName:  d.DocName,
			DocText:  d.DocText,
			FileIDs:  d.FileIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
		msg := fmt.Sprintf("✅ Document %q saved for %s.", d.DocName, s.PersonName)
		if err := e.svc.SendMessage(ctx, s.UserID, msg); err != nil {
			return err
		}
		return e.finishFlow(ctx, s)
	case keyboard.NoButton:
		if err := e.svc.SendMessage(ctx, s.UserID, "Discarded."); err != nil {
			return err
		}
		return e.finishFlow(ctx, s)
	}
	return e.invalidInput(ctx, s)
}
