package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
	"github.com/daftarche/bankbook/internal/store"
	"github.com/daftarche/bankbook/internal/util"
)

func promptViewChoosePerson(ctx context.Context, e *Engine, s *session.Session) error {
	return promptPersonList(ctx, e, s, "📄 Whose records do you want to see?")
}

func handleViewChoosePerson(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	ok, err := e.selectPerson(ctx, s, text)
	if !ok || err != nil {
		return err
	}
	return e.gotoStep(ctx, s, models.StepViewPersonItems)
}

// promptViewPersonItems lists the person's accounts, with a documents entry
// in the footer when the person has any.
func promptViewPersonItems(ctx context.Context, e *Engine, s *session.Session) error {
	accounts, err := e.store.ListAccounts(s.PersonID)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	documents, err := e.store.ListDocuments(s.PersonID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	footer := models.Keyboard{}
	if len(documents) > 0 {
		footer = append(footer, []string{DocumentsButton})
	}
	footer = append(footer, []string{keyboard.BackButton})

	if len(accounts) == 0 && len(documents) == 0 {
		kb := withHome([]string{keyboard.BackButton})
		return e.svc.SendKeyboard(ctx, s.UserID, fmt.Sprintf("%s has no records yet.", s.PersonName), kb)
	}

	labels := make([]string, 0, len(accounts))
	byLabel := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		labels = append(labels, a.AccountName)
		byLabel[a.AccountName] = a.ID
	}
	s.Accounts = byLabel

	clampPage(s, len(labels))
	kb := keyboard.Paginate(labels, s.Page, Columns, PageSize, footer)
	title := fmt.Sprintf("Records of %s. Pick an account to see its details.", s.PersonName)
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}

// handleViewPersonItems is reentrant: showing one account's detail keeps the
// session in the listing step so another item can be picked right away.
func handleViewPersonItems(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	if text == DocumentsButton {
		return e.gotoStep(ctx, s, models.StepViewChooseDocument)
	}
	id, ok := s.Accounts[text]
	if !ok {
		return e.invalidInput(ctx, s)
	}
	return e.sendAccountDetail(ctx, s, id)
}

// sendAccountDetail renders an account. Only non-empty fields produce lines;
// the card photo, when present, follows as a separate photo message.
func (e *Engine) sendAccountDetail(ctx context.Context, s *session.Session, id int64) error {
	a, err := e.store.GetAccount(id)
	if errors.Is(err, store.ErrNotFound) {
		if err := e.svc.SendMessage(ctx, s.UserID, "That record no longer exists."); err != nil {
			return err
		}
		return e.promptStep(ctx, s)
	}
	if err != nil {
		return fmt.Errorf("failed to load account %d: %w", id, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💳 %s\n", a.AccountName)
	if a.BankName != "" {
		fmt.Fprintf(&b, "🏦 Bank: %s\n", a.BankName)
	}
	if a.AccountNumber != "" {
		fmt.Fprintf(&b, "🔢 Account number: %s\n", util.NormalizeDigits(a.AccountNumber))
	}
	if a.CardNumber != "" {
		fmt.Fprintf(&b, "💳 Card number: %s\n", util.NormalizeDigits(a.CardNumber))
	}
	if a.ShabaNumber != "" {
		fmt.Fprintf(&b, "🏧 SHABA: %s\n", util.NormalizeDigits(a.ShabaNumber))
	}
	if err := e.svc.SendMessage(ctx, s.UserID, strings.TrimRight(b.String(), "\n")); err != nil {
		return err
	}
	if a.CardPhotoID != "" {
		if err := e.svc.SendPhoto(ctx, s.UserID, a.CardPhotoID, a.AccountName); err != nil {
			return err
		}
	}
	return nil
}

func promptViewChooseDocument(ctx context.Context, e *Engine, s *session.Session) error {
	documents, err := e.store.ListDocuments(s.PersonID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(documents) == 0 {
		kb := withHome([]string{keyboard.BackButton})
		return e.svc.SendKeyboard(ctx, s.UserID, fmt.Sprintf("%s has no documents.", s.PersonName), kb)
	}

	labels := make([]string, 0, len(documents))
	byLabel := make(map[string]int64, len(documents))
	for _, d := range documents {
		labels = append(labels, d.DocName)
		byLabel[d.DocName] = d.ID
	}
	s.Documents = byLabel

	clampPage(s, len(labels))
	kb := keyboard.Paginate(labels, s.Page, Columns, PageSize, models.Keyboard{{keyboard.BackButton}})
	title := fmt.Sprintf("Documents of %s:", s.PersonName)
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}

// handleViewChooseDocument is reentrant like the account listing.
func handleViewChooseDocument(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	id, ok := s.Documents[text]
	if !ok {
		return e.invalidInput(ctx, s)
	}
	return e.sendDocumentDetail(ctx, s, id)
}

// sendDocumentDetail sends the document text first, then every attachment
// in stored order. A failed attachment send warns inline and continues.
func (e *Engine) sendDocumentDetail(ctx context.Context, s *session.Session, id int64) error {
	d, err := e.store.GetDocument(id)
	if errors.Is(err, store.ErrNotFound) {
		if err := e.svc.SendMessage(ctx, s.UserID, "That record no longer exists."); err != nil {
			return err
		}
		return e.promptStep(ctx, s)
	}
	if err != nil {
		return fmt.Errorf("failed to load document %d: %w", id, err)
	}

	body := fmt.Sprintf("📄 %s", d.DocName)
	if d.DocText != "" {
		body += "\n" + d.DocText
	}
	if err := e.svc.SendMessage(ctx, s.UserID, body); err != nil {
		return err
	}
	for i, fileID := range d.FileIDs {
		if err := e.svc.SendDocument(ctx, s.UserID, fileID); err != nil {
			slog.Error("failed to forward attachment", "error", err, "documentID", d.ID, "index", i)
			warn := fmt.Sprintf("⚠️ Could not send attachment %d of %d.", i+1, len(d.FileIDs))
			if err := e.svc.SendMessage(ctx, s.UserID, warn); err != nil {
				return err
			}
		}
	}
	return nil
}
