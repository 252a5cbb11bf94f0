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

func promptDeleteChooseType(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{PersonButton, AccountButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "🗑 What do you want to delete?", kb)
}

func handleDeleteChooseType(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case PersonButton:
		return e.gotoStep(ctx, s, models.StepDeleteChoosePerson)
	case AccountButton:
		return e.gotoStep(ctx, s, models.StepDeleteChooseAccountPerson)
	}
	return e.invalidInput(ctx, s)
}

func promptDeleteChoosePerson(ctx context.Context, e *Engine, s *session.Session) error {
	return promptPersonList(ctx, e, s, "Choose the person to delete:")
}

func handleDeleteChoosePerson(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	id, ok := s.Persons[text]
	if !ok {
		return e.invalidInput(ctx, s)
	}
	s.Delete = &models.DeleteTarget{Person: true, ID: id, Label: text}
	return e.gotoStep(ctx, s, models.StepDeleteConfirmPerson)
}

func promptDeleteConfirmPerson(ctx context.Context, e *Engine, s *session.Session) error {
	label := ""
	if s.Delete != nil {
		label = s.Delete.Label
	}
	body := fmt.Sprintf("⚠️ Delete %s together with all of their accounts and documents?", label)
	kb := withHome(
		[]string{keyboard.YesButton, keyboard.NoButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, body, kb)
}

func handleDeleteConfirmPerson(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case keyboard.YesButton:
		if s.Delete == nil || !s.Delete.Person {
			return e.invalidInput(ctx, s)
		}
		err := e.store.DeletePerson(s.Delete.ID)
		if errors.Is(err, store.ErrNotFound) {
			if err := e.svc.SendMessage(ctx, s.UserID, "That person no longer exists."); err != nil {
				return err
			}
			return e.finishFlow(ctx, s)
		}
		if err != nil {
			return fmt.Errorf("failed to delete person: %w", err)
		}
		msg := fmt.Sprintf("🗑 %s and all of their records were deleted.", s.Delete.Label)
		if err := e.svc.SendMessage(ctx, s.UserID, msg); err != nil {
			return err
		}
		return e.finishFlow(ctx, s)
	case keyboard.NoButton:
		if err := e.svc.SendMessage(ctx, s.UserID, "Deletion cancelled."); err != nil {
			return err
		}
		return e.finishFlow(ctx, s)
	}
	return e.invalidInput(ctx, s)
}

func promptDeleteChooseAccountPerson(ctx context.Context, e *Engine, s *session.Session) error {
	return promptPersonList(ctx, e, s, "Whose account do you want to delete?")
}

func handleDeleteChooseAccountPerson(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	ok, err := e.selectPerson(ctx, s, text)
	if !ok || err != nil {
		return err
	}
	return e.gotoStep(ctx, s, models.StepDeleteChooseAccount)
}

func promptDeleteChooseAccount(ctx context.Context, e *Engine, s *session.Session) error {
	return promptAccountList(ctx, e, s, fmt.Sprintf("Choose the account of %s to delete:", s.PersonName))
}

func handleDeleteChooseAccount(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	id, ok := s.Accounts[text]
	if !ok {
		return e.invalidInput(ctx, s)
	}
	s.Delete = &models.DeleteTarget{ID: id, Label: text}
	return e.gotoStep(ctx, s, models.StepDeleteConfirmAccount)
}

func promptDeleteConfirmAccount(ctx context.Context, e *Engine, s *session.Session) error {
	label := ""
	if s.Delete != nil {
		label = s.Delete.Label
	}
	body := fmt.Sprintf("⚠️ Delete the account %q of %s?", label, s.PersonName)
	kb := withHome(
		[]string{keyboard.YesButton, keyboard.NoButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, body, kb)
}

func handleDeleteConfirmAccount(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case keyboard.YesButton:
		if s.Delete == nil || s.Delete.Person {
			return e.invalidInput(ctx, s)
		}
		err := e.store.DeleteAccount(s.Delete.ID)
		if errors.Is(err, store.ErrNotFound) {
			if err := e.svc.SendMessage(ctx, s.UserID, "That account no longer exists."); err != nil {
				return err
			}
			return e.finishFlow(ctx, s)
		}
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		msg := fmt.Sprintf("🗑 Account %q deleted.", s.Delete.Label)
		if err := e.svc.SendMessage(ctx, s.UserID, msg); err != nil {
			return err
		}
		return e.finishFlow(ctx, s)
	case keyboard.NoButton:
		if err := e.svc.SendMessage(ctx, s.UserID, "Deletion cancelled."); err != nil {
			return err
		}
		return e.finishFlow(ctx, s)
	}
	return e.invalidInput(ctx, s)
}
