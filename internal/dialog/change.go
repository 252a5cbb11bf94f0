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

func promptChangeChoosePerson(ctx context.Context, e *Engine, s *session.Session) error {
	return promptPersonList(ctx, e, s, "🔄 Whose record do you want to change?")
}

func handleChangeChoosePerson(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	ok, err := e.selectPerson(ctx, s, text)
	if !ok || err != nil {
		return err
	}
	return e.gotoStep(ctx, s, models.StepChangeChooseTarget)
}

func promptChangeChooseTarget(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{RenamePersonButton, EditAccountButton},
		[]string{keyboard.BackButton},
	)
	title := fmt.Sprintf("What do you want to change for %s?", s.PersonName)
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}

func handleChangeChooseTarget(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case RenamePersonButton:
		return e.gotoStep(ctx, s, models.StepChangePersonName)
	case EditAccountButton:
		return e.gotoStep(ctx, s, models.StepChangeChooseAccount)
	}
	return e.invalidInput(ctx, s)
}

func promptChangePersonName(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome([]string{keyboard.BackButton})
	title := fmt.Sprintf("Enter the new name for %s:", s.PersonName)
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}

func handleChangePersonName(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.svc.SendMessage(ctx, s.UserID, "The name cannot be empty. Enter a name:")
	}
	err := e.store.RenamePerson(s.PersonID, name)
	if errors.Is(err, store.ErrDuplicateName) {
		return e.svc.SendMessage(ctx, s.UserID, "A person with that name already exists. Enter a different name:")
	}
	if errors.Is(err, store.ErrNotFound) {
		if err := e.svc.SendMessage(ctx, s.UserID, "That person no longer exists."); err != nil {
			return err
		}
		return e.gotoStep(ctx, s, models.StepChangeChoosePerson)
	}
	if err != nil {
		return fmt.Errorf("failed to rename person: %w", err)
	}
	msg := fmt.Sprintf("✅ %s renamed to %s.", s.PersonName, name)
	if err := e.svc.SendMessage(ctx, s.UserID, msg); err != nil {
		return err
	}
	return e.finishFlow(ctx, s)
}

func promptChangeChooseAccount(ctx context.Context, e *Engine, s *session.Session) error {
	return promptAccountList(ctx, e, s, fmt.Sprintf("Choose the account of %s to edit:", s.PersonName))
}

func handleChangeChooseAccount(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	id, ok := s.Accounts[text]
	if !ok {
		return e.invalidInput(ctx, s)
	}
	s.FieldEdit = &models.FieldEditDraft{AccountID: id}
	return e.gotoStep(ctx, s, models.StepChangeChooseField)
}

func promptChangeChooseField(ctx context.Context, e *Engine, s *session.Session) error {
	var kb models.Keyboard
	for i := 0; i < len(fieldChoices); i += Columns {
		j := i + Columns
		if j > len(fieldChoices) {
			j = len(fieldChoices)
		}
		row := make([]string, 0, Columns)
		for _, c := range fieldChoices[i:j] {
			row = append(row, c.Label)
		}
		kb = append(kb, row)
	}
	kb = append(kb, []string{keyboard.BackButton}, []string{keyboard.HomeButton})
	return e.svc.SendKeyboard(ctx, s.UserID, "Which field do you want to change?", kb)
}

func handleChangeChooseField(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	text := strings.TrimSpace(ev.Text)
	for _, c := range fieldChoices {
		if text == c.Label {
			if s.FieldEdit == nil {
				return e.invalidInput(ctx, s)
			}
			s.FieldEdit.Field = c.Field
			s.FieldEdit.Label = c.Label
			return e.gotoStep(ctx, s, models.StepChangeFieldValue)
		}
	}
	return e.invalidInput(ctx, s)
}

func promptChangeFieldValue(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome([]string{keyboard.BackButton})
	if s.FieldEdit != nil && s.FieldEdit.Field == models.FieldCardPhoto {
		return e.svc.SendKeyboard(ctx, s.UserID, "Send the new card photo:", kb)
	}
	label := "field"
	if s.FieldEdit != nil {
		label = s.FieldEdit.Label
	}
	return e.svc.SendKeyboard(ctx, s.UserID, fmt.Sprintf("Enter the new value for %s:", label), kb)
}

func handleChangeFieldValue(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	fe := s.FieldEdit
	if fe == nil || fe.Field == "" {
		return e.invalidInput(ctx, s)
	}

	var value string
	if fe.Field == models.FieldCardPhoto {
		if ev.Kind != models.EventPhoto {
			return e.svc.SendMessage(ctx, s.UserID, "Send a photo of the card:")
		}
		value = ev.FileID
	} else {
		value = strings.TrimSpace(ev.Text)
		if value == "" {
			return e.svc.SendMessage(ctx, s.UserID, "The value cannot be empty. Enter a value:")
		}
		switch fe.Field {
		case models.FieldAccountNumber, models.FieldCardNumber, models.FieldShabaNumber:
			value = normalizeInput(value)
		}
	}

	err := e.store.UpdateAccountField(fe.AccountID, fe.Field, value)
	if errors.Is(err, store.ErrNotFound) {
		if err := e.svc.SendMessage(ctx, s.UserID, "That account no longer exists."); err != nil {
			return err
		}
		return e.gotoStep(ctx, s, models.StepChangeChoosePerson)
	}
	if err != nil {
		return fmt.Errorf("failed to update account field: %w", err)
	}
	msg := fmt.Sprintf("✅ %s updated.", fe.Label)
	if err := e.svc.SendMessage(ctx, s.UserID, msg); err != nil {
		return err
	}
	return e.finishFlow(ctx, s)
}
