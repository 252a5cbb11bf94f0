package dialog

import (
	"context"
	"strings"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
)

func promptMainMenu(ctx context.Context, e *Engine, s *session.Session) error {
	kb := models.Keyboard{{ViewButton}}
	if e.isAdmin(s.UserID) {
		kb = append(kb, []string{EditButton}, []string{AdminButton})
	}
	return e.svc.SendKeyboard(ctx, s.UserID, "🏠 Main menu. What would you like to do?", kb)
}

func handleMainMenu(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case ViewButton:
		return e.gotoStep(ctx, s, models.StepViewChoosePerson)
	case EditButton:
		if !e.isAdmin(s.UserID) {
			return e.denyAdminOnly(ctx, s)
		}
		return e.gotoStep(ctx, s, models.StepEditMenu)
	case AdminButton:
		if !e.isAdmin(s.UserID) {
			return e.denyAdminOnly(ctx, s)
		}
		return e.gotoStep(ctx, s, models.StepAdminMenu)
	}
	return e.invalidInput(ctx, s)
}

// denyAdminOnly reports an admin-only step to a regular user and re-shows
// the main menu.
func (e *Engine) denyAdminOnly(ctx context.Context, s *session.Session) error {
	if err := e.svc.SendMessage(ctx, s.UserID, "⛔️ Only the admin can do that."); err != nil {
		return err
	}
	return e.gotoStep(ctx, s, models.StepMainMenu)
}

func promptEditMenu(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{AddButton, ChangeButton, DeleteButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "✏️ What do you want to do with the records?", kb)
}

func handleEditMenu(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	switch strings.TrimSpace(ev.Text) {
	case AddButton:
		return e.gotoStep(ctx, s, models.StepAddChoosePersonType)
	case ChangeButton:
		return e.gotoStep(ctx, s, models.StepChangeChoosePerson)
	case DeleteButton:
		return e.gotoStep(ctx, s, models.StepDeleteChooseType)
	}
	return e.invalidInput(ctx, s)
}
