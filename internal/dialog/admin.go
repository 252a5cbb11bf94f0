package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/messaging"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
)

func promptAdminMenu(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome(
		[]string{ListUsersButton},
		[]string{AddUserButton, RemoveUserButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, "🛠 User management:", kb)
}

func handleAdminMenu(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	if !e.isAdmin(s.UserID) {
		return e.denyAdminOnly(ctx, s)
	}
	switch strings.TrimSpace(ev.Text) {
	case ListUsersButton:
		return e.sendUserList(ctx, s)
	case AddUserButton:
		return e.gotoStep(ctx, s, models.StepAdminAddUserID)
	case RemoveUserButton:
		return e.gotoStep(ctx, s, models.StepAdminRemoveUser)
	}
	return e.invalidInput(ctx, s)
}

// sendUserList shows every authorized user without leaving the admin menu.
func (e *Engine) sendUserList(ctx context.Context, s *session.Session) error {
	users, err := e.store.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return e.svc.SendMessage(ctx, s.UserID, "No authorized users yet.")
	}
	var b strings.Builder
	b.WriteString("👥 Authorized users:\n")
	for _, u := range users {
		fmt.Fprintf(&b, "• %s (%d)", u.FirstName, u.ID)
		if u.ID == e.adminID {
			b.WriteString(" [admin]")
		}
		b.WriteString("\n")
	}
	return e.svc.SendMessage(ctx, s.UserID, strings.TrimRight(b.String(), "\n"))
}

func promptAdminAddUserID(ctx context.Context, e *Engine, s *session.Session) error {
	kb := withHome([]string{keyboard.BackButton})
	return e.svc.SendKeyboard(ctx, s.UserID, "Enter the numeric Telegram id of the user to add:", kb)
}

// handleAdminAddUserID resolves the id to a profile via the transport before
// asking for confirmation. An unknown id re-prompts the same step.
func handleAdminAddUserID(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	if !e.isAdmin(s.UserID) {
		return e.denyAdminOnly(ctx, s)
	}
	id, err := strconv.ParseInt(normalizeInput(ev.Text), 10, 64)
	if err != nil {
		return e.svc.SendMessage(ctx, s.UserID, "That is not a numeric id. Enter the user's numeric id:")
	}
	authorized, err := e.store.AuthorizeUser(id)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if authorized || id == e.adminID {
		return e.svc.SendMessage(ctx, s.UserID, "That user already has access. Enter a different id:")
	}
	u, err := e.svc.LookupUser(ctx, id)
	if errors.Is(err, messaging.ErrUserNotFound) {
		return e.svc.SendMessage(ctx, s.UserID, "❌ No user found with that id. Enter another id:")
	}
	if err != nil {
		return fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	s.PendingUser = &u
	return e.gotoStep(ctx, s, models.StepAdminAddUserConfirm)
}

func promptAdminAddUserConfirm(ctx context.Context, e *Engine, s *session.Session) error {
	u := s.PendingUser
	if u == nil {
		return e.gotoStep(ctx, s, models.StepAdminAddUserID)
	}
	body := fmt.Sprintf("Name: %s", u.FirstName)
	if u.Username != "" {
		body += fmt.Sprintf("\nUsername: @%s", u.Username)
	}
	body += fmt.Sprintf("\nId: %d\n\nGrant this user access?", u.ID)
	kb := withHome(
		[]string{keyboard.YesButton, keyboard.NoButton},
		[]string{keyboard.BackButton},
	)
	return e.svc.SendKeyboard(ctx, s.UserID, body, kb)
}

func handleAdminAddUserConfirm(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	if !e.isAdmin(s.UserID) {
		return e.denyAdminOnly(ctx, s)
	}
	switch strings.TrimSpace(ev.Text) {
	case keyboard.YesButton:
		u := s.PendingUser
		if u == nil {
			return e.gotoStep(ctx, s, models.StepAdminAddUserID)
		}
		if err := e.store.UpsertUser(models.User{ID: u.ID, FirstName: u.FirstName}); err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}
		if err := e.svc.SendMessage(ctx, u.ID, "✅ You now have access to the bank book bot. Send /start to begin."); err != nil {
			slog.Error("failed to notify added user", "error", err, "userID", u.ID)
			if err := e.svc.SendMessage(ctx, s.UserID, "⚠️ The user was added but could not be notified."); err != nil {
				return err
			}
		}
		if err := e.svc.SendMessage(ctx, s.UserID, fmt.Sprintf("✅ %s (%d) added.", u.FirstName, u.ID)); err != nil {
			return err
		}
		s.PendingUser = nil
		return e.gotoStep(ctx, s, models.StepAdminMenu)
	case keyboard.NoButton:
		s.PendingUser = nil
		return e.gotoStep(ctx, s, models.StepAdminMenu)
	}
	return e.invalidInput(ctx, s)
}

// promptAdminRemoveUser lists removable users as "<name> (<id>)" buttons.
// The admin row is never offered.
func promptAdminRemoveUser(ctx context.Context, e *Engine, s *session.Session) error {
	users, err := e.store.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	labels := make([]string, 0, len(users))
	for _, u := range users {
		if u.ID == e.adminID {
			continue
		}
		labels = append(labels, fmt.Sprintf("%s (%d)", u.FirstName, u.ID))
	}
	if len(labels) == 0 {
		kb := withHome([]string{keyboard.BackButton})
		return e.svc.SendKeyboard(ctx, s.UserID, "There are no removable users.", kb)
	}
	clampPage(s, len(labels))
	kb := keyboard.Paginate(labels, s.Page, Columns, PageSize, models.Keyboard{{keyboard.BackButton}})
	return e.svc.SendKeyboard(ctx, s.UserID, "Choose the user to remove:", kb)
}

func handleAdminRemoveUser(ctx context.Context, e *Engine, s *session.Session, ev models.Event) error {
	if !e.isAdmin(s.UserID) {
		return e.denyAdminOnly(ctx, s)
	}
	text := strings.TrimSpace(ev.Text)
	if done, err := e.handlePaging(ctx, s, text); done {
		return err
	}
	id, ok := parseTrailingID(text)
	if !ok || id == e.adminID {
		return e.invalidInput(ctx, s)
	}
	removed, err := e.store.DeleteUser(id)
	if err != nil {
		return fmt.Errorf("failed to remove user %d: %w", id, err)
	}
	if !removed {
		return e.svc.SendMessage(ctx, s.UserID, "That user no longer exists.")
	}
	if err := e.svc.SendMessage(ctx, id, "⛔️ Your access to the bank book bot was revoked."); err != nil {
		slog.Error("failed to notify removed user", "error", err, "userID", id)
	}
	if err := e.svc.SendMessage(ctx, s.UserID, "✅ User removed."); err != nil {
		return err
	}
	return e.gotoStep(ctx, s, models.StepAdminMenu)
}

// parseTrailingID extracts the id from a "<name> (<id>)" picker label.
func parseTrailingID(label string) (int64, bool) {
	if !strings.HasSuffix(label, ")") {
		return 0, false
	}
	open := strings.LastIndex(label, "(")
	if open < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(label[open+1:len(label)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
