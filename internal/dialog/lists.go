package dialog

import (
	"context"
	"fmt"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
)

// promptPersonList shows the paginated person picker shared by the view,
// add, change and delete flows. The session's Persons map is rebuilt on
// every render so stale labels from a previous page cannot resolve.
func promptPersonList(ctx context.Context, e *Engine, s *session.Session, title string) error {
	persons, err := e.store.ListPersons()
	if err != nil {
		return fmt.Errorf("failed to list persons: %w", err)
	}
	if len(persons) == 0 {
		kb := withHome([]string{keyboard.BackButton})
		return e.svc.SendKeyboard(ctx, s.UserID, "No persons recorded yet.", kb)
	}

	labels := make([]string, 0, len(persons))
	byLabel := make(map[string]int64, len(persons))
	for _, p := range persons {
		labels = append(labels, p.Name)
		byLabel[p.Name] = p.ID
	}
	s.Persons = byLabel

	clampPage(s, len(labels))
	kb := keyboard.Paginate(labels, s.Page, Columns, PageSize, models.Keyboard{{keyboard.BackButton}})
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}

// selectPerson resolves a person picker reply against the session's label
// map and stores the selection. It reports whether a person was selected;
// an unknown label gets an inline rejection.
func (e *Engine) selectPerson(ctx context.Context, s *session.Session, text string) (bool, error) {
	id, ok := s.Persons[text]
	if !ok {
		return false, e.invalidInput(ctx, s)
	}
	s.PersonID = id
	s.PersonName = text
	return true, nil
}

// promptAccountList shows the paginated account picker for the selected
// person, used by the change and delete flows.
func promptAccountList(ctx context.Context, e *Engine, s *session.Session, title string) error {
	accounts, err := e.store.ListAccounts(s.PersonID)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		kb := withHome([]string{keyboard.BackButton})
		return e.svc.SendKeyboard(ctx, s.UserID, fmt.Sprintf("%s has no accounts.", s.PersonName), kb)
	}

	labels := make([]string, 0, len(accounts))
	byLabel := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		labels = append(labels, a.AccountName)
		byLabel[a.AccountName] = a.ID
	}
	s.Accounts = byLabel

	clampPage(s, len(labels))
	kb := keyboard.Paginate(labels, s.Page, Columns, PageSize, models.Keyboard{{keyboard.BackButton}})
	return e.svc.SendKeyboard(ctx, s.UserID, title, kb)
}
