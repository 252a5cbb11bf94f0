package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/messaging"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/store"
)

const testAdminID int64 = 99

func newTestEngine(t *testing.T) (*Engine, *store.InMemoryStore, *messaging.MockService) {
	t.Helper()
	st := store.NewInMemoryStore()
	if err := st.UpsertUser(models.User{ID: testAdminID, FirstName: "Admin"}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	svc := messaging.NewMockService()
	e := NewEngine(st, svc, WithAdminID(testAdminID))
	return e, st, svc
}

func sendText(e *Engine, userID int64, text string) {
	e.HandleEvent(context.Background(), models.Event{
		UserID:    userID,
		FirstName: "Tester",
		Kind:      models.EventText,
		Text:      text,
	})
}

func sendPhoto(e *Engine, userID int64, fileID string) {
	e.HandleEvent(context.Background(), models.Event{
		UserID: userID,
		Kind:   models.EventPhoto,
		FileID: fileID,
	})
}

func sendFile(e *Engine, userID int64, fileID string) {
	e.HandleEvent(context.Background(), models.Event{
		UserID: userID,
		Kind:   models.EventFile,
		FileID: fileID,
	})
}

func lastMessage(t *testing.T, svc *messaging.MockService) messaging.SentMessage {
	t.Helper()
	msg, ok := svc.LastSent()
	if !ok {
		t.Fatal("no message was sent")
	}
	return msg
}

// walkToAccountCard drives a fresh admin session to the card number step of
// the account add flow for a new person.
func walkToAccountCard(e *Engine, person string) {
	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, AddButton)
	sendText(e, testAdminID, NewPersonButton)
	sendText(e, testAdminID, person)
	sendText(e, testAdminID, AccountButton)
	sendText(e, testAdminID, "Main")
	sendText(e, testAdminID, "Melli")
	sendText(e, testAdminID, "12345")
}

func TestUnauthorizedContact(t *testing.T) {
	e, _, svc := newTestEngine(t)
	sendText(e, 55, "hi")

	sent := svc.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 messages (user + admin), got %d", len(sent))
	}
	if sent[0].To != 55 || !strings.Contains(sent[0].Body, "55") {
		t.Errorf("expected the user to receive their id, got %+v", sent[0])
	}
	if sent[1].To != testAdminID || !strings.Contains(sent[1].Body, "55") {
		t.Errorf("expected the admin to be notified with the id, got %+v", sent[1])
	}
}

func TestNonAdminDeniedEditMenu(t *testing.T) {
	e, st, svc := newTestEngine(t)
	if err := st.UpsertUser(models.User{ID: 50, FirstName: "Sara"}); err != nil {
		t.Fatal(err)
	}
	sendText(e, 50, "/start")
	svc.Reset()
	sendText(e, 50, EditButton)

	sent := svc.Sent()
	if len(sent) == 0 || !strings.Contains(sent[0].Body, "admin") {
		t.Errorf("expected an admin-only rejection, got %+v", sent)
	}
	if got := e.Session(50).Step; got != models.StepMainMenu {
		t.Errorf("expected session back at main menu, got %s", got)
	}
}

func TestAddAccountSkippingAllOptionals(t *testing.T) {
	e, st, svc := newTestEngine(t)

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, AddButton)
	sendText(e, testAdminID, NewPersonButton)
	sendText(e, testAdminID, "Ali")
	sendText(e, testAdminID, AccountButton)
	sendText(e, testAdminID, "Salary")
	for i := 0; i < 5; i++ {
		sendText(e, testAdminID, keyboard.SkipButton)
	}

	if got := e.Session(testAdminID).Step; got != models.StepMainMenu {
		t.Fatalf("expected main menu after saving, got %s", got)
	}

	persons, _ := st.ListPersons()
	if len(persons) != 1 || persons[0].Name != "Ali" {
		t.Fatalf("expected person Ali, got %+v", persons)
	}
	accounts, _ := st.ListAccounts(persons[0].ID)
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
	a := accounts[0]
	if a.AccountName != "Salary" {
		t.Errorf("expected account name Salary, got %q", a.AccountName)
	}
	if a.BankName != "" || a.AccountNumber != "" || a.CardNumber != "" || a.ShabaNumber != "" || a.CardPhotoID != "" {
		t.Errorf("expected all optional fields absent, got %+v", a)
	}

	// Viewing the account must show only the name line and send no photo.
	sendText(e, testAdminID, ViewButton)
	sendText(e, testAdminID, "Ali")
	svc.Reset()
	sendText(e, testAdminID, "Salary")

	sent := svc.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one detail message, got %d: %+v", len(sent), sent)
	}
	if sent[0].Body != "💳 Salary" {
		t.Errorf("expected a bare name line, got %q", sent[0].Body)
	}
	if sent[0].PhotoID != "" {
		t.Error("no photo was stored, none must be sent")
	}
	if got := e.Session(testAdminID).Step; got != models.StepViewPersonItems {
		t.Errorf("the listing step must stay reentrant, got %s", got)
	}
}

func TestHomeResetsFromDeepStep(t *testing.T) {
	e, _, _ := newTestEngine(t)
	walkToAccountCard(e, "Ali")
	if got := e.Session(testAdminID).Step; got != models.StepAddAccountCard {
		t.Fatalf("walk failed, at %s", got)
	}

	sendText(e, testAdminID, keyboard.HomeButton)
	s := e.Session(testAdminID)
	if s.Step != models.StepMainMenu {
		t.Errorf("expected main menu after home, got %s", s.Step)
	}
	if s.Account != nil || s.PersonID != 0 {
		t.Errorf("expected an empty draft after home, got %+v", s)
	}
}

func TestCancelCommandEqualsHome(t *testing.T) {
	e, _, _ := newTestEngine(t)
	walkToAccountCard(e, "Ali")
	sendText(e, testAdminID, "/cancel")
	s := e.Session(testAdminID)
	if s.Step != models.StepMainMenu || s.Account != nil {
		t.Errorf("expected /cancel to reset like home, got step=%s draft=%+v", s.Step, s.Account)
	}
}

func TestBackPreservesEarlierFields(t *testing.T) {
	e, _, _ := newTestEngine(t)
	walkToAccountCard(e, "Sara")

	sendText(e, testAdminID, keyboard.BackButton)
	s := e.Session(testAdminID)
	if s.Step != models.StepAddAccountNumber {
		t.Fatalf("expected the account number step after back, got %s", s.Step)
	}
	if s.Account == nil || s.Account.BankName != "Melli" {
		t.Errorf("expected the bank name to survive back, got %+v", s.Account)
	}
	if s.Account.AccountName != "Main" {
		t.Errorf("expected the account name to survive back, got %q", s.Account.AccountName)
	}

	// Answering again overwrites the re-entered step's field.
	sendText(e, testAdminID, "999")
	if s.Account.AccountNumber != "999" {
		t.Errorf("expected the account number replaced, got %q", s.Account.AccountNumber)
	}
	if got := e.Session(testAdminID).Step; got != models.StepAddAccountCard {
		t.Errorf("expected to advance to the card step again, got %s", got)
	}
}

func TestSkipClearsFieldRevisitedViaBack(t *testing.T) {
	e, st, _ := newTestEngine(t)
	walkToAccountCard(e, "Sara")

	// Walk back to the bank step. The bank name entered on the first pass
	// is still in the draft.
	sendText(e, testAdminID, keyboard.BackButton)
	sendText(e, testAdminID, keyboard.BackButton)
	s := e.Session(testAdminID)
	if s.Step != models.StepAddAccountBank {
		t.Fatalf("expected the bank step after two backs, got %s", s.Step)
	}
	if s.Account == nil || s.Account.BankName != "Melli" {
		t.Fatalf("expected the bank name to survive back, got %+v", s.Account)
	}

	// Skipping now must erase it, not silently keep the old value.
	sendText(e, testAdminID, keyboard.SkipButton)
	if s.Account.BankName != "" {
		t.Errorf("expected skip to clear the bank name, got %q", s.Account.BankName)
	}
	for i := 0; i < 4; i++ {
		sendText(e, testAdminID, keyboard.SkipButton)
	}

	persons, _ := st.ListPersons()
	if len(persons) != 1 {
		t.Fatalf("expected one person, got %d", len(persons))
	}
	accounts, _ := st.ListAccounts(persons[0].ID)
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
	a := accounts[0]
	if a.AccountName != "Main" {
		t.Errorf("expected the account name kept, got %q", a.AccountName)
	}
	if a.BankName != "" || a.AccountNumber != "" {
		t.Errorf("expected the skipped fields empty, got bank=%q number=%q", a.BankName, a.AccountNumber)
	}
}

func TestCardValidationRejectsAndReprompts(t *testing.T) {
	e, _, svc := newTestEngine(t)
	walkToAccountCard(e, "Ali")

	svc.Reset()
	sendText(e, testAdminID, "3111111111111111")
	if got := e.Session(testAdminID).Step; got != models.StepAddAccountCard {
		t.Errorf("expected to stay on the card step, got %s", got)
	}
	if msg := lastMessage(t, svc); !strings.Contains(msg.Body, "card number") {
		t.Errorf("expected a card number rejection, got %q", msg.Body)
	}

	sendText(e, testAdminID, "4111111111111111")
	s := e.Session(testAdminID)
	if s.Step != models.StepAddAccountShaba {
		t.Errorf("expected to advance after a valid card, got %s", s.Step)
	}
	if s.Account.CardNumber != "4111111111111111" {
		t.Errorf("expected the card number stored, got %q", s.Account.CardNumber)
	}
}

func TestPersianDigitsAcceptedForCard(t *testing.T) {
	e, _, _ := newTestEngine(t)
	walkToAccountCard(e, "Ali")

	sendText(e, testAdminID, "۴۱۱۱۱۱۱۱۱۱۱۱۱۱۱۱")
	s := e.Session(testAdminID)
	if s.Step != models.StepAddAccountShaba {
		t.Fatalf("expected Persian digits to validate, at %s", s.Step)
	}
	if s.Account.CardNumber != "4111111111111111" {
		t.Errorf("expected the stored number normalized to ASCII, got %q", s.Account.CardNumber)
	}
}

func TestDuplicatePersonNameRePrompts(t *testing.T) {
	e, st, svc := newTestEngine(t)
	if _, err := st.CreatePerson("Ali"); err != nil {
		t.Fatal(err)
	}

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, AddButton)
	sendText(e, testAdminID, NewPersonButton)
	svc.Reset()
	sendText(e, testAdminID, "Ali")

	if got := e.Session(testAdminID).Step; got != models.StepAddNewPersonName {
		t.Errorf("expected to stay on the name step, got %s", got)
	}
	if msg := lastMessage(t, svc); !strings.Contains(msg.Body, "already exists") {
		t.Errorf("expected a duplicate-name rejection, got %q", msg.Body)
	}
	persons, _ := st.ListPersons()
	if len(persons) != 1 {
		t.Errorf("expected no extra person row, got %d", len(persons))
	}
}

func TestDocumentFlowEndToEnd(t *testing.T) {
	e, st, svc := newTestEngine(t)

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, AddButton)
	sendText(e, testAdminID, NewPersonButton)
	sendText(e, testAdminID, "Dana")
	sendText(e, testAdminID, DocumentButton)
	sendText(e, testAdminID, "passport")
	sendText(e, testAdminID, "issued 2019")
	sendText(e, testAdminID, keyboard.ContinueButton)
	sendPhoto(e, testAdminID, "f1")
	sendFile(e, testAdminID, "f2")
	sendText(e, testAdminID, keyboard.FinishButton)
	sendText(e, testAdminID, keyboard.YesButton)

	persons, _ := st.ListPersons()
	if len(persons) != 1 {
		t.Fatalf("expected one person, got %d", len(persons))
	}
	documents, _ := st.ListDocuments(persons[0].ID)
	if len(documents) != 1 {
		t.Fatalf("expected one document, got %d", len(documents))
	}
	d := documents[0]
	if d.DocName != "passport" || d.DocText != "issued 2019" {
		t.Errorf("unexpected document: %+v", d)
	}
	if len(d.FileIDs) != 2 || d.FileIDs[0] != "f1" || d.FileIDs[1] != "f2" {
		t.Errorf("expected attachments in arrival order, got %v", d.FileIDs)
	}

	// View the document: text first, then both attachments in order.
	sendText(e, testAdminID, ViewButton)
	sendText(e, testAdminID, "Dana")
	sendText(e, testAdminID, DocumentsButton)
	svc.Reset()
	sendText(e, testAdminID, "passport")

	sent := svc.Sent()
	if len(sent) != 3 {
		t.Fatalf("expected text plus two attachments, got %d: %+v", len(sent), sent)
	}
	if !strings.Contains(sent[0].Body, "passport") || !strings.Contains(sent[0].Body, "issued 2019") {
		t.Errorf("expected the document text first, got %+v", sent[0])
	}
	if sent[1].FileID != "f1" || sent[2].FileID != "f2" {
		t.Errorf("expected attachments f1 then f2, got %+v", sent[1:])
	}
}

func TestAdminAddUserFlow(t *testing.T) {
	e, st, svc := newTestEngine(t)
	svc.AddUser(models.ChatUser{ID: 777, FirstName: "Nima", Username: "nima"})

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, AdminButton)
	sendText(e, testAdminID, AddUserButton)

	svc.Reset()
	sendText(e, testAdminID, "abc")
	if got := e.Session(testAdminID).Step; got != models.StepAdminAddUserID {
		t.Errorf("expected to stay on the id step after non-numeric input, got %s", got)
	}

	svc.Reset()
	sendText(e, testAdminID, "123")
	if msg := lastMessage(t, svc); !strings.Contains(msg.Body, "No user found") {
		t.Errorf("expected an id-not-found rejection, got %q", msg.Body)
	}
	if got := e.Session(testAdminID).Step; got != models.StepAdminAddUserID {
		t.Errorf("expected to stay on the id step after unknown id, got %s", got)
	}

	sendText(e, testAdminID, "777")
	if got := e.Session(testAdminID).Step; got != models.StepAdminAddUserConfirm {
		t.Fatalf("expected the confirmation step, got %s", got)
	}

	svc.Reset()
	sendText(e, testAdminID, keyboard.YesButton)
	ok, err := st.AuthorizeUser(777)
	if err != nil || !ok {
		t.Fatalf("expected user 777 authorized, got ok=%v err=%v", ok, err)
	}
	notified := false
	for _, m := range svc.Sent() {
		if m.To == 777 {
			notified = true
		}
	}
	if !notified {
		t.Error("expected the new user to be notified")
	}
}

func TestAdminRemoveUserFlow(t *testing.T) {
	e, st, svc := newTestEngine(t)
	if err := st.UpsertUser(models.User{ID: 777, FirstName: "Nima"}); err != nil {
		t.Fatal(err)
	}

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, AdminButton)
	sendText(e, testAdminID, RemoveUserButton)

	svc.Reset()
	sendText(e, testAdminID, "Nima (777)")

	ok, err := st.AuthorizeUser(777)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected user 777 removed")
	}
	notified := false
	for _, m := range svc.Sent() {
		if m.To == 777 {
			notified = true
		}
	}
	if !notified {
		t.Error("expected the removed user to be notified")
	}
}

// failingStore breaks ListPersons to simulate a backing store outage.
type failingStore struct {
	*store.InMemoryStore
}

func (f *failingStore) ListPersons() ([]models.Person, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailureFallsBackToMainMenu(t *testing.T) {
	inner := store.NewInMemoryStore()
	if err := inner.UpsertUser(models.User{ID: testAdminID, FirstName: "Admin"}); err != nil {
		t.Fatal(err)
	}
	svc := messaging.NewMockService()
	e := NewEngine(&failingStore{inner}, svc, WithAdminID(testAdminID))

	sendText(e, testAdminID, "/start")
	svc.Reset()
	sendText(e, testAdminID, ViewButton)

	sent := svc.Sent()
	if len(sent) == 0 || !strings.Contains(sent[0].Body, "went wrong") {
		t.Errorf("expected a transient failure report, got %+v", sent)
	}
	if got := e.Session(testAdminID).Step; got != models.StepMainMenu {
		t.Errorf("expected fallback to the main menu, got %s", got)
	}
}

func TestDeletePersonFlowCascades(t *testing.T) {
	e, st, _ := newTestEngine(t)
	pid, _ := st.CreatePerson("Ali")
	if _, err := st.CreateAccount(models.Account{PersonID: pid, AccountName: "Salary"}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateDocument(models.Document{PersonID: pid, DocName: "passport"}); err != nil {
		t.Fatal(err)
	}

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, DeleteButton)
	sendText(e, testAdminID, PersonButton)
	sendText(e, testAdminID, "Ali")
	if got := e.Session(testAdminID).Step; got != models.StepDeleteConfirmPerson {
		t.Fatalf("expected the confirmation step, got %s", got)
	}
	sendText(e, testAdminID, keyboard.YesButton)

	persons, _ := st.ListPersons()
	if len(persons) != 0 {
		t.Errorf("expected the person deleted, got %+v", persons)
	}
	accounts, _ := st.ListAccounts(pid)
	if len(accounts) != 0 {
		t.Errorf("expected the accounts cascaded, got %d", len(accounts))
	}
}

func TestDeleteConfirmNoCancels(t *testing.T) {
	e, st, _ := newTestEngine(t)
	pid, _ := st.CreatePerson("Ali")

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, DeleteButton)
	sendText(e, testAdminID, PersonButton)
	sendText(e, testAdminID, "Ali")
	sendText(e, testAdminID, keyboard.NoButton)

	if _, err := st.ListPersons(); err != nil {
		t.Fatal(err)
	}
	persons, _ := st.ListPersons()
	if len(persons) != 1 || persons[0].ID != pid {
		t.Errorf("expected the person to survive a cancelled delete, got %+v", persons)
	}
	if got := e.Session(testAdminID).Step; got != models.StepMainMenu {
		t.Errorf("expected main menu after cancelling, got %s", got)
	}
}

func TestRenamePersonFlow(t *testing.T) {
	e, st, _ := newTestEngine(t)
	pid, _ := st.CreatePerson("Ali")

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, ChangeButton)
	sendText(e, testAdminID, "Ali")
	sendText(e, testAdminID, RenamePersonButton)
	sendText(e, testAdminID, "Ali Reza")

	persons, _ := st.ListPersons()
	if len(persons) != 1 || persons[0].ID != pid || persons[0].Name != "Ali Reza" {
		t.Errorf("expected the person renamed, got %+v", persons)
	}
}

func TestEditAccountFieldFlow(t *testing.T) {
	e, st, _ := newTestEngine(t)
	pid, _ := st.CreatePerson("Ali")
	aid, _ := st.CreateAccount(models.Account{PersonID: pid, AccountName: "Salary"})

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, EditButton)
	sendText(e, testAdminID, ChangeButton)
	sendText(e, testAdminID, "Ali")
	sendText(e, testAdminID, EditAccountButton)
	sendText(e, testAdminID, "Salary")
	sendText(e, testAdminID, "🏦 Bank name")
	sendText(e, testAdminID, "Mellat")

	a, err := st.GetAccount(aid)
	if err != nil {
		t.Fatal(err)
	}
	if a.BankName != "Mellat" {
		t.Errorf("expected the bank name updated, got %q", a.BankName)
	}
	if got := e.Session(testAdminID).Step; got != models.StepMainMenu {
		t.Errorf("expected main menu after the update, got %s", got)
	}
}

func TestPaginationAcrossPersonList(t *testing.T) {
	e, st, svc := newTestEngine(t)
	for i := 0; i < 25; i++ {
		if _, err := st.CreatePerson(strings.Repeat("x", i+1)); err != nil {
			t.Fatal(err)
		}
	}

	sendText(e, testAdminID, "/start")
	svc.Reset()
	sendText(e, testAdminID, ViewButton)

	msg := lastMessage(t, svc)
	if !keyboardContains(msg.Keyboard, keyboard.NextPageButton) {
		t.Error("expected a next page control on the first page")
	}
	if keyboardContains(msg.Keyboard, keyboard.PrevPageButton) {
		t.Error("did not expect a previous page control on the first page")
	}

	svc.Reset()
	sendText(e, testAdminID, keyboard.NextPageButton)
	if e.Session(testAdminID).Page != 1 {
		t.Errorf("expected page 1, got %d", e.Session(testAdminID).Page)
	}
	msg = lastMessage(t, svc)
	if !keyboardContains(msg.Keyboard, keyboard.PrevPageButton) {
		t.Error("expected a previous page control on page 1")
	}

	// Selecting a person resets the cursor for the next listing step.
	sendText(e, testAdminID, strings.Repeat("x", 15))
	if e.Session(testAdminID).Page != 0 {
		t.Errorf("expected the cursor reset on step change, got %d", e.Session(testAdminID).Page)
	}
}

func TestPageCursorStaysOnLastPage(t *testing.T) {
	e, st, svc := newTestEngine(t)
	for i := 0; i < 25; i++ {
		if _, err := st.CreatePerson(strings.Repeat("x", i+1)); err != nil {
			t.Fatal(err)
		}
	}

	sendText(e, testAdminID, "/start")
	sendText(e, testAdminID, ViewButton)

	// The last page is 2. Typing the next-page label past it must not walk
	// the cursor into empty pages.
	for i := 0; i < 4; i++ {
		sendText(e, testAdminID, keyboard.NextPageButton)
	}
	if got := e.Session(testAdminID).Page; got != 2 {
		t.Fatalf("expected the cursor pinned to the last page, got %d", got)
	}
	msg := lastMessage(t, svc)
	if keyboardContains(msg.Keyboard, keyboard.NextPageButton) {
		t.Error("did not expect a next page control on the last page")
	}
	if !keyboardContains(msg.Keyboard, keyboard.PrevPageButton) {
		t.Error("expected a previous page control on the last page")
	}

	// The last page's labels still resolve.
	sendText(e, testAdminID, strings.Repeat("x", 25))
	if got := e.Session(testAdminID).Step; got != models.StepViewPersonItems {
		t.Errorf("expected the selection to land on the item listing, got %s", got)
	}
}

func TestRunHandlesSameUserEventsInArrivalOrder(t *testing.T) {
	e, st, svc := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	// The whole add flow only completes when every reply is applied to the
	// step the previous reply led to.
	script := []string{
		"/start", EditButton, AddButton, NewPersonButton, "Ali",
		AccountButton, "Salary",
	}
	for _, text := range script {
		svc.Inject(models.Event{UserID: testAdminID, FirstName: "Tester", Kind: models.EventText, Text: text})
	}
	for i := 0; i < 5; i++ {
		svc.Inject(models.Event{UserID: testAdminID, Kind: models.EventText, Text: keyboard.SkipButton})
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		persons, err := st.ListPersons()
		if err != nil {
			t.Fatal(err)
		}
		if len(persons) == 1 {
			accounts, err := st.ListAccounts(persons[0].ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(accounts) == 1 && accounts[0].AccountName == "Salary" {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("the queued replies were not applied in order; persons=%+v", persons)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSendFailureKeepsSessionUsable(t *testing.T) {
	e, _, svc := newTestEngine(t)
	svc.SetSendError(errors.New("telegram unreachable"))

	walkToAccountCard(e, "Ali")
	if got := e.Session(testAdminID).Step; got != models.StepMainMenu {
		t.Errorf("expected fallback to the main menu while sends fail, got %s", got)
	}
	if sent := svc.Sent(); len(sent) != 0 {
		t.Errorf("expected no message delivered, got %+v", sent)
	}

	// Once the transport recovers the dialogue picks up from the menu.
	svc.SetSendError(nil)
	sendText(e, testAdminID, "/start")
	if msg := lastMessage(t, svc); !strings.Contains(msg.Body, "Main menu") {
		t.Errorf("expected the main menu prompt after recovery, got %q", msg.Body)
	}
}

func keyboardContains(kb models.Keyboard, label string) bool {
	for _, row := range kb {
		for _, b := range row {
			if b == label {
				return true
			}
		}
	}
	return false
}
