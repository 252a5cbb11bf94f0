// Package dialog implements the conversation state machine: the step
// registry, the dialogue engine that dispatches inbound events, and the
// input validators.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/daftarche/bankbook/internal/keyboard"
	"github.com/daftarche/bankbook/internal/messaging"
	"github.com/daftarche/bankbook/internal/models"
	"github.com/daftarche/bankbook/internal/session"
	"github.com/daftarche/bankbook/internal/store"
)

// Listing layout shared by every paginated picker.
const (
	// PageSize is the number of item buttons per page.
	PageSize = 10
	// Columns is the number of item buttons per row.
	Columns = 2
)

const msgConnectivity = "⚠️ Something went wrong, please try again.\nReturning to the main menu."

// eventQueueSize bounds the per-user backlog of unprocessed events.
const eventQueueSize = 64

// Opts holds configuration options for the dialogue engine.
type Opts struct {
	AdminID int64
}

// Option defines a configuration option for the dialogue engine.
type Option func(*Opts)

// WithAdminID sets the privileged admin user id.
func WithAdminID(id int64) Option {
	return func(o *Opts) { o.AdminID = id }
}

// Engine drives the dialogue. It owns the session store, consumes events
// from the messaging service, and executes the step registry against the
// repository.
type Engine struct {
	store    store.Store
	svc      messaging.Service
	sessions *session.Store
	adminID  int64

	// Events from one user are processed in arrival order, one at a time.
	// Different users proceed concurrently.
	mu     sync.Mutex
	locks  map[int64]*sync.Mutex
	queues map[int64]chan models.Event
}

// NewEngine creates a dialogue engine based on provided options.
func NewEngine(st store.Store, svc messaging.Service, opts ...Option) *Engine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		store:    st,
		svc:      svc,
		sessions: session.NewStore(models.StepMainMenu),
		adminID:  cfg.AdminID,
		locks:    make(map[int64]*sync.Mutex),
		queues:   make(map[int64]chan models.Event),
	}
}

// Run consumes events until the context is cancelled or the event channel
// closes. Each event goes to its user's queue, so two rapid messages from
// the same user are always handled in arrival order.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("dialogue engine running", "adminID", e.adminID)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.svc.Events():
			if !ok {
				return
			}
			e.dispatch(ctx, ev)
		}
	}
}

// dispatch appends the event to the user's queue, starting the queue's
// worker on first contact.
func (e *Engine) dispatch(ctx context.Context, ev models.Event) {
	e.mu.Lock()
	q, ok := e.queues[ev.UserID]
	if !ok {
		q = make(chan models.Event, eventQueueSize)
		e.queues[ev.UserID] = q
		go e.drainQueue(ctx, q)
	}
	e.mu.Unlock()
	select {
	case q <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) drainQueue(ctx context.Context, q <-chan models.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q:
			e.HandleEvent(ctx, ev)
		}
	}
}

func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// HandleEvent processes one inbound event. Any unhandled error is reported
// to the user as a transient failure and the session falls back to the main
// menu; the event loop itself never dies.
func (e *Engine) HandleEvent(ctx context.Context, ev models.Event) {
	l := e.userLock(ev.UserID)
	l.Lock()
	defer l.Unlock()

	if err := e.process(ctx, ev); err != nil {
		slog.Error("event handling failed", "error", err, "userID", ev.UserID)
		s := e.sessions.Reset(ev.UserID)
		if err := e.svc.SendMessage(ctx, ev.UserID, msgConnectivity); err != nil {
			slog.Error("failed to send fallback message", "error", err, "userID", ev.UserID)
			return
		}
		if err := e.promptStep(ctx, s); err != nil {
			slog.Error("failed to prompt main menu", "error", err, "userID", ev.UserID)
		}
	}
}

func (e *Engine) process(ctx context.Context, ev models.Event) error {
	authorized, err := e.authorize(ctx, ev)
	if err != nil {
		return err
	}
	if !authorized {
		return nil
	}

	text := strings.TrimSpace(ev.Text)

	// Home and the cancel commands reset unconditionally, from any step.
	if ev.Kind == models.EventText &&
		(text == "/start" || text == "/cancel" || text == keyboard.HomeButton) {
		return e.goHome(ctx, ev)
	}

	s := e.sessions.Get(ev.UserID)
	def, ok := steps[s.Step]
	if !ok {
		slog.Error("session in unknown step", "step", s.Step, "userID", ev.UserID)
		s = e.sessions.Reset(ev.UserID)
		return e.promptStep(ctx, s)
	}

	// Back leaves the current step for its registered predecessor and
	// discards the field the current step collects. Earlier fields of the
	// flow stay intact. The root has no predecessor; its handler treats
	// the label as any other unrecognized input.
	if ev.Kind == models.EventText && text == keyboard.BackButton && def.back != "" {
		if def.discard != nil {
			def.discard(s)
		}
		return e.gotoStep(ctx, s, def.back)
	}

	return def.handle(ctx, e, s, ev)
}

// authorize checks the user against the users table. Unauthorized contacts
// get a message with their id to forward to the admin, and the admin is
// notified of the request.
func (e *Engine) authorize(ctx context.Context, ev models.Event) (bool, error) {
	if e.isAdmin(ev.UserID) {
		return true, nil
	}
	ok, err := e.store.AuthorizeUser(ev.UserID)
	if err != nil {
		return false, fmt.Errorf("authorization check failed: %w", err)
	}
	if ok {
		return true, nil
	}

	slog.Info("unauthorized contact", "userID", ev.UserID, "name", ev.FirstName)
	msg := fmt.Sprintf("⛔️ You are not authorized to use this bot.\nSend this id to the admin to request access: %d", ev.UserID)
	if err := e.svc.SendMessage(ctx, ev.UserID, msg); err != nil {
		slog.Error("failed to message unauthorized user", "error", err, "userID", ev.UserID)
	}
	if e.adminID != 0 {
		name := ev.FirstName
		if name == "" {
			name = "unknown"
		}
		note := fmt.Sprintf("🔔 Access request from %s (id %d).", name, ev.UserID)
		if err := e.svc.SendMessage(ctx, e.adminID, note); err != nil {
			slog.Error("failed to notify admin of access request", "error", err, "userID", ev.UserID)
		}
	}
	return false, nil
}

func (e *Engine) isAdmin(userID int64) bool {
	return e.adminID != 0 && userID == e.adminID
}

// goHome drops the draft, refreshes the user's stored display name and shows
// the main menu.
func (e *Engine) goHome(ctx context.Context, ev models.Event) error {
	s := e.sessions.Reset(ev.UserID)
	if ev.FirstName != "" {
		if err := e.store.UpsertUser(models.User{ID: ev.UserID, FirstName: ev.FirstName}); err != nil {
			return fmt.Errorf("failed to refresh user name: %w", err)
		}
	}
	return e.promptStep(ctx, s)
}

// gotoStep moves the session to step, resets the pagination cursor and shows
// the step's prompt.
func (e *Engine) gotoStep(ctx context.Context, s *session.Session, step models.Step) error {
	s.Step = step
	s.Page = 0
	return e.promptStep(ctx, s)
}

// promptStep renders the prompt of the session's current step.
func (e *Engine) promptStep(ctx context.Context, s *session.Session) error {
	def, ok := steps[s.Step]
	if !ok {
		return fmt.Errorf("no step definition for %s", s.Step)
	}
	return def.prompt(ctx, e, s)
}

// handlePaging consumes the previous/next page buttons of listing steps.
// It reports whether the event was a paging control.
func (e *Engine) handlePaging(ctx context.Context, s *session.Session, text string) (bool, error) {
	switch text {
	case keyboard.NextPageButton:
		s.Page++
		return true, e.promptStep(ctx, s)
	case keyboard.PrevPageButton:
		if s.Page > 0 {
			s.Page--
		}
		return true, e.promptStep(ctx, s)
	}
	return false, nil
}

// clampPage pulls the pagination cursor back onto the last page holding any
// of the n labels. Typing a page button label the keyboard no longer offers
// would otherwise walk the cursor into empty pages.
func clampPage(s *session.Session, n int) {
	if n == 0 {
		s.Page = 0
		return
	}
	if last := (n - 1) / PageSize; s.Page > last {
		s.Page = last
	}
}

// finishFlow ends the current flow: the draft is dropped and the user is
// returned to the main menu.
func (e *Engine) finishFlow(ctx context.Context, s *session.Session) error {
	ns := e.sessions.Reset(s.UserID)
	return e.promptStep(ctx, ns)
}

// invalidInput reports an unrecognized reply and re-shows the current step.
func (e *Engine) invalidInput(ctx context.Context, s *session.Session) error {
	if err := e.svc.SendMessage(ctx, s.UserID, "Please use the menu buttons."); err != nil {
		return err
	}
	return e.promptStep(ctx, s)
}

// Session returns the user's session. Exposed for tests.
func (e *Engine) Session(userID int64) *session.Session {
	return e.sessions.Get(userID)
}

// withHome appends the mandatory home row to a hand-built keyboard.
func withHome(rows ...[]string) models.Keyboard {
	return append(models.Keyboard(rows), []string{keyboard.HomeButton})
}
