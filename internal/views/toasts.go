package views

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/theme"
)

// ToastKind selects the toast colour.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastFailure
	ToastInfo
)

// Toast is one notification on screen.
type Toast struct {
	ID        int
	Kind      ToastKind
	Message   string
	CreatedAt time.Time
}

// ToastQueue collects store notifications from whichever goroutine ran the
// operation until the model drains them on its next update.
type ToastQueue struct {
	mu      sync.Mutex
	nextID  int
	pending []Toast
	now     func() time.Time
}

var _ contactbook.Notifier = (*ToastQueue)(nil)

// NewToastQueue returns an empty queue.
func NewToastQueue() *ToastQueue {
	return &ToastQueue{now: time.Now}
}

func (q *ToastQueue) Success(message string) { q.push(ToastSuccess, message) }
func (q *ToastQueue) Failure(message string) { q.push(ToastFailure, message) }
func (q *ToastQueue) Info(message string)    { q.push(ToastInfo, message) }

func (q *ToastQueue) push(kind ToastKind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending = append(q.pending, Toast{
		ID:        q.nextID,
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
	})
}

// Drain returns and clears the pending toasts.
func (q *ToastQueue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.pending
	q.pending = nil
	return drained
}

type toastExpiredMsg struct {
	id int
}

func expireToast(id int, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func removeToast(toasts []Toast, id int) []Toast {
	kept := make([]Toast, 0, len(toasts))
	for _, toast := range toasts {
		if toast.ID != id {
			kept = append(kept, toast)
		}
	}
	return kept
}

func renderToasts(styles theme.Styles, toasts []Toast) string {
	if len(toasts) == 0 {
		return ""
	}

	lines := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		switch toast.Kind {
		case ToastSuccess:
			lines = append(lines, styles.Success.Render("✓ "+toast.Message))
		case ToastFailure:
			lines = append(lines, styles.Failure.Render("✗ "+toast.Message))
		default:
			lines = append(lines, styles.Info.Render("ℹ "+toast.Message))
		}
	}
	return strings.Join(lines, "\n")
}
