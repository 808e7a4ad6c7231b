package views

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/phoneterm/internal/contactbook"
)

type operation int

const (
	opAdd operation = iota
	opRemove
	opDefaults
)

type loadedMsg struct {
	err error
}

type storeChangedMsg struct {
	op  operation
	err error
}

// externalChangeMsg reports that another process rewrote the contacts file.
type externalChangeMsg struct{}

type reloadedMsg struct {
	changed bool
	err     error
}

func loadCmd(ctx context.Context, store *contactbook.Store) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: store.Load(ctx)}
	}
}

func addCmd(ctx context.Context, store *contactbook.Store, name, number string) tea.Cmd {
	return func() tea.Msg {
		_, err := store.AddContact(ctx, name, number)
		return storeChangedMsg{op: opAdd, err: err}
	}
}

func removeCmd(ctx context.Context, store *contactbook.Store, id string) tea.Cmd {
	return func() tea.Msg {
		return storeChangedMsg{op: opRemove, err: store.RemoveContact(ctx, id)}
	}
}

func defaultsCmd(ctx context.Context, store *contactbook.Store) tea.Cmd {
	return func() tea.Msg {
		return storeChangedMsg{op: opDefaults, err: store.LoadDefaults(ctx)}
	}
}

func reloadCmd(ctx context.Context, store *contactbook.Store) tea.Cmd {
	return func() tea.Msg {
		changed, err := store.Reload(ctx)
		return reloadedMsg{changed: changed, err: err}
	}
}

// waitForChange blocks on the watcher channel. It yields nothing once the
// channel is closed.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return externalChangeMsg{}
	}
}
