package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rhystmorgan/phoneterm/internal/config"
	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/storage"
	"rhystmorgan/phoneterm/internal/views"
	"rhystmorgan/phoneterm/internal/watch"
)

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "phoneterm",
		Short: "A terminal phonebook",
		Long: `phoneterm keeps a small phonebook of names and numbers.

Run without arguments to open the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file path (default <data-dir>/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Data directory (default ~/.phoneterm)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newListCmd(flags),
		newAddCmd(flags),
		newRemoveCmd(flags),
		newDefaultsCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newHistoryCmd(flags),
	)
	return cmd
}

func runTUI(ctx context.Context, flags *rootFlags) error {
	toasts := views.NewToastQueue()
	rt, err := flags.open(func(*config.Config) contactbook.Notifier { return toasts })
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var changes <-chan struct{}
	if fb, ok := rt.backend.(*storage.FileBackend); ok && rt.cfg.Watch {
		watcher, err := watch.New(fb.Path(storage.ContactsKey), watch.WithLogger(rt.logger.Named("watch")))
		if err != nil {
			rt.logger.Warn("live reload disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			changes = watcher.Events()
			g.Go(func() error {
				return watcher.Run(gctx)
			})
		}
	}

	model := views.NewAppModel(gctx, rt.store, toasts, views.Options{
		Styles:   stylesFor(rt.cfg),
		ToastTTL: rt.cfg.ToastTTL,
		Changes:  changes,
		Logger:   rt.logger.Named("views"),
	})

	g.Go(func() error {
		defer cancel()
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
