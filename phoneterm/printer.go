package main

import (
	"fmt"
	"io"

	"rhystmorgan/phoneterm/internal/config"
	"rhystmorgan/phoneterm/internal/contactbook"
	"rhystmorgan/phoneterm/internal/theme"
)

// printNotifier shows store notifications on the command's output.
type printNotifier struct {
	out    io.Writer
	styles theme.Styles
}

func printTo(out io.Writer) notifierFunc {
	return func(cfg *config.Config) contactbook.Notifier {
		return &printNotifier{out: out, styles: stylesFor(cfg)}
	}
}

func stylesFor(cfg *config.Config) theme.Styles {
	return theme.NewStyles(theme.ByName(cfg.Theme))
}

func (p *printNotifier) Success(message string) {
	fmt.Fprintln(p.out, p.styles.Success.Render("✓ "+message))
}

func (p *printNotifier) Failure(message string) {
	fmt.Fprintln(p.out, p.styles.Failure.Render("✗ "+message))
}

func (p *printNotifier) Info(message string) {
	fmt.Fprintln(p.out, p.styles.Info.Render("ℹ "+message))
}
