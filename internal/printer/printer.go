// Package printer writes styled, human-facing command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/workplan/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to w.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(style lipgloss.Style, icon, format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle, "✔", format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.InfoStyle, "•", format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarnStyle, "!", format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle, "✘", format, args...)
}

// Success prints a headline followed by a muted detail line.
func (p *Printer) Success(title, detail string) {
	p.line(styles.SuccessStyle, "✔", "%s", title)
	if detail != "" {
		_, _ = fmt.Fprintln(p.w, "  "+styles.MutedStyle.Render(detail))
	}
}

// Section prints a bold header.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.w, styles.HeaderStyle.Render(title))
}
