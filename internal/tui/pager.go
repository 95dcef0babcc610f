package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/workplan/internal/core/report"
	"github.com/colonyops/workplan/internal/core/styles"
	model "github.com/colonyops/workplan/internal/core/workplan"
)

const (
	pagerMaxWidth = 100
	pagerChrome   = 4
)

// Pager shows a rendered Markdown report in a scrollable viewport.
type Pager struct {
	title    string
	markdown string
	viewport viewport.Model
	ready    bool
}

// NewPager returns a pager for markdown.
func NewPager(title, markdown string) Pager {
	return Pager{title: title, markdown: markdown}
}

// RenderMarkdown renders markdown for the terminal at width columns. When
// glamour fails the raw text is returned.
func RenderMarkdown(markdown string, width int) string {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		return markdown
	}
	return strings.TrimSpace(rendered)
}

func (p Pager) Init() tea.Cmd { return nil }

func (p Pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := min(msg.Width, pagerMaxWidth)
		height := max(msg.Height-pagerChrome, 1)
		if !p.ready {
			p.viewport = viewport.New(width, height)
			p.ready = true
		} else {
			p.viewport.Width = width
			p.viewport.Height = height
		}
		p.viewport.SetContent(RenderMarkdown(p.markdown, width-2))
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return p, tea.Quit
		case "g", "home":
			p.viewport.GotoTop()
			return p, nil
		case "G", "end":
			p.viewport.GotoBottom()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p Pager) View() string {
	if !p.ready {
		return "Loading...\n"
	}

	header := styles.HeaderStyle.Render(p.title)
	footer := styles.HelpStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll • g/G top/bottom • q back", p.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, header, p.viewport.View(), footer)
}

// ShowPreview runs the pager full screen until the user leaves it.
func ShowPreview(ctx context.Context, title, markdown string) error {
	prog := tea.NewProgram(NewPager(title, markdown), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run preview: %w", err)
	}
	return nil
}

// ReportPreview assembles tree as Markdown and shows it in the pager.
func ReportPreview(ctx context.Context, tree *model.AnswerTree) error {
	md := report.Markdown(report.Assemble(tree))
	return ShowPreview(ctx, report.Title, string(md))
}
