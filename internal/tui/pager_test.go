package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPager(t *testing.T) {
	p := NewPager("Preview", "## Cover\n\nDivision: Research\n")
	assert.Equal(t, "Loading...\n", p.View())

	model, _ := p.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	p = model.(Pager)
	assert.Contains(t, p.View(), "Preview")
	assert.Contains(t, p.View(), "Research")

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Title\n\nparagraph", 60)
	assert.Contains(t, out, "paragraph")
}
