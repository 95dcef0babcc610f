package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/workplan/pkg/executil"
)

// Format is a report output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
)

// ErrDOCXDependencyMissing indicates the pandoc binary needed for DOCX output
// is unavailable.
var ErrDOCXDependencyMissing = errors.New("docx export requires pandoc")

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatHTML, FormatDOCX:
		return true
	default:
		return false
	}
}

// Ext returns the file extension without a leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatDOCX:
		return "docx"
	default:
		return "md"
	}
}

// MimeType returns the media type of rendered output.
func (f Format) MimeType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Renderer serializes outlines into artifacts.
type Renderer struct {
	exec       executil.Executor
	pandocPath string
}

// NewRenderer returns a Renderer. pandocPath is only used for DOCX output.
func NewRenderer(exec executil.Executor, pandocPath string) *Renderer {
	if pandocPath == "" {
		pandocPath = "pandoc"
	}
	return &Renderer{exec: exec, pandocPath: pandocPath}
}

// Render serializes doc in the given format.
func (r *Renderer) Render(ctx context.Context, doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return Markdown(doc), nil
	case FormatHTML:
		return HTML(doc)
	case FormatDOCX:
		return r.docx(ctx, doc)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// docx renders HTML and converts it with pandoc through temporary files.
func (r *Renderer) docx(ctx context.Context, doc Document) ([]byte, error) {
	if _, err := r.exec.LookPath(r.pandocPath); err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrDOCXDependencyMissing, r.pandocPath)
	}

	page, err := HTML(doc)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "workplan-docx-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "report.html")
	out := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(in, page, 0o600); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	if _, err := r.exec.Run(ctx, r.pandocPath, "-f", "html", "-t", "docx", "--standalone", "-o", out, in); err != nil {
		return nil, fmt.Errorf("pandoc: %w", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return data, nil
}
