package commands

import (
	"github.com/colonyops/workplan/internal/core/mirror"
	"github.com/colonyops/workplan/internal/printer"
	"github.com/colonyops/workplan/internal/workplan"
)

type artifactView struct {
	Name     string         `json:"name,omitempty"`
	Path     string         `json:"path,omitempty"`
	Fallback bool           `json:"fallback,omitempty"`
	Mirror   mirror.Outcome `json:"mirror"`
	Error    string         `json:"error,omitempty"`
}

type annexView struct {
	Name    string `json:"name"`
	Saved   bool   `json:"saved"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

type resultView struct {
	SubmissionID string       `json:"submission_id"`
	OK           bool         `json:"ok"`
	Report       artifactView `json:"report"`
	Log          artifactView `json:"log"`
	Annexes      []annexView  `json:"annexes"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newResultView(res workplan.Result) resultView {
	v := resultView{
		SubmissionID: res.SubmissionID,
		OK:           res.Err() == nil,
		Report: artifactView{
			Name:     res.ReportName,
			Path:     res.ReportPath,
			Fallback: res.ReportFallback,
			Mirror:   res.ReportMirror,
			Error:    errString(res.ReportErr),
		},
		Log: artifactView{
			Path:     res.Log.Path,
			Fallback: res.Log.Fallback,
			Mirror:   res.Log.Mirror,
			Error:    errString(res.LogErr),
		},
		Annexes: make([]annexView, 0, len(res.Annexes)),
	}
	for _, a := range res.Annexes {
		v.Annexes = append(v.Annexes, annexView{Name: a.Name, Saved: a.Saved, Path: a.StoredPath, Message: a.Message})
	}
	return v
}

func printOutcome(p *printer.Printer, o mirror.Outcome) {
	if o.Message == "" {
		return
	}
	if o.OK {
		p.Successf("%s", o.Message)
	} else {
		p.Warnf("Remote sync skipped: %s", o.Message)
	}
}

// printResult reports every outcome of a submission.
func printResult(p *printer.Printer, res workplan.Result) {
	if len(res.Annexes) > 0 {
		p.Section("Annexes")
		for _, a := range res.Annexes {
			if a.Saved {
				p.Successf("%s: %s", a.Name, a.Message)
			} else {
				p.Errorf("%s: %s", a.Name, a.Message)
			}
		}
		p.Printf("")
	}

	p.Section("Report")
	if res.ReportErr != nil {
		p.Errorf("%v", res.ReportErr)
	} else {
		p.Success("Report saved", res.ReportPath)
		if res.ReportFallback {
			p.Warnf("Saved to a temporary directory; copy it before the session ends")
		}
		printOutcome(p, res.ReportMirror)
	}
	p.Printf("")

	p.Section("Master log")
	if res.LogErr != nil {
		p.Errorf("%v", res.LogErr)
	} else {
		p.Success("Submission logged", res.Log.Path)
		if res.Log.Fallback {
			p.Warnf("Log written to a temporary directory")
		}
		printOutcome(p, res.Log.Mirror)
	}
}
