package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/riskcsv-cli/internal/ai"
	"github.com/KaramelBytes/riskcsv-cli/internal/session"
)

var classColors = map[string]lipgloss.Color{
	"no-risk":      lipgloss.Color("#8BC34A"),
	"low-risk":     lipgloss.Color("#2196F3"),
	"medium-risk":  lipgloss.Color("#FFC107"),
	"high-risk":    lipgloss.Color("#e53935"),
	"unknown-risk": lipgloss.Color("#9E9E9E"),
}

type resultRow struct {
	Index         int      `json:"index"`
	Label         string   `json:"label"`
	Class         string   `json:"class"`
	Probabilities []string `json:"probabilities"`
}

type analysisReport struct {
	File    string      `json:"file"`
	Session string      `json:"session"`
	Engine  string      `json:"engine"`
	Model   string      `json:"model,omitempty"`
	Fields  []string    `json:"fields"`
	Results []resultRow `json:"results"`
}

func buildReport(sess *session.Session, engine string, o session.Outcome) *analysisReport {
	rep := &analysisReport{
		File:    sess.FileName(),
		Session: sess.ID(),
		Engine:  engine,
		Fields:  []string{},
		Results: []resultRow{},
	}
	if req, err := sess.Request(); err == nil {
		rep.Fields = req.InputData[0].Fields
	}
	if o.Response != nil {
		rep.Model = o.Response.Model
	}
	res := o.Results
	for i := 0; i < res.Len(); i++ {
		label := res.Label(i)
		row := resultRow{Index: i + 1, Label: label, Class: ai.LabelClass(label), Probabilities: []string{}}
		for k := 0; k < res.ProbabilityCount(i); k++ {
			row.Probabilities = append(row.Probabilities, res.ProbabilityText(i, k))
		}
		rep.Results = append(rep.Results, row)
	}
	return rep
}

// renderReport writes a fixed-width result table. Colours are only emitted
// when w is a terminal that supports them.
func renderReport(w io.Writer, rep *analysisReport) {
	r := lipgloss.NewRenderer(w)
	head := r.NewStyle().Bold(true)
	muted := r.NewStyle().Faint(true)

	probCols := 1
	for _, row := range rep.Results {
		if n := len(row.Probabilities); n > probCols {
			probCols = n
		}
	}

	cols := []string{pad("#", 4), pad("Prediction", 14)}
	for k := 0; k < probCols; k++ {
		name := "Probability"
		if probCols > 1 {
			name = fmt.Sprintf("Probability %d", k+1)
		}
		cols = append(cols, pad(name, 15))
	}
	fmt.Fprintln(w, head.Render(strings.Join(cols, "")))

	for _, row := range rep.Results {
		labelStyle := r.NewStyle().Foreground(classColors[row.Class])
		line := pad(fmt.Sprintf("%d", row.Index), 4) + labelStyle.Render(pad(row.Label, 14))
		for k := 0; k < probCols; k++ {
			p := ai.ZeroPercent
			if k < len(row.Probabilities) {
				p = row.Probabilities[k]
			}
			line += pad(p, 15)
		}
		fmt.Fprintln(w, line)
	}
	if rep.Model != "" {
		fmt.Fprintln(w, muted.Render("model: "+rep.Model))
	}
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s + " "
}

// printAdvisory writes the session message, green for success and red for errors.
func printAdvisory(w io.Writer, a session.Advisory) {
	if a.Text == "" {
		return
	}
	r := lipgloss.NewRenderer(w)
	switch a.Kind {
	case session.AdvisoryError:
		fmt.Fprintln(w, r.NewStyle().Foreground(classColors["high-risk"]).Render("✗ "+a.Text))
	default:
		fmt.Fprintln(w, r.NewStyle().Foreground(classColors["no-risk"]).Render("✓ "+a.Text))
	}
}

// reportFailure prints the session's error advisory, if any, and marks err
// as already shown.
func reportFailure(w io.Writer, sess *session.Session, err error) error {
	a := sess.Advisory()
	if a.Kind != session.AdvisoryError {
		return err
	}
	printAdvisory(w, a)
	return reported(err)
}
