// Package report renders simulation and fit results for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/abhisek/ktsim/internal/hmm"
	"github.com/abhisek/ktsim/internal/pipeline"
	"github.com/abhisek/ktsim/internal/sim"
	"github.com/abhisek/ktsim/internal/store"
	"github.com/abhisek/ktsim/internal/ui/theme"
)

// stateNote is printed under every fitted model.
const stateNote = "Hidden states are unlabeled; either row may be the mastered state."

func field(label string, value any) string {
	return theme.Label.Render(fmt.Sprintf("%-16s", label)) + theme.Value.Render(fmt.Sprint(value))
}

// Matrix renders m inside a card with row and column labels.
func Matrix(title string, m mat.Matrix, rowPrefix string, cols []string) string {
	r, c := m.Dims()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s", ""))
	for j := range c {
		name := fmt.Sprintf("%d", j)
		if j < len(cols) {
			name = cols[j]
		}
		b.WriteString(theme.Header.Render(fmt.Sprintf("%10s", name)))
	}
	for i := range r {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render(fmt.Sprintf("%-10s", fmt.Sprintf("%s%d", rowPrefix, i))))
		for j := range c {
			b.WriteString(theme.Value.Render(fmt.Sprintf("%10.4f", m.At(i, j))))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(title),
		theme.Card.Render(b.String()),
	)
}

// Model renders the fitted transition and emission matrices with diagnostics.
func Model(m *hmm.Model) string {
	converged := theme.Good.Render("yes")
	if !m.Converged {
		converged = theme.Bad.Render("no")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		Matrix("Transition", m.Transition, "state ", stateLabels(m.States())),
		Matrix("Emission", m.Emission, "state ", []string{"incorrect", "correct"}),
		field("start", formatFloats(m.Start)),
		field("log-likelihood", fmt.Sprintf("%.4f", m.LogLikelihood)),
		field("iterations", m.Iterations),
		theme.Label.Render(fmt.Sprintf("%-16s", "converged"))+converged,
		theme.Hint.Render(stateNote),
	)
}

// Simulation summarizes a simulation run.
func Simulation(res *sim.Result) string {
	lines := []string{
		theme.Title.Render("Simulation"),
		field("students", res.NumStudents()),
		field("questions", res.NumQuestions()),
		field("concepts", res.NumConcepts()),
		field("mean correct", fmt.Sprintf("%.4f", res.MeanCorrect())),
		field("transitions", len(res.Transitions)),
		field("mean mastered", fmt.Sprintf("%.2f / %d", res.MeanMastered(), res.NumConcepts())),
		"",
		theme.Header.Render(fmt.Sprintf("%-8s %10s %10s %12s", "concept", "base diff", "questions", "mastered")),
	}
	for _, c := range res.Curriculum.Concepts {
		lines = append(lines, fmt.Sprintf("%-8d %10.4f %10d %12.2f",
			c.ID, c.BaseDifficulty, len(res.Curriculum.QuestionsFor(c.ID)), res.MasteryRate(c.ID)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Fit renders a full pipeline result.
func Fit(res *pipeline.Result) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		Simulation(res.Simulation),
		"",
		theme.Subtitle.Render("Sequences"),
		field("segments", len(res.Input.Lengths)),
		field("observations", len(res.Input.Observations)),
		field("elapsed", res.Elapsed.Round(time.Millisecond)),
		"",
		Model(res.Model),
	)
}

// Runs renders a table of stored runs.
func Runs(runs []store.Run) string {
	if len(runs) == 0 {
		return theme.Hint.Render("No runs recorded yet.")
	}
	lines := []string{
		theme.Header.Render(fmt.Sprintf("%-5s  %-36s  %-20s  %8s  %6s  %14s  %5s",
			"seq", "id", "created", "students", "qs", "log-lik", "conv")),
	}
	for _, r := range runs {
		conv := theme.Good.Render("yes")
		if !r.Converged {
			conv = theme.Bad.Render("no")
		}
		lines = append(lines, fmt.Sprintf("%-5d  ", r.Sequence)+
			theme.Highlight.Render(fmt.Sprintf("%-36s", r.ID))+
			fmt.Sprintf("  %-20s  %8d  %6d  %14.4f  ",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Students, r.Questions, r.LogLikelihood)+conv)
	}
	lines = append(lines, "", fmt.Sprintf("%d runs", len(runs)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run renders a single stored run.
func Run(r *store.Run) (string, error) {
	m, err := hmm.NewModel(r.Start, r.Transition, r.Emission)
	if err != nil {
		return "", fmt.Errorf("rebuild model: %w", err)
	}
	m.LogLikelihood = r.LogLikelihood
	m.Iterations = r.Iterations
	m.Converged = r.Converged

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Run "+r.ID),
		field("sequence", r.Sequence),
		field("created", r.CreatedAt.Format("2006-01-02 15:04:05 MST")),
		field("students", r.Students),
		field("questions", r.Questions),
		field("concepts", r.Concepts),
		field("segments", r.Segments),
		field("observations", r.Observations),
		field("mean correct", fmt.Sprintf("%.4f", r.MeanCorrect)),
		field("config", string(r.Config)),
		"",
		Model(m),
	), nil
}

func stateLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("state %d", i)
	}
	return out
}

func formatFloats(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%.4f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
