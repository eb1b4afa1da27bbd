// Package display renders engine snapshots and the strategy chart for a
// terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/game"
	"github.com/lox/bjtrainer/internal/strategy"
)

// Styles contains all styling for rendered output
type Styles struct {
	Header    lipgloss.Style
	RedCard   lipgloss.Style
	BlackCard lipgloss.Style
	Hidden    lipgloss.Style
	Active    lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style

	// Chart cells by action code
	Cells map[string]lipgloss.Style
}

// Renderer formats trainer output for one writer
type Renderer struct {
	r      *lipgloss.Renderer
	styles Styles
}

// New creates a renderer for w. Without color every style renders as
// plain text.
func New(w io.Writer, color bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{r: r, styles: newStyles(r)}
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		RedCard: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		BlackCard: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		Hidden: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Active: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Cells: map[string]lipgloss.Style{
			"H":  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
			"S":  r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")),
			"D":  r.NewStyle().Foreground(lipgloss.Color("#96CEB4")),
			"Ds": r.NewStyle().Foreground(lipgloss.Color("#04B575")),
			"P":  r.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
		},
	}
}

// Card renders a card in its suit colour
func (d *Renderer) Card(c deck.Card) string {
	if c.IsRed() {
		return d.styles.RedCard.Render(c.String())
	}
	return d.styles.BlackCard.Render(c.String())
}

func (d *Renderer) cards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = d.Card(c)
	}
	return strings.Join(parts, " ")
}

func total(t int, soft bool) string {
	if soft {
		return fmt.Sprintf("soft %d", t)
	}
	return fmt.Sprintf("%d", t)
}

// Table renders the dealer, every player hand and the bankroll
func (d *Renderer) Table(s game.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", d.styles.Header.Render(fmt.Sprintf("Round %d", s.Round)))

	dealer := d.cards(s.Dealer.Cards)
	if s.Dealer.HoleHidden {
		dealer += " " + d.styles.Hidden.Render("??")
	}
	fmt.Fprintf(&b, "Dealer: %s (%s)\n", dealer, total(s.Dealer.Total, s.Dealer.Soft))

	for i, h := range s.Hands {
		label := "Hand"
		if len(s.Hands) > 1 {
			label = fmt.Sprintf("Hand %d", i+1)
		}
		marker := "  "
		if i == s.ActiveHand {
			marker = d.styles.Active.Render("> ")
		}
		line := fmt.Sprintf("%s%s: %s (%s) bet %d", marker, label, d.cards(h.Cards), total(h.Total, h.Soft), h.Bet)
		if h.Doubled {
			line += " doubled"
		}
		if h.Result != nil {
			line += " " + d.Result(*h.Result)
		}
		fmt.Fprintf(&b, "%s\n", line)
	}

	fmt.Fprintf(&b, "%s", d.styles.Info.Render(fmt.Sprintf("Bankroll: %d  Cards left: %d", s.Bankroll, s.CardsRemaining)))
	return b.String()
}

// Result renders a hand settlement
func (d *Renderer) Result(r game.Result) string {
	text := fmt.Sprintf("%s (%+d)", r.Outcome, r.Net)
	switch {
	case r.Net > 0:
		return d.styles.Success.Render(text)
	case r.Net < 0:
		return d.styles.Error.Render(text)
	default:
		return d.styles.Warning.Render(text)
	}
}

// Feedback renders the grading of the last decision
func (d *Renderer) Feedback(fb game.Feedback) string {
	if fb.Correct {
		return d.styles.Success.Render(fb.Text())
	}
	return d.styles.Error.Render(fb.Text())
}

// CountResult renders the grading of a count guess
func (d *Renderer) CountResult(res game.CountResult) string {
	if res.Correct {
		return d.styles.Success.Render(fmt.Sprintf("Correct, the running count is %d", res.Actual))
	}
	return d.styles.Error.Render(fmt.Sprintf("Incorrect, the running count is %d", res.Actual))
}

// Reshuffle renders the notice shown when the shoe is rebuilt. Between
// rounds the count restarts at 0; mid-round it restarts from the cards on
// the table.
func (d *Renderer) Reshuffle(midRound bool) string {
	if midRound {
		return d.styles.Warning.Render("Shoe ran out, discards reshuffled. Recount the cards on the table")
	}
	return d.styles.Warning.Render("Shoe reshuffled, the count starts again at 0")
}

// Error renders an error message
func (d *Renderer) Error(err error) string {
	return d.styles.Error.Render(err.Error())
}

var sectionTitles = map[strategy.Category]string{
	strategy.Hard: "Hard totals",
	strategy.Soft: "Soft totals",
	strategy.Pair: "Pairs",
}

// Chart renders the basic strategy chart, one table per section
func (d *Renderer) Chart() string {
	headers := []string{""}
	for _, up := range strategy.Upcards {
		headers = append(headers, up)
	}

	sections := map[strategy.Category][][]string{}
	for _, row := range strategy.Chart() {
		cells := append([]string{row.Label}, row.Codes[:]...)
		sections[row.Category] = append(sections[row.Category], cells)
	}

	var out []string
	for _, cat := range []strategy.Category{strategy.Hard, strategy.Soft, strategy.Pair} {
		rows := sections[cat]
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(d.styles.Info).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				base := d.r.NewStyle().Padding(0, 1)
				if row == table.HeaderRow || col == 0 {
					return base.Bold(true)
				}
				if st, ok := d.styles.Cells[rows[row][col]]; ok {
					return st.Padding(0, 1)
				}
				return base
			})
		title := d.styles.Header.Render(sectionTitles[cat])
		out = append(out, title+"\n"+t.Render())
	}
	out = append(out, d.styles.Info.Render("H hit, S stand, D double or hit, Ds double or stand, P split"))
	return strings.Join(out, "\n\n")
}
