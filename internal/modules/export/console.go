package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/modules/screening"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6B50FF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4D4C57"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CED1"))
)

// ConsoleSink renders the top of both tables to a terminal
type ConsoleSink struct {
	out            io.Writer
	topN           int
	eliminatedTopN int
	log            zerolog.Logger
}

// NewConsoleSink creates a console sink writing to out (stdout when nil)
func NewConsoleSink(out io.Writer, topN, eliminatedTopN int, log zerolog.Logger) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{
		out:            out,
		topN:           topN,
		eliminatedTopN: eliminatedTopN,
		log:            log.With().Str("component", "console_sink").Logger(),
	}
}

// Name returns the sink name
func (c *ConsoleSink) Name() string {
	return "console"
}

// Publish prints the ranked kept and eliminated tables
func (c *ConsoleSink) Publish(_ context.Context, r *screening.Report) error {
	kept := RankKept(r.Kept, c.topN)
	keptRows := make([][]string, len(kept))
	for i, k := range kept {
		keptRows[i] = keptRow(k)
	}

	eliminated := RankEliminated(r.Eliminated, c.eliminatedTopN)
	eliminatedRows := make([][]string, len(eliminated))
	for i, e := range eliminated {
		eliminatedRows[i] = eliminatedRow(e)
	}

	_, err := fmt.Fprintf(c.out, "%s\n%s\n\n%s\n%s\n",
		titleStyle.Render(fmt.Sprintf("Kept (top %d of %d)", len(kept), len(r.Kept))),
		renderTable(keptHeader, keptRows),
		titleStyle.Render(fmt.Sprintf("Eliminated (top %d of %d)", len(eliminated), len(r.Eliminated))),
		renderTable(eliminatedHeader, eliminatedRows),
	)
	if err != nil {
		return fmt.Errorf("failed to write console report: %w", err)
	}

	c.log.Info().
		Str("run_id", r.RunID).
		Msgf("%d kept / %d eliminated", len(r.Kept), len(r.Eliminated))
	return nil
}

func renderTable(header []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}
