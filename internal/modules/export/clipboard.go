package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/aristath/screener/internal/modules/screening"
)

// ClipboardSink copies the top kept rows as tab-separated text for pasting into a spreadsheet
type ClipboardSink struct {
	topN  int
	write func(string) error
	log   zerolog.Logger
}

// NewClipboardSink creates a clipboard sink for the top n kept rows
func NewClipboardSink(topN int, log zerolog.Logger) *ClipboardSink {
	return &ClipboardSink{
		topN:  topN,
		write: clipboard.WriteAll,
		log:   log.With().Str("component", "clipboard_sink").Logger(),
	}
}

// Name returns the sink name
func (c *ClipboardSink) Name() string {
	return "clipboard"
}

// Publish copies the ranked table
func (c *ClipboardSink) Publish(_ context.Context, r *screening.Report) error {
	rows := RankKept(r.Kept, c.topN)
	if err := c.write(TabSeparated(rows)); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	c.log.Info().Int("rows", len(rows)).Msg("Copied kept table to clipboard")
	return nil
}

// TabSeparated renders kept rows with a header line, one row per line
func TabSeparated(kept []screening.KeptRecord) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(keptHeader, "\t"))
	sb.WriteByte('\n')
	for _, k := range kept {
		sb.WriteString(strings.Join(keptRow(k), "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}
