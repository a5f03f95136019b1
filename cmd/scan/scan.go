// Package scan implements the one-shot extraction command. It reads a
// rendered-document capture from a file or stdin, runs the extraction
// pipeline against it, and prints the ordered turns as a table or JSON.
package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/chatscrape/cmd/common"
	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/pipeline"
	"github.com/jonesrussell/chatscrape/internal/target"
)

var (
	pageURL    string
	jsonOutput bool
)

// Command returns the scan command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [snapshot file]",
		Short: "Extract conversation turns from one document capture",
		Long: `Extract the ordered user and assistant turns from a single
rendered-document capture. The capture is read from the given file, or
from stdin when the argument is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "page URL of the capture (selects the target; omit to probe)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the batch as JSON instead of a table")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	deps, err := common.NewCommandDeps(
		cmd.Flag("config").Value.String(),
		cmd.Flag("debug").Value.String() == "true",
	)
	if err != nil {
		return err
	}

	html, err := readCapture(args)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}

	snap, err := dom.NewSnapshotFromString(html, pageURL)
	if err != nil {
		return fmt.Errorf("parse capture: %w", err)
	}

	strategy, err := pickStrategy(common.Strategies(deps), snap)
	if err != nil {
		return err
	}

	batch := pipeline.New(deps.Logger).Run(strategy, snap)

	if jsonOutput {
		return renderJSON(batch)
	}
	return renderTable(batch)
}

// pickStrategy selects the extraction target. An explicit page URL wins;
// without one, each strategy is probed against the capture and the one
// that recovers the most turns is chosen.
func pickStrategy(strategies []target.Strategy, snap *dom.Snapshot) (target.Strategy, error) {
	if snap.URL != "" {
		s := target.Select(snap.URL, strategies)
		if s == nil {
			return nil, fmt.Errorf("no extraction target matches %q", snap.URL)
		}
		return s, nil
	}

	var best target.Strategy
	bestCount := 0
	for _, s := range strategies {
		if n := len(s.DiscoverMessages(snap)); n > bestCount {
			best, bestCount = s, n
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no extraction target recognizes the capture; pass --url")
	}
	return best, nil
}

func readCapture(args []string) (string, error) {
	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func renderJSON(batch domain.ScanBatch) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}

func renderTable(batch domain.ScanBatch) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Order", "Role", "ID", "Preview"})
	for _, rec := range batch.Records {
		t.AppendRow(table.Row{rec.Order, rec.Role, rec.ID, rec.Content})
	}

	t.Render()
	fmt.Printf("target=%s conversation=%s turns=%d\n",
		batch.Target, batch.ConversationKey, len(batch.Records))
	return nil
}
