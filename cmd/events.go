package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/contract"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

const defaultEventBlocks = 5000

var (
	eventsBlocks uint64
	eventsName   string
	eventsPlain  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent presale events",
	Long: `Fetch and decode the events emitted by the presale contract: purchases,
whitelist changes, withdrawals, softcap reached and parameter updates.

By default the last 5000 blocks are scanned and the result is shown in an
interactive table (o opens the transaction in the explorer, c copies its
hash). Use --plain for plain output.

Examples:
  presalectl events
  presalectl events --blocks 20000 --name TokensPurchased --plain`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()
		s, err := openSession(ctx, readOnly)
		if err != nil {
			return err
		}

		latest, err := s.client.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("reading latest block: %w", err)
		}
		from := uint64(0)
		if latest > eventsBlocks {
			from = latest - eventsBlocks
		}
		events, err := s.client.Events(ctx, s.engine.ContractAddress(), from)
		if err != nil {
			return fmt.Errorf("fetching events: %w", err)
		}
		events = filterEvents(events, eventsName)

		title := fmt.Sprintf("%s  %s",
			ui.StyleTitle.UnsetMarginBottom().Render("Presale events"),
			ui.Meta(fmt.Sprintf("%s · blocks %d–%d", chainLabel(s.chainID), from, latest)))
		if len(events) == 0 {
			fmt.Println(title)
			fmt.Println(ui.Info("No presale events in this range."))
			fmt.Println(ui.Hint("Scan further back with --blocks."))
			return nil
		}

		table, rows := eventTable(events, s.chainID)
		if eventsPlain {
			fmt.Println(title + "\n")
			fmt.Print(table.Render())
			fmt.Println(ui.Meta(fmt.Sprintf("%d event(s)", len(events))))
			return nil
		}
		return ui.RunEventList(title, table, rows)
	},
}

// filterEvents keeps events called name, or all of them when name is empty.
func filterEvents(events []contract.Event, name string) []contract.Event {
	if name == "" {
		return events
	}
	out := events[:0:0]
	for _, ev := range events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// eventTable lays events out newest first.
func eventTable(events []contract.Event, chainID int64) (*ui.Table, []ui.EventRow) {
	t := ui.NewTable([]ui.Column{
		{Title: "Block", Width: 10},
		{Title: "Event", Width: 20},
		{Title: "Tx", Width: 13},
		{Title: "Details", Width: 60},
	})
	rows := make([]ui.EventRow, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		hash := ev.TxHash.Hex()
		t.AddRow(ui.Row{
			strconv.FormatUint(ev.BlockNumber, 10),
			ui.ChainName(ev.Name),
			ui.Addr(ui.TruncateAddr(hash)),
			ev.Summary(),
		})
		rows = append(rows, ui.EventRow{TxHash: hash, ExplorerURL: txURL(chainID, hash)})
	}
	return t, rows
}

func init() {
	eventsCmd.Flags().Uint64Var(&eventsBlocks, "blocks", defaultEventBlocks, "how many blocks back to scan")
	eventsCmd.Flags().StringVar(&eventsName, "name", "", "only show events with this name (e.g. TokensPurchased)")
	eventsCmd.Flags().BoolVar(&eventsPlain, "plain", false, "print a plain table instead of the interactive view")
}
