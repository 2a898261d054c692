package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/classify"
	"github.com/sovieth88-oss/presalectl/internal/network"
	psync "github.com/sovieth88-oss/presalectl/internal/sync"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

var (
	networkClear     bool
	networkSyncWatch time.Duration
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show and configure where the presale is deployed",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known chains and the presale deployment on each",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		resolver := cfg.Resolver()

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 14},
			{Title: "Chain ID", Width: 9},
			{Title: "Currency", Width: 8},
			{Title: "Presale contract", Width: 44},
			{Title: "Default", Width: 7},
		})
		for _, id := range networkIDs(reg, resolver) {
			name, currency := "—", ""
			if c, err := reg.GetByChainID(id); err == nil {
				name, currency = c.Name, c.NativeCurrency
			}
			deployed := ui.Meta("not deployed")
			if addr, err := resolver.Resolve(id); err == nil {
				deployed = ui.Addr(addr.Hex())
			}
			def := ""
			if id == cfg.DefaultChain {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.ChainName(name), strconv.FormatInt(id, 10), currency, deployed, def})
		}
		fmt.Println(t.Render())
		if cfg.LastSynced != "" {
			fmt.Println(ui.Meta("Deployments last synced " + cfg.LastSynced + " from " + cfg.SyncSource))
		}
		return nil
	},
}

// networkIDs lists registry chains followed by chains known only from
// deployment overrides.
func networkIDs(reg *chain.Registry, resolver network.Resolver) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, c := range reg.All() {
		seen[c.ChainID] = true
		ids = append(ids, c.ChainID)
	}
	extra := slices.Sorted(maps.Keys(cfg.Deployments))
	for _, id := range append(resolver.Supported(), extra...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

var networkResolveCmd = &cobra.Command{
	Use:   "resolve [chain]",
	Short: "Print the presale contract address for a chain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := selectedChainID()
		if len(args) == 1 {
			id, err = parseChain(args[0])
		}
		if err != nil {
			return err
		}
		addr, err := cfg.Resolver().Resolve(id)
		if err != nil {
			return classify.Classify(err)
		}
		fmt.Println(addr.Hex())
		return nil
	},
}

var networkSetAddressCmd = &cobra.Command{
	Use:   "set-address <chain> [address]",
	Short: "Override the presale contract address for a chain",
	Long: `Record where the presale is deployed on a chain. The override takes
precedence over the built-in table; an empty address marks the chain as not
deployed. Use --clear to drop the override.

Examples:
  presalectl network set-address localhost 0x5FbDB2315678afecb367f032d93F642f64180aa3
  presalectl network set-address 11155111 0xabc...
  presalectl network set-address localhost --clear`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChain(args[0])
		if err != nil {
			return err
		}

		switch {
		case networkClear:
			cfg.ClearDeployment(id)
		case len(args) == 2:
			if err := cfg.SetDeployment(id, args[1]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("address required (or --clear)")
		}
		if err := cfg.Save(); err != nil {
			return err
		}

		if networkClear {
			fmt.Println(ui.Success(fmt.Sprintf("Override for %s removed.", chainLabel(id))))
		} else if addr := cfg.Deployments[id]; addr == "" {
			fmt.Println(ui.Success(fmt.Sprintf("%s marked as not deployed.", chainLabel(id))))
		} else {
			fmt.Println(ui.Success(fmt.Sprintf("Presale on %s set to %s", chainLabel(id), ui.Addr(addr))))
		}
		return nil
	},
}

var networkSetSourceCmd = &cobra.Command{
	Use:   "set-source <url|file>",
	Short: "Set the deployments manifest to sync from",
	Long: `Set where "network sync" reads deployments from: an http(s) URL or a
local deployments.json as written by the deploy script:

  {"deployments": {"bsc-testnet": "0x...", "localhost": "0x..."}}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := psync.New(cfg, chain.NewRegistry(), log).SetSource(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success("Sync source set to: " + args[0]))
		fmt.Println(ui.Hint("Fetch it now with: presalectl network sync"))
		return nil
	},
}

var networkSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update deployment overrides from the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		syncer := psync.New(cfg, chain.NewRegistry(), log)

		if networkSyncWatch > 0 {
			fmt.Println(ui.Meta(fmt.Sprintf("Syncing every %s. Press Ctrl+C to stop.", networkSyncWatch)))
			return syncer.Watch(cmd.Context(), networkSyncWatch)
		}

		spin := ui.NewSpinner(cmd.ErrOrStderr(), "Syncing deployments…")
		spin.Start()
		res, err := syncer.Run(cmd.Context())
		if err != nil {
			spin.Stop()
			return err
		}
		spin.StopWithMsg(ui.Meta("Fetched " + cfg.SyncSource))

		for _, id := range slices.Sorted(maps.Keys(res.Updated)) {
			addr := res.Updated[id]
			if addr == "" {
				addr = ui.Meta("not deployed")
			} else {
				addr = ui.Addr(addr)
			}
			fmt.Printf("  %-14s %s\n", chainLabel(id), addr)
		}
		for _, key := range res.Skipped {
			fmt.Println(ui.Warn("skipped " + key))
		}
		fmt.Println(ui.Success(fmt.Sprintf("%d deployment(s) synced.", len(res.Updated))))
		return nil
	},
}

func init() {
	networkSetAddressCmd.Flags().BoolVar(&networkClear, "clear", false, "remove the override for this chain")
	networkSyncCmd.Flags().DurationVar(&networkSyncWatch, "watch", 0, "keep syncing on this interval")
	networkCmd.AddCommand(networkListCmd, networkResolveCmd, networkSetAddressCmd, networkSetSourceCmd, networkSyncCmd)
}
