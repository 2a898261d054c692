package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/rpc"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetChainCmd = &cobra.Command{
	Use:   "set-chain [chain]",
	Short: "Set the default chain",
	Long:  "Set the chain used when --chain is not given. Without an argument, pick one from a list.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if len(args) == 1 {
			var err error
			if id, err = parseChain(args[0]); err != nil {
				return err
			}
		} else {
			picked, err := ui.PickItem("Default chain", chainItems(chain.NewRegistry()))
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			id, _ = strconv.ParseInt(picked, 10, 64)
		}

		cfg.DefaultChain = id
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default chain set to %s (%d)", chainLabel(id), id)))
		if _, err := cfg.Resolver().Resolve(id); err != nil {
			fmt.Println(ui.Warn("The presale is not deployed on this chain."))
			fmt.Println(ui.Hint("Record a deployment with: presalectl network set-address"))
		}
		return nil
	},
}

// chainItems lists registry chains for the picker, marking the default.
func chainItems(reg *chain.Registry) []ui.PickerItem {
	resolver := cfg.Resolver()
	var items []ui.PickerItem
	for _, c := range reg.All() {
		sub := strconv.FormatInt(c.ChainID, 10)
		if _, err := resolver.Resolve(c.ChainID); err != nil {
			sub += "  not deployed"
		}
		items = append(items, ui.PickerItem{
			Label:    c.DisplayName,
			SubLabel: sub,
			Value:    strconv.FormatInt(c.ChainID, 10),
			Current:  c.ChainID == cfg.DefaultChain,
		})
	}
	return items
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <chain> <url>",
	Short: "Add a custom RPC endpoint for a chain",
	Long: `Add an RPC endpoint that is tried before the built-in ones. Endpoints are
benchmarked before each session and checked against the chain ID.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChain(args[0])
		if err != nil {
			return err
		}
		url := args[1]
		if err := cfg.AddRPC(id, url); err != nil {
			// Already present.
			fmt.Println(ui.Warn(err.Error()))
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC %s added for %s", url, chainLabel(id))))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <chain> <url>",
	Short: "Remove a custom RPC endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(id, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC %s removed from %s", args[1], chainLabel(id))))
		return nil
	},
}

var configSetAlgorithmCmd = &cobra.Command{
	Use:       "set-algorithm <fastest|round-robin|failover>",
	Short:     "Set how an RPC endpoint is chosen",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(rpc.AlgorithmFastest), string(rpc.AlgorithmRoundRobin), string(rpc.AlgorithmFailover)},
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("RPC selection set to " + string(algo)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetChainCmd, configSetRPCCmd, configRemoveRPCCmd, configSetAlgorithmCmd)
}
