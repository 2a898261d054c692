package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/codec"
	"github.com/sovieth88-oss/presalectl/internal/presale"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

var (
	whitelistFile string

	paramsSoftcap     string
	paramsHardcap     string
	paramsTokenPrice  string
	paramsMaxPurchase string
)

// ---------------------------------------------------------------------------
// whitelist
// ---------------------------------------------------------------------------

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Check and manage the presale whitelist",
}

var whitelistCheckCmd = &cobra.Command{
	Use:   "check [address]",
	Short: "Check whether an address is whitelisted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()
		s, err := openSession(ctx, readOnly)
		if err != nil {
			return err
		}

		addr := ""
		switch {
		case len(args) == 1:
			addr = args[0]
		case s.wallet != nil:
			addr = s.wallet.Address
		default:
			return errors.New("no wallet configured; pass an address to check")
		}

		ok, err := s.engine.CheckWhitelist(ctx, addr)
		if err != nil {
			return err
		}
		if ok {
			fmt.Println(ui.Success(ui.Addr(addr) + " is whitelisted"))
		} else {
			fmt.Println(ui.Warn(ui.Addr(addr) + " is not whitelisted"))
		}
		return nil
	},
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add [address...]",
	Short: "Whitelist addresses (owner only)",
	Long: `Add addresses to the whitelist in one transaction.

Addresses come from the arguments and, with --file, from a file with one
address per line or comma separated ("-" reads stdin). Duplicates are sent
as given.

Examples:
  presalectl whitelist add 0xabc... 0xdef...
  presalectl whitelist add --file buyers.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhitelistWrite(cmd, args, true)
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove [address...]",
	Short: "Remove addresses from the whitelist (owner only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhitelistWrite(cmd, args, false)
	},
}

func runWhitelistWrite(cmd *cobra.Command, args []string, add bool) error {
	addrs, err := whitelistInput(args, whitelistFile, os.Stdin)
	if err != nil {
		return err
	}

	ctx, cancel := readContext(cmd)
	defer cancel()
	s, err := openSession(ctx, signing)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx); err != nil {
		return err
	}

	verb, label := "Whitelist", "Whitelist update"
	write := s.engine.AddToWhitelist
	if !add {
		verb, label = "Remove from the whitelist", "Whitelist removal"
		write = s.engine.RemoveFromWhitelist
	}
	if !confirmed(fmt.Sprintf("%s %d address(es)?", verb, len(addrs)), false) {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}
	return runWrite(cmd, s, label, func(ctx context.Context) (presale.PendingAction, error) {
		return write(ctx, addrs)
	})
}

// whitelistInput merges address arguments with the entries of file.
func whitelistInput(args []string, file string, stdin io.Reader) ([]string, error) {
	text := strings.Join(args, "\n")
	if file != "" {
		var data []byte
		var err error
		if file == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return nil, fmt.Errorf("reading address list: %w", err)
		}
		text += "\n" + string(data)
	}
	addrs := presale.ParseAddressList(text)
	if len(addrs) == 0 {
		return nil, errors.New("no addresses given")
	}
	return addrs, nil
}

// ---------------------------------------------------------------------------
// withdraw / pause / unpause
// ---------------------------------------------------------------------------

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <eth> <recipient>",
	Short: "Withdraw raised ETH to a recipient (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, recipient := args[0], args[1]
		if !codec.IsPositive(amount) {
			return fmt.Errorf("invalid amount %q", amount)
		}

		ctx, cancel := readContext(cmd)
		defer cancel()
		s, err := openSession(ctx, signing)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx); err != nil {
			return err
		}

		balance := s.engine.Snapshot().ContractBalance
		fmt.Println(ui.KeyValueBlock("Withdrawal", [][2]string{
			{"Amount", amount + " ETH"},
			{"Recipient", ui.Addr(recipient)},
			{"Contract balance", balance + " ETH"},
		}))
		if !confirmed(fmt.Sprintf("Withdraw %s ETH to %s?", amount, recipient), true) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		return runWrite(cmd, s, "Withdrawal", func(ctx context.Context) (presale.PendingAction, error) {
			return s.engine.WithdrawETH(ctx, amount, recipient)
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the presale (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPauseToggle(cmd, true)
	},
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume the presale (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPauseToggle(cmd, false)
	},
}

// runPauseToggle sends pause or unpause. The paused flag may be stale by
// the time the transaction lands, so a matching flag only warns.
func runPauseToggle(cmd *cobra.Command, pause bool) error {
	ctx, cancel := readContext(cmd)
	defer cancel()
	s, err := openSession(ctx, signing)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx); err != nil {
		return err
	}

	paused := s.engine.Snapshot().Paused
	verb, label, write := "Pause", "Pause", s.engine.PausePresale
	if !pause {
		verb, label, write = "Unpause", "Unpause", s.engine.UnpausePresale
	}
	if paused == pause {
		fmt.Println(ui.Warn(fmt.Sprintf("The presale already reads as %s.", pausedLabel(paused))))
	}
	if !confirmed(verb+" the presale for every buyer?", true) {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}
	return runWrite(cmd, s, label, write)
}

func pausedLabel(paused bool) string {
	if paused {
		return "paused"
	}
	return "live"
}

// ---------------------------------------------------------------------------
// params
// ---------------------------------------------------------------------------

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show and update the presale parameters",
}

var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current parameters at full precision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()
		s, err := openSession(ctx, readOnly)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Presale parameters", draftPairs(s.engine.Draft())))
		return nil
	},
}

var paramsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update softcap, hardcap, token price and max purchase (owner only)",
	Long: `Update the presale parameters in one transaction. Unset flags keep their
current on-chain value.

Examples:
  presalectl params update --hardcap 200
  presalectl params update --price 0.0005 --max 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		set := false
		for _, name := range []string{"softcap", "hardcap", "price", "max"} {
			set = set || cmd.Flags().Changed(name)
		}
		if !set {
			return errors.New("nothing to update; set at least one of --softcap, --hardcap, --price, --max")
		}

		ctx, cancel := readContext(cmd)
		defer cancel()
		s, err := openSession(ctx, signing)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx); err != nil {
			return err
		}

		current := s.engine.Draft()
		s.engine.EditDraft(func(d *presale.ConfigDraft) {
			if cmd.Flags().Changed("softcap") {
				d.Softcap = paramsSoftcap
			}
			if cmd.Flags().Changed("hardcap") {
				d.Hardcap = paramsHardcap
			}
			if cmd.Flags().Changed("price") {
				d.TokenPrice = paramsTokenPrice
			}
			if cmd.Flags().Changed("max") {
				d.MaxPurchase = paramsMaxPurchase
			}
		})
		next := s.engine.Draft()

		t := ui.NewTable([]ui.Column{
			{Title: "Parameter", Width: 14},
			{Title: "Current", Width: 22},
			{Title: "New", Width: 22},
		})
		cur, nxt := draftPairs(current), draftPairs(next)
		for i := range cur {
			newVal := nxt[i][1]
			if newVal != cur[i][1] {
				newVal = ui.Val(newVal)
			}
			t.AddRow(ui.Row{cur[i][0], cur[i][1], newVal})
		}
		fmt.Println(t.Render())

		if !confirmed("Update the presale parameters?", true) {
			s.engine.ResetDraft()
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		return runWrite(cmd, s, "Parameter update", s.engine.SubmitDraft)
	},
}

func draftPairs(d presale.ConfigDraft) [][2]string {
	return [][2]string{
		{"Softcap", d.Softcap + " ETH"},
		{"Hardcap", d.Hardcap + " ETH"},
		{"Token price", d.TokenPrice + " ETH"},
		{"Max purchase", d.MaxPurchase + " ETH"},
	}
}

func init() {
	whitelistAddCmd.Flags().StringVarP(&whitelistFile, "file", "f", "", `file with addresses ("-" for stdin)`)
	whitelistRemoveCmd.Flags().StringVarP(&whitelistFile, "file", "f", "", `file with addresses ("-" for stdin)`)
	whitelistCmd.AddCommand(whitelistCheckCmd, whitelistAddCmd, whitelistRemoveCmd)

	f := paramsUpdateCmd.Flags()
	f.StringVar(&paramsSoftcap, "softcap", "", "new softcap in ETH")
	f.StringVar(&paramsHardcap, "hardcap", "", "new hardcap in ETH")
	f.StringVar(&paramsTokenPrice, "price", "", "new token price in ETH per token")
	f.StringVar(&paramsMaxPurchase, "max", "", "new maximum purchase per address in ETH")
	paramsCmd.AddCommand(paramsShowCmd, paramsUpdateCmd)
}
