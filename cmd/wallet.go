package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/ui"
	"github.com/sovieth88-oss/presalectl/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet (private key kept in the OS keychain) or a watch-only
address.

  # Signing wallet; "-" reads the key from stdin so it stays out of history
  presalectl wallet add owner --key -

  # Watch-only: follow an address in stats, user and watch
  presalectl wallet add buyer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			key := walletKeyFlag
			if key == "-" {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading key from stdin: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if err := mgr.AddWithKey(name, key); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		} else {
			if len(args) < 2 {
				return errors.New("address required for a watch-only wallet\n  Usage: presalectl wallet add <name> <address>\n  Or for signing: presalectl wallet add <name> --key <private-key>")
			}
			if err := mgr.Add(name, &wallet.Wallet{Address: args[1], Type: wallet.TypeWatchOnly}); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		}
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: presalectl wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: presalectl wallet add owner --key -"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if isDefaultWallet(w) {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(walletTypeLabel(w.Type)), def})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !confirmed(fmt.Sprintf("Remove wallet %q?", name), true) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  "Set the wallet used when --wallet is not given. Without a name, pick one from a list.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets := mgr.List()
			items := make([]ui.PickerItem, len(wallets))
			for i, w := range wallets {
				items[i] = ui.PickerItem{
					Label:    w.Name,
					SubLabel: ui.TruncateAddr(w.Address) + "  " + walletTypeLabel(w.Type),
					Value:    w.Name,
					Current:  isDefaultWallet(w),
				}
			}
			picked, err := ui.PickItem("Default wallet", items)
			if errors.Is(err, ui.ErrNothingToPick) {
				return errors.New("no wallets configured; add one with `presalectl wallet add`")
			}
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

// isDefaultWallet reports whether w is the wallet commands use by default.
// The config entry wins over the flag kept in the wallet file.
func isDefaultWallet(w *wallet.Wallet) bool {
	if cfg.DefaultWallet != "" {
		return w.Name == cfg.DefaultWallet
	}
	return w.IsDefault
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	if t == wallet.TypeSigning {
		return "read-write"
	}
	return t
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", `private key for a signing wallet ("-" reads stdin)`)
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
