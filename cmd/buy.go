package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/codec"
	"github.com/sovieth88-oss/presalectl/internal/presale"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

var buyCmd = &cobra.Command{
	Use:   "buy <eth>",
	Short: "Buy presale tokens",
	Long: `Send ETH to the presale contract and receive a token allocation.

The amount is checked against the per-address maximum and the wallet
balance before anything is signed. The command waits for the transaction
to be mined and then shows the updated allocation.

Examples:
  presalectl buy 0.5
  presalectl buy 0.1 --wallet alice --chain localhost --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := args[0]

		ctx, cancel := readContext(cmd)
		defer cancel()
		s, err := openSession(ctx, signing)
		if err != nil {
			return err
		}
		v := s.engine.View()
		snap := v.Snapshot

		balance, err := s.client.BalanceAt(ctx, s.account())
		if err != nil {
			return fmt.Errorf("reading wallet balance: %w", err)
		}
		if err := codec.ValidatePurchase(amount, codec.FormatExact(snap.Wei.MaxPurchase), codec.FormatExact(balance)); err != nil {
			return err
		}
		if snap.Paused {
			fmt.Println(ui.Warn("The presale is paused; this purchase will be rejected."))
		}
		if !v.User.Whitelisted {
			fmt.Println(ui.Warn("Your address is not whitelisted; this purchase will be rejected."))
		}

		tokens := codec.EstimateTokens(amount, codec.FormatExact(snap.Wei.TokenPrice))
		fmt.Println(ui.KeyValueBlock("Purchase", [][2]string{
			{"Wallet", ui.Addr(s.wallet.Address)},
			{"Chain", ui.ChainName(chainLabel(s.chainID))},
			{"Amount", amount + " ETH"},
			{"Token price", snap.TokenPrice + " ETH"},
			{"Estimated", "≈ " + tokens + " tokens"},
		}))
		if !confirmed(fmt.Sprintf("Buy tokens for %s ETH?", amount), false) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		err = runWrite(cmd, s, "Purchase", func(ctx context.Context) (presale.PendingAction, error) {
			return s.engine.BuyTokens(ctx, amount)
		})
		if err != nil {
			return err
		}

		u := s.engine.User()
		fmt.Println(ui.KeyValueBlock("", [][2]string{
			{"Contributed", u.Contribution + " ETH"},
			{"Allocation", u.TokenAllocation + " tokens"},
		}))
		return nil
	},
}
