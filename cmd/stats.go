package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/presale"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show presale progress and parameters",
	Long: `Read the presale contract on the selected chain and show fundraising
progress, caps, token price and the per-address purchase limit.

When a wallet is configured its contribution is shown too.

Examples:
  presalectl stats
  presalectl stats --chain localhost`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()

		s, err := openSession(ctx, readOnly)
		if err != nil {
			return err
		}
		v := s.engine.View()

		fmt.Println(ui.StyleTitle.Render("Presale on " + ui.ChainName(chainLabel(v.ChainID))))
		if link := contractURL(v.ChainID, s.engine.ContractAddress().Hex()); link != "" {
			fmt.Println(ui.Meta(link) + "\n")
		}
		fmt.Println(ui.KeyValueBlock("", snapshotPairs(v)))
		fmt.Println(progressLines(v.Snapshot))
		if v.Connected() {
			fmt.Println()
			fmt.Println(ui.KeyValueBlock("", userPairs(v.User)))
		}
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user [address]",
	Short: "Show the contribution and whitelist status of an address",
	Long: `Show how much an address contributed, its token allocation and whether
it is whitelisted. Without an address the selected wallet is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := readContext(cmd)
		defer cancel()

		s, err := openSession(ctx, readOnly)
		if err != nil {
			return err
		}

		var u presale.UserSnapshot
		switch {
		case len(args) == 1:
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid address %q", args[0])
			}
			u, err = s.engine.LookupUser(ctx, common.HexToAddress(args[0]))
			if err != nil {
				return err
			}
		case s.wallet != nil:
			u = s.engine.User()
		default:
			return errors.New("no wallet configured; pass an address or add one with `presalectl wallet add`")
		}

		fmt.Println(ui.KeyValueBlock("Participant", userPairs(u)))
		if !u.Whitelisted {
			fmt.Println(ui.Hint("This address cannot buy until the owner whitelists it."))
		}
		return nil
	},
}

func snapshotPairs(v presale.View) [][2]string {
	s := v.Snapshot
	status := ui.StyleSuccess.Render("live")
	if s.Paused {
		status = ui.StyleWarning.Render("paused")
	}
	return [][2]string{
		{"Contract", ui.Addr(v.Contract.Hex())},
		{"Status", status},
		{"Softcap", s.Softcap + " ETH"},
		{"Hardcap", s.Hardcap + " ETH"},
		{"Raised", s.TotalRaised + " ETH"},
		{"Withdrawn", s.TotalWithdrawn + " ETH"},
		{"Balance", s.ContractBalance + " ETH"},
		{"Token price", s.TokenPrice + " ETH"},
		{"Max purchase", s.MaxPurchase + " ETH"},
		{"Participants", strconv.FormatUint(s.Participants, 10)},
		{"Softcap reached", ui.YesNo(s.SoftcapReached)},
	}
}

func progressLines(s presale.Snapshot) string {
	return ui.Meta("Hardcap ") + ui.ProgressBar(s.HardcapProgress, 30) + "\n" +
		ui.Meta("Softcap ") + ui.ProgressBar(s.SoftcapProgress, 30)
}

func userPairs(u presale.UserSnapshot) [][2]string {
	return [][2]string{
		{"Address", ui.Addr(u.Address.Hex())},
		{"Whitelisted", ui.YesNo(u.Whitelisted)},
		{"Contributed", u.Contribution + " ETH"},
		{"Allocation", u.TokenAllocation + " tokens"},
	}
}
