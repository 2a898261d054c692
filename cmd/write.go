package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/presale"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

// writeFunc submits one presale write.
type writeFunc func(ctx context.Context) (presale.PendingAction, error)

// runWrite submits a write with a spinner that follows the pending action,
// then reports how it settled. The wait is bounded by the configured
// confirm timeout; running out of time leaves the transaction in flight.
func runWrite(cmd *cobra.Command, s *session, label string, write writeFunc) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ConfirmWithin())
	defer cancel()

	updates, unsubscribe := s.engine.Subscribe()
	defer unsubscribe()

	spin := ui.NewSpinner(os.Stderr, label+": signing…")
	spin.Start()
	go func() {
		for u := range updates {
			if u.Reason == presale.ReasonPending && u.Pending != nil {
				spin.Update(label + ": " + pendingStatus(*u.Pending))
			}
		}
	}()

	act, err := write(ctx)
	spin.Stop()
	return reportWrite(s, label, act, err)
}

func pendingStatus(p presale.PendingAction) string {
	switch p.State {
	case presale.TxSubmitted:
		return "signing…"
	case presale.TxAwaitingConfirmation:
		return "waiting for confirmation " + ui.TruncateAddr(p.Hash.Hex()) + "…"
	case presale.TxConfirmed:
		return "confirmed"
	default:
		return "failed"
	}
}

func reportWrite(s *session, label string, act presale.PendingAction, err error) error {
	hash := act.Hash.Hex()
	switch {
	case err == nil:
		fmt.Println(ui.Success(label + " confirmed"))
		printTx(s.chainID, hash)
		return nil

	case act.State == presale.TxAwaitingConfirmation &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
		fmt.Println(ui.Warn(label + " broadcast but not confirmed yet"))
		printTx(s.chainID, hash)
		return err

	case act.State == presale.TxFailed && act.Hash != (common.Hash{}):
		printTx(s.chainID, hash)
	}
	return err
}

func printTx(chainID int64, hash string) {
	fmt.Println(ui.Meta("  tx: ") + ui.Addr(hash))
	if url := txURL(chainID, hash); url != "" {
		fmt.Println(ui.Meta("  " + url))
	}
}
