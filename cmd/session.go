package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/classify"
	"github.com/sovieth88-oss/presalectl/internal/config"
	"github.com/sovieth88-oss/presalectl/internal/contract"
	"github.com/sovieth88-oss/presalectl/internal/presale"
	"github.com/sovieth88-oss/presalectl/internal/rpc"
	"github.com/sovieth88-oss/presalectl/internal/ui"
	"github.com/sovieth88-oss/presalectl/internal/wallet"
)

// session is one command's presale engine together with the chain and
// wallet it was opened for.
type session struct {
	engine  *presale.Engine
	chainID int64
	wallet  *wallet.Wallet   // nil when no wallet is configured
	signer  *wallet.Signer   // nil for read-only sessions
	client  *contract.Client // last client handed to the engine
}

// sessionMode says whether a command needs to sign.
type sessionMode int

const (
	readOnly sessionMode = iota
	signing
)

// openSession builds an engine, connects the selected wallet (if any) and
// switches to the selected chain. The session is returned even when the
// chain switch fails so callers can still render its state.
func openSession(ctx context.Context, mode sessionMode, opts ...presale.Option) (*session, error) {
	chainID, err := selectedChainID()
	if err != nil {
		return nil, err
	}

	s := &session{chainID: chainID}
	if err := s.loadWallet(mode); err != nil {
		return nil, err
	}

	opts = append([]presale.Option{
		presale.WithLogger(log),
		presale.WithResolver(cfg.Resolver()),
	}, opts...)
	s.engine = presale.New(s.dial, opts...)

	if s.wallet != nil {
		if err := s.engine.Connect(ctx, common.HexToAddress(s.wallet.Address)); err != nil {
			return nil, err
		}
	}
	return s, s.engine.SwitchChain(ctx, chainID)
}

func (s *session) loadWallet(mode sessionMode) error {
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	mgr := newWalletManager()

	var w *wallet.Wallet
	if name != "" {
		found, err := mgr.Get(name)
		if err != nil {
			return fmt.Errorf("wallet %q not found; run `presalectl wallet list`", name)
		}
		w = found
	} else {
		w = mgr.Default()
	}

	if mode == readOnly {
		s.wallet = w
		return nil
	}
	if w == nil {
		return errors.New("no wallet configured; add one with `presalectl wallet add <name> --key <private-key>`")
	}
	if w.Type != wallet.TypeSigning {
		return fmt.Errorf("wallet %q is watch-only and cannot sign transactions", w.Name)
	}
	signer, err := mgr.Signer(w.Name)
	if err != nil {
		return err
	}
	s.wallet = w
	s.signer = signer
	return nil
}

// dial picks an RPC endpoint for chainID and wraps it in a contract client.
func (s *session) dial(ctx context.Context, chainID int64) (presale.Chain, error) {
	var builtin []string
	if c, err := chain.NewRegistry().GetByChainID(chainID); err == nil {
		builtin = c.RPCs
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return nil, err
	}
	url, err := rpc.Select(ctx, cfg.RPCs(chainID, builtin), chainID, algo, log)
	if err != nil {
		return nil, err
	}
	log.Debug("using rpc", zap.Int64("chain_id", chainID), zap.String("url", url))

	opts := []contract.Option{contract.WithLogger(log)}
	switch {
	case s.signer != nil:
		opts = append(opts, contract.WithSigner(s.signer))
	case s.wallet != nil:
		opts = append(opts, contract.WithFrom(common.HexToAddress(s.wallet.Address)))
	}
	s.client = contract.NewClient(chain.NewEVMClient(url), chainID, opts...)
	return s.client, nil
}

// account is the connected wallet address, zero when there is none.
func (s *session) account() common.Address {
	if s.wallet == nil {
		return common.Address{}
	}
	return common.HexToAddress(s.wallet.Address)
}

// requireOwner fails when the signing wallet does not own the contract.
func (s *session) requireOwner(ctx context.Context) error {
	owner, err := s.engine.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != s.account() {
		return fmt.Errorf("wallet %q (%s) is not the presale owner (%s)", s.wallet.Name, s.wallet.Address, owner.Hex())
	}
	return nil
}

// selectedChainID resolves --chain, falling back to the configured default.
func selectedChainID() (int64, error) {
	if chainFlag == "" {
		return cfg.DefaultChain, nil
	}
	return parseChain(chainFlag)
}

// parseChain accepts a registry name or a positive decimal chain ID.
func parseChain(nameOrID string) (int64, error) {
	if c, err := chain.NewRegistry().Lookup(nameOrID); err == nil {
		return c.ChainID, nil
	}
	id, err := strconv.ParseInt(nameOrID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("unknown chain %q; run `presalectl network list` to see known chains", nameOrID)
	}
	return id, nil
}

// chainLabel names a chain for display.
func chainLabel(chainID int64) string {
	if c, err := chain.NewRegistry().GetByChainID(chainID); err == nil {
		return c.Name
	}
	return "chain " + strconv.FormatInt(chainID, 10)
}

// txURL links a transaction on the chain's explorer, or returns "".
func txURL(chainID int64, hash string) string {
	c, err := chain.NewRegistry().GetByChainID(chainID)
	if err != nil {
		return ""
	}
	return c.TxURL(hash)
}

// contractURL links an address on the chain's explorer, or returns "".
func contractURL(chainID int64, addr string) string {
	c, err := chain.NewRegistry().GetByChainID(chainID)
	if err != nil {
		return ""
	}
	return c.AddressURL(addr)
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.KeyringDir())),
	)
}

// readContext bounds a read-only command.
func readContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), config.ReadTimeout)
}

// confirmed asks before a write unless --yes was given.
func confirmed(prompt string, danger bool) bool {
	if assumeYes {
		return true
	}
	if danger {
		return ui.ConfirmDanger(os.Stdin, os.Stdout, prompt)
	}
	return ui.Confirm(os.Stdin, os.Stdout, prompt)
}

// errorLine renders a command error for stderr, with a hint for failures
// the user can act on.
func errorLine(err error) string {
	var ve *presale.ValidationError
	if errors.As(err, &ve) {
		return ui.Err(ve.Error())
	}
	var ce *classify.Error
	if !errors.As(err, &ce) {
		return ui.Err(err.Error())
	}
	line := ui.Err(ce.Message)
	if hint := categoryHint(ce.Category); hint != "" {
		line += "\n" + ui.Hint(hint)
	}
	return line
}

func categoryHint(c classify.Category) string {
	switch c {
	case classify.InsufficientFunds:
		return "Top up the wallet and try again."
	case classify.NotWhitelisted:
		return "Ask the presale owner to whitelist your address."
	case classify.AboveMaxPurchase:
		return "Check the per-address limit with: presalectl stats"
	case classify.ExceedsHardcap:
		return "Try a smaller amount; see what is left with: presalectl stats"
	case classify.PresalePaused:
		return "Wait for the owner to unpause the presale."
	case classify.NetworkUnsupported:
		return "Pick a supported chain with --chain or: presalectl config set-chain"
	}
	return ""
}
