package presale

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/classify"
	"github.com/sovieth88-oss/presalectl/internal/contract"
)

// BuyTokens purchases tokens for eth (a decimal ether amount), attaching
// that value to the call.
func (e *Engine) BuyTokens(ctx context.Context, eth string) (PendingAction, error) {
	wei, err := positiveAmount("amount", eth)
	if err != nil {
		return PendingAction{}, e.reject(err)
	}
	return e.submit(ctx, ActionPurchase, contract.PackBuyTokens(), wei)
}

// WithdrawETH withdraws amount ether from the contract to recipient.
// Whether the caller may withdraw is left to the contract.
func (e *Engine) WithdrawETH(ctx context.Context, amount, recipient string) (PendingAction, error) {
	wei, err := positiveAmount("amount", amount)
	if err != nil {
		return PendingAction{}, e.reject(err)
	}
	to, err := parseAddress("recipient", recipient)
	if err != nil {
		return PendingAction{}, e.reject(err)
	}
	return e.submit(ctx, ActionWithdraw, contract.PackWithdrawETH(wei, to), nil)
}

// AddToWhitelist submits the batch as given.
func (e *Engine) AddToWhitelist(ctx context.Context, addrs []string) (PendingAction, error) {
	batch, err := parseBatch(addrs)
	if err != nil {
		return PendingAction{}, e.reject(err)
	}
	return e.submit(ctx, ActionWhitelistAdd, contract.PackAddToWhitelist(batch), nil)
}

// RemoveFromWhitelist submits the batch as given.
func (e *Engine) RemoveFromWhitelist(ctx context.Context, addrs []string) (PendingAction, error) {
	batch, err := parseBatch(addrs)
	if err != nil {
		return PendingAction{}, e.reject(err)
	}
	return e.submit(ctx, ActionWhitelistRemove, contract.PackRemoveFromWhitelist(batch), nil)
}

// PausePresale pauses the presale. It does not look at the current paused
// flag; choosing pause or unpause is up to the caller.
func (e *Engine) PausePresale(ctx context.Context) (PendingAction, error) {
	return e.submit(ctx, ActionPause, contract.PackPausePresale(), nil)
}

// UnpausePresale resumes the presale.
func (e *Engine) UnpausePresale(ctx context.Context) (PendingAction, error) {
	return e.submit(ctx, ActionUnpause, contract.PackUnpausePresale(), nil)
}

// UpdatePresaleConfig submits new presale parameters, all in ether. All
// four must be positive and hardcap must exceed softcap.
func (e *Engine) UpdatePresaleConfig(ctx context.Context, softcap, hardcap, tokenPrice, maxPurchase string) (PendingAction, error) {
	p, err := parseParams(softcap, hardcap, tokenPrice, maxPurchase)
	if err != nil {
		return PendingAction{}, e.reject(err)
	}
	data := contract.PackUpdatePresaleConfig(p.softcap, p.hardcap, p.tokenPrice, p.maxPurchase)
	return e.submit(ctx, ActionConfigUpdate, data, nil)
}

// SubmitDraft submits the current config draft.
func (e *Engine) SubmitDraft(ctx context.Context) (PendingAction, error) {
	d := e.Draft()
	return e.UpdatePresaleConfig(ctx, d.Softcap, d.Hardcap, d.TokenPrice, d.MaxPurchase)
}

// CheckWhitelist reports whether addr is whitelisted. For the connected
// account the user snapshot is re-read; any other address is read without
// touching it. It is a read and never makes the engine busy.
func (e *Engine) CheckWhitelist(ctx context.Context, addr string) (bool, error) {
	a, err := parseAddress("address", addr)
	if err != nil {
		return false, e.reject(err)
	}
	e.mu.RLock()
	connected := e.account == a
	e.mu.RUnlock()

	if connected {
		if err := e.refreshUser(ctx); err != nil {
			return false, err
		}
		return e.User().Whitelisted, nil
	}
	u, err := e.LookupUser(ctx, a)
	if err != nil {
		return false, err
	}
	return u.Whitelisted, nil
}

// LookupUser reads the presale state of any address. The user snapshot is
// left alone.
func (e *Engine) LookupUser(ctx context.Context, addr common.Address) (UserSnapshot, error) {
	client, to, _, err := e.target()
	if err != nil {
		return UserSnapshot{}, err
	}
	u, err := e.readUser(ctx, client, to, addr)
	if err != nil {
		return UserSnapshot{}, e.reject(classify.Classify(err))
	}
	return u, nil
}

// Owner reads the contract owner.
func (e *Engine) Owner(ctx context.Context) (common.Address, error) {
	client, to, _, err := e.target()
	if err != nil {
		return common.Address{}, err
	}
	raw, err := client.Call(ctx, to, contract.PackOwner())
	if err != nil {
		return common.Address{}, e.reject(classify.Classify(err))
	}
	owner, err := contract.DecodeAddress(contract.MethodOwner, raw)
	if err != nil {
		return common.Address{}, e.reject(classify.Classify(err))
	}
	return owner, nil
}

// submit sends a write and follows it to confirmation. On success the
// presale is refreshed exactly once. If ctx ends while waiting, the action
// stays awaiting confirmation since the transaction may still be mined.
func (e *Engine) submit(ctx context.Context, action Action, data []byte, value *big.Int) (PendingAction, error) {
	client, to, _, err := e.target()
	if err != nil {
		return PendingAction{}, e.reject(err)
	}

	p := &PendingAction{
		ID:          uuid.New(),
		Action:      action,
		State:       TxSubmitted,
		SubmittedAt: e.now(),
	}
	e.mu.Lock()
	e.err = nil
	e.pending = p
	e.mu.Unlock()
	e.publish(ReasonPending)
	e.metrics.txSubmitted.WithLabelValues(string(action)).Inc()

	log := e.log.With(zap.String("action", string(action)), zap.String("id", p.ID.String()))
	log.Info("submitting transaction")

	hash, err := client.Send(ctx, to, data, value)
	if err != nil {
		return e.fail(p, err, log)
	}
	e.settle(p, func(p *PendingAction) {
		p.Hash = hash
		p.State = TxAwaitingConfirmation
	})
	log.Info("awaiting confirmation", zap.String("hash", hash.Hex()))

	if err := client.WaitMined(ctx, hash); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			log.Warn("stopped waiting for confirmation", zap.String("hash", hash.Hex()))
			return e.settle(p, func(*PendingAction) {}), fmt.Errorf("waiting for %s: %w", hash.Hex(), ctxErr)
		}
		return e.fail(p, err, log)
	}

	done := e.settle(p, func(p *PendingAction) {
		p.State = TxConfirmed
		p.SettledAt = e.now()
	})
	e.metrics.txConfirmed.WithLabelValues(string(action)).Inc()
	log.Info("transaction confirmed", zap.String("hash", hash.Hex()))

	if action == ActionConfigUpdate {
		e.mu.Lock()
		e.draft.Edited = false
		e.mu.Unlock()
	}
	if err := e.Refresh(ctx); err != nil {
		log.Warn("refresh after confirmation failed", zap.Error(err))
	}
	return done, nil
}

// settle applies fn to p under the lock and returns a copy. Subscribers
// hear about it only while p is still the tracked action.
func (e *Engine) settle(p *PendingAction, fn func(*PendingAction)) PendingAction {
	e.mu.Lock()
	fn(p)
	cp := *p
	tracked := e.pending == p
	e.mu.Unlock()
	if tracked {
		e.publish(ReasonPending)
	}
	return cp
}

func (e *Engine) fail(p *PendingAction, err error, log *zap.Logger) (PendingAction, error) {
	ce := classify.Classify(err)
	cp := e.settle(p, func(p *PendingAction) {
		p.State = TxFailed
		p.Err = ce
		p.SettledAt = e.now()
	})
	e.mu.Lock()
	e.err = ce
	e.mu.Unlock()
	e.publish(ReasonError)
	e.metrics.txFailed.WithLabelValues(string(p.Action), string(ce.Category)).Inc()
	log.Warn("transaction failed", zap.String("category", string(ce.Category)), zap.Error(err))
	return cp, ce
}
