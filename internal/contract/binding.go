// Package contract binds the presale contract ABI to typed Go calls and
// talks to it over JSON-RPC.
package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrDecode is returned when a call result does not match the ABI shape.
var ErrDecode = errors.New("unexpected call result")

// Contract method names.
const (
	MethodGetPresaleStats     = "getPresaleStats"
	MethodGetUserInfo         = "getUserInfo"
	MethodTokenPrice          = "tokenPrice"
	MethodMaxPurchase         = "maxPurchase"
	MethodSoftcap             = "softcap"
	MethodHardcap             = "hardcap"
	MethodTotalRaised         = "totalRaised"
	MethodTotalWithdrawn      = "totalWithdrawn"
	MethodTotalParticipants   = "totalParticipants"
	MethodPaused              = "paused"
	MethodIsWhitelisted       = "isWhitelisted"
	MethodIsSoftcapReached    = "isSoftcapReached"
	MethodOwner               = "owner"
	MethodBuyTokens           = "buyTokens"
	MethodAddToWhitelist      = "addToWhitelist"
	MethodRemoveFromWhitelist = "removeFromWhitelist"
	MethodWithdrawETH         = "withdrawETH"
	MethodUpdatePresaleConfig = "updatePresaleConfig"
	MethodPausePresale        = "pausePresale"
	MethodUnpausePresale      = "unpausePresale"
)

// PresaleStats is the decoded result of getPresaleStats, in wei.
type PresaleStats struct {
	Softcap           *big.Int
	Hardcap           *big.Int
	TotalRaised       *big.Int
	TotalWithdrawn    *big.Int
	TotalParticipants *big.Int
	ContractBalance   *big.Int
	Paused            bool
	SoftcapReached    bool
}

// UserInfo is the decoded result of getUserInfo.
type UserInfo struct {
	Contribution    *big.Int
	TokenAllocation *big.Int
	Whitelisted     bool
}

// --- calldata ---

// Pack encodes a call to method. It panics if args do not match the ABI,
// which is a programming error; use the typed helpers below.
func Pack(method string, args ...any) []byte {
	data, err := presaleABI.Pack(method, args...)
	if err != nil {
		panic(fmt.Sprintf("contract: packing %s: %v", method, err))
	}
	return data
}

func PackGetPresaleStats() []byte { return Pack(MethodGetPresaleStats) }
func PackTokenPrice() []byte      { return Pack(MethodTokenPrice) }
func PackMaxPurchase() []byte     { return Pack(MethodMaxPurchase) }
func PackOwner() []byte           { return Pack(MethodOwner) }
func PackBuyTokens() []byte       { return Pack(MethodBuyTokens) }
func PackPausePresale() []byte    { return Pack(MethodPausePresale) }
func PackUnpausePresale() []byte  { return Pack(MethodUnpausePresale) }

func PackGetUserInfo(user common.Address) []byte {
	return Pack(MethodGetUserInfo, user)
}

func PackIsWhitelisted(account common.Address) []byte {
	return Pack(MethodIsWhitelisted, account)
}

// PackAddToWhitelist encodes the batch in the order given.
func PackAddToWhitelist(addrs []common.Address) []byte {
	return Pack(MethodAddToWhitelist, nonNilAddrs(addrs))
}

// PackRemoveFromWhitelist encodes the batch in the order given.
func PackRemoveFromWhitelist(addrs []common.Address) []byte {
	return Pack(MethodRemoveFromWhitelist, nonNilAddrs(addrs))
}

func PackWithdrawETH(amount *big.Int, to common.Address) []byte {
	return Pack(MethodWithdrawETH, orZero(amount), to)
}

func PackUpdatePresaleConfig(softcap, hardcap, tokenPrice, maxPurchase *big.Int) []byte {
	return Pack(MethodUpdatePresaleConfig, orZero(softcap), orZero(hardcap), orZero(tokenPrice), orZero(maxPurchase))
}

// --- results ---

// DecodePresaleStats decodes the 8-field getPresaleStats result.
func DecodePresaleStats(data []byte) (PresaleStats, error) {
	vals, err := unpack(MethodGetPresaleStats, data, 8)
	if err != nil {
		return PresaleStats{}, err
	}
	var s PresaleStats
	ints := []**big.Int{&s.Softcap, &s.Hardcap, &s.TotalRaised, &s.TotalWithdrawn, &s.TotalParticipants, &s.ContractBalance}
	for i, dst := range ints {
		if *dst, err = bigAt(MethodGetPresaleStats, vals, i); err != nil {
			return PresaleStats{}, err
		}
	}
	if s.Paused, err = boolAt(MethodGetPresaleStats, vals, 6); err != nil {
		return PresaleStats{}, err
	}
	if s.SoftcapReached, err = boolAt(MethodGetPresaleStats, vals, 7); err != nil {
		return PresaleStats{}, err
	}
	return s, nil
}

// DecodeUserInfo decodes the getUserInfo result.
func DecodeUserInfo(data []byte) (UserInfo, error) {
	vals, err := unpack(MethodGetUserInfo, data, 3)
	if err != nil {
		return UserInfo{}, err
	}
	var u UserInfo
	if u.Contribution, err = bigAt(MethodGetUserInfo, vals, 0); err != nil {
		return UserInfo{}, err
	}
	if u.TokenAllocation, err = bigAt(MethodGetUserInfo, vals, 1); err != nil {
		return UserInfo{}, err
	}
	if u.Whitelisted, err = boolAt(MethodGetUserInfo, vals, 2); err != nil {
		return UserInfo{}, err
	}
	return u, nil
}

// DecodeUint decodes a single uint256 result of method.
func DecodeUint(method string, data []byte) (*big.Int, error) {
	vals, err := unpack(method, data, 1)
	if err != nil {
		return nil, err
	}
	return bigAt(method, vals, 0)
}

// DecodeBool decodes a single bool result of method.
func DecodeBool(method string, data []byte) (bool, error) {
	vals, err := unpack(method, data, 1)
	if err != nil {
		return false, err
	}
	return boolAt(method, vals, 0)
}

// DecodeAddress decodes a single address result of method.
func DecodeAddress(method string, data []byte) (common.Address, error) {
	vals, err := unpack(method, data, 1)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s: field 0 is %T, want address", ErrDecode, method, vals[0])
	}
	return addr, nil
}

func unpack(method string, data []byte, want int) ([]any, error) {
	m, ok := presaleABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: unknown method %q", ErrDecode, method)
	}
	if len(m.Outputs) != want {
		return nil, fmt.Errorf("%w: %s returns %d values, want %d", ErrDecode, method, len(m.Outputs), want)
	}
	vals, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, method, err)
	}
	if len(vals) != want {
		return nil, fmt.Errorf("%w: %s: got %d values, want %d", ErrDecode, method, len(vals), want)
	}
	return vals, nil
}

func bigAt(method string, vals []any, i int) (*big.Int, error) {
	v, ok := vals[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s: field %d is %T, want uint256", ErrDecode, method, i, vals[i])
	}
	return v, nil
}

func boolAt(method string, vals []any, i int) (bool, error) {
	v, ok := vals[i].(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s: field %d is %T, want bool", ErrDecode, method, i, vals[i])
	}
	return v, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func nonNilAddrs(addrs []common.Address) []common.Address {
	if addrs == nil {
		return []common.Address{}
	}
	return addrs
}
