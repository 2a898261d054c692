package contract

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/codec"
)

// ErrUnknownEvent is returned for logs that are not presale events.
var ErrUnknownEvent = errors.New("unknown event")

// Event is a decoded presale log.
type Event struct {
	Name        string
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
	Args        map[string]any
}

// DecodeEvent decodes a log emitted by the presale contract.
func DecodeEvent(l chain.Log) (Event, error) {
	if len(l.Topics) == 0 {
		return Event{}, fmt.Errorf("%w: log has no topics", ErrUnknownEvent)
	}
	ev, err := presaleABI.EventByID(l.Topics[0])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, l.Topics[0].Hex())
	}

	args := make(map[string]any, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(args, l.Data); err != nil {
		return Event{}, fmt.Errorf("%w: %s data: %v", ErrDecode, ev.Name, err)
	}
	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
		return Event{}, fmt.Errorf("%w: %s topics: %v", ErrDecode, ev.Name, err)
	}

	return Event{
		Name:        ev.Name,
		BlockNumber: uint64(l.BlockNumber),
		TxHash:      l.TxHash,
		LogIndex:    uint(l.LogIndex),
		Args:        args,
	}, nil
}

// Summary renders the event arguments as "key=value" pairs, with amounts
// in ether and keys in ABI order.
func (e Event) Summary() string {
	order := make(map[string]int)
	if ev, ok := presaleABI.Events[e.Name]; ok {
		for i, in := range ev.Inputs {
			order[in.Name] = i
		}
	}
	keys := make([]string, 0, len(e.Args))
	for k := range e.Args {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatArg(e.Args[k]))
	}
	return strings.Join(parts, " ")
}

func formatArg(v any) string {
	switch x := v.(type) {
	case *big.Int:
		return codec.FormatEther(x)
	case common.Address:
		return x.Hex()
	case []common.Address:
		s := make([]string, len(x))
		for i, a := range x {
			s[i] = a.Hex()
		}
		return "[" + strings.Join(s, ",") + "]"
	default:
		return fmt.Sprint(x)
	}
}
