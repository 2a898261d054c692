package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// presaleABIJSON is the interface of the presale contract: scalar reads,
// the aggregate getters, owner-gated writes and events.
const presaleABIJSON = `[
	{"type":"function","name":"softcap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"hardcap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"maxPurchase","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalRaised","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalWithdrawn","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalParticipants","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isSoftcapReached","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isWhitelisted","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getPresaleStats","stateMutability":"view","inputs":[],"outputs":[{"name":"softcap","type":"uint256"},{"name":"hardcap","type":"uint256"},{"name":"totalRaised","type":"uint256"},{"name":"totalWithdrawn","type":"uint256"},{"name":"totalParticipants","type":"uint256"},{"name":"contractBalance","type":"uint256"},{"name":"paused","type":"bool"},{"name":"softcapReached","type":"bool"}]},
	{"type":"function","name":"getUserInfo","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"contribution","type":"uint256"},{"name":"tokenAllocation","type":"uint256"},{"name":"isWhitelisted","type":"bool"}]},
	{"type":"function","name":"buyTokens","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"addToWhitelist","stateMutability":"nonpayable","inputs":[{"name":"addresses","type":"address[]"}],"outputs":[]},
	{"type":"function","name":"removeFromWhitelist","stateMutability":"nonpayable","inputs":[{"name":"addresses","type":"address[]"}],"outputs":[]},
	{"type":"function","name":"withdrawETH","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
	{"type":"function","name":"updatePresaleConfig","stateMutability":"nonpayable","inputs":[{"name":"softcap","type":"uint256"},{"name":"hardcap","type":"uint256"},{"name":"tokenPrice","type":"uint256"},{"name":"maxPurchase","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"pausePresale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"unpausePresale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"event","name":"TokensPurchased","anonymous":false,"inputs":[{"name":"buyer","type":"address","indexed":true},{"name":"ethAmount","type":"uint256","indexed":false},{"name":"tokenAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"WhitelistAdded","anonymous":false,"inputs":[{"name":"addresses","type":"address[]","indexed":false}]},
	{"type":"event","name":"WhitelistRemoved","anonymous":false,"inputs":[{"name":"addresses","type":"address[]","indexed":false}]},
	{"type":"event","name":"ETHWithdrawn","anonymous":false,"inputs":[{"name":"amount","type":"uint256","indexed":false},{"name":"to","type":"address","indexed":true}]},
	{"type":"event","name":"SoftcapReached","anonymous":false,"inputs":[{"name":"totalRaised","type":"uint256","indexed":false}]},
	{"type":"event","name":"PresaleConfigUpdated","anonymous":false,"inputs":[{"name":"softcap","type":"uint256","indexed":false},{"name":"hardcap","type":"uint256","indexed":false},{"name":"tokenPrice","type":"uint256","indexed":false},{"name":"maxPurchase","type":"uint256","indexed":false}]}
]`

var presaleABI = mustParseABI(presaleABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("contract: invalid presale ABI: " + err.Error())
	}
	return parsed
}

// ABI returns the parsed presale contract ABI. Callers must not modify it.
func ABI() *abi.ABI { return &presaleABI }
