package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sovieth88-oss/presalectl/internal/codec"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

const gweiDecimals = 9

var errBadAmount = errors.New("invalid amount")

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between ETH, Gwei, Wei and hex",
	Long: `Convert an amount between denominations, at full precision.

Units: eth, gwei, wei, hex. Without a unit, a 0x value is read as hex and
anything else as ETH, the unit presale amounts are entered in.

Examples:
  presalectl convert 0.25           # → gwei + wei
  presalectl convert 50 gwei        # → eth + wei
  presalectl convert 1000000000 wei # → eth + gwei
  presalectl convert 0xde0b6b3a7640000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := ""
		if len(args) > 1 {
			unit = args[1]
		}
		title, pairs, err := convertPairs(args[0], unit)
		if err != nil {
			return err
		}
		for i := range pairs {
			pairs[i][1] = ui.Val(pairs[i][1])
		}
		fmt.Println(ui.KeyValueBlock(title, pairs))
		return nil
	},
}

// convertPairs converts amount given in unit to every other denomination.
func convertPairs(amount, unit string) (string, [][2]string, error) {
	amount = strings.TrimSpace(amount)
	unit = strings.ToLower(unit)
	if unit == "" {
		unit = "eth"
		if strings.HasPrefix(strings.ToLower(amount), "0x") {
			unit = "hex"
		}
	}

	var wei *big.Int
	switch unit {
	case "eth", "ether":
		w, err := codec.ParseEtherStrict(amount)
		if err != nil {
			return "", nil, err
		}
		wei = w
	case "gwei":
		w, err := codec.ParseUnits(amount, codec.Decimals-gweiDecimals)
		if err != nil {
			return "", nil, err
		}
		wei = w
	case "wei":
		w, ok := new(big.Int).SetString(amount, 10)
		if !ok || w.Sign() < 0 {
			return "", nil, fmt.Errorf("%w: %q is not a whole wei amount", errBadAmount, amount)
		}
		wei = w
	case "hex":
		clean := strings.TrimPrefix(strings.TrimPrefix(amount, "0x"), "0X")
		w, ok := new(big.Int).SetString(clean, 16)
		if !ok || clean == "" {
			return "", nil, fmt.Errorf("%w: %q is not hex", errBadAmount, amount)
		}
		wei = w
	default:
		return "", nil, fmt.Errorf("unknown unit %q; use eth, gwei, wei or hex", unit)
	}
	if wei.Cmp(math.MaxBig256) > 0 {
		return "", nil, fmt.Errorf("%w: %q exceeds uint256", errBadAmount, amount)
	}

	gwei := decimal.NewFromBigInt(wei, -gweiDecimals)
	return "Unit Conversion", [][2]string{
		{"Input", amount + " " + unit},
		{"ETH", codec.FormatExact(wei) + " ETH"},
		{"Gwei", gwei.String() + " gwei"},
		{"Wei", wei.String() + " wei"},
		{"Hex", "0x" + wei.Text(16)},
	}, nil
}
