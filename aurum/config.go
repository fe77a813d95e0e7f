// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aurum

// Allocation is a genesis output.
type Allocation struct {
	Address Address `yaml:"address"`
	Value   int64   `yaml:"value"`
}

// GenesisConfig describes the genesis block.
type GenesisConfig struct {
	Time        uint32       `yaml:"time"`
	Bits        uint32       `yaml:"bits"`
	Allocations []Allocation `yaml:"allocations"`
}

// ChainConfig consensus parameters of a chain.
// Every node on the same chain must use the same values.
type ChainConfig struct {
	Network uint8 `yaml:"network"`

	CoinbaseMaturity   uint32 `yaml:"coinbase-maturity"`
	StakeTimestampMask uint32 `yaml:"stake-timestamp-mask"`
	StakeMinAge        uint32 `yaml:"stake-min-age"`
	TargetSpacing      uint32 `yaml:"target-spacing"`
	TargetTimespan     uint32 `yaml:"target-timespan"`
	MaxFutureDrift     uint32 `yaml:"max-future-drift"`
	PosLimitBits       uint32 `yaml:"pos-limit-bits"`
	PowLimitBits       uint32 `yaml:"pow-limit-bits"`
	LastPOWBlock       uint32 `yaml:"last-pow-block"`

	BlockSize     uint32 `yaml:"block-size"`
	BlockGasLimit uint64 `yaml:"block-gas-limit"`
	MinGasPrice   uint64 `yaml:"min-gas-price"`

	GovernanceAdmins []Address     `yaml:"governance-admins"`
	Genesis          GenesisConfig `yaml:"genesis"`
}

// DefaultChainConfig returns the main chain parameters.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		CoinbaseMaturity:   DefaultCoinbaseMaturity,
		StakeTimestampMask: DefaultStakeTimestampMask,
		TargetSpacing:      DefaultTargetSpacing,
		TargetTimespan:     DefaultTargetTimespan,
		MaxFutureDrift:     DefaultMaxFutureDrift,
		PosLimitBits:       DefaultPosLimitBits,
		PowLimitBits:       DefaultPosLimitBits,

		BlockSize:     DefaultBlockSize,
		BlockGasLimit: DefaultBlockGasLimit,
		MinGasPrice:   DefaultMinGasPrice,

		Genesis: GenesisConfig{
			Time: 1504695029,
			Bits: DefaultPosLimitBits,
		},
	}
}

// IsGovernanceAdmin returns whether addr may change DGP params.
func (c *ChainConfig) IsGovernanceAdmin(addr Address) bool {
	for _, a := range c.GovernanceAdmins {
		if a == addr {
			return true
		}
	}
	return false
}
