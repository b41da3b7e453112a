package models

import "time"

// ContractType represents the option contract type.
type ContractType string

const (
	ContractCall ContractType = "CE"
	ContractPut  ContractType = "PE"
)

// OptionContract represents a single option contract in a chain snapshot.
type OptionContract struct {
	TradingSymbol string
	Underlying    string
	Strike        float64
	Type          ContractType
	Expiry        time.Time
	LTP           float64
	OI            int64
	Volume        int64
}

// OptionChain represents a snapshot of an option chain for one expiry cycle.
type OptionChain struct {
	Symbol    string
	SpotPrice float64
	Expiry    time.Time
	Timestamp time.Time
	Contracts []OptionContract
}

// Calls returns the call contracts in the chain.
func (c *OptionChain) Calls() []OptionContract {
	return c.byType(ContractCall)
}

// Puts returns the put contracts in the chain.
func (c *OptionChain) Puts() []OptionContract {
	return c.byType(ContractPut)
}

func (c *OptionChain) byType(t ContractType) []OptionContract {
	var out []OptionContract
	for _, contract := range c.Contracts {
		if contract.Type == t {
			out = append(out, contract)
		}
	}
	return out
}
