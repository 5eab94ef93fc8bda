package bundle

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Lending pool router entry points used by the supply and borrow steps.
const poolRouterABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "asset", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "address", "name": "onBehalfOf", "type": "address"},
			{"internalType": "uint16", "name": "referralCode", "type": "uint16"}
		],
		"name": "supply",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "asset", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "uint256", "name": "interestRateMode", "type": "uint256"},
			{"internalType": "uint16", "name": "referralCode", "type": "uint16"},
			{"internalType": "address", "name": "onBehalfOf", "type": "address"}
		],
		"name": "borrow",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Flash-loan receiver entry point that initiates the whole operation.
const receiverABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "asset", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "bytes", "name": "params", "type": "bytes"}
		],
		"name": "startFlashLoan",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// contractABIs bundles the parsed ABIs and the argument codec for the
// aggregated-call params blob.
type contractABIs struct {
	pool     abi.ABI
	receiver abi.ABI
	calls    abi.Arguments
}

func parseABIs() (*contractABIs, error) {
	pool, err := abi.JSON(strings.NewReader(poolRouterABI))
	if err != nil {
		return nil, fmt.Errorf("parse pool router ABI: %w", err)
	}

	receiver, err := abi.JSON(strings.NewReader(receiverABI))
	if err != nil {
		return nil, fmt.Errorf("parse receiver ABI: %w", err)
	}

	// The receiver decodes params as an ordered (target, payload)[] array
	// and executes each sub-call in sequence.
	callsType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "target", Type: "address"},
		{Name: "payload", Type: "bytes"},
	})
	if err != nil {
		return nil, fmt.Errorf("build calls type: %w", err)
	}

	return &contractABIs{
		pool:     pool,
		receiver: receiver,
		calls:    abi.Arguments{{Name: "calls", Type: callsType}},
	}, nil
}
