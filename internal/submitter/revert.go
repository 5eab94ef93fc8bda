package submitter

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// DecodeRevert extracts the ABI-encoded Error(string) reason from an
// eth_call failure. Returns ("", false) when the error carries no
// decodable revert data.
func DecodeRevert(err error) (string, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return "", false
	}

	var raw []byte
	switch data := dataErr.ErrorData().(type) {
	case string:
		decoded, err := hexutil.Decode(data)
		if err != nil {
			return "", false
		}
		raw = decoded
	case []byte:
		raw = data
	default:
		return "", false
	}

	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}

	return reason, true
}
