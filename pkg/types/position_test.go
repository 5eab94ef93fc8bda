package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosition() *PositionRequest {
	return &PositionRequest{
		CollateralToken:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		BorrowToken:      "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		CollateralAmount: "10",
		BorrowAmount:     "1000.5",
		UserAddress:      "0x000000000000000000000000000000000000dEaD",
	}
}

func TestPositionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PositionRequest)
		wantErr bool
	}{
		{
			name:   "valid request",
			mutate: func(r *PositionRequest) {},
		},
		{
			name:   "fractional amounts are fine",
			mutate: func(r *PositionRequest) { r.CollateralAmount = "0.0001" },
		},
		{
			name:    "bad collateral address",
			mutate:  func(r *PositionRequest) { r.CollateralToken = "0x123" },
			wantErr: true,
		},
		{
			name:    "bad borrow address",
			mutate:  func(r *PositionRequest) { r.BorrowToken = "dai" },
			wantErr: true,
		},
		{
			name:    "bad user address",
			mutate:  func(r *PositionRequest) { r.UserAddress = "" },
			wantErr: true,
		},
		{
			name: "same token both sides",
			mutate: func(r *PositionRequest) {
				r.BorrowToken = r.CollateralToken
			},
			wantErr: true,
		},
		{
			name: "same token different case",
			mutate: func(r *PositionRequest) {
				r.BorrowToken = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
			},
			wantErr: true,
		},
		{
			name:    "empty collateral amount",
			mutate:  func(r *PositionRequest) { r.CollateralAmount = "  " },
			wantErr: true,
		},
		{
			name:    "non numeric borrow amount",
			mutate:  func(r *PositionRequest) { r.BorrowAmount = "ten" },
			wantErr: true,
		},
		{
			name:    "zero collateral amount",
			mutate:  func(r *PositionRequest) { r.CollateralAmount = "0" },
			wantErr: true,
		},
		{
			name:    "negative borrow amount",
			mutate:  func(r *PositionRequest) { r.BorrowAmount = "-5" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPosition()
			tt.mutate(req)

			err := req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			var se *SettlementError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, KindInvalidRequest, se.Kind)
			assert.True(t, IsCallerFault(se.Kind))
		})
	}
}
