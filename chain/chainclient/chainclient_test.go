package chainclient

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestEvmClientCannotSettleNative(t *testing.T) {
	c := &EvmClient{operator: common.HexToAddress("0x000000000000000000000000000000000000dEaD")}
	assert.False(t, c.CanSettleNative())
}

func TestEvmClientTransferNativeRejectsThirdParty(t *testing.T) {
	c := &EvmClient{operator: common.HexToAddress("0x000000000000000000000000000000000000dEaD")}
	buyer := common.HexToAddress("0xAaAaAaAaaAaAaAaAaAaaAAAAAaaaAaaaaAaAaAa1")
	seller := common.HexToAddress("0xBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB2")

	// 运营方无法代扣第三方原生币余额, 在发起任何链上调用之前拒绝
	err := c.TransferNative(context.Background(), buyer, seller, big.NewInt(1))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot debit native balance")
}
