package dao

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapTrade/model"
)

func TestOrderCacheKey(t *testing.T) {
	digest := "0x49ab5c3d42a1f3e37257f6eb8b2b7dd7e7a1d8c4b6a0f9e8d7c6b5a493827160"
	assert.Equal(t, "cache:order:"+digest, orderCacheKey(digest))
}

func TestOrderCacheCodec(t *testing.T) {
	record := &model.OrderRecord{
		Digest:     "0x49ab5c3d42a1f3e37257f6eb8b2b7dd7e7a1d8c4b6a0f9e8d7c6b5a493827160",
		Side:       model.OrderSideListing,
		Maker:      "0xAaAaAaAaaAaAaAaAaAaaAAAAAaaaAaaaaAaAaAa1",
		Taker:      "0xBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB2",
		Collection: "0x2222222222222222222222222222222222222222",
		Currency:   "0x1111111111111111111111111111111111111111",
		TokenID:    "42",
		Amount:     decimal.RequireFromString("1000000"),
		Fee:        decimal.RequireFromString("20000"),
		Nonce:      7,
		Status:     model.OrderStatusFilled,
		EventTime:  1700000000,
	}

	val, err := encodeOrderCache(record)
	require.NoError(t, err)

	got, err := decodeOrderCache(val)
	require.NoError(t, err)
	assert.Equal(t, record.Digest, got.Digest)
	assert.Equal(t, record.Side, got.Side)
	assert.Equal(t, record.Maker, got.Maker)
	assert.Equal(t, record.Taker, got.Taker)
	assert.Equal(t, record.Collection, got.Collection)
	assert.Equal(t, record.Currency, got.Currency)
	assert.Equal(t, record.TokenID, got.TokenID)
	assert.True(t, record.Amount.Equal(got.Amount))
	assert.True(t, record.Fee.Equal(got.Fee))
	assert.Equal(t, record.Nonce, got.Nonce)
	assert.Equal(t, record.Status, got.Status)
	assert.Equal(t, record.EventTime, got.EventTime)
}

func TestOrderCacheDecodeCorrupt(t *testing.T) {
	_, err := decodeOrderCache("not-json")
	assert.Error(t, err)
}
