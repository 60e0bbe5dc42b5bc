package v1

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapTrade/errcode"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
	types "github.com/ProjectsTask/EasySwapTrade/types/v1"
	"github.com/ProjectsTask/EasySwapTrade/xhttp"
)

// CancelOrdersHandler 批量取消调用方自己的 nonce
func CancelOrdersHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param types.CancelOrdersParam
		if err := c.ShouldBindJSON(&param); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		err := svcCtx.Market.CancelOrders(c.Request.Context(), common.HexToAddress(param.Caller), param.Nonces)
		if err != nil {
			tradeError(c, err)
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// CancelAllOrdersHandler 抬升调用方的批量取消水位线
func CancelAllOrdersHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param types.CancelAllOrdersParam
		if err := c.ShouldBindJSON(&param); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		err := svcCtx.Market.CancelAllOrders(c.Request.Context(), common.HexToAddress(param.Caller), param.MinNonce)
		if err != nil {
			tradeError(c, err)
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// OrderStatusHandler 按 EIP-712 摘要查询订单的成交记录
// 订单是链下签名数据, 服务只在成交时第一次看到它, 未成交的摘要返回 unknown
func OrderStatusHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svcCtx.Dao == nil {
			xhttp.Error(c, errcode.NewCustomErr("order store is not enabled"))
			return
		}
		digest := c.Query("digest")
		if len(digest) != 66 || digest[:2] != "0x" {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		record, err := svcCtx.Dao.GetOrderByDigest(c.Request.Context(), digest)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		if record == nil {
			xhttp.OkJson(c, types.OrderStatusResp{Digest: digest, Status: "unknown"})
			return
		}

		xhttp.OkJson(c, types.OrderStatusResp{
			Digest:    record.Digest,
			Status:    record.Status,
			Side:      record.Side,
			Maker:     record.Maker,
			Taker:     record.Taker,
			EventTime: record.EventTime,
		})
	}
}

// NonceStatusHandler 查询某个 (user, nonce) 是否仍可用于结算
func NonceStatusHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.Query("user")
		if !common.IsHexAddress(user) {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		nonce, err := strconv.ParseUint(c.Query("nonce"), 10, 64)
		if err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		addr := common.HexToAddress(user)
		xhttp.OkJson(c, types.NonceStatusResp{
			User:  addr.Hex(),
			Nonce: nonce,
			Valid: svcCtx.OrderManager.IsValid(addr, nonce),
			Floor: svcCtx.OrderManager.Floor(addr),
		})
	}
}
