package v1

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapTrade/errcode"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
	types "github.com/ProjectsTask/EasySwapTrade/types/v1"
	"github.com/ProjectsTask/EasySwapTrade/xhttp"
)

// ExecuteListingHandler 执行挂单
// 买家提交卖家签名的挂单与支付金额, 引擎完成校验与结算
func ExecuteListingHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param types.ExecuteListingParam
		if err := c.ShouldBindJSON(&param); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		listing, err := toListing(&param)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		payment, err := parseBig(param.Payment)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		receipt, err := svcCtx.Market.ExecuteListing(c.Request.Context(), common.HexToAddress(param.Caller), listing, payment)
		if err != nil {
			tradeError(c, err)
			return
		}

		xhttp.OkJson(c, types.TradeReceiptResp{
			Digest: receipt.Digest.Hex(),
			Seller: receipt.Seller.Hex(),
			Buyer:  receipt.Buyer.Hex(),
			Amount: receipt.Amount.String(),
			Fee:    receipt.Fee.String(),
		})
	}
}

// AcceptOfferHandler 接受出价
// NFT 持有人提交买家签名的出价, 结算方向与执行挂单相反
func AcceptOfferHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param types.AcceptOfferParam
		if err := c.ShouldBindJSON(&param); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		offer, err := toOffer(&param)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		receipt, err := svcCtx.Market.AcceptOffer(c.Request.Context(), common.HexToAddress(param.Caller), offer)
		if err != nil {
			tradeError(c, err)
			return
		}

		xhttp.OkJson(c, types.TradeReceiptResp{
			Digest: receipt.Digest.Hex(),
			Seller: receipt.Seller.Hex(),
			Buyer:  receipt.Buyer.Hex(),
			Amount: receipt.Amount.String(),
			Fee:    receipt.Fee.String(),
		})
	}
}
