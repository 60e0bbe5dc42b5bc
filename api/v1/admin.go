package v1

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapTrade/errcode"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
	types "github.com/ProjectsTask/EasySwapTrade/types/v1"
	"github.com/ProjectsTask/EasySwapTrade/xhttp"
)

// GetFeeHandler 查询当前费率配置
func GetFeeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		fee := svcCtx.Registry.Fee()
		xhttp.OkJson(c, types.FeeResp{
			Rate:      fee.Rate,
			Precision: fee.Precision,
			Recipient: fee.Recipient.Hex(),
		})
	}
}

// SetFeeHandler 管理员更新费率配置
func SetFeeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param types.FeeParam
		if err := c.ShouldBindJSON(&param); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		err := svcCtx.Registry.SetFee(common.HexToAddress(param.Caller), param.Rate, common.HexToAddress(param.Recipient))
		if err != nil {
			tradeError(c, err)
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// allowlistHandler 准入表变更的公共逻辑
func allowlistHandler(svcCtx *svc.ServerCtx, apply func(svcCtx *svc.ServerCtx, caller, addr common.Address) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param types.AllowlistParam
		if err := c.ShouldBindJSON(&param); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		err := apply(svcCtx, common.HexToAddress(param.Caller), common.HexToAddress(param.Address))
		if err != nil {
			tradeError(c, err)
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// AddCurrencyHandler 管理员添加可结算币种
func AddCurrencyHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return allowlistHandler(svcCtx, func(s *svc.ServerCtx, caller, addr common.Address) error {
		return s.Registry.AddCurrency(caller, addr)
	})
}

// RemoveCurrencyHandler 管理员移除可结算币种
func RemoveCurrencyHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return allowlistHandler(svcCtx, func(s *svc.ServerCtx, caller, addr common.Address) error {
		return s.Registry.RemoveCurrency(caller, addr)
	})
}

// AddCollectionHandler 管理员添加可交易集合
func AddCollectionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return allowlistHandler(svcCtx, func(s *svc.ServerCtx, caller, addr common.Address) error {
		return s.Registry.AddCollection(caller, addr)
	})
}

// RemoveCollectionHandler 管理员移除可交易集合
func RemoveCollectionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return allowlistHandler(svcCtx, func(s *svc.ServerCtx, caller, addr common.Address) error {
		return s.Registry.RemoveCollection(caller, addr)
	})
}

// ListCurrenciesHandler 查询准入币种列表
func ListCurrenciesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		currencies := svcCtx.Registry.Currencies()
		out := make([]string, 0, len(currencies))
		for _, cur := range currencies {
			out = append(out, cur.Hex())
		}
		xhttp.OkJson(c, struct {
			Result []string `json:"result"`
		}{Result: out})
	}
}

// ListCollectionsHandler 查询准入集合列表
func ListCollectionsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		collections := svcCtx.Registry.Collections()
		out := make([]string, 0, len(collections))
		for _, col := range collections {
			out = append(out, col.Hex())
		}
		xhttp.OkJson(c, struct {
			Result []string `json:"result"`
		}{Result: out})
	}
}
