package v1

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapTrade/dao"
	"github.com/ProjectsTask/EasySwapTrade/errcode"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
	types "github.com/ProjectsTask/EasySwapTrade/types/v1"
	"github.com/ProjectsTask/EasySwapTrade/xhttp"
)

// ActivitiesHandler 分页查询市场活动记录, 供链下索引器拉取
// 支持按事件类型/签名方/集合过滤
func ActivitiesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svcCtx.Dao == nil {
			xhttp.Error(c, errcode.NewCustomErr("activity store is not enabled"))
			return
		}

		filter := dao.ActivityFilter{
			Maker:      c.Query("maker"),
			Collection: c.Query("collection"),
		}
		if eventTypes := c.Query("event_types"); eventTypes != "" {
			filter.EventTypes = strings.Split(eventTypes, ",")
		}
		if page, err := strconv.Atoi(c.Query("page")); err == nil {
			filter.Page = page
		}
		if pageSize, err := strconv.Atoi(c.Query("page_size")); err == nil {
			filter.PageSize = pageSize
		}

		activities, total, err := svcCtx.Dao.QueryActivities(c.Request.Context(), filter)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		items := make([]types.ActivityItem, 0, len(activities))
		for _, a := range activities {
			items = append(items, types.ActivityItem{
				EventType:  a.EventType,
				Maker:      a.Maker,
				Taker:      a.Taker,
				Collection: a.Collection,
				Currency:   a.Currency,
				TokenID:    a.TokenID,
				Amount:     a.Amount,
				Fee:        a.Fee,
				Nonce:      a.Nonce,
				Nonces:     a.Nonces,
				MinNonce:   a.MinNonce,
				EventTime:  a.EventTime,
			})
		}

		xhttp.OkJson(c, types.ActivitiesResp{Result: items, Count: total})
	}
}
