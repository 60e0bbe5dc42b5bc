package dao

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapTrade/model"
)

// ActivityFilter 活动查询过滤条件
type ActivityFilter struct {
	EventTypes []string // 事件类型列表, 空表示不过滤
	Maker      string   // 订单签名方地址
	Collection string   // 集合地址
	Page       int      // 页码, 从 1 开始
	PageSize   int      // 每页条数
}

// AddActivity 写入一条活动记录
func (d *Dao) AddActivity(ctx context.Context, activity *model.Activity) error {
	if err := d.DB.WithContext(ctx).Create(activity).Error; err != nil {
		return errors.Wrap(err, "failed on create activity")
	}
	return nil
}

// QueryActivities 分页查询活动记录, 按时间倒序
func (d *Dao) QueryActivities(ctx context.Context, filter ActivityFilter) ([]model.Activity, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	tx := d.DB.WithContext(ctx).Model(&model.Activity{})
	if len(filter.EventTypes) > 0 {
		tx = tx.Where("event_type in (?)", filter.EventTypes)
	}
	if filter.Maker != "" {
		tx = tx.Where("maker = ?", filter.Maker)
	}
	if filter.Collection != "" {
		tx = tx.Where("collection_address = ?", filter.Collection)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on count activities")
	}

	var activities []model.Activity
	err := tx.Order("event_time desc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&activities).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed on query activities")
	}

	return activities, total, nil
}
