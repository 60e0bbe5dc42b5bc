package dao

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/model"
)

// orderCacheSeconds 成交记录缓存时长
const orderCacheSeconds = 24 * 3600

// orderCacheKey 成交记录缓存键
func orderCacheKey(digest string) string {
	return fmt.Sprintf("cache:order:%s", digest)
}

// encodeOrderCache 成交记录 -> 缓存值 (JSON)
func encodeOrderCache(record *model.OrderRecord) (string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", errors.Wrap(err, "failed on encode order cache")
	}
	return string(raw), nil
}

// decodeOrderCache 缓存值 -> 成交记录
func decodeOrderCache(val string) (*model.OrderRecord, error) {
	var record model.OrderRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, errors.Wrap(err, "failed on decode order cache")
	}
	return &record, nil
}

// RecordFilledOrder 以摘要为唯一键记录一笔成交订单
// 成交是终态, 重复写入 (同摘要) 直接忽略; 记录同时写入 KV 缓存供状态查询
func (d *Dao) RecordFilledOrder(ctx context.Context, activity *model.Activity) error {
	side := model.OrderSideListing
	if activity.EventType == model.ActivityOfferAccepted {
		side = model.OrderSideOffer
	}

	record := &model.OrderRecord{
		Digest:     activity.Digest,
		Side:       side,
		Maker:      activity.Maker,
		Taker:      activity.Taker,
		Collection: activity.Collection,
		Currency:   activity.Currency,
		TokenID:    activity.TokenID,
		Amount:     activity.Amount,
		Fee:        activity.Fee,
		Nonce:      activity.Nonce,
		Status:     model.OrderStatusFilled,
		EventTime:  activity.EventTime,
	}
	err := d.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
	if err != nil {
		return errors.Wrap(err, "failed on record filled order")
	}

	if d.KvStore != nil {
		val, err := encodeOrderCache(record)
		if err != nil {
			return err
		}
		if err := d.KvStore.WriteString(orderCacheKey(activity.Digest), val, orderCacheSeconds); err != nil {
			return errors.Wrap(err, "failed on cache filled order")
		}
	}
	return nil
}

// GetOrderByDigest 按摘要查询成交记录, 不存在返回 nil
// 先读 KV 缓存, 未命中回源数据库并回填缓存
func (d *Dao) GetOrderByDigest(ctx context.Context, digest string) (*model.OrderRecord, error) {
	if d.KvStore != nil {
		val, err := d.KvStore.ReadString(orderCacheKey(digest))
		if err != nil {
			xzap.WithContext(ctx).Warn("failed on read order cache",
				zap.String("digest", digest), zap.Error(err))
		} else if val != "" {
			record, err := decodeOrderCache(val)
			if err == nil {
				return record, nil
			}
			// 缓存内容损坏, 回源数据库
			xzap.WithContext(ctx).Warn("failed on decode order cache",
				zap.String("digest", digest), zap.Error(err))
		}
	}

	var record model.OrderRecord
	err := d.DB.WithContext(ctx).Where("order_digest = ?", digest).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed on query order by digest")
	}

	if d.KvStore != nil {
		if val, err := encodeOrderCache(&record); err == nil {
			if err := d.KvStore.WriteString(orderCacheKey(digest), val, orderCacheSeconds); err != nil {
				xzap.WithContext(ctx).Warn("failed on backfill order cache",
					zap.String("digest", digest), zap.Error(err))
			}
		}
	}
	return &record, nil
}
