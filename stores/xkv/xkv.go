package xkv

import (
	"github.com/zeromicro/go-zero/core/stores/kv"
)

// Store KV 存储封装 (Redis)
// 内嵌 go-zero 的 kv.Store, 暴露其全部读写能力
type Store struct {
	kv.Store
}

// NewStore 根据配置创建 KV 存储实例
func NewStore(c kv.KvConf) *Store {
	return &Store{
		Store: kv.NewStore(c),
	}
}

// ReadString 读取字符串值, key 不存在时返回空串
func (s *Store) ReadString(key string) (string, error) {
	val, err := s.Get(key)
	if err != nil && err.Error() == "redis: nil" {
		return "", nil
	}
	return val, err
}

// WriteString 写入字符串值并设置过期时间 (秒), seconds <= 0 表示不过期
func (s *Store) WriteString(key, val string, seconds int) error {
	if seconds <= 0 {
		return s.Set(key, val)
	}
	return s.Setex(key, val, seconds)
}
