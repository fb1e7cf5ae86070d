package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/weron33/GOG-task/core"
)

// DefaultKeyPrefix 是交互 LIST 的默认 key 前缀。
const DefaultKeyPrefix = "gamerec:interactions"

// RedisOptions 是 RedisInteractionStore 的连接参数。
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisInteractionStore 是 Redis 实现的 InteractionStore。
// 每个用户一个 LIST：key = {prefix}:{userID}，元素 = "{itemID}:{weight}"，按写入顺序排列。
type RedisInteractionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisInteractionStore 建立连接并 Ping 一次；不可达时返回 core.ErrStoreUnavailable。
func NewRedisInteractionStore(ctx context.Context, opts RedisOptions) (*RedisInteractionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s: %v", core.ErrStoreUnavailable, opts.Addr, err)
	}
	return NewRedisInteractionStoreWithClient(client, opts.KeyPrefix), nil
}

// NewRedisInteractionStoreWithClient 复用已有客户端（例如共享连接池）。
func NewRedisInteractionStoreWithClient(client *redis.Client, prefix string) *RedisInteractionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisInteractionStore{client: client, prefix: prefix}
}

func (r *RedisInteractionStore) Name() string { return "redis" }

func (r *RedisInteractionStore) key(userID int64) string {
	return r.prefix + ":" + strconv.FormatInt(userID, 10)
}

func encodeEntry(rec core.InteractionRecord) string {
	return strconv.FormatInt(rec.ItemID, 10) + ":" + strconv.FormatFloat(rec.Weight, 'g', -1, 64)
}

func decodeEntry(userID int64, entry string) (core.InteractionRecord, error) {
	item, weight, ok := strings.Cut(entry, ":")
	if !ok {
		return core.InteractionRecord{}, fmt.Errorf("missing weight")
	}
	itemID, err := strconv.ParseInt(item, 10, 64)
	if err != nil {
		return core.InteractionRecord{}, err
	}
	w, err := strconv.ParseFloat(weight, 64)
	if err != nil {
		return core.InteractionRecord{}, err
	}
	return core.InteractionRecord{UserID: userID, ItemID: itemID, Weight: w}, nil
}

// GetInteractions 按写入顺序返回用户交互，用户不存在时返回空切片。
func (r *RedisInteractionStore) GetInteractions(ctx context.Context, userID int64) ([]core.InteractionRecord, error) {
	entries, err := r.client.LRange(ctx, r.key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.InteractionRecord, 0, len(entries))
	for _, e := range entries {
		rec, err := decodeEntry(userID, e)
		if err != nil {
			return nil, fmt.Errorf("store: bad entry %q in %s: %w", e, r.key(userID), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// PutInteractions 通过 pipeline 批量 RPUSH，重复的 (user, item) 各自保留一条。
func (r *RedisInteractionStore) PutInteractions(ctx context.Context, records []core.InteractionRecord) error {
	if len(records) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, rec := range records {
		pipe.RPush(ctx, r.key(rec.UserID), encodeEntry(rec))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisInteractionStore) Close() error {
	return r.client.Close()
}

var _ core.InteractionStore = (*RedisInteractionStore)(nil)
