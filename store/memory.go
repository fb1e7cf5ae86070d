package store

import (
	"context"
	"sync"

	"github.com/weron33/GOG-task/core"
)

// MemoryInteractionStore 是内存实现的 InteractionStore，用于测试/开发/单机部署。
// 进程重启后数据丢失。
type MemoryInteractionStore struct {
	mu   sync.RWMutex
	data map[int64][]core.InteractionRecord
}

func NewMemoryInteractionStore() *MemoryInteractionStore {
	return &MemoryInteractionStore{
		data: make(map[int64][]core.InteractionRecord),
	}
}

func (m *MemoryInteractionStore) Name() string { return "memory" }

// GetInteractions 返回用户交互的拷贝，调用方可以自由修改。
func (m *MemoryInteractionStore) GetInteractions(ctx context.Context, userID int64) ([]core.InteractionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.data[userID]
	out := make([]core.InteractionRecord, len(rows))
	copy(out, rows)
	return out, nil
}

// PutInteractions 按输入顺序追加交互，重复的 (user, item) 各自保留一行。
func (m *MemoryInteractionStore) PutInteractions(ctx context.Context, records []core.InteractionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		m.data[r.UserID] = append(m.data[r.UserID], r)
	}
	return nil
}

// Users 返回当前存储的用户数。
func (m *MemoryInteractionStore) Users() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryInteractionStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[int64][]core.InteractionRecord)
	return nil
}

var _ core.InteractionStore = (*MemoryInteractionStore)(nil)
