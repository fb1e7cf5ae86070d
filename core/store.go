package core

import "context"

// InteractionStore 是用户交互历史的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 实现：
//   - store.MemoryInteractionStore 实现此接口
//   - store.RedisInteractionStore 实现此接口
type InteractionStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// GetInteractions 读取单个用户的全部交互，用户不存在时返回空切片
	GetInteractions(ctx context.Context, userID int64) ([]InteractionRecord, error)

	// PutInteractions 批量追加交互（按 UserID 归档），重复的 (user, item) 不合并
	PutInteractions(ctx context.Context, records []InteractionRecord) error

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreUnavailable 表示存储后端不可用
	ErrStoreUnavailable = NewDomainError(ModuleStore, ErrorCodeUnavailable, "store: backend unavailable")
)
