package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.InteractionStore 接口。
//
// 示例：
//   var s core.InteractionStore = NewMemoryInteractionStore()
//   s, err := NewRedisInteractionStore(ctx, RedisOptions{Addr: "localhost:6379"})
