package core

import "math"

// ItemRecord 是物品表中的一行原始数据（一个物品可能对应多行，每行一个子商品）。
//
// 缺失值约定：
//   - ID 类字段缺失时为 0
//   - Price 缺失时为 NaN（聚合均值时跳过）
//   - Modes / Title / Tagline 缺失时为空字符串
type ItemRecord struct {
	ID          int64
	Title       string
	SeriesID    int64
	Genre1ID    int64
	Genre2ID    int64
	Genre3ID    int64
	DeveloperID int64
	PublisherID int64
	Price       float64
	Modes       string // 逗号分隔，例如 "Single-player, Co-op"
	Tagline     string
}

// HasPrice 报告 Price 是否有值。
func (r ItemRecord) HasPrice() bool {
	return !math.IsNaN(r.Price)
}

// InteractionRecord 是用户与物品的一次交互。
// Weight（例如游戏时长）只参与 join，不参与聚合。
type InteractionRecord struct {
	UserID int64
	ItemID int64
	Weight float64
}
