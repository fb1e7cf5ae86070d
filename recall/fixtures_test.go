package recall

import (
	"math"

	"github.com/weron33/GOG-task/core"
)

// testItems 构造一个小目录：id=5 有两条子商品记录。
func testItems() []core.ItemRecord {
	return []core.ItemRecord{
		{ID: 5, Title: "Alpha", SeriesID: 1, Genre1ID: 3, Genre2ID: 4, DeveloperID: 10, PublisherID: 20, Price: 10, Modes: "Single-player"},
		{ID: 5, Title: "Alpha DLC", SeriesID: 1, Genre1ID: 3, Genre2ID: 6, DeveloperID: 10, PublisherID: 20, Price: 20, Modes: "Single-player, Co-op"},
		{ID: 7, Title: "Beta", SeriesID: 2, Genre1ID: 9, Genre2ID: 1, DeveloperID: 11, PublisherID: 21, Price: 30, Modes: "Multi-player"},
		{ID: 9, Title: "Gamma", SeriesID: 0, Genre1ID: 3, Genre2ID: 4, DeveloperID: 12, PublisherID: 20, Price: math.NaN(), Modes: ""},
	}
}
