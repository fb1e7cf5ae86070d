package feature

import (
	"math"

	"github.com/weron33/GOG-task/core"
)

// ItemFeatureTuple 是单条 ItemRecord 编码后的结构化特征。
type ItemFeatureTuple struct {
	ID          int64
	SeriesID    int64
	GenreIDs    [3]int64
	DeveloperID int64
	PublisherID int64
	Price       float64 // NaN 表示缺失
	Modes       ModeFlags
	TitleCode   int
	TaglineCode int
}

// ItemEncoder 把 ItemRecord 编码为 ItemFeatureTuple。
// 标题和宣传语通过共享的 CategoryTable 编码，其余 ID 字段原样透传。
type ItemEncoder struct {
	Titles   *CategoryTable
	Taglines *CategoryTable
}

// NewItemEncoder 用一批记录的快照构建编码表。
// 同一批记录（同一顺序）总是得到相同的编码。
func NewItemEncoder(records []core.ItemRecord) *ItemEncoder {
	titles := make([]string, len(records))
	taglines := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
		taglines[i] = r.Tagline
	}
	return &ItemEncoder{
		Titles:   BuildCategoryTable(titles),
		Taglines: BuildCategoryTable(taglines),
	}
}

// Encode 编码单条记录。
func (e *ItemEncoder) Encode(r core.ItemRecord) ItemFeatureTuple {
	price := r.Price
	if math.IsInf(price, 0) {
		price = math.NaN()
	}
	return ItemFeatureTuple{
		ID:          r.ID,
		SeriesID:    r.SeriesID,
		GenreIDs:    [3]int64{r.Genre1ID, r.Genre2ID, r.Genre3ID},
		DeveloperID: r.DeveloperID,
		PublisherID: r.PublisherID,
		Price:       price,
		Modes:       ParseModes(r.Modes),
		TitleCode:   e.Titles.Code(r.Title),
		TaglineCode: e.Taglines.Code(r.Tagline),
	}
}

// EncodeAll 按输入顺序编码全部记录。
func (e *ItemEncoder) EncodeAll(records []core.ItemRecord) []ItemFeatureTuple {
	out := make([]ItemFeatureTuple, len(records))
	for i, r := range records {
		out[i] = e.Encode(r)
	}
	return out
}
