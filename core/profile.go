package core

// ProfileDims 是画像向量的固定维度。
const ProfileDims = 10

// 画像向量各维度的下标，顺序固定，物品画像与用户画像共用。
const (
	FieldSeries     = iota // most_freq_series
	FieldGenre1            // most_freq_genre_1
	FieldGenre2            // most_freq_genre_2
	FieldGenre3            // most_freq_genre_3
	FieldDeveloper         // most_freq_dev
	FieldPublisher         // most_freq_pub
	FieldPrice             // avg_price
	FieldSingleMode        // avg_single_mode
	FieldCoopMode          // avg_coop_mode
	FieldMultiMode         // avg_multi_mode
)

// ProfileFieldNames 与 Field* 下标一一对应。
var ProfileFieldNames = [ProfileDims]string{
	"most_freq_series",
	"most_freq_genre_1",
	"most_freq_genre_2",
	"most_freq_genre_3",
	"most_freq_dev",
	"most_freq_pub",
	"avg_price",
	"avg_single_mode",
	"avg_coop_mode",
	"avg_multi_mode",
}

// ProfileVector 是一个物品或用户的 10 维画像。
// 数组类型保证维度固定，可以直接比较和拷贝。
type ProfileVector [ProfileDims]float64

// Slice 返回向量的切片拷贝，供度量函数使用。
func (v ProfileVector) Slice() []float64 {
	out := make([]float64, ProfileDims)
	copy(out, v[:])
	return out
}

// Features 以字段名展开画像，便于打日志或写入 Item.Features。
func (v ProfileVector) Features() map[string]float64 {
	out := make(map[string]float64, ProfileDims)
	for i, name := range ProfileFieldNames {
		out[name] = v[i]
	}
	return out
}

// NeighborResult 是一次近邻检索的结果。
type NeighborResult struct {
	ItemID   int64   `json:"item_id"`
	Distance float64 `json:"distance"`
}
