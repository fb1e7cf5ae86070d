// Package dataset 读取物品表与交互表（制表符分隔，首行为表头）。
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/weron33/GOG-task/core"
)

// 物品表列名。
const (
	ColID          = "id"
	ColTitle       = "title"
	ColSeriesID    = "series_id"
	ColGenre1ID    = "genre_1_id"
	ColGenre2ID    = "genre_2_id"
	ColGenre3ID    = "genre_3_id"
	ColDeveloperID = "developer_id"
	ColPublisherID = "publisher_id"
	ColPrice       = "price"
	ColGameModes   = "game_modes"
	ColTagline     = "tagline"
)

// 交互表列名；物品列接受 game_id 或 item_id，权重列取第一个命中的别名，都没有时权重为 0。
const ColUserID = "user_id"

var (
	itemIDAliases = []string{"game_id", "item_id"}
	weightAliases = []string{"game_time", "play_time", "playtime", "weight", "engagement"}
)

// 这些字符串视为缺失值。
var missingTokens = map[string]struct{}{
	"": {}, "nan": {}, "NaN": {}, "null": {}, "NULL": {}, "None": {}, "NA": {}, "N/A": {},
}

func isMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// header 是列名到下标的映射。
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

func (h header) lookup(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i, true
		}
	}
	return -1, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseID 解析 ID 列；缺失为 0。导出工具常把带空值的整数列写成 "12.0"，这里一并接受。
func parseID(s string) (int64, error) {
	if isMissing(s) {
		return 0, nil
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}

// parseFloat 解析数值列；缺失为 NaN。
func parseFloat(s string) (float64, error) {
	if isMissing(s) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseText(s string) string {
	if isMissing(s) {
		return ""
	}
	return s
}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// readTSV 读出表头后逐行回调；行号从 2 开始（与编辑器显示一致）。
func readTSV(r io.Reader, fn func(h header, line int, row []string) error) error {
	cr := newTSVReader(r)
	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: missing header row")
	}
	if err != nil {
		return err
	}
	h := newHeader(first)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if err := fn(h, line, row); err != nil {
			return err
		}
	}
}

// ReadItems 读取物品表。缺少 id 列时返回 INVALID_INPUT；id 缺失的行被跳过，
// 其余列缺失按缺失值处理。
func ReadItems(r io.Reader) ([]core.ItemRecord, error) {
	var (
		out  []core.ItemRecord
		cols map[string]int
	)
	err := readTSV(r, func(h header, line int, row []string) error {
		if cols == nil {
			if _, ok := h[ColID]; !ok {
				return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
					"dataset: items table has no "+ColID+" column")
			}
			cols = make(map[string]int)
			for _, name := range []string{ColID, ColTitle, ColSeriesID, ColGenre1ID, ColGenre2ID, ColGenre3ID,
				ColDeveloperID, ColPublisherID, ColPrice, ColGameModes, ColTagline} {
				i, ok := h[name]
				if !ok {
					i = -1
				}
				cols[name] = i
			}
		}
		if isMissing(cell(row, cols[ColID])) {
			return nil
		}
		rec, err := parseItemRow(cols, row)
		if err != nil {
			return fmt.Errorf("dataset: items line %d: %w", line, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func parseItemRow(cols map[string]int, row []string) (core.ItemRecord, error) {
	var (
		rec  core.ItemRecord
		errs []error
	)
	id := func(col string, dst *int64) {
		v, err := parseID(cell(row, cols[col]))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", col, err))
		}
		*dst = v
	}
	id(ColID, &rec.ID)
	id(ColSeriesID, &rec.SeriesID)
	id(ColGenre1ID, &rec.Genre1ID)
	id(ColGenre2ID, &rec.Genre2ID)
	id(ColGenre3ID, &rec.Genre3ID)
	id(ColDeveloperID, &rec.DeveloperID)
	id(ColPublisherID, &rec.PublisherID)

	price, err := parseFloat(cell(row, cols[ColPrice]))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ColPrice, err))
	}
	rec.Price = price
	rec.Title = parseText(cell(row, cols[ColTitle]))
	rec.Modes = parseText(cell(row, cols[ColGameModes]))
	rec.Tagline = parseText(cell(row, cols[ColTagline]))
	return rec, errors.Join(errs...)
}

// ReadInteractions 读取交互表。缺少 user_id 或物品列时返回 INVALID_INPUT；
// user_id 或物品 ID 缺失的行被跳过（对应 inner join 时丢弃）。
func ReadInteractions(r io.Reader) ([]core.InteractionRecord, error) {
	var (
		out      []core.InteractionRecord
		resolved bool
	)
	userCol, itemCol, wCol := -1, -1, -1
	err := readTSV(r, func(h header, line int, row []string) error {
		if !resolved {
			var ok bool
			if userCol, ok = h.lookup(ColUserID); !ok {
				return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
					"dataset: interactions table has no "+ColUserID+" column")
			}
			if itemCol, ok = h.lookup(itemIDAliases...); !ok {
				return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
					"dataset: interactions table has no game_id/item_id column")
			}
			wCol, _ = h.lookup(weightAliases...)
			resolved = true
		}
		userRaw, itemRaw := cell(row, userCol), cell(row, itemCol)
		if isMissing(userRaw) || isMissing(itemRaw) {
			return nil
		}
		userID, err := parseID(userRaw)
		if err != nil {
			return fmt.Errorf("dataset: interactions line %d: %s: %w", line, ColUserID, err)
		}
		itemID, err := parseID(itemRaw)
		if err != nil {
			return fmt.Errorf("dataset: interactions line %d: item: %w", line, err)
		}
		weight, err := parseFloat(cell(row, wCol))
		if err != nil {
			return fmt.Errorf("dataset: interactions line %d: weight: %w", line, err)
		}
		if math.IsNaN(weight) {
			weight = 0
		}
		out = append(out, core.InteractionRecord{UserID: userID, ItemID: itemID, Weight: weight})
		return nil
	})
	return out, err
}
