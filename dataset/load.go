package dataset

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/weron33/GOG-task/core"
)

// Snapshot 是一次加载得到的全部数据。
type Snapshot struct {
	Items        []core.ItemRecord
	Interactions []core.InteractionRecord
}

// LoadItems 从文件读取物品表。
func LoadItems(path string) ([]core.ItemRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open items: %w", err)
	}
	defer f.Close()
	return ReadItems(f)
}

// LoadInteractions 从文件读取交互表。
func LoadInteractions(path string) ([]core.InteractionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open interactions: %w", err)
	}
	defer f.Close()
	return ReadInteractions(f)
}

// LoadAll 并发读取两张表，任一失败即返回错误。
func LoadAll(ctx context.Context, itemsPath, interactionsPath string) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := LoadItems(itemsPath)
		if err != nil {
			return err
		}
		snap.Items = items
		return ctx.Err()
	})
	g.Go(func() error {
		rows, err := LoadInteractions(interactionsPath)
		if err != nil {
			return err
		}
		snap.Interactions = rows
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
