// gamerec 是基于内容的游戏推荐服务。
//
//	gamerec recommend 76561197960287930 --metric euclidean
//	gamerec serve --config gamerec.yaml
package main

import (
	"context"
	"os"

	_ "github.com/weron33/GOG-task/config/builders"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
