package main

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/weron33/GOG-task/core"
)

type recommendOutput struct {
	UserID int64                 `json:"user_id"`
	Items  []core.NeighborResult `json:"items,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func newRecommendCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend USER_ID...",
		Short: "Print recommendations for one or more users as JSON lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := cmd.Context()

			rec, err := bootstrap(ctx, cfg, f.seed, log, nil)
			if err != nil {
				return err
			}
			defer rec.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, arg := range args {
				var userID any = arg
				if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
					userID = id
				}
				items, err := rec.GetRecommendations(ctx, userID)
				out := recommendOutput{Items: items}
				if id, ok := userID.(int64); ok {
					out.UserID = id
				}
				if err != nil {
					if !core.IsNoProfile(err) && !core.IsTypeInputError(err) {
						return err
					}
					out.Error = err.Error()
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
