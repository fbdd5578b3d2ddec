package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursehub/internal/repository"
	"coursehub/internal/service"
	"coursehub/pkg/redis"
)

func newRefreshTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-tags",
		Short: "重新统计热门标签并写入缓存",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rdb, err := redis.NewClient(&a.cfg.Redis, a.logger)
			if err != nil {
				return err
			}
			defer rdb.Close()

			tags := service.NewTagService(repository.NewRepository(a.db), rdb, a.cfg.Cache.PopularTagsTTL, a.logger)
			popular, err := tags.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range popular {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", t.Slug, t.Count)
			}
			return nil
		},
	}
}
