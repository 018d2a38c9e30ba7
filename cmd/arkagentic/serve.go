package main

import (
	"github.com/spf13/cobra"

	"github.com/ArkMaster123/arkagentic/config"
	srv "github.com/ArkMaster123/arkagentic/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			return srv.Run(cfg)
		},
	}
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/arkagentic.yaml)")

	return serve
}
