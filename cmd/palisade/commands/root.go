package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"palisade/internal/app"
)

var (
	configFile string
	cfg        app.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:   "palisade",
		Short: "Secure host/enclave message channel",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = app.Load(configFile)
			if err != nil {
				return err
			}
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")

	root.AddCommand(demoCmd(), peerCmd(), keygenCmd())
	return root.Execute()
}
