package cmd

import (
	"log/slog"
	"os"

	"github.com/devon-mar/linkpager/pager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkpager",
	Short: "Follow Link headers through paginated APIs.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			slog.Error("Invalid log level.", "err", err)
			os.Exit(1)
		}
		log.SetLevel(lvl)
	},
}

var (
	cfgFile  string
	logLevel string
	config   *pager.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".linkpager.yml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
}

// Commands that need the config call this from PreRun.
func initConfig(*cobra.Command, []string) {
	var err error
	config, err = pager.ReadConfig(cfgFile)
	if err != nil {
		slog.Error("Error loading config.", "err", err)
		os.Exit(1)
	}
}

func mustNewPager() *pager.Pager {
	p, err := pager.NewPager(config)
	if err != nil {
		log.WithError(err).Fatal("Error initializing pager")
	}
	return p
}
