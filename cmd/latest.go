package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:    "latest [SOURCE...]",
	Short:  "Retrieves the latest version of each source.",
	PreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		exit(latest(args))
	},
}

func init() {
	rootCmd.AddCommand(latestCmd)
}

func latest(names []string) int {
	p := mustNewPager()
	if len(names) == 0 {
		names = p.Names()
	}

	var ret int
	for _, name := range names {
		logger := log.WithField("source", name)
		v, err := p.Latest(name, logger)
		if err != nil {
			logger.WithError(err).Error("Error getting latest version")
			ret++
			continue
		}
		logger.Debugf("latest version: %s (%s)", v.V, v.Item.Name)
		fmt.Printf("%s: %s\n", name, v)
	}
	return ret
}
