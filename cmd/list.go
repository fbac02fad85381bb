package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:    "list SOURCE",
	Short:  "List the items of a source.",
	Args:   cobra.ExactArgs(1),
	PreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		exit(list(args[0]))
	},
}

var listLimit *int

func init() {
	rootCmd.AddCommand(listCmd)
	listLimit = listCmd.Flags().Int("limit", 0, "max items to list (0 for all)")
}

func list(name string) int {
	p := mustNewPager()
	logger := log.WithField("source", name)

	items, err := p.List(name, *listLimit, logger)
	if err != nil {
		logger.WithError(err).Error("Error listing source")
		return 1
	}
	for _, itm := range items {
		s, err := p.Format(itm)
		if err != nil {
			logger.WithError(err).Error("Error formatting item")
			return 1
		}
		fmt.Println(s)
	}
	return 0
}
