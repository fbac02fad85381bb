package cmd

import (
	"fmt"

	"github.com/devon-mar/linkpager/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var walkCmd = &cobra.Command{
	Use:    "walk SOURCE",
	Short:  "Print every page of a source and its links.",
	Args:   cobra.ExactArgs(1),
	PreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		exit(walk(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
}

func walk(name string) int {
	p := mustNewPager()
	logger := log.WithField("source", name)

	err := p.Walk(name, logger, func(page *source.Page) error {
		fmt.Println(page.URL)
		for _, l := range page.Links {
			fmt.Printf("  %s: %v\n", l.Rel, l.Value)
		}
		for _, itm := range page.Items {
			s, err := p.Format(itm)
			if err != nil {
				return err
			}
			fmt.Println("    " + s)
		}
		return nil
	})
	if err != nil {
		logger.WithError(err).Error("Error walking source")
		return 1
	}
	return 0
}
