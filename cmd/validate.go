package cmd

import (
	"log/slog"

	"github.com/devon-mar/linkpager/pager"
	"github.com/devon-mar/linkpager/source"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:    "validate",
	Short:  "Validate the config.",
	PreRun: initConfig,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runValidate())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate() int {
	if err := pager.ValidateConfig(&pager.Config{Templates: config.Templates}); err != nil {
		slog.Error("Error validating templates", "err", err)
		return 1
	}

	var ret int
	for name, cfg := range config.Sources {
		if err := source.Validate(name, cfg.Type, cfg.Config); err != nil {
			ret++
			slog.Error("error validating source", "source", name, "err", err)
		}
	}
	return ret
}
