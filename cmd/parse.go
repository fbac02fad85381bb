package cmd

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/devon-mar/linkpager/linkhdr"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [VALUE...]",
	Short: "Parse Link header values.",
	Long: `Parse Link header values and print them as JSON, one line per value.

Without arguments, each line of stdin is parsed as a separate value.`,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runParse(args))
	},
}

var (
	parseTransform    string
	parseKeepOriginal bool
	parseStrict       bool
	parseWorkers      int
)

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseTransform, "transform", "identity", "transform to apply to each link, one of "+strings.Join(linkhdr.TransformNames(), ", "))
	parseCmd.Flags().BoolVar(&parseKeepOriginal, "keep-original", false, "print the raw value next to the parsed links")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "fail on relations other than next, prev, first and last")
	parseCmd.Flags().IntVar(&parseWorkers, "workers", 4, "max values to parse at once")
}

func runParse(args []string) int {
	opts, err := linkhdr.NewOptions(map[string]interface{}{
		linkhdr.OptionTransform:    parseTransform,
		linkhdr.OptionKeepOriginal: parseKeepOriginal,
		linkhdr.OptionStrict:       parseStrict,
	})
	if err != nil {
		log.WithError(err).Error("Invalid options")
		return 1
	}

	values := args
	if len(values) == 0 {
		values, err = readLines(os.Stdin)
		if err != nil {
			log.WithError(err).Error("Error reading stdin")
			return 1
		}
	}

	parsed, err := opts.ParseBatch(values, parseWorkers)
	if err != nil {
		log.WithError(err).Error("Error parsing")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	for i, entries := range parsed {
		out := linkhdr.Header{linkhdr.Key: entries}
		if opts.KeepOriginal {
			out = linkhdr.Header{linkhdr.Key: values[i], linkhdr.ParsedKey: entries}
		}
		if err := enc.Encode(out); err != nil {
			log.WithError(err).Error("Error writing output")
			return 1
		}
	}
	return 0
}

func readLines(f *os.File) ([]string, error) {
	var ret []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			ret = append(ret, line)
		}
	}
	return ret, s.Err()
}
