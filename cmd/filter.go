package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/platinenmacher/pio-helpers/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	filterFile     string
	filterPatterns []string
	listPatterns   bool
)

var filterCmd = &cobra.Command{
	Use:   "filter [flags] [-- monitor-command [args...]]",
	Short: "Filter serial monitor output by glob patterns",
	Long: `Filter serial monitor output by glob patterns.

Patterns are read one per line from the filter file (monitor.filter by
default). A line is printed when it matches any pattern; with no patterns
every line is printed. Patterns are shell-style and case-sensitive:
"*" any text, "?" one character, "[seq]" and "[!seq]" character sets.

Input is read from stdin, or from the stdout of a monitor command given
after "--":

  pio-helpers filter -- pio device monitor -b 115200

An unterminated last line is never printed. A missing filter file is fatal.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilter(cmd, args)
	},
}

func init() {
	filterCmd.Flags().StringVar(&filterFile, "filter-file", "", "pattern file (default: from config, monitor.filter)")
	filterCmd.Flags().StringArrayVarP(&filterPatterns, "pattern", "p", nil, "extra pattern, may be repeated")
	filterCmd.Flags().BoolVar(&listPatterns, "list", false, "print the loaded patterns and exit")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	path := cfg.Filter.File
	if filterFile != "" {
		path = filterFile
	}

	extra := make([]string, 0, len(cfg.Filter.Patterns)+len(filterPatterns))
	extra = append(extra, cfg.Filter.Patterns...)
	extra = append(extra, filterPatterns...)

	f, err := monitor.NewFromFile(path, log, extra...)
	if err != nil {
		return err
	}

	if listPatterns {
		renderPatterns(cmd.OutOrStdout(), path, f.Patterns(), len(f.Patterns())-len(extra))
		return nil
	}

	command := args
	if len(command) == 0 {
		command = cfg.Filter.Command
	}

	if len(command) > 0 {
		log.Debug("Filtering monitor command", "command", command[0], "args", command[1:])
		err = monitor.RunCommand(cmd.Context(), command[0], command[1:], f,
			cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	} else {
		log.Debug("Filtering stdin", "patterns", len(f.Patterns()))
		err = monitor.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), f)
	}

	if rest := f.Buffered(); rest != "" {
		log.Debug("Dropped unterminated line", "bytes", len(rest))
	}
	return err
}

// renderPatterns prints the patterns in match order; the first fromFile
// came from the filter file, the rest from config or flags.
func renderPatterns(w io.Writer, path string, patterns []string, fromFile int) {
	if len(patterns) == 0 {
		fmt.Fprintf(w, "No patterns in %s, every line is printed\n", path)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Pattern", "Source"})
	for i, p := range patterns {
		source := path
		if i >= fromFile {
			source = "extra"
		}
		t.AppendRow(table.Row{i + 1, strconv.Quote(p), source})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
