package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gluemc/gluemc-go/pkg/mclog/lang"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List death-message templates",
	Long: `Load the localization source given by --lang and list the death-message
templates built from it, in match order.

With --cache, list the localization sources stored in the --lang-cache
database instead.

Examples:
  # Templates from the default English localization
  gluemc templates

  # From a local copy
  gluemc templates --lang ./en_us.json

  # What the cache holds
  gluemc templates --cache`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	f := templatesCmd.Flags()
	f.Bool("cache", false, "List cached localization sources instead of templates")
	f.Bool("count", false, "Print only the number of templates")
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if viper.GetBool("cache") {
		return listCache(out, viper.GetString("lang-cache"))
	}

	t, err := loadTemplates(cmd.Context(), viper.GetString("lang"), viper.GetString("lang-cache"), logger)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("no localization source (--lang is %q)", viper.GetString("lang"))
	}

	if viper.GetBool("count") {
		_, err := fmt.Fprintf(out, "%d templates (%d skipped)\n", t.Len(), t.Skipped())
		return err
	}
	return writeTemplates(out, t)
}

func writeTemplates(out io.Writer, t *lang.Table) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKEY\tTEMPLATE")
	for i, tmpl := range t.All() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, tmpl.Key, tmpl.String())
	}
	return tw.Flush()
}

func listCache(out io.Writer, path string) error {
	if path == "" {
		return fmt.Errorf("no cache configured (--lang-cache is empty)")
	}
	c, err := openCache(path, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.List()
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "cache is empty")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "URL\tSIZE\tFETCHED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.URL, humanize.Bytes(uint64(e.Size)), humanize.Time(e.Fetched))
	}
	return tw.Flush()
}
