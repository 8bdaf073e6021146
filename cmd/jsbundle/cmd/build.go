package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"module-bundler/pkg/api"
)

var buildCmd = &cobra.Command{
	Use:   "build [entry files...]",
	Short: "Bundle the given entry files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringP("outdir", "o", "", "directory every output file is written into")
	buildCmd.Flags().String("outfile", "", "exact output file name; only valid with a single entry")
	buildCmd.Flags().String("entry-names", "[name].js", "output file name template; \"[name]\" expands to the entry's logical name")
	buildCmd.Flags().StringSlice("external", nil, "glob pattern of specifiers to leave unbundled; may be repeated")
	buildCmd.Flags().Bool("no-treeshake", false, "disable dead-code elimination")
	viper.BindPFlag("build.outdir", buildCmd.Flags().Lookup("outdir"))
	viper.BindPFlag("build.entryNames", buildCmd.Flags().Lookup("entry-names"))
	viper.BindPFlag("build.external", buildCmd.Flags().Lookup("external"))
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	outfile, _ := cmd.Flags().GetString("outfile")
	outdir := viper.GetString("build.outdir")
	entryNames := viper.GetString("build.entryNames")
	external := viper.GetStringSlice("build.external")
	noTreeshake, _ := cmd.Flags().GetBool("no-treeshake")
	treeshake := !noTreeshake

	input := make(map[string]string, len(args))
	for _, path := range args {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		input[name] = path
	}

	result, err := api.Build(api.Options{
		Input:          input,
		External:       external,
		Treeshake:      &treeshake,
		File:           outfile,
		EntryFileNames: entryNames,
	})
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}

	for _, f := range result.OutputFiles {
		path := f.Path
		if outdir != "" {
			path = filepath.Join(outdir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating output directory for %q: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(f.Code), 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", path, err)
		}
		pterm.Success.Printf("wrote %s (%d bytes)\n", path, len(f.Code))
	}
	return nil
}
