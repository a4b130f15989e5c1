package cmd

import (
	"fmt"
	"path/filepath"

	"mipbuild/pkg/builder"
	"mipbuild/pkg/config"
	"mipbuild/pkg/logging"
	"mipbuild/pkg/manifest"
	"mipbuild/pkg/processors"
	"mipbuild/pkg/reporter"
	"mipbuild/pkg/selector"
	"mipbuild/pkg/tree"
	"mipbuild/pkg/version"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildFlags holds the raw values of the build command's flags.
type buildFlags struct {
	output   string
	files    []string
	policy   string
	workers  int
	manifest string
	quiet    bool
	list     bool
}

func newBuildCmd() *cobra.Command {
	flags := &buildFlags{}

	buildCmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build a source tree into the output directory",
		Long: `Build loads every selected file under dir (default: the config's dir),
runs the configured processors in order and writes the results.

Selector patterns are globs; a leading '!' excludes. Under the default
"override" policy every file is selected first and the last matching
pattern decides. Under "intersection" a file must satisfy every pattern.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, flags)
		},
	}

	buildCmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (default \"dist\")")
	buildCmd.Flags().StringArrayVarP(&flags.files, "files", "f", nil, "Selector pattern, repeatable (e.g. '!README.md')")
	buildCmd.Flags().StringVar(&flags.policy, "policy", "", "Selector policy: override or intersection")
	buildCmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Concurrent output writers (0 = one per CPU)")
	buildCmd.Flags().StringVarP(&flags.manifest, "manifest", "m", "", "Write a YAML build manifest to this path")
	buildCmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only print phase summaries")
	buildCmd.Flags().BoolVar(&flags.list, "list", false, "List the selected files and exit without building")
	return buildCmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, args []string, flags *buildFlags) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("error reading flags: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var dir, output, policy, manifestPath *string
	var workers *int
	var debug *bool
	if len(args) == 1 {
		dir = &args[0]
	}
	if cmd.Flags().Changed("output") {
		output = &flags.output
	}
	if cmd.Flags().Changed("policy") {
		policy = &flags.policy
	}
	if cmd.Flags().Changed("workers") {
		workers = &flags.workers
	}
	if cmd.Flags().Changed("manifest") {
		manifestPath = &flags.manifest
	}
	if cmd.Flags().Changed("debug") {
		d, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return nil, fmt.Errorf("error reading flags: %w", err)
		}
		debug = &d
	}
	cfg.MergeWithFlags(dir, output, flags.files, policy, workers, manifestPath, debug)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string, flags *buildFlags) error {
	cfg, err := loadConfig(cmd, args, flags)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Debug, "mipbuild", version.Get().Version)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	procs, err := processors.Build(cfg.Processors)
	if err != nil {
		return err
	}
	policy, err := selector.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}

	b, err := builder.New(builder.Options{
		Dir:        cfg.Dir,
		OutputDir:  cfg.Output,
		Files:      cfg.Files,
		Policy:     policy,
		Processors: procs,
		Encoding:   cfg.Encoding,
		Workers:    cfg.Workers,
		Logger:     logger,
		Reporter: reporter.Multi{
			reporter.NewConsole(cmd.OutOrStdout(), flags.quiet),
			reporter.NewZap(logger),
		},
	})
	if err != nil {
		return err
	}

	if flags.list {
		b.SetReporter(nil)
		if err := b.Prepare(); err != nil {
			return err
		}
		rels := make([]string, 0, len(b.Files()))
		for _, f := range b.Files() {
			rels = append(rels, f.RelativePath())
		}
		fmt.Fprint(cmd.OutOrStdout(), tree.Render(filepath.Base(b.Dir()), rels))
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d files selected\n", len(rels))
		return nil
	}

	var previous *manifest.Manifest
	if cfg.Manifest != "" {
		previous = readPreviousManifest(b.Fs(), cfg.Manifest, logger)
	}

	if err := b.Build(); err != nil {
		return err
	}

	if cfg.Manifest != "" {
		m := manifest.FromFiles(b.ID(), b.Files())
		if err := manifest.Write(b.Fs(), cfg.Manifest, m); err != nil {
			return err
		}
		logger.Info("Manifest written",
			zap.String("path", cfg.Manifest),
			zap.Int("entries", len(m.Entries)))

		if previous != nil {
			changes := previous.Compare(m)
			fmt.Fprintf(cmd.OutOrStdout(), "Since build %s: %d added, %d changed, %d removed\n",
				previous.BuildID, len(changes.Added), len(changes.Changed), len(changes.Removed))
		}
	}
	return nil
}

// readPreviousManifest loads the manifest of the last build, if any. An
// unreadable manifest is logged and ignored since it is about to be replaced.
func readPreviousManifest(fsys afero.Fs, path string, logger *zap.Logger) *manifest.Manifest {
	exists, err := afero.Exists(fsys, path)
	if err != nil || !exists {
		return nil
	}
	m, err := manifest.Read(fsys, path)
	if err != nil {
		logger.Warn("Ignoring previous manifest", zap.String("path", path), zap.Error(err))
		return nil
	}
	return m
}
