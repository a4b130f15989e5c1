package builder

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"mipbuild/pkg/fileinfo"
	"mipbuild/pkg/selector"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options configures a Builder.
type Options struct {
	Dir        string          // Build root.
	OutputDir  string          // Destination root for Output.
	Files      []string        // Selector patterns, evaluated under Policy.
	Policy     selector.Policy // Defaults to selector.PolicyOverride.
	Processors []Processor     // Run in order by Process.
	Encoding   string          // Forced text encoding; empty means detect.
	Workers    int             // Output writers; <= 0 means one per CPU.
	Fs         afero.Fs        // Defaults to the OS filesystem.
	Logger     *zap.Logger
	Reporter   Reporter
}

// Builder loads a source tree, runs processors over it and writes the result.
//
// The phases are Prepare, Process and Output; Build runs all three. A Builder
// is not safe for concurrent use.
type Builder struct {
	id         string
	dir        string
	outputDir  string
	files      []*fileinfo.FileInfo
	processors []Processor
	selector   *selector.Selector
	encoding   string
	workers    int
	fs         afero.Fs
	logger     *zap.Logger
	reporter   Reporter
	prepared   bool
}

// New validates opts and returns an idle Builder.
func New(opts Options) (*Builder, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("build directory is not set")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	outputDir := opts.OutputDir
	if outputDir != "" {
		if outputDir, err = filepath.Abs(outputDir); err != nil {
			return nil, fmt.Errorf("failed to get absolute output path: %w", err)
		}
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("buildID", id))

	sel, err := selector.New(opts.Files, opts.Policy, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to compile file selectors: %w", err)
	}

	return &Builder{
		id:         id,
		dir:        dir,
		outputDir:  outputDir,
		processors: opts.Processors,
		selector:   sel,
		encoding:   opts.Encoding,
		workers:    opts.Workers,
		fs:         fsys,
		logger:     logger,
		reporter:   opts.Reporter,
	}, nil
}

// ID returns the unique identifier of this build.
func (b *Builder) ID() string { return b.id }

// Dir returns the absolute build root.
func (b *Builder) Dir() string { return b.dir }

// OutputDir returns the absolute output directory.
func (b *Builder) OutputDir() string { return b.outputDir }

// Fs returns the filesystem the builder reads and writes.
func (b *Builder) Fs() afero.Fs { return b.fs }

// Logger returns the builder's logger.
func (b *Builder) Logger() *zap.Logger { return b.logger }

// Files returns the current file collection.
func (b *Builder) Files() []*fileinfo.FileInfo { return b.files }

// SetReporter replaces the reporting sink.
func (b *Builder) SetReporter(r Reporter) { b.reporter = r }

// AddFile appends f to the collection.
func (b *Builder) AddFile(f *fileinfo.FileInfo) {
	b.files = append(b.files, f)
}

// RemoveFile drops f from the collection and reports whether it was present.
func (b *Builder) RemoveFile(f *fileinfo.FileInfo) bool {
	for i, existing := range b.files {
		if existing == f {
			b.files = append(b.files[:i], b.files[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Builder) notify(e Event) {
	if b.reporter != nil {
		b.reporter.Report(e)
	}
}

// Prepare traverses the build root, applies the file selectors and loads
// every selected file. It only runs once per Builder.
func (b *Builder) Prepare() error {
	if b.prepared {
		return nil
	}

	start := time.Now()
	b.notify(Event{Type: EventPhaseStart, Phase: PhaseLoad, Message: "Files loading ..."})
	b.logger.Info("Loading files", zap.String("dir", b.dir))

	candidates, err := traverseDir(b.fs, b.dir, b.logger)
	if err != nil {
		return err
	}

	relPaths := make([]string, len(candidates))
	for i, c := range candidates {
		relPaths[i] = c.RelativePath
	}
	flags := b.selector.Select(relPaths)

	files := make([]*fileinfo.FileInfo, 0, len(candidates))
	for i, c := range candidates {
		if !flags[i] {
			b.logger.Debug("Skipping unselected file", zap.String("file", c.RelativePath))
			continue
		}
		f, err := fileinfo.Load(b.fs, c.FullPath, c.RelativePath, b.encoding)
		if err != nil {
			b.logger.Error("Failed to load file", zap.String("file", c.FullPath), zap.Error(err))
			return &PhaseError{Phase: PhaseLoad, Path: c.FullPath, Err: err}
		}
		files = append(files, f)
	}

	b.files = files
	b.prepared = true

	elapsed := time.Since(start)
	b.notify(Event{
		Type:    EventPhaseEnd,
		Phase:   PhaseLoad,
		Message: fmt.Sprintf("Files loaded! (%dms)", elapsed.Milliseconds()),
		Elapsed: elapsed,
	})
	b.logger.Info("Files loaded",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(files)),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Process runs the processors one at a time in configured order. The first
// failure stops the chain; earlier mutations are kept.
func (b *Builder) Process() error {
	if !b.prepared {
		return ErrNotPrepared
	}

	start := time.Now()
	b.notify(Event{Type: EventPhaseStart, Phase: PhaseProcess, Message: "Files process start ..."})

	for i, p := range b.processors {
		if p == nil {
			continue
		}
		pStart := time.Now()
		b.notify(Event{
			Type:    EventProcessorStart,
			Phase:   PhaseProcess,
			Message: fmt.Sprintf("[%s] start", p.Name()),
		})
		b.logger.Debug("Running processor", zap.Int("index", i), zap.String("processor", p.Name()))

		if err := p.Process(b); err != nil {
			b.logger.Error("Processor failed",
				zap.Int("index", i),
				zap.String("processor", p.Name()),
				zap.Error(err))
			return &ProcessorError{Name: p.Name(), Index: i, Err: err}
		}

		elapsed := time.Since(pStart)
		b.notify(Event{
			Type:    EventProcessorEnd,
			Phase:   PhaseProcess,
			Message: fmt.Sprintf("[%s] finished (%dms)", p.Name(), elapsed.Milliseconds()),
			Elapsed: elapsed,
		})
	}

	elapsed := time.Since(start)
	b.notify(Event{
		Type:    EventPhaseEnd,
		Phase:   PhaseProcess,
		Message: fmt.Sprintf("Files process finished! (%dms)", elapsed.Milliseconds()),
		Elapsed: elapsed,
	})
	b.logger.Info("Files processed",
		zap.Int("processors", len(b.processors)),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Output writes every file with a non-empty OutputPath to OutputPaths and
// OutputPath under the output directory. All destinations are attempted; the
// returned error combines every failed write.
func (b *Builder) Output() error {
	if !b.prepared {
		return ErrNotPrepared
	}
	if b.outputDir == "" {
		return ErrNoOutputDir
	}

	start := time.Now()
	b.notify(Event{Type: EventPhaseStart, Phase: PhaseOutput, Message: "Output start ..."})

	var jobs []writeJob
	for _, f := range b.files {
		if f.OutputPath == "" {
			b.logger.Debug("File opted out of output", zap.String("file", f.RelativePath()))
			continue
		}
		data := f.Bytes()
		for _, dest := range Destinations(f) {
			jobs = append(jobs, writeJob{
				index:      len(jobs),
				outputPath: dest,
				target:     b.resolveOutput(dest),
				data:       data,
			})
		}
	}

	results := writeConcurrently(b.fs, jobs, b.workers, b.logger)

	var errs error
	for _, r := range results {
		if r.err != nil {
			errs = multierr.Append(errs, &PhaseError{Phase: PhaseOutput, Path: r.job.target, Err: r.err})
			continue
		}
		b.notify(Event{
			Type:    EventFileOutput,
			Phase:   PhaseOutput,
			Message: "[Output] " + r.job.outputPath,
			Path:    r.job.outputPath,
		})
	}

	elapsed := time.Since(start)
	if errs != nil {
		b.logger.Error("Output failed",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Int("total", len(jobs)),
			zap.Error(errs))
		return errs
	}

	b.notify(Event{
		Type:    EventPhaseEnd,
		Phase:   PhaseOutput,
		Message: fmt.Sprintf("Output finished! (%dms)", elapsed.Milliseconds()),
		Elapsed: elapsed,
	})
	b.logger.Info("Output written",
		zap.String("outputDir", b.outputDir),
		zap.Int("written", len(jobs)),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Build runs Prepare, Process and Output, stopping at the first error.
func (b *Builder) Build() error {
	start := time.Now()
	b.notify(Event{Type: EventPhaseStart, Phase: PhaseBuild, Message: "Building start"})

	if err := b.Prepare(); err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}
	if err := b.Process(); err != nil {
		return fmt.Errorf("process failed: %w", err)
	}
	if err := b.Output(); err != nil {
		return fmt.Errorf("output failed: %w", err)
	}

	elapsed := time.Since(start)
	b.notify(Event{
		Type:    EventPhaseEnd,
		Phase:   PhaseBuild,
		Message: fmt.Sprintf("Built! (%dms)", elapsed.Milliseconds()),
		Elapsed: elapsed,
	})
	return nil
}

// GetFile finds a file by absolute path or by path relative to the build
// root. See IsAbsolutePath for how the two are told apart.
func (b *Builder) GetFile(p string) (*fileinfo.FileInfo, bool) {
	if IsAbsolutePath(p) {
		p = filepath.Clean(p)
		for _, f := range b.files {
			if f.FullPath() == p {
				return f, true
			}
		}
		return nil, false
	}

	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	for _, f := range b.files {
		if f.RelativePath() == p {
			return f, true
		}
	}
	return nil, false
}

// Destinations lists where f is written: OutputPaths followed by OutputPath.
// It is empty when OutputPath is cleared.
func Destinations(f *fileinfo.FileInfo) []string {
	if f.OutputPath == "" {
		return nil
	}
	dests := make([]string, 0, len(f.OutputPaths)+1)
	dests = append(dests, f.OutputPaths...)
	return append(dests, f.OutputPath)
}

func (b *Builder) resolveOutput(outputPath string) string {
	native := filepath.FromSlash(outputPath)
	if filepath.IsAbs(native) {
		return native
	}
	return filepath.Join(b.outputDir, native)
}

var drivePrefix = regexp.MustCompile(`^[a-zA-Z]:`)

// IsAbsolutePath classifies p by host path conventions: a leading drive
// letter followed by ':' or a leading '/' marks an absolute path. Anything
// else is relative to the build root.
func IsAbsolutePath(p string) bool {
	return drivePrefix.MatchString(p) || strings.HasPrefix(p, "/")
}
