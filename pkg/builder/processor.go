package builder

import (
	"fmt"

	"mipbuild/pkg/fileinfo"
	"mipbuild/pkg/selector"

	"go.uber.org/zap"
)

// Processor transforms the file collection during the process phase.
// Process runs to completion before the next processor starts. A processor
// must not keep the *Builder after Process returns.
type Processor interface {
	Name() string
	Process(b *Builder) error
}

// ProcessorFunc wraps a function over the whole collection as a Processor.
type ProcessorFunc struct {
	name string
	fn   func(b *Builder) error
}

// NewProcessorFunc returns a Processor calling fn once per build.
func NewProcessorFunc(name string, fn func(b *Builder) error) *ProcessorFunc {
	return &ProcessorFunc{name: name, fn: fn}
}

func (p *ProcessorFunc) Name() string { return p.name }

func (p *ProcessorFunc) Process(b *Builder) error { return p.fn(b) }

// FileFunc processes a single file.
type FileFunc func(f *fileinfo.FileInfo) error

// FileProcessor applies a FileFunc to every file its patterns select.
// Patterns use last-match-wins semantics without an implicit select-all;
// an empty list applies to every file.
type FileProcessor struct {
	name     string
	files    []string
	filter   *selector.Selector
	fileFunc FileFunc
}

// NewFileProcessor compiles the file patterns and wraps fn as a Processor.
func NewFileProcessor(name string, files []string, fn FileFunc) (*FileProcessor, error) {
	if fn == nil {
		return nil, fmt.Errorf("processor %q has no file function", name)
	}
	filter, err := selector.NewFilter(files, nil)
	if err != nil {
		return nil, fmt.Errorf("processor %q: %w", name, err)
	}
	return &FileProcessor{name: name, files: files, filter: filter, fileFunc: fn}, nil
}

func (p *FileProcessor) Name() string { return p.name }

// Files returns the configured patterns.
func (p *FileProcessor) Files() []string { return p.files }

// Matches reports whether the processor applies to f.
func (p *FileProcessor) Matches(f *fileinfo.FileInfo) bool {
	return p.filter.Included(f.RelativePath())
}

// Process runs the file function over a snapshot of the collection.
func (p *FileProcessor) Process(b *Builder) error {
	files := append([]*fileinfo.FileInfo(nil), b.Files()...)
	for _, f := range files {
		if !p.Matches(f) {
			continue
		}
		b.logger.Debug("Processing file",
			zap.String("processor", p.name),
			zap.String("file", f.RelativePath()))
		if err := p.fileFunc(f); err != nil {
			return fmt.Errorf("error processing %s: %w", f.RelativePath(), err)
		}
		b.notify(Event{
			Type:    EventFileProcessed,
			Phase:   PhaseProcess,
			Message: fmt.Sprintf("[%s] %s", p.name, f.RelativePath()),
			Path:    f.RelativePath(),
		})
	}
	return nil
}
