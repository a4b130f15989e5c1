package processors

import (
	"fmt"
	"path"
	"strings"

	"mipbuild/pkg/builder"
	"mipbuild/pkg/fileinfo"
)

// newBanner prepends options.text to matched text files.
func newBanner(name string, files []string, opts Options) (builder.Processor, error) {
	text, err := opts.String("text", true)
	if err != nil {
		return nil, err
	}
	return builder.NewFileProcessor(name, files, func(f *fileinfo.FileInfo) error {
		if !f.IsText() {
			return nil
		}
		f.SetText(text + f.Text())
		return nil
	})
}

// newReplace replaces every occurrence of options.from with options.to in
// matched text files.
func newReplace(name string, files []string, opts Options) (builder.Processor, error) {
	from, err := opts.String("from", true)
	if err != nil {
		return nil, err
	}
	if from == "" {
		return nil, fmt.Errorf("option %q must not be empty", "from")
	}
	to, err := opts.String("to", false)
	if err != nil {
		return nil, err
	}
	return builder.NewFileProcessor(name, files, func(f *fileinfo.FileInfo) error {
		if !f.IsText() {
			return nil
		}
		if text := f.Text(); strings.Contains(text, from) {
			f.SetText(strings.ReplaceAll(text, from, to))
		}
		return nil
	})
}

// newCopy adds options.to as extra destinations of matched files.
func newCopy(name string, files []string, opts Options) (builder.Processor, error) {
	to, err := opts.Strings("to", true)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("option %q must list at least one path", "to")
	}
	return builder.NewFileProcessor(name, files, func(f *fileinfo.FileInfo) error {
		f.OutputPaths = append(f.OutputPaths, to...)
		return nil
	})
}

// newRename changes the extension of matched files' OutputPath from
// options.from to options.to. With options.drop the files are not written.
func newRename(name string, files []string, opts Options) (builder.Processor, error) {
	drop, err := opts.Bool("drop")
	if err != nil {
		return nil, err
	}
	if drop {
		return builder.NewFileProcessor(name, files, func(f *fileinfo.FileInfo) error {
			f.OutputPath = ""
			return nil
		})
	}

	from, err := opts.String("from", false)
	if err != nil {
		return nil, err
	}
	to, err := opts.String("to", true)
	if err != nil {
		return nil, err
	}
	from, to = dotted(from), dotted(to)

	return builder.NewFileProcessor(name, files, func(f *fileinfo.FileInfo) error {
		if f.OutputPath == "" {
			return nil
		}
		ext := path.Ext(f.OutputPath)
		if from != "" && ext != from {
			return nil
		}
		f.OutputPath = strings.TrimSuffix(f.OutputPath, ext) + to
		return nil
	})
}

func dotted(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
