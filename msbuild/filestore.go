package msbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxwhale/SharpDevelop/observability"
	"github.com/maxwhale/SharpDevelop/project"
)

// FileStore loads projects from disk and saves them back. It implements
// project.Saver.
type FileStore struct {
	logger observability.Logger
}

// NewFileStore creates a file store. A nil logger discards output.
func NewFileStore(logger observability.Logger) *FileStore {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return &FileStore{logger: logger}
}

// Load reads the project file at path. The store becomes the project's
// Saver unless deps names another one. A file without write permission
// opens read-only.
func (s *FileStore) Load(ctx context.Context, path string, deps project.Dependencies) (p *project.Project, err error) {
	_, span := observability.StartProjectLoadSpan(ctx, path)
	defer func() { observability.EndSpanWithError(span, err) }()

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	defer f.Close()

	info, err := Read(f, path)
	if err != nil {
		return nil, err
	}
	info.ReadOnly = fi.Mode().Perm()&0o200 == 0

	if deps.Saver == nil {
		deps.Saver = s
	}
	p, err = project.Load(info, deps)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded {Project} from {Path} with {PropertyCount} properties and {ReferenceCount} references",
		p.Name(), path, p.Properties().Len(), p.References().Len())
	if doc, ok := p.Document().(*Document); ok && doc.Preserved > 0 {
		s.logger.Debug("Kept {Count} property groups with unrecognized conditions verbatim", doc.Preserved)
	}
	return p, nil
}

// Save writes p to its file name. The file is replaced atomically.
func (s *FileStore) Save(p *project.Project) (err error) {
	_, span := observability.StartProjectSaveSpan(context.Background(), p.FileName(), p.Properties().Len())
	defer func() {
		status := observability.ResultSuccess
		if err != nil {
			status = observability.ResultFailure
		}
		observability.ProjectSavesTotal.WithLabelValues(status).Inc()
		observability.EndSpanWithError(span, err)
	}()

	data, err := Render(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	path := p.FileName()
	if err := writeFileAtomic(path, data); err != nil {
		s.logger.Error("Failed to save {Project} to {Path}: {Error}", p.Name(), path, err)
		return err
	}
	s.logger.Debug("Saved {Project} to {Path}", p.Name(), path)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace project file: %w", err)
	}
	return nil
}

// FindProjectFile finds the single .csproj or .vbproj file in dir.
func FindProjectFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := project.KindForFile(e.Name()); ok && !strings.HasPrefix(e.Name(), ".") {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("no project file found in directory: %s", dir)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("multiple project files found in directory: %s. Specify which project to use", dir)
	}
	return matches[0], nil
}
