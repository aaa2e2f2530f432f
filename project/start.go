package project

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/maxwhale/SharpDevelop/fileutil"
)

// StartErrorKind classifies why a project cannot be started.
type StartErrorKind int

// Start error kinds.
const (
	ProgramNotFound StartErrorKind = iota + 1
	WorkingDirectoryNotFound
	InvalidURL
	NoStartActionConfigured
)

func (k StartErrorKind) String() string {
	switch k {
	case ProgramNotFound:
		return "ProgramNotFound"
	case WorkingDirectoryNotFound:
		return "WorkingDirectoryNotFound"
	case InvalidURL:
		return "InvalidURL"
	case NoStartActionConfigured:
		return "NoStartActionConfigured"
	default:
		return "Unknown"
	}
}

// StartError reports a start configuration that cannot be launched.
type StartError struct {
	Kind StartErrorKind
	// Value is the offending path, URL or start action.
	Value string
}

func (e *StartError) Error() string {
	switch e.Kind {
	case ProgramNotFound:
		return fmt.Sprintf("cannot start: program not found: %s", e.Value)
	case WorkingDirectoryNotFound:
		return fmt.Sprintf("cannot start: working directory not found: %s", e.Value)
	case InvalidURL:
		return fmt.Sprintf("cannot start: invalid URL %q", e.Value)
	default:
		if e.Value != "" {
			return fmt.Sprintf("cannot start: no start action configured (%s)", e.Value)
		}
		return "cannot start: no start action configured"
	}
}

// Is matches another *StartError with the same Kind, so callers can write
// errors.Is(err, &StartError{Kind: InvalidURL}).
func (e *StartError) Is(target error) bool {
	t, ok := target.(*StartError)
	return ok && t.Kind == e.Kind
}

// StartInfo is a resolved start request.
type StartInfo struct {
	Action           StartAction
	FileName         string
	Arguments        string
	WorkingDirectory string
	URL              string
}

// StartInfo resolves the start configuration of the active configuration.
// Errors are *StartError values. Reading start properties never fails; only
// resolving them for a launch does.
func (p *Project) StartInfo() (StartInfo, error) {
	raw, set := p.GetProperty(PropertyStartAction)
	action, ok := ParseStartAction(raw)
	if set && raw != "" && !ok {
		return StartInfo{}, &StartError{Kind: NoStartActionConfigured, Value: raw}
	}

	info := StartInfo{Action: action, Arguments: p.StartArguments()}

	switch action {
	case StartActionURL:
		rawURL := p.StartURL()
		u, err := url.Parse(rawURL)
		if rawURL == "" || err != nil || !u.IsAbs() || (u.Host == "" && u.Scheme != "file") {
			return StartInfo{}, &StartError{Kind: InvalidURL, Value: rawURL}
		}
		info.URL = u.String()
		return info, nil

	case StartActionProgram:
		prog := p.StartProgram()
		if prog == "" {
			return StartInfo{}, &StartError{Kind: NoStartActionConfigured, Value: action.String()}
		}
		info.FileName = fileutil.Combine(p.Directory(), prog)

	default:
		if t := p.OutputType(); t == OutputTypeLibrary || t == OutputTypeModule {
			return StartInfo{}, &StartError{Kind: NoStartActionConfigured, Value: t.String()}
		}
		info.FileName = p.OutputAssemblyFullPath()
	}

	if fi, err := p.deps.FileSystem.Stat(info.FileName); err != nil || fi.IsDir() {
		return StartInfo{}, &StartError{Kind: ProgramNotFound, Value: info.FileName}
	}

	info.WorkingDirectory = filepath.Dir(info.FileName)
	if wd := p.StartWorkingDirectory(); wd != "" {
		info.WorkingDirectory = fileutil.Combine(p.Directory(), wd)
		if fi, err := p.deps.FileSystem.Stat(info.WorkingDirectory); err != nil || !fi.IsDir() {
			return StartInfo{}, &StartError{Kind: WorkingDirectoryNotFound, Value: info.WorkingDirectory}
		}
	}
	return info, nil
}
