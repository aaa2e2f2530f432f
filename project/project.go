// Package project is the aggregate root of a compilable project: it composes
// the property store, the configuration matrix and the reference set, exposes
// typed accessors over the stored properties, and routes every mutation to
// change listeners and the reparse collaborator.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/maxwhale/SharpDevelop/configs"
	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/observability"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/references"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// ErrReadOnly is returned by every mutation of a read-only project.
var ErrReadOnly = upgrade.ErrReadOnly

// DefaultTargetFramework is used by New when CreateInfo names none.
const DefaultTargetFramework = frameworks.Net40

// Saver persists a project. It is called with the project's SyncRoot held
// during an upgrade and must not lock it again.
type Saver interface {
	Save(p *Project) error
}

// Reparser schedules reparsing after a reference- or code-sensitive change.
type Reparser interface {
	Reparse(p *Project, referencesChanged, codeChanged bool)
}

// FileSystem is the file access StartInfo needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// Dependencies are the collaborators a project is constructed with.
// Zero values select the defaults: the embedded catalog, no saver, no
// reparser, a null logger and the OS file system.
type Dependencies struct {
	Catalog    *frameworks.Catalog
	Saver      Saver
	Reparser   Reparser
	Logger     observability.Logger
	FileSystem FileSystem
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Catalog == nil {
		d.Catalog = frameworks.Default()
	}
	if d.Logger == nil {
		d.Logger = observability.NewNullLogger()
	}
	if d.FileSystem == nil {
		d.FileSystem = osFileSystem{}
	}
	return d
}

// CreateInfo describes a project scaffolded by the new-project flow.
type CreateInfo struct {
	ProjectName string `validate:"required,max=255"`
	// FileName is the full path of the project file to create.
	FileName      string `validate:"required"`
	RootNamespace string
	OutputType    string `validate:"omitempty,oneof=Exe WinExe Library Module"`
	// TargetFramework is a catalog ID ("net35"); empty selects DefaultTargetFramework.
	TargetFramework string `validate:"omitempty,lowercase,alphanum"`
	// MinimumSolutionVersion is the format version of the owning solution.
	MinimumSolutionVersion int    `validate:"gte=0"`
	Platform               string `validate:"omitempty,excludesall=0x7C"`
	Kind                   *Kind
}

// LoadInfo describes a project read by a deserializer.
type LoadInfo struct {
	FileName               string
	ProjectName            string
	Properties             *properties.Store
	References             *references.Set
	MinimumSolutionVersion int
	ReadOnly               bool
	ActiveConfiguration    string
	ActivePlatform         string
	// Configurations and Platforms are names the file declares, including
	// those no property entry mentions.
	Configurations []string
	Platforms      []string
	Kind           *Kind
	// Document is opaque state owned by the persistence layer, such as
	// elements it must write back unchanged.
	Document any
}

var createValidate = validator.New()

// Project is a compilable project.
type Project struct {
	name     string
	fileName string
	kind     *Kind
	document any

	store  *properties.Store
	refs   *references.Set
	matrix *configs.Matrix

	deps   Dependencies
	engine *upgrade.Engine
	logger observability.Logger

	syncRoot sync.Mutex

	mu             sync.RWMutex
	activeConfig   string
	activePlatform string
	minSolution    int
	readOnly       bool
	listeners      map[int]func(PropertyChangedEvent)
	nextListener   int

	// set by the hook wrapper while SyncRoot is held
	hookChangedRefs atomic.Bool
}

func newProject(name, fileName string, kind *Kind, store *properties.Store, refs *references.Set, deps Dependencies) *Project {
	if kind == nil {
		kind = CSharp()
	}
	deps = deps.withDefaults()
	p := &Project{
		name:      name,
		fileName:  fileName,
		kind:      kind,
		store:     store,
		refs:      refs,
		matrix:    configs.NewMatrix(store),
		deps:      deps,
		logger:    deps.Logger.ForContext("Project", name),
		listeners: make(map[int]func(PropertyChangedEvent)),
	}
	p.engine = upgrade.NewEngine(deps.Catalog,
		upgrade.WithLogger(deps.Logger),
		upgrade.WithExtensionHook(p.runKindHook),
	)
	return p
}

// New scaffolds a project. All seeded properties are written with
// isDefault=true, so they never override values already present.
func New(info CreateInfo, deps Dependencies) (*Project, error) {
	if err := createValidate.Struct(info); err != nil {
		return nil, fmt.Errorf("invalid create info: %w", err)
	}
	deps = deps.withDefaults()

	fwID := info.TargetFramework
	if fwID == "" {
		fwID = DefaultTargetFramework
	}
	fw, ok := deps.Catalog.ByID(fwID)
	if !ok {
		return nil, fmt.Errorf("unknown target framework %q", fwID)
	}

	platform := configs.NormalizePlatform(info.Platform)
	if platform == "" {
		platform = configs.DefaultPlatform
	}
	outputType := info.OutputType
	if outputType == "" {
		outputType = OutputTypeExe.String()
	}
	rootNamespace := info.RootNamespace
	if rootNamespace == "" {
		rootNamespace = info.ProjectName
	}

	p := newProject(info.ProjectName, info.FileName, info.Kind, properties.NewStore(), references.NewSet(), deps)
	p.minSolution = info.MinimumSolutionVersion

	set := func(config, name, value string, loc properties.StorageLocation) {
		p.store.Set(config, "", name, value, loc, true)
	}

	set("", "ProjectGuid", "{"+strings.ToUpper(uuid.NewString())+"}", properties.Base)
	set("", "OutputType", outputType, properties.Base)
	set("", "RootNamespace", rootNamespace, properties.Base)
	set("", "AssemblyName", info.ProjectName, properties.Base)
	set("", upgrade.PropertyTargetFrameworkVersion, fw.Name, properties.Base)
	if fw.Profile != "" {
		set("", upgrade.PropertyTargetFrameworkProfile, fw.Profile, properties.Base)
	}
	if cv, ok := p.compilerFor(fw); ok {
		set("", upgrade.PropertyToolsVersion, cv.ToolsVersion(), properties.Base)
		p.RaiseMinimumSolutionVersion(cv.SolutionVersion)
	}

	for _, config := range configs.DefaultConfigurations {
		debug := config == configs.DefaultConfiguration
		set(config, "OutputPath", `bin\`+config+`\`, properties.ConfigurationSpecific)
		set(config, "DebugSymbols", boolString(debug), properties.ConfigurationSpecific)
		set(config, "DebugType", pick(debug, "Full", "None"), properties.ConfigurationSpecific)
		set(config, "Optimize", boolString(!debug), properties.ConfigurationSpecific)
	}
	for _, d := range p.kind.Defaults {
		if d.Configuration == "" && d.Location == properties.ConfigurationSpecific {
			for _, config := range configs.DefaultConfigurations {
				set(config, d.Name, d.Value, d.Location)
			}
			continue
		}
		set(d.Configuration, d.Name, d.Value, d.Location)
	}

	if err := p.matrix.AddPlatform(platform); err != nil {
		return nil, err
	}
	p.activeConfig = configs.DefaultConfiguration
	p.activePlatform = platform

	p.logger.Debug("Created {Project} targeting {Framework}", info.ProjectName, fw.ID)
	return p, nil
}

// compilerFor returns the oldest available compiler that can target fw.
func (p *Project) compilerFor(fw *frameworks.TargetFramework) (frameworks.CompilerVersion, bool) {
	for _, cv := range p.AvailableCompilerVersions() {
		if cv.Supports(fw) {
			return cv, true
		}
	}
	return frameworks.CompilerVersion{}, false
}

// Load adopts deserialized project state.
func Load(info LoadInfo, deps Dependencies) (*Project, error) {
	if info.FileName == "" {
		return nil, fmt.Errorf("load project: file name is required")
	}
	name := info.ProjectName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(info.FileName), filepath.Ext(info.FileName))
	}
	kind := info.Kind
	if kind == nil {
		kind, _ = KindForFile(info.FileName)
	}
	store := info.Properties
	if store == nil {
		store = properties.NewStore()
	}
	refs := info.References
	if refs == nil {
		refs = references.NewSet()
	}

	p := newProject(name, info.FileName, kind, store, refs, deps)
	p.document = info.Document
	p.minSolution = info.MinimumSolutionVersion
	p.readOnly = info.ReadOnly
	for _, name := range info.Configurations {
		if err := p.matrix.AddConfiguration(name); err != nil {
			p.logger.Warn("Ignoring configuration {Name}: {Error}", name, err)
		}
	}
	for _, name := range info.Platforms {
		if err := p.matrix.AddPlatform(name); err != nil {
			p.logger.Warn("Ignoring platform {Name}: {Error}", name, err)
		}
	}
	p.matrix.Invalidate()

	p.activeConfig, p.activePlatform = p.pickActive(info.ActiveConfiguration, info.ActivePlatform)
	return p, nil
}

func (p *Project) pickActive(config, platform string) (string, string) {
	platform = configs.NormalizePlatform(platform)
	if config != "" && platform != "" && p.matrix.IsValid(config, platform) {
		return config, platform
	}
	if p.matrix.IsValid(configs.DefaultConfiguration, configs.DefaultPlatform) {
		return configs.DefaultConfiguration, configs.DefaultPlatform
	}
	pairs := p.matrix.Pairs()
	if len(pairs) == 0 {
		return configs.DefaultConfiguration, configs.DefaultPlatform
	}
	return pairs[0].Configuration, pairs[0].Platform
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// FileName returns the full path of the project file.
func (p *Project) FileName() string { return p.fileName }

// Directory returns the directory containing the project file.
func (p *Project) Directory() string { return filepath.Dir(p.fileName) }

// Kind returns the project kind.
func (p *Project) Kind() *Kind { return p.kind }

// Document returns the persistence layer's opaque state.
func (p *Project) Document() any { return p.document }

// SetDocument replaces the persistence layer's opaque state.
func (p *Project) SetDocument(doc any) { p.document = doc }

// Properties returns the property store.
func (p *Project) Properties() *properties.Store { return p.store }

// References returns the reference set.
func (p *Project) References() *references.Set { return p.refs }

// Matrix returns the configuration/platform matrix.
func (p *Project) Matrix() *configs.Matrix { return p.matrix }

// Catalog returns the framework catalog the project resolves against.
func (p *Project) Catalog() *frameworks.Catalog { return p.deps.Catalog }

// SyncRoot is the per-project upgrade lock.
func (p *Project) SyncRoot() sync.Locker { return &p.syncRoot }

// ReadOnly reports whether mutation is rejected.
func (p *Project) ReadOnly() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.readOnly
}

// SetReadOnly toggles the read-only flag.
func (p *Project) SetReadOnly(readOnly bool) {
	p.mu.Lock()
	p.readOnly = readOnly
	p.mu.Unlock()
}

// MinimumSolutionVersion returns the lowest solution format version the
// project can be written to.
func (p *Project) MinimumSolutionVersion() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.minSolution
}

// RaiseMinimumSolutionVersion raises the minimum solution version. Lower
// values are ignored.
func (p *Project) RaiseMinimumSolutionVersion(version int) {
	p.mu.Lock()
	if version > p.minSolution {
		p.minSolution = version
	}
	p.mu.Unlock()
}

// Save persists the project through the Saver.
// It does not take SyncRoot; the upgrade engine calls it with the lock held.
func (p *Project) Save() error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	if p.deps.Saver == nil {
		return nil
	}
	return p.deps.Saver.Save(p)
}

// ActiveConfiguration returns the selected configuration and platform.
func (p *Project) ActiveConfiguration() configs.ConfigurationAndPlatform {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return configs.ConfigurationAndPlatform{Configuration: p.activeConfig, Platform: p.activePlatform}
}

// SetActiveConfiguration selects the configuration and platform typed
// accessors resolve against. The pair must be valid in the matrix.
func (p *Project) SetActiveConfiguration(configuration, platform string) error {
	platform = configs.NormalizePlatform(platform)
	if !p.matrix.IsValid(configuration, platform) {
		return fmt.Errorf("%w: %s|%s", configs.ErrUnknownName, configuration, platform)
	}
	p.mu.Lock()
	p.activeConfig, p.activePlatform = configuration, platform
	p.mu.Unlock()
	return nil
}

// Configurations returns the configuration names.
func (p *Project) Configurations() []string { return p.matrix.Configurations() }

// Platforms returns the platform names.
func (p *Project) Platforms() []string { return p.matrix.Platforms() }

// RenameConfiguration renames a configuration, re-keying its properties.
func (p *Project) RenameConfiguration(from, to string) error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	if err := p.matrix.RenameConfiguration(from, to); err != nil {
		return err
	}
	p.mu.Lock()
	if p.activeConfig == from {
		p.activeConfig = to
	}
	p.mu.Unlock()
	p.logger.Info("Renamed configuration {From} to {To}", from, to)
	return nil
}

// RenamePlatform renames a platform, re-keying its properties.
func (p *Project) RenamePlatform(from, to string) error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	from, to = configs.NormalizePlatform(from), configs.NormalizePlatform(to)
	if err := p.matrix.RenamePlatform(from, to); err != nil {
		return err
	}
	p.mu.Lock()
	if p.activePlatform == from {
		p.activePlatform = to
	}
	p.mu.Unlock()
	p.logger.Info("Renamed platform {From} to {To}", from, to)
	return nil
}

// AddConfiguration declares a configuration.
func (p *Project) AddConfiguration(name string) error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	return p.matrix.AddConfiguration(name)
}

// AddPlatform declares a platform.
func (p *Project) AddPlatform(name string) error {
	if p.ReadOnly() {
		return ErrReadOnly
	}
	return p.matrix.AddPlatform(name)
}

// AddReference adds a reference unless one with the same include exists.
func (p *Project) AddReference(include, requiredFramework string) (bool, error) {
	if p.ReadOnly() {
		return false, ErrReadOnly
	}
	if !p.refs.AddIfAbsent(include, requiredFramework) {
		return false, nil
	}
	p.logger.Debug("Added reference {Reference}", include)
	p.reparse(true, false)
	return true, nil
}

// RemoveReference removes a reference. Removing a missing one is a no-op.
func (p *Project) RemoveReference(include string) (bool, error) {
	if p.ReadOnly() {
		return false, ErrReadOnly
	}
	if !p.refs.Remove(include) {
		return false, nil
	}
	p.logger.Debug("Removed reference {Reference}", include)
	p.reparse(true, false)
	return true, nil
}

func (p *Project) reparse(referencesChanged, codeChanged bool) {
	if !referencesChanged && !codeChanged {
		return
	}
	observability.ReparseRequestsTotal.WithLabelValues(observability.ReparseTrigger(referencesChanged, codeChanged)).Inc()
	if p.deps.Reparser != nil {
		p.deps.Reparser.Reparse(p, referencesChanged, codeChanged)
	}
}

func boolString(b bool) string {
	return pick(b, "True", "False")
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
