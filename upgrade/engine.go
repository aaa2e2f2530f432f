package upgrade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/observability"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/references"
)

// ErrReadOnly is returned when a read-only project is asked to change.
var ErrReadOnly = errors.New("project is read-only")

// Subject is the project capability the engine operates on.
type Subject interface {
	// Name identifies the project in logs and traces.
	Name() string
	ReadOnly() bool
	// SyncRoot is held for the whole transaction.
	SyncRoot() sync.Locker
	// TargetFramework returns the current framework, nil when unknown.
	TargetFramework() *frameworks.TargetFramework
	AvailableCompilerVersions() []frameworks.CompilerVersion
	// Catalog resolves framework IDs for extension hooks.
	Catalog() *frameworks.Catalog
	Properties() *properties.Store
	References() *references.Set
	// RaiseMinimumSolutionVersion raises the minimum solution format
	// version; lower values are ignored.
	RaiseMinimumSolutionVersion(version int)
	// Save persists the subject. It is called with SyncRoot held.
	Save() error
}

// ExtensionHook lets a project kind make additional changes after the
// built-in rules ran. It is called with SyncRoot held, even when the plan
// was empty. An error aborts the transaction before the save.
type ExtensionHook func(ctx context.Context, subject Subject, newVersion *frameworks.CompilerVersion, newFramework *frameworks.TargetFramework) error

// PropertyChange records one applied property change.
type PropertyChange struct {
	Name     string
	OldValue string
	NewValue string
	Removed  bool
}

// Result describes what a transaction changed.
type Result struct {
	OldFramework      *frameworks.TargetFramework
	NewFramework      *frameworks.TargetFramework
	CompilerVersion   *frameworks.CompilerVersion
	Plan              Plan
	PropertyChanges   []PropertyChange
	AddedReferences   []string
	RemovedReferences []string
}

// ReferencesChanged reports whether any reference was added or removed.
func (r *Result) ReferencesChanged() bool {
	return len(r.AddedReferences) > 0 || len(r.RemovedReferences) > 0
}

// Engine applies upgrades. It holds no per-project state and is safe to
// share between projects.
type Engine struct {
	catalog *frameworks.Catalog
	hook    ExtensionHook
	logger  observability.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtensionHook installs a hook that runs inside every transaction.
func WithExtensionHook(hook ExtensionHook) Option {
	return func(e *Engine) { e.hook = hook }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger observability.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine resolving rule frameworks from catalog.
// A nil catalog uses frameworks.Default().
func NewEngine(catalog *frameworks.Catalog, opts ...Option) *Engine {
	if catalog == nil {
		catalog = frameworks.Default()
	}
	e := &Engine{catalog: catalog, logger: observability.NewNullLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upgrade switches subject to newVersion and newFramework, either of which
// may be nil to leave it unchanged. It returns ErrReadOnly without touching
// the subject when the subject is read-only. A compiler version the subject
// does not offer is skipped silently.
//
// Save errors are returned wrapped; the in-memory changes are kept so the
// caller can retry the save.
func (e *Engine) Upgrade(ctx context.Context, subject Subject, newVersion *frameworks.CompilerVersion, newFramework *frameworks.TargetFramework) (*Result, error) {
	tools, fwName := "", ""
	if newVersion != nil {
		tools = newVersion.ToolsVersion()
	}
	if newFramework != nil {
		fwName = newFramework.ID
	}
	ctx, span := observability.StartUpgradeSpan(ctx, subject.Name(), tools, fwName)

	log := e.logger.ForContext("Project", subject.Name())

	if subject.ReadOnly() {
		observability.UpgradeTransactionsTotal.WithLabelValues(observability.ResultReadOnly).Inc()
		log.WarnContext(ctx, "Upgrade rejected: {Project} is read-only", subject.Name())
		observability.EndSpanWithError(span, ErrReadOnly)
		return nil, ErrReadOnly
	}

	result, err := e.apply(ctx, subject, newVersion, newFramework, log)
	if err != nil {
		observability.UpgradeTransactionsTotal.WithLabelValues(observability.ResultFailure).Inc()
		log.ErrorContext(ctx, "Upgrade of {Project} failed: {Error}", subject.Name(), err)
		observability.EndSpanWithError(span, err)
		return result, err
	}

	observability.UpgradeTransactionsTotal.WithLabelValues(observability.ResultSuccess).Inc()
	observability.ReferenceChangesTotal.WithLabelValues(AddReference.String()).Add(float64(len(result.AddedReferences)))
	observability.ReferenceChangesTotal.WithLabelValues(RemoveReference.String()).Add(float64(len(result.RemovedReferences)))
	observability.RecordUpgradeResult(ctx, frameworkID(result.OldFramework), result.AddedReferences, result.RemovedReferences)
	observability.EndSpanWithError(span, nil)
	return result, nil
}

func (e *Engine) apply(ctx context.Context, subject Subject, newVersion *frameworks.CompilerVersion, newFramework *frameworks.TargetFramework, log observability.Logger) (*Result, error) {
	lock := subject.SyncRoot()
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() { observability.UpgradeDuration.Observe(time.Since(start).Seconds()) }()

	store := subject.Properties()
	refs := subject.References()
	old := subject.TargetFramework()

	plan := ComputePlan(PlanInput{
		OldFramework:              old,
		NewFramework:              newFramework,
		NewCompilerVersion:        newVersion,
		AvailableCompilerVersions: subject.AvailableCompilerVersions(),
		References:                refs,
		Catalog:                   e.catalog,
	})

	result := &Result{
		OldFramework:    old,
		NewFramework:    newFramework,
		CompilerVersion: plan.CompilerVersion,
		Plan:            plan,
	}

	if newVersion != nil && plan.CompilerVersion == nil {
		log.DebugContext(ctx, "Compiler {Version} is not available for {Project}; skipped", newVersion.ToolsVersion(), subject.Name())
	}
	if plan.CompilerVersion != nil {
		subject.RaiseMinimumSolutionVersion(plan.CompilerVersion.SolutionVersion)
	}

	for _, w := range plan.Properties {
		if change, ok := applyProperty(store, w); ok {
			result.PropertyChanges = append(result.PropertyChanges, change)
			observability.PropertyWritesTotal.WithLabelValues(properties.Base.String()).Inc()
		}
	}

	for _, a := range plan.References {
		switch a.Kind {
		case AddReference:
			if refs.AddIfAbsent(a.Include, a.RequiredFramework) {
				result.AddedReferences = append(result.AddedReferences, a.Include)
				observability.RecordReferenceChange(ctx, a.Kind.String(), a.Include, a.Rule)
				log.InfoContext(ctx, "Added reference {Reference} for {Rule}", a.Include, a.Rule)
			}
		case RemoveReference:
			if refs.Remove(a.Include) {
				result.RemovedReferences = append(result.RemovedReferences, a.Include)
				observability.RecordReferenceChange(ctx, a.Kind.String(), a.Include, a.Rule)
				log.InfoContext(ctx, "Removed reference {Reference} for {Rule}", a.Include, a.Rule)
			}
		}
	}

	if e.hook != nil {
		if err := e.hook(ctx, subject, plan.CompilerVersion, newFramework); err != nil {
			return result, fmt.Errorf("upgrade hook: %w", err)
		}
	}

	if err := subject.Save(); err != nil {
		return result, fmt.Errorf("save after upgrade: %w", err)
	}

	log.InfoContext(ctx, "Upgraded {Project} from {OldFramework} to {NewFramework}", subject.Name(), old.String(), newFramework.String())
	return result, nil
}

func applyProperty(store *properties.Store, w PropertyWrite) (PropertyChange, bool) {
	prev, had := store.Get("", "", w.Name)
	if w.Remove {
		if !store.Remove("", "", w.Name) {
			return PropertyChange{}, false
		}
		return PropertyChange{Name: w.Name, OldValue: prev.Value, Removed: true}, true
	}
	if !store.Set("", "", w.Name, w.Value, properties.Base, false) {
		return PropertyChange{}, false
	}
	change := PropertyChange{Name: w.Name, NewValue: w.Value}
	if had {
		change.OldValue = prev.Value
	}
	return change, true
}

func frameworkID(fw *frameworks.TargetFramework) string {
	if fw == nil {
		return ""
	}
	return fw.ID
}
