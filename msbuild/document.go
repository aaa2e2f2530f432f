// Package msbuild reads and writes MSBuild project files for the project
// model: property groups become property store entries scoped by their
// Condition, Reference items become the reference set, and everything the
// model does not represent is written back unchanged.
package msbuild

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/maxwhale/SharpDevelop/configs"
	"github.com/maxwhale/SharpDevelop/project"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/references"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// Namespace is the MSBuild 2003 XML namespace.
const Namespace = "http://schemas.microsoft.com/developer/msbuild/2003"

// ErrNotProject is returned when the root element is not <Project>.
var ErrNotProject = errors.New("msbuild: root element is not <Project>")

const (
	slotProperties = "properties"
	slotReferences = "references"
)

// Document is the part of a project file the model does not own. It is
// stored as the project's Document and reused on save.
type Document struct {
	root *Element
	// extras holds children of managed property groups that cannot be
	// represented as store entries, such as conditional properties.
	extras     map[Scope][]*Element
	scopeOrder []Scope
	// Preserved counts property groups kept verbatim.
	Preserved int
}

// NewDocument returns the skeleton written for a project that was not
// loaded from a file.
func NewDocument(kind *project.Kind) *Document {
	targets := `$(MSBuildToolsPath)\Microsoft.CSharp.targets`
	if kind != nil && strings.EqualFold(kind.Extension, ".vbproj") {
		targets = `$(MSBuildToolsPath)\Microsoft.VisualBasic.targets`
	}
	root := &Element{Name: "Project"}
	root.SetAttr("DefaultTargets", "Build")
	root.SetAttr("xmlns", Namespace)
	root.Children = []Node{
		&Element{slot: slotProperties},
		&Element{slot: slotReferences},
		leafWithAttr("Import", "Project", targets),
	}
	return &Document{root: root, extras: make(map[Scope][]*Element)}
}

func leafWithAttr(name, attr, value string) *Element {
	el := &Element{Name: name}
	el.SetAttr(attr, value)
	return el
}

// Read parses a project file into load information for project.Load.
func Read(r io.Reader, fileName string) (project.LoadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return project.LoadInfo{}, fmt.Errorf("failed to read project file: %w", err)
	}
	return Parse(data, fileName)
}

// Parse is Read over an in-memory file.
func Parse(data []byte, fileName string) (project.LoadInfo, error) {
	root, err := parseTree(data)
	if err != nil {
		return project.LoadInfo{}, err
	}
	if localName(root.Name) != "Project" {
		return project.LoadInfo{}, ErrNotProject
	}

	store := properties.NewStore()
	refs := references.NewSet()
	doc := &Document{root: root, extras: make(map[Scope][]*Element)}
	info := project.LoadInfo{FileName: fileName, Properties: store, References: refs, Document: doc}

	if tv, ok := root.Attr("ToolsVersion"); ok {
		store.Set("", "", upgrade.PropertyToolsVersion, tv, properties.Base, false)
		root.RemoveAttr("ToolsVersion")
	}

	groups := compileGroupConditions(root)
	var conds []*Condition
	for _, c := range groups {
		if c != nil {
			conds = append(conds, c)
		}
	}
	configurations := candidates(configs.DefaultConfigurations, conds)
	platforms := candidates([]string{configs.DefaultPlatform}, conds)

	var children []Node
	propSlot, refSlot := false, false
	for _, child := range root.Children {
		el, ok := child.(*Element)
		if !ok {
			children = append(children, child)
			continue
		}

		switch localName(el.Name) {
		case "PropertyGroup":
			scope, classified := Scope{}, true
			if raw, _ := el.Attr("Condition"); strings.TrimSpace(raw) != "" {
				cond := groups[el]
				classified = cond != nil
				if classified {
					scope, classified = Classify(cond, configurations, platforms)
				}
			}
			if !classified {
				doc.Preserved++
				children = append(children, el)
				continue
			}
			scope.Platform = configs.NormalizePlatform(scope.Platform)
			info.Configurations = appendName(info.Configurations, scope.Configuration)
			info.Platforms = appendName(info.Platforms, scope.Platform)
			doc.readPropertyGroup(el, scope, store, &info)
			if !propSlot {
				children = append(children, &Element{slot: slotProperties})
				propSlot = true
			}

		case "ItemGroup":
			if raw, _ := el.Attr("Condition"); strings.TrimSpace(raw) != "" {
				children = append(children, el)
				continue
			}
			rest, found := readReferences(el, refs)
			if found && !refSlot {
				children = append(children, &Element{slot: slotReferences})
				refSlot = true
			}
			if len(rest) > 0 {
				el.Children = rest
				children = append(children, el)
			}

		default:
			children = append(children, el)
		}
	}

	if !refSlot {
		children = insertAfterSlot(children, slotProperties, &Element{slot: slotReferences})
	}
	if !propSlot {
		children = append([]Node{&Element{slot: slotProperties}}, children...)
	}
	root.Children = children
	return info, nil
}

func compileGroupConditions(root *Element) map[*Element]*Condition {
	out := make(map[*Element]*Condition)
	for _, el := range root.Elements() {
		if localName(el.Name) != "PropertyGroup" {
			continue
		}
		raw, ok := el.Attr("Condition")
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		c, err := CompileCondition(raw)
		if err != nil {
			continue
		}
		out[el] = c
	}
	return out
}

func (d *Document) readPropertyGroup(group *Element, scope Scope, store *properties.Store, info *project.LoadInfo) {
	loc := scope.Location()
	for _, child := range group.Children {
		el, ok := child.(*Element)
		if !ok {
			continue
		}
		name := localName(el.Name)
		if cond, has := el.Attr("Condition"); has || !el.IsLeaf() || len(el.Attrs) > 0 {
			if has && scope == (Scope{}) {
				d.readActiveDefault(name, cond, el.Text(), info)
			}
			d.addExtra(scope, el)
			continue
		}
		store.Set(scope.Configuration, scope.Platform, name, el.Text(), loc, false)
	}
	d.noteScope(scope)
}

// readActiveDefault picks up <Configuration Condition=" '$(Configuration)' == '' ">Debug</Configuration>.
func (d *Document) readActiveDefault(name, cond, value string, info *project.LoadInfo) {
	c, err := CompileCondition(cond)
	if err != nil {
		return
	}
	empty, err := c.Evaluate(nil)
	if err != nil || !empty {
		return
	}
	switch {
	case strings.EqualFold(name, "Configuration") && info.ActiveConfiguration == "":
		info.ActiveConfiguration = value
	case strings.EqualFold(name, "Platform") && info.ActivePlatform == "":
		info.ActivePlatform = configs.NormalizePlatform(value)
	}
}

func appendName(names []string, name string) []string {
	if name == "" || containsFold(names, name) {
		return names
	}
	return append(names, name)
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (d *Document) addExtra(scope Scope, el *Element) {
	d.noteScope(scope)
	d.extras[scope] = append(d.extras[scope], el)
}

func (d *Document) noteScope(scope Scope) {
	for _, s := range d.scopeOrder {
		if s == scope {
			return
		}
	}
	d.scopeOrder = append(d.scopeOrder, scope)
}

// readReferences moves Reference items into refs and returns the other children.
func readReferences(group *Element, refs *references.Set) ([]Node, bool) {
	var rest []Node
	found := false
	for _, child := range group.Children {
		el, ok := child.(*Element)
		if !ok || localName(el.Name) != "Reference" {
			rest = append(rest, child)
			continue
		}
		include, ok := el.Attr("Include")
		if !ok || include == "" {
			rest = append(rest, child)
			continue
		}
		ref := references.Reference{Include: include}
		for _, m := range el.Elements() {
			if ref.Metadata == nil {
				ref.Metadata = make(map[string]string)
			}
			ref.Metadata[localName(m.Name)] = m.Text()
		}
		refs.Add(ref)
		found = true
	}
	return rest, found
}

func insertAfterSlot(children []Node, slot string, el *Element) []Node {
	for i, c := range children {
		if e, ok := c.(*Element); ok && e.slot == slot {
			out := append([]Node(nil), children[:i+1]...)
			out = append(out, el)
			return append(out, children[i+1:]...)
		}
	}
	return append(children, el)
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Write renders p as a project file: UTF-8 BOM, XML declaration, then the
// document with generated property and reference groups.
func Write(w io.Writer, p *project.Project) error {
	data, err := Render(p)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Render is Write into a byte slice.
func Render(p *project.Project) ([]byte, error) {
	doc, ok := p.Document().(*Document)
	if !ok || doc == nil {
		doc = NewDocument(p.Kind())
		p.SetDocument(doc)
	}

	root := *doc.root
	root.Attrs = nil
	if tv, ok := p.Properties().Get("", "", upgrade.PropertyToolsVersion); ok && tv.Value != "" {
		root.SetAttr("ToolsVersion", tv.Value)
	}
	root.Attrs = append(root.Attrs, doc.root.Attrs...)

	tw := &treeWriter{expand: func(w *treeWriter, slot string, depth int) {
		var groups []*Element
		switch slot {
		case slotProperties:
			groups = doc.propertyGroups(p)
		case slotReferences:
			groups = referenceGroups(p.References())
		}
		for _, g := range groups {
			w.element(g, depth)
		}
	}}

	var out bytes.Buffer
	out.Write(utf8BOM)
	out.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	tw.element(&root, 0)
	out.Write(tw.buf.Bytes())
	return out.Bytes(), nil
}

// propertyGroups builds one group per scope: base first, then scopes in the
// order they were first read or written. Matrix names no group mentions get
// an empty pair-scoped group so a reload declares them again.
func (d *Document) propertyGroups(p *project.Project) []*Element {
	store := p.Properties()
	byScope := make(map[Scope][]*Element)
	order := append([]Scope(nil), d.scopeOrder...)
	seen := make(map[Scope]bool)
	for _, s := range order {
		seen[s] = true
	}

	for _, e := range store.Entries() {
		if e.Configuration == "" && e.Platform == "" && e.Name == upgrade.PropertyToolsVersion {
			continue
		}
		s := Scope{Configuration: e.Configuration, Platform: e.Platform}
		if !seen[s] {
			seen[s] = true
			order = append(order, s)
		}
		byScope[s] = append(byScope[s], leaf(e.Name, e.Value))
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i] == (Scope{}) && order[j] != (Scope{})
	})

	var groups []*Element
	var written []Scope
	for _, s := range order {
		var children []*Element
		if s == (Scope{}) {
			children = append(children, d.activeDefaults(p.ActiveConfiguration())...)
		}
		children = append(children, d.extras[s]...)
		children = append(children, byScope[s]...)
		if len(children) == 0 {
			continue
		}
		groups = append(groups, scopedGroup(s, children))
		written = append(written, s)
	}
	if !seen[Scope{}] {
		if children := d.activeDefaults(p.ActiveConfiguration()); len(children) > 0 {
			groups = append([]*Element{scopedGroup(Scope{}, children)}, groups...)
		}
	}
	for _, s := range undeclaredScopes(written, p.Matrix()) {
		groups = append(groups, scopedGroup(s, nil))
	}
	return groups
}

func scopedGroup(s Scope, children []*Element) *Element {
	g := &Element{Name: "PropertyGroup"}
	if cond := FormatCondition(s.Configuration, s.Platform); cond != "" {
		g.SetAttr("Condition", cond)
	}
	for _, c := range children {
		g.Children = append(g.Children, c)
	}
	return g
}

// activeDefaults returns the <Configuration> and <Platform> fallbacks for
// the active pair unless the base group already carries them.
func (d *Document) activeDefaults(active configs.ConfigurationAndPlatform) []*Element {
	hasConfig, hasPlatform := false, false
	for _, el := range d.extras[Scope{}] {
		if _, ok := el.Attr("Condition"); !ok {
			continue
		}
		switch localName(el.Name) {
		case "Configuration":
			hasConfig = true
		case "Platform":
			hasPlatform = true
		}
	}
	var out []*Element
	if !hasConfig && active.Configuration != "" {
		out = append(out, leaf("Configuration", active.Configuration,
			xml.Attr{Name: xml.Name{Local: "Condition"}, Value: " '$(Configuration)' == '' "}))
	}
	if !hasPlatform && active.Platform != "" {
		out = append(out, leaf("Platform", active.Platform,
			xml.Attr{Name: xml.Name{Local: "Condition"}, Value: " '$(Platform)' == '' "}))
	}
	return out
}

// undeclaredScopes lists the matrix pairs to write as empty groups: those
// whose configuration or platform no written scope mentions. A dimension
// left at its defaults needs nothing, since a reload falls back to them.
func undeclaredScopes(written []Scope, m *configs.Matrix) []Scope {
	var cfgs, plats []string
	for _, s := range written {
		cfgs = appendName(cfgs, s.Configuration)
		plats = appendName(plats, s.Platform)
	}
	missingCfgs := missingNames(m.Configurations(), cfgs, configs.DefaultConfigurations)
	missingPlats := missingNames(m.Platforms(), plats, []string{configs.DefaultPlatform})
	if len(missingCfgs) == 0 && len(missingPlats) == 0 {
		return nil
	}

	var out []Scope
	for _, pair := range m.Pairs() {
		if !containsFold(missingCfgs, pair.Configuration) && !containsFold(missingPlats, pair.Platform) {
			continue
		}
		s := Scope{Configuration: pair.Configuration, Platform: pair.Platform}
		if !slices.Contains(written, s) {
			out = append(out, s)
		}
	}
	return out
}

func missingNames(names, written, defaults []string) []string {
	if len(written) == 0 && len(names) == len(defaults) {
		same := true
		for _, n := range names {
			same = same && containsFold(defaults, n)
		}
		if same {
			return nil
		}
	}
	var out []string
	for _, n := range names {
		if !containsFold(written, n) {
			out = append(out, n)
		}
	}
	return out
}

func referenceGroups(refs *references.Set) []*Element {
	items := refs.Items()
	if len(items) == 0 {
		return nil
	}
	g := &Element{Name: "ItemGroup"}
	for _, r := range items {
		el := leafWithAttr("Reference", "Include", r.Include)
		for _, k := range r.MetadataKeys() {
			el.Children = append(el.Children, leaf(k, r.Metadata[k]))
		}
		g.Children = append(g.Children, el)
	}
	return []*Element{g}
}
