package output

import (
	"encoding/json"
	"io"
	"time"
)

// CurrentSchemaVersion is the schema version for all JSON outputs
const CurrentSchemaVersion = "1.0.0"

// ProjectOutput is the JSON output of the show command
type ProjectOutput struct {
	SchemaVersion          string          `json:"schemaVersion"`
	Project                string          `json:"project"`
	Path                   string          `json:"path"`
	ReadOnly               bool            `json:"readOnly"`
	ActiveConfiguration    string          `json:"activeConfiguration"`
	TargetFramework        string          `json:"targetFramework,omitempty"`
	ToolsVersion           string          `json:"toolsVersion,omitempty"`
	MinimumSolutionVersion int             `json:"minimumSolutionVersion"`
	Properties             []PropertyValue `json:"properties"`
	References             []Reference     `json:"references"`
	ElapsedMs              int64           `json:"elapsedMs"`
}

// PropertyValue is one stored property entry
type PropertyValue struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	Configuration string `json:"configuration,omitempty"`
	Platform      string `json:"platform,omitempty"`
	Location      string `json:"location"`
}

// Reference is one assembly reference
type Reference struct {
	Include  string            `json:"include"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UpgradeOutput is the JSON output of the upgrade command
type UpgradeOutput struct {
	SchemaVersion string           `json:"schemaVersion"`
	Project       string           `json:"project"`
	Properties    []PropertyChange `json:"properties"`
	Added         []string         `json:"addedReferences"`
	Removed       []string         `json:"removedReferences"`
	ElapsedMs     int64            `json:"elapsedMs"`
}

// PropertyChange is a property rewritten by an upgrade
type PropertyChange struct {
	Name     string `json:"name"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// FrameworkOutput is one catalog entry of the frameworks command
type FrameworkOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Profile     string   `json:"profile,omitempty"`
	DisplayName string   `json:"displayName"`
	Compilers   []string `json:"compilers"`
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MeasureElapsed returns elapsed time in milliseconds since start
func MeasureElapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
