package properties

import "strings"

// StorageLocation records the scope a property value was written to.
// It governs how the value is serialized, not how it is read.
type StorageLocation int

const (
	// Base is the project-wide scope.
	Base StorageLocation = iota
	// ConfigurationSpecific applies to one build configuration on every platform.
	ConfigurationSpecific
	// PlatformSpecific applies to one platform in every configuration.
	PlatformSpecific
	// ConfigurationAndPlatformSpecific applies to one configuration/platform pair.
	ConfigurationAndPlatformSpecific
)

func (l StorageLocation) String() string {
	switch l {
	case Base:
		return "Base"
	case ConfigurationSpecific:
		return "ConfigurationSpecific"
	case PlatformSpecific:
		return "PlatformSpecific"
	case ConfigurationAndPlatformSpecific:
		return "ConfigurationAndPlatformSpecific"
	default:
		return "Unknown"
	}
}

// ParseStorageLocation parses a location name case-insensitively.
// Short forms "config", "platform" and "both" are accepted.
func ParseStorageLocation(s string) (StorageLocation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base", "":
		return Base, true
	case "configurationspecific", "configuration", "config":
		return ConfigurationSpecific, true
	case "platformspecific", "platform":
		return PlatformSpecific, true
	case "configurationandplatformspecific", "both":
		return ConfigurationAndPlatformSpecific, true
	default:
		return Base, false
	}
}
