package document

import (
	"fmt"
	"strconv"
	"strings"
)

// canonicalField maps normalized field names (lowercased, separators removed)
// to the fixed metadata fields. The synonym set is deliberately bounded;
// anything else lands in Custom verbatim.
var canonicalField = map[string]string{
	"phase":            "phase",
	"specid":           "spec_id",
	"id":               "spec_id",
	"status":           "status",
	"dependencies":     "dependencies",
	"dependency":       "dependencies",
	"dependson":        "dependencies",
	"deps":             "dependencies",
	"estimatedcontext": "estimated_context",
	"contextestimate":  "estimated_context",
}

func normalizeFieldName(name string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(name))
}

// applyMetadataField assigns one recognized field, returning a warning
// message for malformed values. Unrecognized names are preserved in Custom.
func applyMetadataField(md *Metadata, name, value string) (warn string) {
	switch canonicalField[normalizeFieldName(name)] {
	case "phase":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			storeCustom(md, name, value)
			return fmt.Sprintf("malformed phase value %q", value)
		}
		md.Phase = n
	case "spec_id":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			storeCustom(md, name, value)
			return fmt.Sprintf("malformed spec id value %q", value)
		}
		md.SpecID = n
	case "status":
		status, ok := ParseStatus(value)
		if !ok {
			storeCustom(md, name, value)
			return fmt.Sprintf("unknown status value %q", value)
		}
		md.Status = status
	case "dependencies":
		md.Dependencies = splitDependencies(value)
	case "estimated_context":
		md.EstimatedContext = strings.TrimSpace(value)
	default:
		storeCustom(md, name, value)
	}
	return ""
}

func storeCustom(md *Metadata, name, value string) {
	if md.Custom == nil {
		md.Custom = make(map[string]string)
	}
	md.Custom[name] = value
}

func splitDependencies(value string) []string {
	var deps []string
	for _, part := range strings.Split(value, ",") {
		if dep := strings.TrimSpace(part); dep != "" {
			deps = append(deps, dep)
		}
	}
	return deps
}
