// Package classify maps qualifying variants from each sample onto panel regions.
package classify

import "fmt"

// Group labels.
const (
	Group0 = 0
	Group1 = 1
)

// Sample is one variant source. Index is its identity everywhere; Name is
// used for diagnostics only.
type Sample struct {
	Index int
	Name  string
	Group int
	Path  string
}

// ConfigError reports an inconsistent sample configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "invalid sample configuration: " + e.Message
}

// NewSamples pairs variant sources with names and groups. A single name is
// applied to every source; any other length mismatch is an error.
func NewSamples(paths, names []string, groups []int) ([]Sample, error) {
	if len(paths) == 0 {
		return nil, &ConfigError{Message: "at least one vcf is required"}
	}
	if len(names) == 1 && len(paths) > 1 {
		broadcast := make([]string, len(paths))
		for i := range broadcast {
			broadcast[i] = names[0]
		}
		names = broadcast
	}
	if len(names) != len(paths) {
		return nil, &ConfigError{Message: fmt.Sprintf("%d names for %d vcfs", len(names), len(paths))}
	}
	if len(groups) != len(paths) {
		return nil, &ConfigError{Message: fmt.Sprintf("%d groups for %d vcfs", len(groups), len(paths))}
	}

	stdin := 0
	samples := make([]Sample, len(paths))
	for i, path := range paths {
		if groups[i] != Group0 && groups[i] != Group1 {
			return nil, &ConfigError{Message: fmt.Sprintf("group %d for %s must be 0 or 1", groups[i], path)}
		}
		if path == "-" {
			stdin++
		}
		samples[i] = Sample{Index: i, Name: names[i], Group: groups[i], Path: path}
	}
	if stdin > 1 {
		return nil, &ConfigError{Message: "stdin can supply at most one vcf"}
	}

	return samples, nil
}

// Groups returns the group label of each sample, in index order.
func Groups(samples []Sample) []int {
	groups := make([]int, len(samples))
	for _, s := range samples {
		groups[s.Index] = s.Group
	}
	return groups
}

// CountGroups returns how many samples are in group 0 and group 1.
func CountGroups(samples []Sample) (group0, group1 int) {
	for _, s := range samples {
		if s.Group == Group1 {
			group1++
		} else {
			group0++
		}
	}
	return group0, group1
}
