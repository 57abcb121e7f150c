package lint

import "strings"

// Settings are the shared, rule-independent analysis settings.
type Settings struct {
	// Pragma qualifies component APIs (React.Component, React.memo).
	// Empty means the default, possibly overridden per file by @jsx.
	Pragma string
	// CreateClass is the legacy component factory name.
	CreateClass string
	// Version is the target React version, e.g. "16.2.0".
	Version string
	// PropWrapperFunctions are identity-like helpers around propTypes.
	// Entries are "name" or "object.property".
	PropWrapperFunctions []string
	// PropVariableNames extend props/nextProps/prevProps.
	PropVariableNames []string
}

// IsPropWrapperFunction reports whether name (a callee's source text)
// is a configured prop wrapper.
func (s Settings) IsPropWrapperFunction(name string) bool {
	if name == "" {
		return false
	}
	for _, entry := range s.PropWrapperFunctions {
		if entry == name {
			return true
		}
		if i := strings.IndexByte(entry, '.'); i >= 0 && entry[i+1:] == name {
			return true
		}
	}
	return false
}
