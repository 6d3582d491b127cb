package image

import (
	"fmt"
	"slices"
)

// CrossOrigin selects the credentials policy for remote images.
type CrossOrigin string

const (
	// CrossOriginAnonymous fetches without credentials.
	CrossOriginAnonymous CrossOrigin = "anonymous"

	// CrossOriginUseCredentials sends the configured credential headers.
	CrossOriginUseCredentials CrossOrigin = "use-credentials"
)

// ValidCrossOrigins returns the accepted cross-origin modes.
func ValidCrossOrigins() []CrossOrigin {
	return []CrossOrigin{CrossOriginAnonymous, CrossOriginUseCredentials}
}

// ParseCrossOrigin converts a string to a CrossOrigin. An empty string is anonymous.
func ParseCrossOrigin(s string) (CrossOrigin, error) {
	if s == "" {
		return CrossOriginAnonymous, nil
	}
	c := CrossOrigin(s)
	if !slices.Contains(ValidCrossOrigins(), c) {
		return "", fmt.Errorf("invalid cross-origin mode: %s (valid: %v)", s, ValidCrossOrigins())
	}
	return c, nil
}

// SendsCredentials reports whether requests carry credential headers.
func (c CrossOrigin) SendsCredentials() bool {
	return c == CrossOriginUseCredentials
}
