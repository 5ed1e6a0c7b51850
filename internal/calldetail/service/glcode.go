package service

import "strings"

const (
	glCodeSeparator = "|"
	maxGLComponents = 3
)

type glCodes struct {
	primary    string
	components [maxGLComponents]string
}

// decomposeGLCodes splits a pipe-delimited GL code into its positional
// components and picks the first non-blank one as primary. Segments past the
// third are ignored. The bool is false when no component is present, in which
// case the caller falls back to the call type's GL code.
func decomposeGLCodes(raw string) (glCodes, bool) {
	var gl glCodes
	if strings.TrimSpace(raw) == "" {
		return gl, false
	}

	segments := strings.SplitN(raw, glCodeSeparator, maxGLComponents+1)
	found := false
	for i := 0; i < len(segments) && i < maxGLComponents; i++ {
		code := strings.TrimSpace(segments[i])
		if code == "" {
			continue
		}
		gl.components[i] = code
		if !found {
			gl.primary = code
			found = true
		}
	}
	return gl, found
}
