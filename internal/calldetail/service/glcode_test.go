package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecomposeGLCodes(t *testing.T) {
	tests := []struct {
		raw        string
		ok         bool
		primary    string
		components [3]string
	}{
		{raw: "100|200|300", ok: true, primary: "100", components: [3]string{"100", "200", "300"}},
		{raw: "100", ok: true, primary: "100", components: [3]string{"100", "", ""}},
		{raw: "|200|", ok: true, primary: "200", components: [3]string{"", "200", ""}},
		{raw: " 100 | 200 ", ok: true, primary: "100", components: [3]string{"100", "200", ""}},
		{raw: "100|200|300|400", ok: true, primary: "100", components: [3]string{"100", "200", "300"}},
		{raw: "", ok: false},
		{raw: "  ", ok: false},
		{raw: "||", ok: false},
		{raw: "| | ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			gl, ok := decomposeGLCodes(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.primary, gl.primary)
			assert.Equal(t, tt.components, gl.components)
		})
	}
}
