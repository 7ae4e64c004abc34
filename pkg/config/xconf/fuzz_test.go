package xconf

import (
	"testing"
)

func FuzzLoadBytes(f *testing.F) {
	f.Add([]byte(sampleYAML), true)
	f.Add([]byte(`{"lock": {"attempts": 1}}`), false)
	f.Add([]byte("machine: {id: -1}"), true)

	f.Fuzz(func(t *testing.T, data []byte, yaml bool) {
		format := FormatJSON
		if yaml {
			format = FormatYAML
		}
		cfg, err := LoadBytes(data, format)
		if err != nil {
			return
		}
		if verr := cfg.Validate(); verr != nil {
			t.Fatalf("loaded config fails validation: %v", verr)
		}
	})
}
