package errors

import (
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		code     Code
		ok       []string
		bad      []string
	}{
		{
			name:     "color",
			validate: ValidateColor,
			code:     ErrCodeInvalidColor,
			ok:       []string{"", "#0af", "#E4002B", "teal"},
			bad:      []string{"e4002b", "#12345", `red" onload="x`, "Teal"},
		},
		{
			name:     "map id",
			validate: ValidateMapID,
			code:     ErrCodeInvalidMapID,
			ok:       []string{"3f2b8c1e-4d5a-4e6f-9a0b-1c2d3e4f5a6b"},
			bad:      []string{"", "map-1", "../etc/passwd"},
		},
		{
			name:     "station id",
			validate: ValidateStationID,
			code:     ErrCodeInvalidStation,
			ok:       []string{"senior-engineer", "Senior Engineer", "ingénieur", strings.Repeat("a", 256)},
			bad:      []string{"", strings.Repeat("a", 257), "a\x00b", `a"b`, "<script>", "r&d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, in := range tt.ok {
				if err := tt.validate(in); err != nil {
					t.Errorf("%.20q rejected: %v", in, err)
				}
			}
			for _, in := range tt.bad {
				err := tt.validate(in)
				if err == nil {
					t.Errorf("%.20q accepted", in)
					continue
				}
				if !Is(err, tt.code) || !IsInvalid(err) {
					t.Errorf("%.20q: code = %s, want %s", in, GetCode(err), tt.code)
				}
			}
		})
	}
}
