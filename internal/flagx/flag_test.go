package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value kept",
			args:    []string{"-f", "creds.txt", "-x", "1"},
			allowed: []string{"-f"},
			want:    []string{"-f", "creds.txt"},
		},
		{
			name:    "combined value kept",
			args:    []string{"-config=conf.json", "-d=dsn"},
			allowed: []string{"-config"},
			want:    []string{"-config=conf.json"},
		},
		{
			name:    "flag without value kept alone",
			args:    []string{"-f", "-d", "dsn"},
			allowed: []string{"-f"},
			want:    []string{"-f"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "b"},
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterArgs(tc.args, tc.allowed))
		})
	}
}
