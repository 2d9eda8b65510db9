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
			name:    "separate value",
			args:    []string{"-d", "postgres://x", "-a", ":3000"},
			allowed: []string{"-d"},
			want:    []string{"-d", "postgres://x"},
		},
		{
			name:    "equals form",
			args:    []string{"-o=https://a,https://b", "-x", "1"},
			allowed: []string{"-o"},
			want:    []string{"-o=https://a,https://b"},
		},
		{
			name:    "equals form of unknown flag dropped",
			args:    []string{"--unknown=1"},
			allowed: []string{"-o"},
			want:    []string{},
		},
		{
			name:    "order preserved across flags",
			args:    []string{"-s", "sqlite", "-c", "conf.json", "-d", "file:x.db"},
			allowed: []string{"-s", "-d"},
			want:    []string{"-s", "sqlite", "-d", "file:x.db"},
		},
		{
			name:    "dash token not taken as value",
			args:    []string{"-d", "-a", ":3000"},
			allowed: []string{"-d"},
			want:    []string{"-d"},
		},
		{
			name:    "trailing flag",
			args:    []string{"-t"},
			allowed: []string{"-t"},
			want:    []string{"-t"},
		},
		{
			name:    "positional ignored",
			args:    []string{"serve", "now"},
			allowed: []string{"-a"},
			want:    []string{},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigPath([]string{"-c", "a.json", "-d", "dsn"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-a", ":1", "-config", "b.json"}))
	assert.Equal(t, "c.json", ConfigPath([]string{"--config=c.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-a", ":1"}))
}
