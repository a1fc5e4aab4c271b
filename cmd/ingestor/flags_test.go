package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    AppFlags
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: AppFlags{EnvFile: ".env"},
		},
		{
			name: "aliases",
			args: []string{"-c", "cfg.yaml", "-m", "OneTime"},
			want: AppFlags{GlobalConfigFile: "cfg.yaml", EnvFile: ".env", Mode: "onetime"},
		},
		{
			name: "long form wins over alias",
			args: []string{"-config", "a.yaml", "-c", "b.yaml"},
			want: AppFlags{GlobalConfigFile: "a.yaml", EnvFile: ".env"},
		},
		{
			name: "lookup by md5",
			args: []string{"-mode", "lookup", "-md5", "5eb63bbbe01eeed093cb22bb8f5acdc3"},
			want: AppFlags{EnvFile: ".env", Mode: "lookup", MD5: "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		},
		{
			name:    "lookup without digest",
			args:    []string{"-mode", "lookup"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-nope"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
