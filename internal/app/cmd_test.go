package app

import (
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"empty defaults to serve", []string{}, CommandServe},
		{"serve", []string{"serve"}, CommandServe},
		{"migrate", []string{"migrate"}, CommandMigrate},
		{"healthcheck", []string{"healthcheck"}, CommandHealthcheck},
		{"unknown defaults to serve", []string{"worker"}, CommandServe},
		{"ignores extra args", []string{"migrate", "--flag", "value"}, CommandMigrate},
		{"case insensitive", []string{"HealthCheck"}, CommandHealthcheck},
		{"surrounding spaces", []string{" migrate "}, CommandMigrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommand(tt.args); got != tt.want {
				t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CommandServe, "serve"},
		{CommandMigrate, "migrate"},
		{CommandHealthcheck, "healthcheck"},
	}

	for _, tt := range tests {
		if got := string(tt.cmd); got != tt.want {
			t.Errorf("Command(%q) string = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestCommand_NeedsConfig(t *testing.T) {
	if CommandHealthcheck.NeedsConfig() {
		t.Error("healthcheck should not require full configuration")
	}
	for _, cmd := range []Command{CommandServe, CommandMigrate} {
		if !cmd.NeedsConfig() {
			t.Errorf("%s should require configuration", cmd)
		}
	}
}
