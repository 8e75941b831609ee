package app

import (
	"bytes"
	"testing"
)

func TestNewRootCommand_HasSubcommands(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, &buf).NewRootCommand()

	want := map[string]bool{
		string(CommandSetup):  false,
		string(CommandLoad):   false,
		string(CommandReport): false,
		string(CommandFind):   false,
		string(CommandAll):    false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q is not registered", name)
		}
	}
}

func TestNewRootCommand_EnvFileDefault(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, &buf).NewRootCommand()

	flag := root.PersistentFlags().Lookup("env-file")
	if flag == nil {
		t.Fatal("--env-file flag is not defined")
	}
	if flag.DefValue != ".env" {
		t.Errorf("--env-file default = %q, want %q", flag.DefValue, ".env")
	}
}

func TestFindCommand_ValidArgsListFinders(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, &buf).NewRootCommand()

	findCmd, _, err := root.Find([]string{"find"})
	if err != nil {
		t.Fatalf("find command not found: %v", err)
	}
	if len(findCmd.ValidArgs) != 4 {
		t.Errorf("ValidArgs = %v, want 4 finders", findCmd.ValidArgs)
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CommandSetup, "setup"},
		{CommandLoad, "load"},
		{CommandReport, "report"},
		{CommandFind, "find"},
		{CommandAll, "all"},
	}

	for _, tt := range tests {
		if got := string(tt.cmd); got != tt.want {
			t.Errorf("Command(%q) string = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
