package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refit/pkg/action"
	"refit/pkg/config"
)

func resetFlags(t *testing.T) {
	t.Helper()
	configFile = ".refitrc.yaml"
	actionsSpec = ""
	diffCommand = ""
	printFlag = false
	diffFlag = false
	replaceFlag = false
	diffReplace = false
	interactive = false
	verbose = false
	quiet = false
	debug = false
}

func TestChooseActions(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		cfg   *config.Config
		want  []action.Action
	}{
		{
			name:  "actions_spec_wins",
			setup: func() { actionsSpec = "PRINT,DIFF" },
			cfg:   &config.Config{Actions: "REPLACE"},
			want:  []action.Action{{Kind: action.KindPrint}, {Kind: action.KindDiff}},
		},
		{
			name:  "print_shortcut",
			setup: func() { printFlag = true },
			cfg:   &config.Config{},
			want:  action.NonInteractive(),
		},
		{
			name:  "replace_shortcut_includes_ifchanged",
			setup: func() { replaceFlag = true },
			cfg:   &config.Config{},
			want:  []action.Action{{Kind: action.KindIfChanged}, {Kind: action.KindReplace}},
		},
		{
			name:  "diff_replace_shortcut",
			setup: func() { diffReplace = true },
			cfg:   &config.Config{},
			want: []action.Action{
				{Kind: action.KindIfChanged},
				{Kind: action.KindDiff},
				{Kind: action.KindReplace},
			},
		},
		{
			name:  "interactive_shortcut",
			setup: func() { interactive = true },
			cfg:   &config.Config{},
			want:  action.Interactive(),
		},
		{
			name:  "config_actions_fallback",
			setup: func() {},
			cfg:   &config.Config{Actions: "IFCHANGED,REPLACE"},
			want:  []action.Action{{Kind: action.KindIfChanged}, {Kind: action.KindReplace}},
		},
		{
			// Test processes never have a terminal on both ends.
			name:  "piped_default_is_print",
			setup: func() {},
			cfg:   &config.Config{},
			want:  action.NonInteractive(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			tt.setup()

			got, err := chooseActions(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("bad_spec_errors", func(t *testing.T) {
		resetFlags(t)
		actionsSpec = "NOPE"
		_, err := chooseActions(&config.Config{})
		require.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing_default_config_is_fine", func(t *testing.T) {
		resetFlags(t)
		dir := t.TempDir()
		cwd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		defer os.Chdir(cwd)

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Empty(t, cfg.Rules)
	})

	t.Run("missing_explicit_config_errors", func(t *testing.T) {
		resetFlags(t)
		configFile = filepath.Join(t.TempDir(), "nope.yaml")
		_, err := loadConfig()
		require.Error(t, err)
	})

	t.Run("explicit_config_loads", func(t *testing.T) {
		resetFlags(t)
		path := filepath.Join(t.TempDir(), "refit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - from: a\n    to: b\n"), 0o644))
		configFile = path

		cfg, err := loadConfig()
		require.NoError(t, err)
		require.Len(t, cfg.Rules, 1)
		assert.Equal(t, "a", cfg.Rules[0].From)
	})
}
