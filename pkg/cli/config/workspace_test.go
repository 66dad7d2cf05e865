package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/cli/config"
	"github.com/tracknest/tracknest/pkg/repository/memory"
)

func writeRegistry(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workspaces.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestWorkspaceRegistryLoad(t *testing.T) {
	t.Run("parses workspaces and teams", func(t *testing.T) {
		path := writeRegistry(t, `
[[workspace]]
id = "ws-1"
name = "Acme"
slug = "acme"
actions_enabled = true
action_count = 5

[[workspace.team]]
id = "team-1"
name = "Engineering"
identifier = "ENG"

[[workspace]]
id = "ws-2"
name = "Beta"
slug = "beta"
`)

		entries, err := config.NewWorkspaceRegistryForTest(path).Load()
		gt.NoError(t, err).Required()

		gt.Array(t, entries).Length(2)
		gt.Value(t, entries[0].ID).Equal("ws-1")
		gt.Value(t, entries[0].ActionsEnabled).Equal(true)
		gt.Value(t, entries[0].ActionCount).Equal(5)
		gt.Array(t, entries[0].Teams).Length(1)
		gt.Value(t, entries[0].Teams[0].Identifier).Equal("ENG")
	})

	t.Run("no path yields no entries", func(t *testing.T) {
		entries, err := config.NewWorkspaceRegistryForTest("").Load()
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.NewWorkspaceRegistryForTest("/no/such/registry.toml").Load()
		gt.Error(t, err)
	})

	t.Run("workspace without a slug is rejected", func(t *testing.T) {
		path := writeRegistry(t, `
[[workspace]]
id = "ws-1"
name = "Acme"
`)
		_, err := config.NewWorkspaceRegistryForTest(path).Load()
		gt.Error(t, err)
	})

	t.Run("duplicate workspace IDs are rejected", func(t *testing.T) {
		path := writeRegistry(t, `
[[workspace]]
id = "ws-1"
slug = "acme"

[[workspace]]
id = "ws-1"
slug = "acme-again"
`)
		_, err := config.NewWorkspaceRegistryForTest(path).Load()
		gt.Error(t, err)
	})

	t.Run("team without an identifier is rejected", func(t *testing.T) {
		path := writeRegistry(t, `
[[workspace]]
id = "ws-1"
slug = "acme"

[[workspace.team]]
id = "team-1"
name = "Engineering"
`)
		_, err := config.NewWorkspaceRegistryForTest(path).Load()
		gt.Error(t, err)
	})
}

func TestWorkspaceRegistrySeed(t *testing.T) {
	path := writeRegistry(t, `
[[workspace]]
id = "ws-1"
name = "Acme"
slug = "acme"
actions_enabled = true
action_count = 3

[[workspace.team]]
id = "team-1"
name = "Engineering"
identifier = "ENG"
`)

	repo := memory.New()
	ctx := context.Background()
	gt.NoError(t, config.NewWorkspaceRegistryForTest(path).Seed(ctx, repo)).Required()

	workspace, err := repo.Workspace().Get(ctx, "ws-1")
	gt.NoError(t, err).Required()
	gt.Value(t, workspace.Slug).Equal("acme")
	gt.Value(t, workspace.ActionsEnabled).Equal(true)
	gt.Value(t, workspace.Preferences.ActionCount).Equal(3)

	team, err := repo.Workspace().GetTeam(ctx, "team-1")
	gt.NoError(t, err).Required()
	gt.Value(t, team.WorkspaceID).Equal("ws-1")
	gt.Value(t, team.Identifier).Equal("ENG")
}
