package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// WorkspaceRegistry holds CLI flags for the workspace registry file
type WorkspaceRegistry struct {
	path string
}

func (x *WorkspaceRegistry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "workspace-config",
			Usage:       "Path to workspace registry TOML file",
			Category:    "Workspace",
			Sources:     cli.EnvVars("TRACKNEST_WORKSPACE_CONFIG"),
			Destination: &x.path,
		},
	}
}

// WorkspaceEntry is one workspace declaration in the registry file
type WorkspaceEntry struct {
	ID             string      `toml:"id"`
	Name           string      `toml:"name"`
	Slug           string      `toml:"slug"`
	ActionsEnabled bool        `toml:"actions_enabled"`
	ActionCount    int         `toml:"action_count"`
	Teams          []TeamEntry `toml:"team"`
}

// TeamEntry is one team declaration within a workspace
type TeamEntry struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Identifier string `toml:"identifier"`
}

// registryFile is the TOML document shape
type registryFile struct {
	Workspaces []WorkspaceEntry `toml:"workspace"`
}

// Validate checks one workspace entry
func (w *WorkspaceEntry) Validate() error {
	if w.ID == "" {
		return goerr.New("workspace ID is required")
	}
	if w.Slug == "" {
		return goerr.New("workspace slug is required", goerr.V("id", w.ID))
	}
	for _, team := range w.Teams {
		if team.ID == "" || team.Identifier == "" {
			return goerr.New("team ID and identifier are required", goerr.V("workspace_id", w.ID))
		}
	}
	return nil
}

// Load reads and validates the registry file. Returns nil when no path
// is configured.
func (x *WorkspaceRegistry) Load() ([]WorkspaceEntry, error) {
	if x.path == "" {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(x.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read workspace registry", goerr.V("path", x.path))
	}

	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse workspace registry", goerr.V("path", x.path))
	}

	seen := make(map[string]bool, len(file.Workspaces))
	for i := range file.Workspaces {
		entry := &file.Workspaces[i]
		if err := entry.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid workspace entry", goerr.V("path", x.path))
		}
		if seen[entry.ID] {
			return nil, goerr.New("duplicate workspace ID", goerr.V("id", entry.ID))
		}
		seen[entry.ID] = true
	}

	return file.Workspaces, nil
}

// Seed writes the registry entries into the repository so deployments
// and dispatches can resolve them. Existing workspaces are overwritten
// with the declared configuration.
func (x *WorkspaceRegistry) Seed(ctx context.Context, repo interfaces.Repository) error {
	entries, err := x.Load()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if _, err := repo.Workspace().Put(ctx, &model.Workspace{
			ID:             entry.ID,
			Name:           entry.Name,
			Slug:           entry.Slug,
			ActionsEnabled: entry.ActionsEnabled,
			Preferences:    model.WorkspacePreferences{ActionCount: entry.ActionCount},
		}); err != nil {
			return goerr.Wrap(err, "failed to seed workspace", goerr.V("workspace_id", entry.ID))
		}

		for _, team := range entry.Teams {
			if _, err := repo.Workspace().PutTeam(ctx, &model.Team{
				ID:          team.ID,
				WorkspaceID: entry.ID,
				Name:        team.Name,
				Identifier:  team.Identifier,
			}); err != nil {
				return goerr.Wrap(err, "failed to seed team", goerr.V("team_id", team.ID))
			}
		}

		logging.Default().Info("Seeded workspace",
			"workspace_id", entry.ID, "teams", len(entry.Teams))
	}

	return nil
}
