package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{
		backend:    backend,
		projectID:  projectID,
		databaseID: databaseID,
	}
}

// NewWorkspaceRegistryForTest creates a WorkspaceRegistry config for
// testing purposes
func NewWorkspaceRegistryForTest(path string) *WorkspaceRegistry {
	return &WorkspaceRegistry{path: path}
}

// NewTriggerForTest creates a Trigger config for testing purposes
func NewTriggerForTest(apiURL, apiKey string) *Trigger {
	return &Trigger{
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

// NewBackendForTest creates a Backend config for testing purposes
func NewBackendForTest(baseURL, apiKey string) *Backend {
	return &Backend{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}
