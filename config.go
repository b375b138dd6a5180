package fixtree

import "github.com/giantswarm/fixtree/internal/core"

// workspaceConfig holds configuration for a Workspace. This unexported type
// wraps core.WorkspaceConfig via embedding, keeping internal/core types out
// of the public API signature while avoiding field-by-field duplication.
type workspaceConfig struct {
	core.WorkspaceConfig
}

// toCoreConfig returns the embedded core.WorkspaceConfig.
func (c workspaceConfig) toCoreConfig() core.WorkspaceConfig {
	return c.WorkspaceConfig
}
