package shell

import "tagloom/internal/tools"

// RegisterAll registers the shell tools with the registry.
func RegisterAll(registry *tools.Registry) error {
	return registry.Register(ExecuteCommandTool())
}
