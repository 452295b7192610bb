package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagloom/internal/tools"
	"tagloom/internal/tools/core"
	"tagloom/internal/tools/shell"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools available to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := tools.NewRegistry(logger)
		if err := core.RegisterAll(registry); err != nil {
			return err
		}
		if err := shell.RegisterAll(registry); err != nil {
			return err
		}

		for _, name := range registry.Names() {
			tool := registry.Get(name)
			fmt.Printf("%-18s %s\n", name, tool.Description)
			for param, prop := range tool.Schema.Properties {
				required := ""
				for _, r := range tool.Schema.Required {
					if r == param {
						required = " (required)"
					}
				}
				fmt.Printf("    %-14s %s%s\n", param, prop.Description, required)
			}
		}
		return nil
	},
}
