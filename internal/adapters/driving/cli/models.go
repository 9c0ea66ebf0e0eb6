package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List embedding services and models",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var modelsFormat string

type modelView struct {
	Service        string `json:"service" yaml:"service"`
	DisplayName    string `json:"display_name" yaml:"display_name"`
	Model          string `json:"model" yaml:"model"`
	Dimensions     int    `json:"dimensions" yaml:"dimensions"`
	RequiresAPIKey bool   `json:"requires_api_key" yaml:"requires_api_key"`
	Configured     bool   `json:"configured" yaml:"configured"`
}

func init() {
	addFormatFlag(modelsCmd, &modelsFormat)
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if modelCatalog == nil {
		return errors.New("model catalog not configured")
	}

	models, err := modelCatalog.Models()
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	views := make([]modelView, len(models))
	for i, m := range models {
		views[i] = modelView{
			Service:        m.Service.String(),
			DisplayName:    m.DisplayName,
			Model:          m.Model,
			Dimensions:     m.Dimensions,
			RequiresAPIKey: m.RequiresAPIKey,
			Configured:     m.Configured,
		}
	}
	if handled, err := writeStructured(cmd, modelsFormat, views); handled {
		return err
	}

	for _, v := range views {
		status := "ready"
		if !v.Configured {
			status = "not configured"
		}
		cmd.Printf("  %-22s %-26s %5d dims  %s\n", v.Service, v.Model, v.Dimensions, status)
	}
	return nil
}
