package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filenest/internal/app"
	"github.com/templui/filenest/internal/config"
)

func ManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <user_id>",
		Short: "Print the directory manifest of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			lines, err := a.ArchiveService.BuildManifest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Println(line)
			}
			return nil
		},
	}
}
