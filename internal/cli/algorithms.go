package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/dagsim/internal/scheduler"
)

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the available scheduling algorithms",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := scheduler.NewRegistry()
			for _, name := range reg.Names() {
				s, err := reg.New(name, logger)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %s\n", name, s.Type())
			}
			return nil
		},
	}
}
