package commands

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quarry-ml/quarry-deploy/internal/config"
	"github.com/quarry-ml/quarry-deploy/internal/stack"
)

// Status returns the status command.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the current stack state",
		Long: `Status reads the current stack state and prints it. A stack that has
never been deployed reports "no stack" and exits zero; absence is a normal
outcome, not an error. No remote state is modified.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), configPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the deploy configuration file")

	return cmd
}

// runStatus probes the stack and renders the view.
func runStatus(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	desc, err := buildDescriptor(cfg)
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	view, err := newManager(cfg, awsCfg, desc).Status(ctx)
	if err != nil {
		return err
	}

	renderStatus(out, view)
	return nil
}

// renderStatus prints the status view for human consumption.
func renderStatus(out io.Writer, view *stack.StatusView) {
	if !view.Exists {
		fmt.Fprintf(out, "%s: no stack\n", view.Name)
		return
	}

	fmt.Fprintf(out, "%s: %s\n", view.Name, colorState(view.State))
	if view.StatusReason != "" {
		fmt.Fprintf(out, "  reason:  %s\n", view.StatusReason)
	}
	fmt.Fprintf(out, "  created: %s\n", view.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if view.UpdatedAt != nil {
		fmt.Fprintf(out, "  updated: %s\n", view.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	if len(view.Outputs) > 0 {
		fmt.Fprintln(out, "  outputs:")
		keys := make([]string, 0, len(view.Outputs))
		for k := range view.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "    %s: %s\n", k, view.Outputs[k])
		}
	}
}

// colorState renders a stack state with a color matching its class:
// green for success, yellow for in-progress, red for failure.
func colorState(s stack.State) string {
	switch s {
	case stack.StateCreateComplete, stack.StateUpdateComplete, stack.StateDeleteComplete:
		return color.GreenString(string(s))
	case stack.StateCreateInProgress, stack.StateUpdateInProgress, stack.StateDeleteInProgress:
		return color.YellowString(string(s))
	default:
		return color.RedString(string(s))
	}
}
