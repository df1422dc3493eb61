package main

import (
	"fmt"

	"github.com/dafibh/dolinear/dolinear-backend/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var repairStatesCmd = &cobra.Command{
	Use:   "repair-states",
	Short: "Give every team a backlog workflow state",
	Long: `Find teams without a backlog-type workflow state and repair them.

Teams with no states at all get the six default states. Teams that have
states but no backlog get a "Backlog" state at position 0, suffixed with a
number when that name is taken.

Examples:
  dolinear-admin repair-states --dry-run
  dolinear-admin repair-states --team 6f1c0b9e-0c1e-4c59-9a77-0d7d1f1f0a11`,
	Args: cobra.NoArgs,
	RunE: runRepairStates,
}

func init() {
	repairStatesCmd.Flags().String("team", "", "Only repair this team ID")
	repairStatesCmd.Flags().Bool("dry-run", false, "Report what would change without writing")
	rootCmd.AddCommand(repairStatesCmd)
}

func runRepairStates(cmd *cobra.Command, args []string) error {
	teamFlag, _ := cmd.Flags().GetString("team")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var teamID *uuid.UUID
	if teamFlag != "" {
		id, err := uuid.Parse(teamFlag)
		if err != nil {
			return fmt.Errorf("invalid --team %q: %w", teamFlag, err)
		}
		teamID = &id
	}

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	repos := s.Repositories()
	states := service.NewWorkflowStateService(s, repos.WorkflowStates, repos.Teams)

	repairs, err := states.RepairStates(ctx, teamID, dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(repairs) == 0 {
		fmt.Fprintln(out, "Every team has a backlog state")
		return nil
	}

	verb := "Repaired"
	if dryRun {
		verb = "Would repair"
	}
	for _, r := range repairs {
		switch r.Action {
		case service.RepairSeededDefaults:
			fmt.Fprintf(out, "%s %s (%s): seeded default states\n", verb, r.Identifier, r.TeamID)
		case service.RepairAddedBacklog:
			fmt.Fprintf(out, "%s %s (%s): added %q\n", verb, r.Identifier, r.TeamID, r.StateName)
		}
	}
	fmt.Fprintf(out, "%d team(s)\n", len(repairs))
	return nil
}
