package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "print the companion's current status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).Status()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var executeProximity float64

var executeCmd = &cobra.Command{
	Use:   "execute <task description>",
	Short: "run one orchestrator turn against a task description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task := args[0]
		for _, a := range args[1:] {
			task += " " + a
		}
		out, err := newAPIClient(baseURL).Execute(task, executeProximity)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	executeCmd.Flags().Float64Var(&executeProximity, "proximity", 0, "proximity hint (0..1) passed with the task")
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "list pending actions awaiting approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).PendingActions()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <action-id>",
	Short: "approve a pending action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).Approve(args[0])
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var denyCmd = &cobra.Command{
	Use:   "deny <action-id>",
	Short: "deny a pending action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).Deny(args[0])
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "list or execute recorded workflows",
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list recorded workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).ListWorkflows()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var workflowsExecuteCmd = &cobra.Command{
	Use:   "execute <workflow-id>",
	Short: "replay a recorded workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).ExecuteWorkflow(args[0])
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	workflowsCmd.AddCommand(workflowsListCmd)
	workflowsCmd.AddCommand(workflowsExecuteCmd)
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "start or stop recording a workflow from subsequent execute calls",
}

var recordStartID string

var recordStartCmd = &cobra.Command{
	Use:   "start",
	Short: "begin recording a workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).RecordStart(recordStartID)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var recordStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "stop recording and save the workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newAPIClient(baseURL).RecordStop()
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	recordStartCmd.Flags().StringVar(&recordStartID, "id", "", "workflow id to record under (default: server-assigned)")
	recordCmd.AddCommand(recordStartCmd)
	recordCmd.AddCommand(recordStopCmd)
}
