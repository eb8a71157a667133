package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strideworks/erp-core/pkg/activity"
	"github.com/strideworks/erp-core/pkg/apply"
	"github.com/strideworks/erp-core/pkg/approval"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Inspect and decide approval requests",
}

var (
	approvalsStatus string
	approvalsLimit  int
)

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List approval requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		store := approval.NewRequestStore(gdb)

		filter := approval.ListFilter{Status: approval.RequestStatus(approvalsStatus)}
		rows, nextToken, err := store.List(filter, approvalsLimit, 0)
		if err != nil {
			return fmt.Errorf("list approvals: %w", err)
		}

		fmt.Printf("%-6s %-10s %-12s %-10s %-8s %-20s %s\n",
			"ID", "STATUS", "ENTITY", "ENTITY_ID", "BY", "REQUESTED", "SUMMARY")
		for _, r := range rows {
			fmt.Printf("%-6d %-10s %-12s %-10s %-8d %-20s %s\n",
				r.ID, r.Status, r.EntityType, r.EntityID, r.RequestedBy,
				r.RequestedAt.Format("2006-01-02 15:04:05"), r.Summary)
		}
		if nextToken > 0 {
			fmt.Printf("more rows available, next page token: %d\n", nextToken)
		}
		return nil
	},
}

var (
	decisionActor int64
	decisionNote  string
)

func newModerator() (*approval.Moderator, error) {
	gdb, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	requests := approval.NewRequestStore(gdb)
	log := activity.NewStore(gdb)
	return approval.NewModerator(gdb, requests, apply.NewApplier(), log, nil), nil
}

var approvalsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending request and apply its change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if decisionActor == 0 {
			return fmt.Errorf("--as is required")
		}
		moderator, err := newModerator()
		if err != nil {
			return err
		}
		result, err := moderator.Approve(id, decisionActor, decisionNote)
		if err != nil {
			return fmt.Errorf("approve request %d: %w", id, err)
		}
		fmt.Printf("approved request %d (entity id %d)\n", id, result.EntityID)
		return nil
	},
}

var approvalsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if decisionActor == 0 {
			return fmt.Errorf("--as is required")
		}
		moderator, err := newModerator()
		if err != nil {
			return err
		}
		if err := moderator.Reject(id, decisionActor, decisionNote); err != nil {
			return fmt.Errorf("reject request %d: %w", id, err)
		}
		fmt.Printf("rejected request %d\n", id)
		return nil
	},
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return id, nil
}

func init() {
	approvalsListCmd.Flags().StringVar(&approvalsStatus, "status", "PENDING", "Filter by status (PENDING, APPROVED, REJECTED, CANCELLED, or empty for all)")
	approvalsListCmd.Flags().IntVar(&approvalsLimit, "limit", 50, "Maximum rows to return")

	for _, c := range []*cobra.Command{approvalsApproveCmd, approvalsRejectCmd} {
		c.Flags().Int64Var(&decisionActor, "as", 0, "User id recorded as the deciding moderator")
		c.Flags().StringVar(&decisionNote, "note", "", "Decision note")
	}

	approvalsCmd.AddCommand(approvalsListCmd)
	approvalsCmd.AddCommand(approvalsApproveCmd)
	approvalsCmd.AddCommand(approvalsRejectCmd)

	rootCmd.AddCommand(approvalsCmd)
}
