// Action commands for the vault CLI.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	actionTitle    string
	actionBody     string
	actionDue      string
	actionPriority int
	actionParent   string
	actionKind     string
	actionPath     string
	actionOrder    int
	actionDone     bool
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Manage actions",
}

var actionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new action",
	Long: `Add creates a new action, optionally inside a container.

Example:
  vault action add --title "Write the outline"
  vault action add --title "Book flights" --due 2026-10-01
  vault action add --title "First draft" --parent <milestone-id> --kind milestone`,
	RunE: runActionAdd,
}

var actionGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an action",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionGet,
}

var actionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List actions, newest first",
	RunE:  runActionList,
}

var actionDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List open actions with a due date, soonest first",
	RunE:  runActionDue,
}

var actionDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark an action done",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionDone,
}

var actionMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move an action into a container",
	Long: `Move re-parents the action into the container named by --parent and
--kind, appending it to the end unless --order is given. With no --parent the
action becomes standalone.`,
	Args: cobra.ExactArgs(1),
	RunE: runActionMove,
}

var actionLinkCmd = &cobra.Command{
	Use:   "link <id>",
	Short: "Link an action directly to a path",
	Long: `Link parents the action to the path named by --path, appending it to
the end of the path's direct actions unless --order is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runActionLink,
}

var actionUnlinkCmd = &cobra.Command{
	Use:   "unlink <id>",
	Short: "Return an action to standalone status",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionUnlink,
}

var actionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an action",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionDelete,
}

func init() {
	actionAddCmd.Flags().StringVar(&actionTitle, "title", "", "action title (required)")
	actionAddCmd.Flags().StringVar(&actionBody, "body", "", "action body")
	actionAddCmd.Flags().StringVar(&actionDue, "due", "", "due date (YYYY-MM-DD)")
	actionAddCmd.Flags().IntVar(&actionPriority, "priority", 0, "priority")
	actionAddCmd.Flags().StringVar(&actionParent, "parent", "", "container id")
	actionAddCmd.Flags().StringVar(&actionKind, "kind", "", "container kind (path, milestone, loop-item)")
	_ = actionAddCmd.MarkFlagRequired("title")

	actionMoveCmd.Flags().StringVar(&actionParent, "parent", "", "container id")
	actionMoveCmd.Flags().StringVar(&actionKind, "kind", "", "container kind (path, milestone, loop-item)")
	actionMoveCmd.Flags().IntVar(&actionOrder, "order", 0, "sibling order (default: append)")

	actionLinkCmd.Flags().StringVar(&actionPath, "path", "", "path id (required)")
	actionLinkCmd.Flags().IntVar(&actionOrder, "order", 0, "sibling order (default: append)")
	_ = actionLinkCmd.MarkFlagRequired("path")

	actionCmd.AddCommand(actionAddCmd)
	actionCmd.AddCommand(actionGetCmd)
	actionCmd.AddCommand(actionListCmd)
	actionCmd.AddCommand(actionDueCmd)
	actionCmd.AddCommand(actionDoneCmd)
	actionCmd.AddCommand(actionMoveCmd)
	actionCmd.AddCommand(actionLinkCmd)
	actionCmd.AddCommand(actionUnlinkCmd)
	actionCmd.AddCommand(actionDeleteCmd)
}

// parseParentFlags builds a ParentRef from the --parent and --kind flags.
func parseParentFlags() (types.ParentRef, error) {
	parent := types.ParentRef{Kind: types.ParentKind(actionKind), ID: actionParent}
	if err := parent.Validate(); err != nil {
		return types.ParentRef{}, err
	}
	return parent, nil
}

func runActionAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	parent, err := parseParentFlags()
	if err != nil {
		return err
	}

	action := &types.Action{
		Title:    actionTitle,
		Body:     actionBody,
		Priority: actionPriority,
		Parent:   parent,
	}
	if actionDue != "" {
		due, err := time.Parse("2006-01-02", actionDue)
		if err != nil {
			return fmt.Errorf("invalid due date %q: %w", actionDue, err)
		}
		action.DueDate = &due
	}

	if err := backend.CreateAction(action); err != nil {
		return fmt.Errorf("create action: %w", err)
	}
	return printEntity(action, "Created action: "+action.ID)
}

func runActionGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	action, err := backend.GetActionByID(args[0])
	if err != nil {
		return fmt.Errorf("get action: %w", err)
	}
	if action == nil {
		return fmt.Errorf("no such action: %s", args[0])
	}
	return printEntity(action, actionLine(action))
}

func runActionList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	actions, err := backend.GetAllActions()
	if err != nil {
		return fmt.Errorf("list actions: %w", err)
	}
	return printList(actions, actionLine)
}

func runActionDue(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	actions, err := backend.GetActionsWithDueDate()
	if err != nil {
		return fmt.Errorf("list due actions: %w", err)
	}
	return printList(actions, actionLine)
}

func runActionDone(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	done := true
	found, err := backend.UpdateAction(args[0], types.ActionPatch{Done: &done})
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	if !found {
		return fmt.Errorf("no such action: %s", args[0])
	}
	fmt.Printf("Done: %s\n", args[0])
	return nil
}

func runActionMove(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	parent, err := parseParentFlags()
	if err != nil {
		return err
	}

	var order *int
	if cmd.Flags().Changed("order") {
		order = &actionOrder
	}

	found, err := backend.MoveAction(args[0], parent, order)
	if err != nil {
		return fmt.Errorf("move action: %w", err)
	}
	if !found {
		return fmt.Errorf("no such action: %s", args[0])
	}
	fmt.Printf("Moved action: %s\n", args[0])
	return nil
}

func runActionLink(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	var order *int
	if cmd.Flags().Changed("order") {
		order = &actionOrder
	}

	found, err := backend.LinkActionToPath(args[0], actionPath, order)
	if err != nil {
		return fmt.Errorf("link action: %w", err)
	}
	if !found {
		return fmt.Errorf("no such action: %s", args[0])
	}
	fmt.Printf("Linked action: %s\n", args[0])
	return nil
}

func runActionUnlink(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.UnlinkActionFromPath(args[0])
	if err != nil {
		return fmt.Errorf("unlink action: %w", err)
	}
	if !found {
		return fmt.Errorf("no such action: %s", args[0])
	}
	fmt.Printf("Unlinked action: %s\n", args[0])
	return nil
}

func runActionDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteAction(args[0])
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	reportDelete("action", args[0], found)
	return nil
}

func actionLine(a *types.Action) string {
	mark := " "
	if a.Done {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %s  %s", mark, a.ID, a.Title)
	if a.DueDate != nil {
		line += "  due " + a.DueDate.Format("2006-01-02")
	}
	return line
}
