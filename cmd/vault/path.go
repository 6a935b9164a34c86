// Path commands for the vault CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	pathTitle       string
	pathDescription string
	pathTags        []string
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Manage paths",
}

var pathAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new path",
	Long: `Add creates a long-running goal with an ordered milestone ladder.

Example:
  vault path add --title "Ship the importer"`,
	RunE: runPathAdd,
}

var pathGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a path with its milestones and their actions",
	Args:  cobra.ExactArgs(1),
	RunE:  runPathGet,
}

var pathListCmd = &cobra.Command{
	Use:   "list",
	Short: "List paths, newest first",
	RunE:  runPathList,
}

var pathActionsCmd = &cobra.Command{
	Use:   "actions <path-id> [milestone-id]",
	Short: "List a path's direct actions, or a milestone's actions",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPathActions,
}

var pathReorderCmd = &cobra.Command{
	Use:   "reorder <path-id> <milestone-id>...",
	Short: "Reorder a path's milestones",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPathReorder,
}

var pathDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a path; its actions become standalone",
	Args:  cobra.ExactArgs(1),
	RunE:  runPathDelete,
}

var milestoneDeleteCmd = &cobra.Command{
	Use:   "milestone-delete <id>",
	Short: "Delete a milestone; its actions move to the path",
	Args:  cobra.ExactArgs(1),
	RunE:  runMilestoneDelete,
}

func init() {
	pathAddCmd.Flags().StringVar(&pathTitle, "title", "", "path title (required)")
	pathAddCmd.Flags().StringVar(&pathDescription, "description", "", "path description")
	pathAddCmd.Flags().StringArrayVar(&pathTags, "tag", nil, "tag (repeatable)")
	_ = pathAddCmd.MarkFlagRequired("title")

	pathCmd.AddCommand(pathAddCmd)
	pathCmd.AddCommand(pathGetCmd)
	pathCmd.AddCommand(pathListCmd)
	pathCmd.AddCommand(pathActionsCmd)
	pathCmd.AddCommand(pathReorderCmd)
	pathCmd.AddCommand(pathDeleteCmd)
	pathCmd.AddCommand(milestoneDeleteCmd)
}

func runPathAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	path := &types.Path{
		Title:       pathTitle,
		Description: pathDescription,
		Tags:        pathTags,
	}
	if err := backend.CreatePath(path); err != nil {
		return fmt.Errorf("create path: %w", err)
	}
	return printEntity(path, "Created path: "+path.ID)
}

func runPathGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	path, err := backend.GetPathByID(args[0])
	if err != nil {
		return fmt.Errorf("get path: %w", err)
	}
	if path == nil {
		return fmt.Errorf("no such path: %s", args[0])
	}
	if flagJSON {
		return printEntity(path, "")
	}

	fmt.Printf("%s  %s\n", path.ID, path.Title)
	for _, m := range path.Milestones {
		fmt.Printf("  %s  %s\n", m.ID, m.Title)
		for i := range m.Actions {
			fmt.Printf("    %s\n", actionLine(&m.Actions[i]))
		}
	}
	return nil
}

func runPathList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	paths, err := backend.GetAllPaths()
	if err != nil {
		return fmt.Errorf("list paths: %w", err)
	}
	return printList(paths, func(p *types.Path) string {
		return fmt.Sprintf("%s  %s", p.ID, p.Title)
	})
}

func runPathActions(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	milestoneID := ""
	if len(args) == 2 {
		milestoneID = args[1]
	}

	actions, err := backend.GetPathActions(args[0], milestoneID)
	if err != nil {
		return fmt.Errorf("list path actions: %w", err)
	}
	return printList(actions, actionLine)
}

func runPathReorder(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.ReorderMilestones(args[0], args[1:])
	if err != nil {
		return fmt.Errorf("reorder milestones: %w", err)
	}
	if !found {
		return fmt.Errorf("no such path: %s", args[0])
	}
	fmt.Printf("Reordered milestones for path: %s\n", args[0])
	return nil
}

func runPathDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeletePath(args[0])
	if err != nil {
		return fmt.Errorf("delete path: %w", err)
	}
	reportDelete("path", args[0], found)
	return nil
}

func runMilestoneDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteMilestone(args[0])
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	reportDelete("milestone", args[0], found)
	return nil
}
