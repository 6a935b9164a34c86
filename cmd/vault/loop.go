// Loop commands for the vault CLI.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	loopTitle       string
	loopDescription string
	loopDays        []string
	loopTime        string
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Manage loops",
}

var loopAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new loop",
	Long: `Add creates a recurring routine starting today.

Example:
  vault loop add --title "Morning run" --day monday --day friday --time 07:00`,
	RunE: runLoopAdd,
}

var loopGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a loop",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoopGet,
}

var loopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loops, newest first",
	RunE:  runLoopList,
}

var loopNextCmd = &cobra.Command{
	Use:   "next <id>",
	Short: "Show a loop's next scheduled occurrence",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoopNext,
}

var loopDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a loop and its items",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoopDelete,
}

func init() {
	loopAddCmd.Flags().StringVar(&loopTitle, "title", "", "loop title (required)")
	loopAddCmd.Flags().StringVar(&loopDescription, "description", "", "loop description")
	loopAddCmd.Flags().StringArrayVar(&loopDays, "day", nil, "enabled weekday, lowercase (repeatable)")
	loopAddCmd.Flags().StringVar(&loopTime, "time", "", "start time for enabled days (HH:MM)")
	_ = loopAddCmd.MarkFlagRequired("title")

	loopCmd.AddCommand(loopAddCmd)
	loopCmd.AddCommand(loopGetCmd)
	loopCmd.AddCommand(loopListCmd)
	loopCmd.AddCommand(loopNextCmd)
	loopCmd.AddCommand(loopDeleteCmd)
}

func runLoopAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	loop := &types.Loop{
		Title:       loopTitle,
		Description: loopDescription,
		Active:      true,
		StartDate:   time.Now(),
	}
	if len(loopDays) > 0 {
		loop.StartTimeByDay = make(map[string]string, len(loopDays))
		for _, day := range loopDays {
			loop.StartTimeByDay[day] = loopTime
		}
	}

	if err := backend.CreateLoop(loop); err != nil {
		return fmt.Errorf("create loop: %w", err)
	}
	return printEntity(loop, "Created loop: "+loop.ID)
}

func runLoopGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	loop, err := backend.GetLoopByID(args[0])
	if err != nil {
		return fmt.Errorf("get loop: %w", err)
	}
	if loop == nil {
		return fmt.Errorf("no such loop: %s", args[0])
	}
	return printEntity(loop, fmt.Sprintf("%s  %s", loop.ID, loop.Title))
}

func runLoopList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	loops, err := backend.GetAllLoops()
	if err != nil {
		return fmt.Errorf("list loops: %w", err)
	}
	return printList(loops, func(l *types.Loop) string {
		return fmt.Sprintf("%s  %s", l.ID, l.Title)
	})
}

func runLoopNext(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	loop, err := backend.GetLoopByID(args[0])
	if err != nil {
		return fmt.Errorf("get loop: %w", err)
	}
	if loop == nil {
		return fmt.Errorf("no such loop: %s", args[0])
	}

	next, ok := loop.NextOccurrence(time.Now())
	if !ok {
		fmt.Println("No scheduled days")
		return nil
	}
	fmt.Println(next)
	return nil
}

func runLoopDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteLoop(args[0])
	if err != nil {
		return fmt.Errorf("delete loop: %w", err)
	}
	reportDelete("loop", args[0], found)
	return nil
}
