// Saga commands for the vault CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	sagaName string
	sagaIcon string
)

var sagaCmd = &cobra.Command{
	Use:   "saga",
	Short: "Manage sagas",
}

var sagaAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new saga",
	Long: `Add creates a named era. Chapters are added through updates.

Example:
  vault saga add --name "The move west" --icon compass`,
	RunE: runSagaAdd,
}

var sagaGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a saga with its chapters",
	Args:  cobra.ExactArgs(1),
	RunE:  runSagaGet,
}

var sagaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sagas, newest first",
	RunE:  runSagaList,
}

var sagaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saga and its chapters",
	Args:  cobra.ExactArgs(1),
	RunE:  runSagaDelete,
}

func init() {
	sagaAddCmd.Flags().StringVar(&sagaName, "name", "", "saga name (required)")
	sagaAddCmd.Flags().StringVar(&sagaIcon, "icon", "", "saga icon")
	_ = sagaAddCmd.MarkFlagRequired("name")

	sagaCmd.AddCommand(sagaAddCmd)
	sagaCmd.AddCommand(sagaGetCmd)
	sagaCmd.AddCommand(sagaListCmd)
	sagaCmd.AddCommand(sagaDeleteCmd)
}

func runSagaAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	saga := &types.Saga{
		Name: sagaName,
		Icon: sagaIcon,
	}
	if err := backend.CreateSaga(saga); err != nil {
		return fmt.Errorf("create saga: %w", err)
	}
	return printEntity(saga, "Created saga: "+saga.ID)
}

func runSagaGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	saga, err := backend.GetSagaByID(args[0])
	if err != nil {
		return fmt.Errorf("get saga: %w", err)
	}
	if saga == nil {
		return fmt.Errorf("no such saga: %s", args[0])
	}
	if flagJSON {
		return printEntity(saga, "")
	}

	fmt.Printf("%s  %s\n", saga.ID, saga.Name)
	for _, c := range saga.Chapters {
		end := "ongoing"
		if c.EndDate != nil {
			end = c.EndDate.Format("2006-01-02")
		}
		fmt.Printf("  chapter %d: %s to %s\n", c.ChapterNumber, c.StartDate.Format("2006-01-02"), end)
	}
	return nil
}

func runSagaList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	sagas, err := backend.GetAllSagas()
	if err != nil {
		return fmt.Errorf("list sagas: %w", err)
	}
	return printList(sagas, func(s *types.Saga) string {
		return fmt.Sprintf("%s  %s (%d chapters)", s.ID, s.Name, len(s.Chapters))
	})
}

func runSagaDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteSaga(args[0])
	if err != nil {
		return fmt.Errorf("delete saga: %w", err)
	}
	reportDelete("saga", args[0], found)
	return nil
}
