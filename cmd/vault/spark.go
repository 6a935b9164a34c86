// Spark commands for the vault CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	sparkTitle    string
	sparkBody     string
	sparkTags     []string
	sparkCategory string
)

var sparkCmd = &cobra.Command{
	Use:   "spark",
	Short: "Manage sparks",
}

var sparkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Capture a new spark",
	Long: `Add captures a new spark, a lightweight idea waiting to be linked
into a larger entry.

Example:
  vault spark add --title "Rewrite the importer in two passes"`,
	RunE: runSparkAdd,
}

var sparkGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a spark",
	Args:  cobra.ExactArgs(1),
	RunE:  runSparkGet,
}

var sparkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sparks, newest first",
	RunE:  runSparkList,
}

var sparkUnlinkedCmd = &cobra.Command{
	Use:   "unlinked",
	Short: "List sparks not linked to any entry",
	RunE:  runSparkUnlinked,
}

var sparkDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a spark",
	Args:  cobra.ExactArgs(1),
	RunE:  runSparkDelete,
}

func init() {
	sparkAddCmd.Flags().StringVar(&sparkTitle, "title", "", "spark title (required)")
	sparkAddCmd.Flags().StringVar(&sparkBody, "body", "", "spark body")
	sparkAddCmd.Flags().StringArrayVar(&sparkTags, "tag", nil, "tag (repeatable)")
	sparkAddCmd.Flags().StringVar(&sparkCategory, "category", "", "category id")
	_ = sparkAddCmd.MarkFlagRequired("title")

	sparkCmd.AddCommand(sparkAddCmd)
	sparkCmd.AddCommand(sparkGetCmd)
	sparkCmd.AddCommand(sparkListCmd)
	sparkCmd.AddCommand(sparkUnlinkedCmd)
	sparkCmd.AddCommand(sparkDeleteCmd)
}

func runSparkAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	spark := &types.Spark{
		Title:      sparkTitle,
		Body:       sparkBody,
		Tags:       sparkTags,
		CategoryID: sparkCategory,
	}
	if err := backend.CreateSpark(spark); err != nil {
		return fmt.Errorf("create spark: %w", err)
	}
	return printEntity(spark, "Created spark: "+spark.ID)
}

func runSparkGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	spark, err := backend.GetSparkByID(args[0])
	if err != nil {
		return fmt.Errorf("get spark: %w", err)
	}
	if spark == nil {
		return fmt.Errorf("no such spark: %s", args[0])
	}
	return printEntity(spark, fmt.Sprintf("%s  %s", spark.ID, spark.Title))
}

func runSparkList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	sparks, err := backend.GetAllSparks()
	if err != nil {
		return fmt.Errorf("list sparks: %w", err)
	}
	return printList(sparks, func(s *types.Spark) string {
		return fmt.Sprintf("%s  %s", s.ID, s.Title)
	})
}

func runSparkUnlinked(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	sparks, err := backend.GetUnlinkedSparks()
	if err != nil {
		return fmt.Errorf("list unlinked sparks: %w", err)
	}
	return printList(sparks, func(s *types.Spark) string {
		return fmt.Sprintf("%s  %s", s.ID, s.Title)
	})
}

func runSparkDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteSpark(args[0])
	if err != nil {
		return fmt.Errorf("delete spark: %w", err)
	}
	reportDelete("spark", args[0], found)
	return nil
}
