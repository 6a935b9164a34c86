// Category commands for the vault CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	categoryTitle string
	categoryColor string
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new category",
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories by title",
	RunE:  runCategoryList,
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryDelete,
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryTitle, "title", "", "category title (required)")
	categoryAddCmd.Flags().StringVar(&categoryColor, "color", "", "display color")
	_ = categoryAddCmd.MarkFlagRequired("title")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	category := &types.Category{
		Title: categoryTitle,
		Color: categoryColor,
	}
	if err := backend.CreateCategory(category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return printEntity(category, "Created category: "+category.ID)
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	categories, err := backend.GetAllCategories()
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	return printList(categories, func(c *types.Category) string {
		return fmt.Sprintf("%s  %s", c.ID, c.Title)
	})
}

func runCategoryDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteCategory(args[0])
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	reportDelete("category", args[0], found)
	return nil
}
