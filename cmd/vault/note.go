// Note commands for the vault CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/pkg/types"
)

var (
	noteTitle string
	noteBody  string
	noteTags  []string
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new note",
	Long: `Add creates a new note with the given title.

Example:
  vault note add --title "Meeting follow-ups" --body "Send the deck"
  vault note add --title "Idea" --tag research --tag later`,
	RunE: runNoteAdd,
}

var noteGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteGet,
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE:  runNoteList,
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteDelete,
}

func init() {
	noteAddCmd.Flags().StringVar(&noteTitle, "title", "", "note title (required)")
	noteAddCmd.Flags().StringVar(&noteBody, "body", "", "note body")
	noteAddCmd.Flags().StringArrayVar(&noteTags, "tag", nil, "tag (repeatable)")
	_ = noteAddCmd.MarkFlagRequired("title")

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteGetCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteDeleteCmd)
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	note := &types.Note{
		Title: noteTitle,
		Body:  noteBody,
		Tags:  noteTags,
	}
	if err := backend.CreateNote(note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return printEntity(note, "Created note: "+note.ID)
}

func runNoteGet(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	note, err := backend.GetNoteByID(args[0])
	if err != nil {
		return fmt.Errorf("get note: %w", err)
	}
	if note == nil {
		return fmt.Errorf("no such note: %s", args[0])
	}
	return printEntity(note, fmt.Sprintf("%s  %s", note.ID, note.Title))
}

func runNoteList(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	notes, err := backend.GetAllNotes()
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	return printList(notes, func(n *types.Note) string {
		return fmt.Sprintf("%s  %s", n.ID, n.Title)
	})
}

func runNoteDelete(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	found, err := backend.DeleteNote(args[0])
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	reportDelete("note", args[0], found)
	return nil
}
