// Shared helpers for vault CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/vault/internal/sqlite"
	"github.com/mesh-intelligence/vault/pkg/types"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(slog.Default()))
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// printEntity writes the entity as indented JSON when --json is set, or via
// the fallback line otherwise.
func printEntity(entity any, fallback string) error {
	if flagJSON {
		out, err := json.MarshalIndent(entity, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(fallback)
	return nil
}

// printList writes a slice as indented JSON when --json is set, or one
// fallback line per element otherwise.
func printList[T any](items []T, line func(T) string) error {
	if flagJSON {
		out, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	for _, item := range items {
		fmt.Println(line(item))
	}
	return nil
}

// reportDelete prints the outcome of a delete-style operation that reports
// (found bool, err error).
func reportDelete(kind, id string, found bool) {
	if found {
		fmt.Printf("Deleted %s: %s\n", kind, id)
		return
	}
	fmt.Printf("No such %s: %s\n", kind, id)
}
