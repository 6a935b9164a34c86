package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Category repository. Entries reference categories by id; deleting a
// category leaves those references dangling on purpose, readers treat an
// unknown category id as uncategorized.

const categoryColumns = "category_id, title, color, created_at, updated_at"

// CreateCategory assigns an id and timestamps and persists the category.
func (b *Backend) CreateCategory(c *types.Category) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if err := c.Validate(); err != nil {
		return err
	}

	now := time.Now()
	c.ID = newID()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := b.db.Exec(
		"INSERT INTO categories ("+categoryColumns+") VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Title, nullIfEmpty(c.Color), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		b.logError("create category", c.ID, err)
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// GetCategoryByID returns the category, or (nil, nil) when absent.
func (b *Backend) GetCategoryByID(id string) (*types.Category, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE category_id = ?", id)
	c, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get category", id, err)
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return c, nil
}

// GetAllCategories returns all categories ordered by title.
func (b *Backend) GetAllCategories() ([]*types.Category, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query("SELECT " + categoryColumns + " FROM categories ORDER BY title ASC")
	if err != nil {
		b.logError("list categories", "", err)
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []*types.Category{}
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory merges the patch over the stored category. Returns
// (false, nil) when the category does not exist.
func (b *Backend) UpdateCategory(id string, patch types.CategoryPatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	row := b.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE category_id = ?", id)
	c, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		b.logError("get category", id, err)
		return false, fmt.Errorf("getting category %s: %w", id, err)
	}

	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	c.UpdatedAt = touch(c.UpdatedAt)

	_, err = b.db.Exec(
		"UPDATE categories SET title = ?, color = ?, updated_at = ? WHERE category_id = ?",
		c.Title, nullIfEmpty(c.Color), formatTime(c.UpdatedAt), id)
	if err != nil {
		b.logError("update category", id, err)
		return false, fmt.Errorf("updating category %s: %w", id, err)
	}
	return true, nil
}

// DeleteCategory removes the category. Entry references to it are left in
// place. Returns (false, nil) when already gone.
func (b *Backend) DeleteCategory(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	res, err := b.db.Exec("DELETE FROM categories WHERE category_id = ?", id)
	if err != nil {
		b.logError("delete category", id, err)
		return false, fmt.Errorf("deleting category %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func scanCategory(scan func(...any) error) (*types.Category, error) {
	var c types.Category
	var color sql.NullString
	var createdAt, updatedAt string
	if err := scan(&c.ID, &c.Title, &color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Color = stringOrEmpty(color)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
