package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/straye-as/billing-api/internal/storage"
	"github.com/straye-as/billing-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *note) GetID() string     { return n.ID }
func (n *note) SetID(id string)   { n.ID = id }
func (n *note) Stamp(t time.Time) { n.CreatedAt, n.UpdatedAt = t, t }
func (n *note) Touch(t time.Time) { n.UpdatedAt = t }

var epoch = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*store.Collection[*note], string, *time.Time) {
	t.Helper()
	dir := t.TempDir()
	backend, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	now := epoch
	s := store.New(backend, zap.NewNop()).WithClock(func() time.Time { return now })
	return store.NewCollection[*note](s, "notes"), dir, &now
}

func TestCollection_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("missing collection is empty", func(t *testing.T) {
		c, _, _ := setup(t)
		all := c.GetAll(ctx)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("corrupt collection is empty", func(t *testing.T) {
		c, dir, _ := setup(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{not json"), 0o644))
		assert.Empty(t, c.GetAll(ctx))
	})

	t.Run("null document is empty", func(t *testing.T) {
		c, dir, _ := setup(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("null"), 0o644))
		assert.Empty(t, c.GetAll(ctx))
	})

	t.Run("null element is skipped", func(t *testing.T) {
		c, dir, _ := setup(t)
		doc := `[null, {"id":"a","text":"x"}, null]`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(doc), 0o644))

		all := c.GetAll(ctx)
		require.Len(t, all, 1)
		assert.Equal(t, "a", all[0].ID)

		assert.NotPanics(t, func() {
			got, err := c.FindByID(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "x", got.Text)

			_, err = c.FindOne(ctx, func(n *note) bool { return n.Text == "missing" })
			assert.ErrorIs(t, err, store.ErrNotFound)
			assert.Len(t, c.Find(ctx, func(n *note) bool { return n.Text != "" }), 1)
		})
	})

	t.Run("only null elements is empty", func(t *testing.T) {
		c, dir, _ := setup(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("[null]"), 0o644))
		all := c.GetAll(ctx)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})
}

func TestCollection_Create(t *testing.T) {
	ctx := context.Background()
	c, dir, _ := setup(t)

	a, err := c.Create(ctx, &note{Text: "a"})
	require.NoError(t, err)
	b, err := c.Create(ctx, &note{ID: "ignored", Text: "b"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, "ignored", b.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, epoch, a.CreatedAt)
	assert.Equal(t, epoch, a.UpdatedAt)

	all := c.GetAll(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Text)
	assert.Equal(t, "b", all[1].Text)
	assert.Equal(t, 2, c.Count(ctx))

	data, err := os.ReadFile(filepath.Join(dir, "notes.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"text": "a"`)
}

func TestCollection_Find(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)

	a, err := c.Create(ctx, &note{Text: "apple"})
	require.NoError(t, err)
	_, err = c.Create(ctx, &note{Text: "banana"})
	require.NoError(t, err)

	got, err := c.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Text)

	_, err = c.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	matches := c.Find(ctx, func(n *note) bool { return n.Text != "" })
	assert.Len(t, matches, 2)

	one, err := c.FindOne(ctx, func(n *note) bool { return n.Text == "banana" })
	require.NoError(t, err)
	assert.Equal(t, "banana", one.Text)

	_, err = c.FindOne(ctx, func(n *note) bool { return n.Text == "cherry" })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCollection_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies mutation and bumps updatedAt", func(t *testing.T) {
		c, _, now := setup(t)
		a, err := c.Create(ctx, &note{Text: "a"})
		require.NoError(t, err)

		*now = epoch.Add(time.Hour)
		updated, err := c.Update(ctx, a.ID, func(n *note) error {
			n.Text = "changed"
			n.ID = "hijack"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, a.ID, updated.ID)
		assert.Equal(t, epoch, updated.CreatedAt)
		assert.Equal(t, epoch.Add(time.Hour), updated.UpdatedAt)

		stored, err := c.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "changed", stored.Text)
	})

	t.Run("mutation error aborts without writing", func(t *testing.T) {
		c, _, _ := setup(t)
		a, err := c.Create(ctx, &note{Text: "a"})
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = c.Update(ctx, a.ID, func(n *note) error {
			n.Text = "half"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := c.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "a", stored.Text)
	})

	t.Run("missing record", func(t *testing.T) {
		c, _, _ := setup(t)
		_, err := c.Update(ctx, "missing", func(*note) error { return nil })
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCollection_Delete(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)

	a, err := c.Create(ctx, &note{Text: "a"})
	require.NoError(t, err)
	_, err = c.Create(ctx, &note{Text: "b"})
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, a.ID))
	assert.Equal(t, 1, c.Count(ctx))
	assert.ErrorIs(t, c.Delete(ctx, a.ID), store.ErrNotFound)
}

func TestCollection_DeleteWhere(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)

	for _, text := range []string{"keep", "drop", "drop", "keep"} {
		_, err := c.Create(ctx, &note{Text: text})
		require.NoError(t, err)
	}

	n, err := c.DeleteWhere(ctx, func(n *note) bool { return n.Text == "drop" })
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	remaining := c.GetAll(ctx)
	require.Len(t, remaining, 2)
	for _, r := range remaining {
		assert.Equal(t, "keep", r.Text)
	}

	n, err = c.DeleteWhere(ctx, func(n *note) bool { return n.Text == "drop" })
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewID(t *testing.T) {
	a := store.NewID(epoch)
	b := store.NewID(epoch)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-z]+$`, a)
}
