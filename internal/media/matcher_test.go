package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/aula/internal/topic"
)

func touch(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestSelect_TopicMatchWins(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, dir, "resta_nivel1.mp4", base)
	touch(t, dir, "suma_llevando.mp4", base.Add(time.Hour))

	got, ok := NewMatcher(dir).Select(context.Background(), topic.Subtraction, "")
	require.True(t, ok)
	assert.Equal(t, "resta_nivel1.mp4", got)

	t.Run("symlinked file", func(t *testing.T) {
		store := t.TempDir()
		touch(t, store, "restas.bin", base)

		linked := t.TempDir()
		require.NoError(t, os.Symlink(filepath.Join(store, "restas.bin"), filepath.Join(linked, "resta_nivel1.mp4")))
		touch(t, linked, "suma_llevando.mp4", base.Add(time.Hour))

		got, ok := NewMatcher(linked).Select(context.Background(), topic.Subtraction, "")
		require.True(t, ok)
		assert.Equal(t, "resta_nivel1.mp4", got)
	})
}

func TestSelect_SymlinkUsesTargetModTime(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := t.TempDir()
	touch(t, store, "nuevo.bin", base.Add(time.Hour))

	dir := t.TempDir()
	touch(t, dir, "resta_a.mp4", base)
	require.NoError(t, os.Symlink(filepath.Join(store, "nuevo.bin"), filepath.Join(dir, "resta_b.mp4")))

	candidates, err := NewMatcher(dir).Candidates(context.Background(), topic.Subtraction, "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "resta_b.mp4", candidates[0].Name)
	assert.True(t, candidates[0].ModTime.Equal(base.Add(time.Hour)))
}

func TestSelect_TopicOutsideClosedSet(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, dir, "fracciones_basicas.mp4", base)
	touch(t, dir, "fracciones-equivalentes.mp4", base.Add(time.Hour))

	m := NewMatcher(dir)
	got, ok := m.Select(context.Background(), topic.Canonicalize("fracciones_basicas"), "")
	require.True(t, ok)
	assert.Equal(t, "fracciones_basicas.mp4", got)

	candidates, err := m.Candidates(context.Background(), topic.Canonicalize("Fracciones-Equivalentes"), "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "fracciones-equivalentes.mp4", candidates[0].Name)
	assert.Equal(t, 5, candidates[0].Score)
	assert.Equal(t, 0, candidates[1].Score)
}

func TestSelect_TieBrokenByNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, dir, "resta_a.mp4", base)
	touch(t, dir, "resta_b.webm", base.Add(time.Minute))

	got, ok := NewMatcher(dir).Select(context.Background(), topic.Subtraction, "")
	require.True(t, ok)
	assert.Equal(t, "resta_b.webm", got)
}

func TestSelect_KeywordsAndCarryBonus(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, dir, "suma_basica.mp4", base.Add(time.Hour))
	touch(t, dir, "Suma-Llevando.MOV", base)

	m := NewMatcher(dir)
	got, ok := m.Select(context.Background(), topic.Addition, "¿Cómo sumo?")
	require.True(t, ok)
	assert.Equal(t, "Suma-Llevando.MOV", got)

	candidates, err := m.Candidates(context.Background(), topic.AdditionCarry, "sumar llevando")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// topic 5 + keyword "llevando" 1 + carry bonus 2
	assert.Equal(t, 8, candidates[0].Score)
	assert.Equal(t, 0, candidates[1].Score)
}

func TestSelect_NoAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("empty directory", func(t *testing.T) {
		_, ok := NewMatcher(t.TempDir()).Select(ctx, topic.Addition, "suma")
		assert.False(t, ok)
	})

	t.Run("empty topic", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "suma.mp4", time.Now())
		_, ok := NewMatcher(dir).Select(ctx, topic.None, "suma")
		assert.False(t, ok)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, ok := NewMatcher(filepath.Join(t.TempDir(), "nope")).Select(ctx, topic.Addition, "")
		assert.False(t, ok)
	})

	t.Run("no positive score", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "division.mp4", time.Now())
		_, ok := NewMatcher(dir).Select(ctx, topic.Subtraction, "hola")
		assert.False(t, ok)
	})

	t.Run("non media files ignored", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "resta.txt", time.Now())
		require.NoError(t, os.Mkdir(filepath.Join(dir, "resta.mp4"), 0o755))
		_, ok := NewMatcher(dir).Select(ctx, topic.Subtraction, "")
		assert.False(t, ok)
	})
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "suma llevando 2", NormalizeName("Suma_Llevando--2"))
	assert.Equal(t, "division exacta", NormalizeName("División.exacta"))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 5, Score("resta nivel1", "resta", nil))
	assert.Equal(t, 0, Score("suma llevando", "resta", nil))
	assert.Equal(t, 2, Score("resta con dibujos", "", []string{"resta", "dibujos", "x"}))
	assert.Equal(t, 7, Score("acarreo suma", "suma", nil))
	assert.Equal(t, 0, Score("acarreo", "resta llevando", nil))
}
