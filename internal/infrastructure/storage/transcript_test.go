package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/backend/internal/domain/kb"
	"github.com/casewise/backend/internal/infrastructure/config"
)

func newTranscriptDir(t *testing.T) *TranscriptDir {
	t.Helper()
	return NewTranscriptDir(&config.KBConfig{HistoryDir: t.TempDir()})
}

func TestTranscriptDir_LoadMissing(t *testing.T) {
	repo := newTranscriptDir(t)
	turns, err := repo.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, turns, "缺失文件按空记录处理")
}

func TestTranscriptDir_LoadMalformed(t *testing.T) {
	repo := newTranscriptDir(t)
	require.NoError(t, os.MkdirAll(repo.dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo.dir, "s1.json"), []byte("{broken"), 0644))

	turns, err := repo.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, turns, "损坏文件按空记录处理，不报错")
}

func TestTranscriptDir_SaveLoadRoundTrip(t *testing.T) {
	repo := newTranscriptDir(t)
	turns := []kb.Turn{
		{Role: kb.RoleUser, Content: "find crash cases"},
		{Role: kb.RoleAssistant, Content: "found 3", Context: &kb.Context{
			Type:    kb.IntentFieldFilter,
			Query:   "find crash cases",
			Filters: []kb.Condition{{Field: kb.FieldSubcategory, Value: "Crash"}},
		}},
	}

	require.NoError(t, repo.Save(context.Background(), "s1", turns))

	loaded, err := repo.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.NotNil(t, loaded[1].Context)
	assert.Equal(t, kb.IntentFieldFilter, loaded[1].Context.Type)
	assert.Equal(t, "Crash", loaded[1].Context.Filters[0].Value)
}

func TestTranscriptDir_Update(t *testing.T) {
	repo := newTranscriptDir(t)

	err := repo.Update(context.Background(), "s1", func(turns []kb.Turn) []kb.Turn {
		return append(turns, kb.Turn{Role: kb.RoleUser, Content: "hello"})
	})
	require.NoError(t, err)

	turns, err := repo.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestTranscriptDir_RejectsPathTraversal(t *testing.T) {
	repo := newTranscriptDir(t)
	_, err := repo.Load(context.Background(), "../evil")
	assert.Error(t, err)
	err = repo.Save(context.Background(), "a/b", nil)
	assert.Error(t, err)
}
