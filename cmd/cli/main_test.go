package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/deeplinker/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := sqlite.NewSQLiteRepository("file:cli_src?mode=memory&cache=shared")
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Create(ctx, &domain.Link{Slug: "a", URL: "https://example.com/a", Tag: domain.TagTwitter, CreatedAt: time.Now()}))
	require.NoError(t, src.RecordClick(ctx, "a", domain.NewClickEvent(time.Now(), domain.Location{Country: "US"})))

	var buf bytes.Buffer
	require.NoError(t, doExport(ctx, src, &buf))
	assert.Contains(t, buf.String(), `"clicksInfo"`)

	dst, err := sqlite.NewSQLiteRepository("file:cli_dst?mode=memory&cache=shared")
	require.NoError(t, err)
	defer dst.Close()

	n, err := doImport(ctx, dst, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// second run skips the existing slug
	n, err = doImport(ctx, dst, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := dst.GetWithClicks(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Clicks)
	assert.Equal(t, "US", got.ClicksInfo[0].Country)
}

func TestImportLegacyTimestamps(t *testing.T) {
	ctx := context.Background()
	repo, err := sqlite.NewSQLiteRepository("file:cli_legacy?mode=memory&cache=shared")
	require.NoError(t, err)
	defer repo.Close()

	legacy := `[{"slug":"old","url":"https://example.com","clicks":2,
		"clickTimestamps":["2024-03-01T00:00:00Z","2024-03-02T00:00:00Z"]}]`
	n, err := doImport(ctx, repo, strings.NewReader(legacy))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetWithClicks(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Clicks)
	assert.Len(t, got.ClicksInfo, 2)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := doImport(context.Background(), nil, strings.NewReader("not json"))
	assert.Error(t, err)
}
