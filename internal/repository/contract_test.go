package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMappingRepository прогоняет общие проверки для любого хранилища
func testMappingRepository(t *testing.T, repo MappingRepository) {
	t.Run("InsertAndLookup", func(t *testing.T) {
		ctx := context.Background()

		created, err := repo.Insert(ctx, "abc123", "https://example.com/a")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "abc123", created.ShortCode)
		assert.Equal(t, "https://example.com/a", created.OriginalURL)
		assert.Zero(t, created.ClickCount)

		found, err := repo.Lookup(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "https://example.com/a", found.OriginalURL)
		assert.Zero(t, found.ClickCount)
		assert.WithinDuration(t, created.CreatedAt, found.CreatedAt, time.Second)
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		ctx := context.Background()

		_, err := repo.Insert(ctx, "promo1", "https://example.com/first")
		require.NoError(t, err)

		mapping, err := repo.Insert(ctx, "promo1", "https://example.com/second")
		assert.ErrorIs(t, err, ErrCodeExists)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
		assert.Nil(t, mapping)

		// Первая запись не перезаписана
		found, err := repo.Lookup(ctx, "promo1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/first", found.OriginalURL)
	})

	t.Run("CodesAreCaseSensitive", func(t *testing.T) {
		ctx := context.Background()

		_, err := repo.Insert(ctx, "CaseA", "https://example.com/upper")
		require.NoError(t, err)
		_, err = repo.Insert(ctx, "casea", "https://example.com/lower")
		require.NoError(t, err)

		url, err := repo.IncrementAndGet(ctx, "CaseA")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/upper", url)
	})

	t.Run("LookupMissing", func(t *testing.T) {
		_, err := repo.Lookup(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrMappingNotFound)
	})

	t.Run("IncrementAndGet", func(t *testing.T) {
		ctx := context.Background()

		_, err := repo.Insert(ctx, "count1", "https://example.com/count")
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			url, err := repo.IncrementAndGet(ctx, "count1")
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/count", url)

			found, err := repo.Lookup(ctx, "count1")
			require.NoError(t, err)
			assert.EqualValues(t, i, found.ClickCount)
		}
	})

	t.Run("IncrementMissingCreatesNothing", func(t *testing.T) {
		ctx := context.Background()

		url, err := repo.IncrementAndGet(ctx, "zzzzzz")
		assert.ErrorIs(t, err, ErrMappingNotFound)
		assert.Empty(t, url)

		_, err = repo.Lookup(ctx, "zzzzzz")
		assert.ErrorIs(t, err, ErrMappingNotFound)
	})

	t.Run("ConcurrentInsertSameCode", func(t *testing.T) {
		ctx := context.Background()

		const workers = 10
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				_, err := repo.Insert(ctx, "race1", fmt.Sprintf("https://example.com/%d", id))
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		var created int
		for err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, ErrCodeExists)
		}
		assert.Equal(t, 1, created)
	})

	t.Run("ConcurrentIncrement", func(t *testing.T) {
		ctx := context.Background()

		_, err := repo.Insert(ctx, "hot1", "https://example.com/hot")
		require.NoError(t, err)

		const workers = 10
		const perWorker = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					_, err := repo.IncrementAndGet(ctx, "hot1")
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		found, err := repo.Lookup(ctx, "hot1")
		require.NoError(t, err)
		assert.EqualValues(t, workers*perWorker, found.ClickCount)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
