package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubbed(t *testing.T, run func(ctx context.Context, query string) ([]byte, error)) *Client {
	c := NewClient("python", "gofundme_scraper.py", time.Second, zerolog.Nop())
	c.run = run
	return c
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("parses campaign records from stdout", func(t *testing.T) {
		out := `[
			{"Name": "Save the Reef", "URL": "https://gofund.me/abc", "Query": "reef",
			 "Goal Amount": "10,000", "Balance": 2500.5, "Summarized Description": "Coral restoration."}
		]`
		c := newStubbed(t, func(_ context.Context, query string) ([]byte, error) {
			assert.Equal(t, "reef", query)
			return []byte(out), nil
		})

		campaigns, err := c.Search(ctx, "reef")
		require.NoError(t, err)
		require.Len(t, campaigns, 1)
		assert.Equal(t, "Save the Reef", campaigns[0].Name)
		assert.Equal(t, "https://gofund.me/abc", campaigns[0].URL)
		assert.Equal(t, "10,000", campaigns[0].GoalAmount)
		assert.Equal(t, 2500.5, campaigns[0].Balance)
	})

	t.Run("empty result set is valid", func(t *testing.T) {
		c := newStubbed(t, func(context.Context, string) ([]byte, error) {
			return []byte(`[]`), nil
		})
		campaigns, err := c.Search(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, campaigns)
	})

	t.Run("spawn failure maps to ErrUnavailable", func(t *testing.T) {
		c := newStubbed(t, func(context.Context, string) ([]byte, error) {
			return nil, errors.New("exec: python not found")
		})
		_, err := c.Search(ctx, "reef")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("garbage stdout maps to ErrParse", func(t *testing.T) {
		c := newStubbed(t, func(context.Context, string) ([]byte, error) {
			return []byte("Traceback (most recent call last):"), nil
		})
		_, err := c.Search(ctx, "reef")
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("timeout cancels the subprocess context", func(t *testing.T) {
		c := newStubbed(t, func(ctx context.Context, _ string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		c.timeout = 20 * time.Millisecond

		_, err := c.Search(ctx, "reef")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
