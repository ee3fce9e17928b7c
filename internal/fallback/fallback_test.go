package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCall_Success(t *testing.T) {
	got := Call(context.Background(), "svc", func(context.Context) (int, error) {
		return 42, nil
	}, 7)
	assert.Equal(t, 42, got)
}

func TestCall_ErrorReturnsDefault(t *testing.T) {
	got := Call(context.Background(), "svc", func(context.Context) ([]string, error) {
		return []string{"partial"}, errors.New("boom")
	}, []string{"default"})
	assert.Equal(t, []string{"default"}, got)
}

func TestCall_PanicReturnsDefault(t *testing.T) {
	got := Call(context.Background(), "svc", func(context.Context) (string, error) {
		panic("nil map")
	}, "safe")
	assert.Equal(t, "safe", got)
}

func TestDo(t *testing.T) {
	ran := false
	Do(context.Background(), "analytics", func(context.Context) error {
		ran = true
		return errors.New("unreachable backend")
	})
	assert.True(t, ran)

	assert.NotPanics(t, func() {
		Do(context.Background(), "analytics", func(context.Context) error {
			panic("bad")
		})
	})
}
