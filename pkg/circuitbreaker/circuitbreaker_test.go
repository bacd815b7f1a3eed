package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errBoom = errors.New("boom")

func TestNew_OpensAfterConsecutiveFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cb := New[int](Settings{Name: "orders", MaxFailures: 2, OpenTimeout: time.Minute}, zap.New(core))

	calls := 0
	fail := func() (int, error) { calls++; return 0, errBoom }

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(fail)
		assert.ErrorIs(t, err, errBoom)
	}

	_, err := cb.Execute(fail)
	assert.True(t, IsOpen(err))
	assert.Equal(t, 2, calls)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "orders", logs.All()[0].ContextMap()["breaker"])
}

func TestNew_SuccessResetsCount(t *testing.T) {
	cb := New[int](Settings{Name: "orders", MaxFailures: 2}, nil)

	_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	v, err := cb.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	_, _ = cb.Execute(func() (int, error) { return 0, errBoom })

	_, err = cb.Execute(func() (int, error) { return 1, nil })
	assert.NoError(t, err)
}

func TestNew_IsSuccessfulExcludesErrors(t *testing.T) {
	errRejected := errors.New("rejected")
	cb := New[int](Settings{
		Name:         "orders",
		MaxFailures:  1,
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errRejected) },
	}, nil)

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errRejected })
		assert.ErrorIs(t, err, errRejected)
	}
}

func TestIsOpen(t *testing.T) {
	assert.False(t, IsOpen(nil))
	assert.False(t, IsOpen(errBoom))
}
