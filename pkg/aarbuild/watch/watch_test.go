package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func start(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return cancel, done
}

func stop(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherRunsActionOnChange(t *testing.T) {
	dir := t.TempDir()
	answers := filepath.Join(dir, "answers.json")
	require.NoError(t, os.WriteFile(answers, []byte(`{}`), 0o644))

	runs := make(chan struct{}, 4)
	w, err := New([]string{answers}, func(context.Context) error {
		runs <- struct{}{}
		return nil
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	cancel, done := start(t, w)
	// let the loop start before changing the file
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(answers, []byte(`{"DOC": []}`), 0o644))
	}

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("action was not run")
	}
	stop(t, cancel, done)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "NDcPP-template.docx")
	require.NoError(t, os.WriteFile(watched, nil, 0o644))

	var calls atomic.Int32
	w, err := New([]string{watched}, func(context.Context) error {
		calls.Add(1)
		return errors.New("ignored")
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)

	cancel, done := start(t, w)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	stop(t, cancel, done)

	assert.Equal(t, int32(0), calls.Load())
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, func(context.Context) error { return nil })
	assert.Error(t, err)

	_, err = New([]string{filepath.Join(t.TempDir(), "missing-dir", "file.json")}, func(context.Context) error { return nil })
	assert.Error(t, err)
}
