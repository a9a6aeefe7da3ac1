package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/searchsync/internal/adapters/driven/config/file"
)

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	starts chan struct{}
	stops  atomic.Int32
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{starts: make(chan struct{}, 10)}
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.starts <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.stops.Add(1)
	return nil
}

func dirOf(path string) string {
	return filepath.Dir(path)
}

func newTestConfigStore(t *testing.T, dir string) *file.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	return store
}

func TestConfigChanged(t *testing.T) {
	path := filepath.Join("/tmp", "home", "config.toml")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join("/tmp", "home", "other.toml"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, configChanged(tt.event, path))
		})
	}
}

func TestWatchConfig_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, stop, err := watchConfig(ctx, path)
	require.NoError(t, err)
	defer stop() //nolint:errcheck

	require.NoError(t, os.WriteFile(path, []byte("[search]\nbatch_size = 5\n"), 0600))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
}

func TestDaemonCmd_StopsOnCancel(t *testing.T) {
	scheduler := newMockScheduler()
	setupServices(t, &Services{Scheduler: scheduler})

	ctx, cancel := context.WithCancel(context.Background())
	rootCmd.SetArgs([]string{"daemon"})
	rootCmd.SetOut(new(discard))
	rootCmd.SetErr(new(discard))

	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	<-scheduler.starts
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemonCmd_ReloadsOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	first := &Services{Scheduler: newMockScheduler(), Config: newTestConfigStore(t, dir)}
	second := newMockScheduler()
	setupServices(t, first)

	bootstrap = func(string) (*Services, error) {
		return &Services{Scheduler: second, Config: first.Config}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rootCmd.SetArgs([]string{"daemon"})
	rootCmd.SetOut(new(discard))
	rootCmd.SetErr(new(discard))

	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	<-first.Scheduler.(*mockScheduler).starts
	require.NoError(t, first.Config.Set("search.batch_size", int64(7)))

	select {
	case <-second.starts:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler was not restarted")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestDaemonCmd_StopsSchedulerBeforeClosing(t *testing.T) {
	dir := t.TempDir()
	oldScheduler := newMockScheduler()
	stoppedAtClose := make(chan int32, 1)
	first := &Services{
		Scheduler: oldScheduler,
		Config:    newTestConfigStore(t, dir),
		Close: func() error {
			stoppedAtClose <- oldScheduler.stops.Load()
			return nil
		},
	}
	second := newMockScheduler()
	setupServices(t, first)

	bootstrap = func(string) (*Services, error) {
		return &Services{Scheduler: second, Config: first.Config}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rootCmd.SetArgs([]string{"daemon"})
	rootCmd.SetOut(new(discard))
	rootCmd.SetErr(new(discard))

	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	<-oldScheduler.starts
	require.NoError(t, first.Config.Set("search.batch_size", int64(9)))

	select {
	case stops := <-stoppedAtClose:
		assert.Equal(t, int32(1), stops)
	case <-time.After(5 * time.Second):
		t.Fatal("previous services were not closed")
	}
	<-second.starts

	cancel()
	assert.NoError(t, <-done)
}

func TestDaemonCmd_FailedReloadKeepsRunning(t *testing.T) {
	dir := t.TempDir()
	current := &Services{Scheduler: newMockScheduler(), Config: newTestConfigStore(t, dir)}
	setupServices(t, current)

	bootstrap = func(string) (*Services, error) {
		return nil, errors.New("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rootCmd.SetArgs([]string{"daemon"})
	rootCmd.SetOut(new(discard))
	rootCmd.SetErr(new(discard))

	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	scheduler := current.Scheduler.(*mockScheduler)
	<-scheduler.starts
	require.NoError(t, current.Config.Set("search.batch_size", int64(3)))

	select {
	case <-scheduler.starts:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler was not restarted after a failed reload")
	}

	select {
	case err := <-done:
		t.Fatalf("daemon exited after a failed reload: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Same(t, current, services)

	cancel()
	assert.NoError(t, <-done)
}

func TestDaemonCmd_NoScheduler(t *testing.T) {
	setupServices(t, &Services{})

	_, err := execute(t, "daemon")

	assert.EqualError(t, err, "scheduler not configured")
}

// discard is an io.Writer that drops everything.
type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
