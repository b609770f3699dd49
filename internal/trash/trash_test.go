package trash

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(t *testing.T, installed map[string]bool) *[][]string {
	t.Helper()
	origLook, origRun := lookPath, run
	t.Cleanup(func() { lookPath, run = origLook, origRun })

	var calls [][]string
	lookPath = func(name string) (string, error) {
		if installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	run = func(_ context.Context, name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}
	return &calls
}

func TestMovePrefersGio(t *testing.T) {
	calls := stub(t, map[string]bool{"gio": true, "trash-put": true})

	require.NoError(t, Move(context.Background(), "/pics/a.jpg"))

	assert.Equal(t, [][]string{{"/usr/bin/gio", "trash", "/pics/a.jpg"}}, *calls)
	assert.Equal(t, "gio", Available())
}

func TestMoveFallsBackToTrashPut(t *testing.T) {
	calls := stub(t, map[string]bool{"trash-put": true})

	require.NoError(t, Move(context.Background(), "/pics/a.jpg"))

	assert.Equal(t, [][]string{{"/usr/bin/trash-put", "/pics/a.jpg"}}, *calls)
}

func TestMoveUnavailable(t *testing.T) {
	stub(t, nil)

	assert.ErrorIs(t, Move(context.Background(), "/pics/a.jpg"), ErrUnavailable)
	assert.Empty(t, Available())
}

func TestMoveReportsToolFailure(t *testing.T) {
	stub(t, map[string]bool{"gio": true})
	run = func(context.Context, string, ...string) error { return errors.New("boom") }

	assert.EqualError(t, Move(context.Background(), "/x"), "boom")
}
