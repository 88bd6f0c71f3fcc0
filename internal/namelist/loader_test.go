package namelist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"teammatch/internal/domain"
)

func TestLoadTrimsAndSkipsBlankLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "names.txt")
	raw := "Fenerbahce\n\n  Galatasaray  \n\t\nBeşiktaş\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	names, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"Fenerbahce", "Galatasaray", "Beşiktaş"}, names)
}

func TestLoadMissingFileIsUsageError(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.ErrorIs(t, err, domain.ErrNameListMissing)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	names, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, names)
}
