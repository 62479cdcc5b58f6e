package membership // import "github.com/nicolagi/dfs/internal/membership"

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disposableStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nodes"))
	require.NoError(t, err)
	return s
}

func TestCreate_rejectsDuplicateID(t *testing.T) {
	s := disposableStore(t)
	_, err := s.Create("abc123", "http://10.0.0.1:8180/", "", StatusNew)
	require.NoError(t, err)
	_, err = s.Create("abc123", "http://10.0.0.2:8180/", "", StatusNew)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestCreate_defaultsPublicURLToURL(t *testing.T) {
	s := disposableStore(t)
	rec, err := s.Create("abc123", "http://10.0.0.1:8180/", "", StatusNew)
	require.NoError(t, err)
	assert.Equal(t, rec.URL, rec.PublicURL)
}

func TestMutation_commitsAllStagedChanges(t *testing.T) {
	s := disposableStore(t)
	_, err := s.Create("abc123", "http://10.0.0.1:8180/", "", StatusNew)
	require.NoError(t, err)

	err = s.Modify("abc123").SetStatus(StatusAlive).SetPublicURL("http://pub/").Commit()
	require.NoError(t, err)

	rec, ok := s.Get("abc123")
	require.True(t, ok)
	assert.Equal(t, StatusAlive, rec.Status)
	assert.Equal(t, "http://pub/", rec.PublicURL)
}

func TestModify_unknownMemberFails(t *testing.T) {
	s := disposableStore(t)
	err := s.Modify("nope").SetStatus(StatusAlive).Commit()
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestFilter_byStatus(t *testing.T) {
	s := disposableStore(t)
	_, err := s.Create("a", "http://a/", "", StatusAlive)
	require.NoError(t, err)
	_, err = s.Create("b", "http://b/", "", StatusDead)
	require.NoError(t, err)
	_, err = s.Create("c", "http://c/", "", StatusAlive)
	require.NoError(t, err)

	alive := s.Filter(ByStatus(StatusAlive))
	require.Len(t, alive, 2)
	assert.Equal(t, "a", alive[0].ID)
	assert.Equal(t, "c", alive[1].ID)

	all := s.Filter(nil)
	assert.Len(t, all, 3)
}

// TestDurability checks that after create/update, the on-disk table and
// a freshly reopened store agree.
func TestDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Create("abc123", "http://10.0.0.1:8180/", "http://pub/", StatusNew)
	require.NoError(t, err)
	require.NoError(t, s.Modify("abc123").SetStatus(StatusAlive).Commit())

	reopened, err := Open(path)
	require.NoError(t, err)
	rec, ok := reopened.Get("abc123")
	require.True(t, ok)
	assert.Equal(t, StatusAlive, rec.Status)
	assert.Equal(t, "http://pub/", rec.PublicURL)
}
