package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Structurer/nav-front-build/internal/catalog"
	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/session"
)

func draft(name string) catalog.Draft {
	return catalog.Draft{Name: name, URL: name + ".example", Alt: name}
}

func bootstrapped(t *testing.T, st *fakeStore) *Coordinator {
	t.Helper()
	c := newTestCoordinator(st, nil, nil)
	_, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	return c
}

func TestAddIconCommits(t *testing.T) {
	st := &fakeStore{doc: entries("a", 1)}
	c := bootstrapped(t, st)
	before := c.Session().Revision()

	res, err := c.AddIcon(context.Background(), draft("new"), 5)
	require.NoError(t, err)

	assert.True(t, res.Durable)
	assert.Greater(t, res.Revision, before)
	assert.Equal(t, 2, res.Entry.K, "category 5 is normalized to the next rank")
	assert.Equal(t, "https://new.example", res.Entry.URL)

	stored := st.stored()
	require.Len(t, stored.NavList, 2)
	require.Len(t, stored.OperateLog, 1)

	var rec struct {
		Op string `json:"op"`
		ID string `json:"id"`
		K  int    `json:"k"`
		At string `json:"at"`
	}
	require.NoError(t, json.Unmarshal(stored.OperateLog[0], &rec))
	assert.Equal(t, domain.OpAdd, rec.Op)
	assert.Equal(t, res.Entry.ID, rec.ID)
	assert.Equal(t, 2, rec.K)
	assert.Equal(t, "2024-05-01T12:00:00Z", rec.At)

	got, ok := c.Session().Lookup(res.Entry.ID)
	require.True(t, ok)
	assert.Equal(t, res.Entry, got)
}

func TestAddIconValidation(t *testing.T) {
	st := &fakeStore{doc: entries("a", 1)}
	c := bootstrapped(t, st)
	before := c.Session().Revision()

	_, err := c.AddIcon(context.Background(), catalog.Draft{Name: "x"}, 1)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "url", vErr.Field)
	assert.Equal(t, before, c.Session().Revision())
	assert.Zero(t, st.saves)
}

func TestEditIconMovesAcrossCategories(t *testing.T) {
	st := &fakeStore{doc: entries("a", 1, "b", 2, "c", 2)}
	c := bootstrapped(t, st)

	k := 2
	res, err := c.EditIcon(context.Background(), "a", catalog.Patch{K: &k})
	require.NoError(t, err)

	// category 1 became empty, so everything collapses into 1
	assert.Equal(t, 1, res.Entry.K)
	doc := c.Session().Snapshot().Doc
	assert.Equal(t, []string{"b", "c", "a"}, idsOf(doc))
	assert.Equal(t, []int{1}, domain.Categories(doc))
}

func TestDeleteIconFallback(t *testing.T) {
	st := &fakeStore{doc: entries("a", 1, "b", 1)}
	c := bootstrapped(t, st)

	res, err := c.DeleteIcon(context.Background(), "stale-id", 1)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Entry.ID)
	assert.Equal(t, []string{"a"}, idsOf(st.stored()))

	_, err = c.DeleteIcon(context.Background(), "stale-id", 9)
	var lErr *domain.LookupError
	assert.ErrorAs(t, err, &lErr)
	assert.Equal(t, []string{"a"}, idsOf(st.stored()))
}

func TestMoveIcons(t *testing.T) {
	st := &fakeStore{doc: entries("x", 1, "y", 2, "z", 2)}
	c := bootstrapped(t, st)

	_, err := c.MoveIcons(context.Background(), []catalog.CategoryOrder{
		{K: 1, Entries: nil},
		{K: 2, Entries: []domain.IconEntry{{ID: "y"}, {ID: "x"}, {ID: "z"}}},
	})
	require.NoError(t, err)

	doc := c.Session().Snapshot().Doc
	assert.Equal(t, []string{"y", "x", "z"}, idsOf(doc))
	assert.Equal(t, []int{1}, domain.Categories(doc))
}

func TestStorageFailureKeepsInMemoryState(t *testing.T) {
	st := &fakeStore{doc: entries("a", 1)}
	c := bootstrapped(t, st)
	st.saveErr = errors.New("quota exceeded")

	res, err := c.AddIcon(context.Background(), draft("volatile"), 1)
	require.NoError(t, err)
	assert.False(t, res.Durable)

	_, ok := c.Session().Lookup(res.Entry.ID)
	assert.True(t, ok, "the change stays live in memory")
	assert.Len(t, st.stored().NavList, 1)

	notices := c.Session().Notices(0)
	require.NotEmpty(t, notices)
	assert.Equal(t, session.LevelWarning, notices[len(notices)-1].Level)
}

func TestImportLeavesSeedMode(t *testing.T) {
	st := &fakeStore{}
	c := newTestCoordinator(st, nil, fakeSeed{doc: entries("seed", 1)})
	_, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	require.True(t, c.Session().SeedMode())

	imported := entries("i1", 3, "i2", 8)
	imported.OperateLog = append(imported.OperateLog, json.RawMessage(`{"op":"foreign"}`))

	res, err := c.Import(context.Background(), imported)
	require.NoError(t, err)
	assert.True(t, res.Durable)
	assert.False(t, c.Session().SeedMode())

	stored := st.stored()
	assert.Equal(t, []string{"i1", "i2"}, idsOf(stored))
	assert.Equal(t, []int{1, 2}, domain.Categories(stored))
	require.Len(t, stored.OperateLog, 2)
	assert.JSONEq(t, `{"op":"foreign"}`, string(stored.OperateLog[0]))
}

func TestCommitsAreSerialized(t *testing.T) {
	st := &fakeStore{doc: entries("a", 1)}
	c := bootstrapped(t, st)

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := c.AddIcon(context.Background(), draft("n"), 1)
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	assert.Len(t, st.stored().NavList, n+1)
	assert.Len(t, st.stored().OperateLog, n)
}

func idsOf(doc domain.Document) []string {
	out := make([]string, 0, len(doc.NavList))
	for _, e := range doc.NavList {
		out = append(out, e.ID)
	}
	return out
}
