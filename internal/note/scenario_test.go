package note

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenario_CreateListDeleteOnStore(t *testing.T) {
	store := newStore(t)
	st := signedIn("11111111-1111-1111-1111-111111111111")
	r := newRepo(t, store, st)
	ctx := context.Background()

	res, err := r.Save(ctx, SaveInput{Title: "Groceries", Content: "milk, eggs", Tags: []string{"home"}})
	require.NoError(t, err)
	require.Equal(t, StatusSaved, res.Status)

	require.NoError(t, r.Load(ctx))
	notes := st.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "Groceries", notes[0].Title)
	require.Len(t, notes[0].Tags, 1)
	require.Equal(t, "home", notes[0].Tags[0].Name)
	require.Len(t, st.Tags(), 1)

	got := Filter(notes, Query{Text: "EGGS", TagID: notes[0].Tags[0].ID})
	require.Len(t, got, 1)

	require.NoError(t, r.Delete(ctx, res.NoteID))
	require.Empty(t, st.Notes())

	require.NoError(t, r.Load(ctx))
	require.Empty(t, st.Notes())
}

func TestScenario_SecondSaveReusesStoredTag(t *testing.T) {
	store := newStore(t)
	st := signedIn("22222222-2222-2222-2222-222222222222")
	r := newRepo(t, store, st)
	ctx := context.Background()

	first, err := r.Save(ctx, SaveInput{Title: "one", Tags: []string{"work"}})
	require.NoError(t, err)
	second, err := r.Save(ctx, SaveInput{Title: "two", Tags: []string{"work", "new"}})
	require.NoError(t, err)

	tags, err := store.ListTags(ctx, st.User().ID)
	require.NoError(t, err)
	require.Equal(t, []string{"new", "work"}, tagNames(tags))

	a, err := r.Get(ctx, first.NoteID)
	require.NoError(t, err)
	b, err := r.Get(ctx, second.NoteID)
	require.NoError(t, err)
	require.Equal(t, a.Tags[0].ID, b.Tags[1].ID) // "work" sorts after "new"
}

func TestScenario_LinksEveryRequestedTag(t *testing.T) {
	store := newStore(t)
	st := signedIn("33333333-3333-3333-3333-333333333333")
	r := newRepo(t, store, st)
	ctx := context.Background()

	var names []string
	for i := 0; i < 25; i++ {
		names = append(names, fmt.Sprintf("tag-%02d", i))
	}
	res, err := r.Save(ctx, SaveInput{Title: "many", Tags: names})
	require.NoError(t, err)
	require.Equal(t, StatusSaved, res.Status)

	n, err := r.Get(ctx, res.NoteID)
	require.NoError(t, err)
	require.Equal(t, names, tagNames(n.Tags))
}
