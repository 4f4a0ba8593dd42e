package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMatchesViaFTS(t *testing.T) {
	s := newTestStore(t)
	room, err := s.CreateRoom("search-room", "", "tester")
	require.NoError(t, err)

	insertMsg(t, s, room.ID, "nanook", "the aurora was green tonight", nil)
	insertMsg(t, s, room.ID, "sedna", "nothing to do with weather", nil)

	results, err := s.Search("aurora", SearchFilter{Room: room.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "the aurora was green tonight", results[0].Content)
}

func TestSearchFallsBackToLikeWhenNoFTSTermsSurvive(t *testing.T) {
	s := newTestStore(t)
	room, err := s.CreateRoom("search-room-2", "", "tester")
	require.NoError(t, err)

	insertMsg(t, s, room.ID, "nanook", "!!! punctuation only query below matches nothing here", nil)

	// A query made entirely of punctuation tokenizes to zero FTS terms
	// (buildFTSQuery strips everything outside [a-zA-Z0-9_-']), so Search
	// must take the LIKE fallback path rather than erroring on an empty
	// MATCH expression.
	results, err := s.Search("###", SearchFilter{Room: room.ID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRespectsSenderFilter(t *testing.T) {
	s := newTestStore(t)
	room, err := s.CreateRoom("search-room-3", "", "tester")
	require.NoError(t, err)

	insertMsg(t, s, room.ID, "nanook", "shared topic alpha", nil)
	insertMsg(t, s, room.ID, "sedna", "shared topic beta", nil)

	results, err := s.Search("shared", SearchFilter{Room: room.ID, Sender: "sedna", Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sedna", results[0].Sender)
}

func TestFTSRebuildRepopulatesIndex(t *testing.T) {
	s := newTestStore(t)
	room, err := s.CreateRoom("search-room-4", "", "tester")
	require.NoError(t, err)

	insertMsg(t, s, room.ID, "nanook", "rebuildable phrase", nil)

	_, err = s.db.Exec(`DELETE FROM messages_fts`)
	require.NoError(t, err)

	results, err := s.Search("rebuildable", SearchFilter{Room: room.ID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results, "index was wiped, so FTS must find nothing before rebuild")

	require.NoError(t, s.FTSRebuild())

	results, err = s.Search("rebuildable", SearchFilter{Room: room.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
}
