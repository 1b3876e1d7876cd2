package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailabeldev/ailabel/internal/dataset"
	"github.com/ailabeldev/ailabel/internal/storage"
)

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	db, err := storage.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := dataset.NewStore(db, nil)
	require.NoError(t, s.Init())
	return s
}

func fptr(f float64) *float64 { return &f }

func TestCreateTopic(t *testing.T) {
	s := newTestStore(t)

	topic, err := s.CreateTopic("sentiment", "tone of a review")
	require.NoError(t, err)
	assert.Equal(t, "sentiment", topic.Name)
	assert.NotEmpty(t, topic.ID)

	got, err := s.GetTopic("sentiment")
	require.NoError(t, err)
	assert.Equal(t, topic.ID, got.ID)
	assert.Equal(t, "tone of a review", got.Description)
}

func TestCreateTopicDuplicate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	_, err = s.CreateTopic("sentiment", "")
	require.ErrorIs(t, err, dataset.ErrAlreadyExists)

	// Exactly one topic persisted.
	topics, err := s.ListTopics()
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}

func TestTopicNamesCaseSensitive(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTopic("Sentiment", "")
	require.NoError(t, err)
	_, err = s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	topics, err := s.ListTopics()
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestGetTopicNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTopic("missing")
	require.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestListTopicsCreationOrder(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"c", "a", "b"} {
		_, err := s.CreateTopic(name, "")
		require.NoError(t, err)
	}

	topics, err := s.ListTopics()
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, "c", topics[0].Name)
	assert.Equal(t, "a", topics[1].Name)
	assert.Equal(t, "b", topics[2].Name)
}

func TestAddLabelAndListLatest(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	_, err = s.AddLabel("sentiment", "I love it", "positive", dataset.SourceHuman, nil, "")
	require.NoError(t, err)

	labeled, err := s.ListLabeledPayloads("sentiment", false)
	require.NoError(t, err)
	require.Len(t, labeled, 1)
	assert.Equal(t, "I love it", labeled[0].Payload.Text)
	assert.Equal(t, "positive", labeled[0].Latest.Value)
	assert.Equal(t, dataset.SourceHuman, labeled[0].Latest.Source)
}

func TestAddLabelTopicNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddLabel("missing", "text", "x", dataset.SourceHuman, nil, "")
	require.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestAddLabelValidation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	tests := []struct {
		name       string
		payload    string
		value      string
		source     dataset.Source
		confidence *float64
	}{
		{"empty payload after trim", "   ", "positive", dataset.SourceHuman, nil},
		{"empty value", "text", "", dataset.SourceHuman, nil},
		{"model without confidence", "text", "positive", dataset.SourceModel, nil},
		{"confidence above one", "text", "positive", dataset.SourceModel, fptr(1.5)},
		{"confidence below zero", "text", "positive", dataset.SourceModel, fptr(-0.1)},
		{"unknown source", "text", "positive", dataset.Source("alien"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddLabel("sentiment", tt.payload, tt.value, tt.source, tt.confidence, "")
			require.ErrorIs(t, err, dataset.ErrInvalidLabel)
		})
	}

	// A failed write leaves the store unchanged.
	labeled, err := s.ListLabeledPayloads("sentiment", false)
	require.NoError(t, err)
	assert.Empty(t, labeled)
}

func TestAddLabelNormalizesAndDedupes(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	_, err = s.AddLabel("sentiment", "  I love it  ", "positive", dataset.SourceHuman, nil, "")
	require.NoError(t, err)
	_, err = s.AddLabel("sentiment", "I love it", "negative", dataset.SourceHuman, nil, "")
	require.NoError(t, err)

	// Same normalized text reuses the payload; the newer label wins.
	labeled, err := s.ListLabeledPayloads("sentiment", false)
	require.NoError(t, err)
	require.Len(t, labeled, 1)
	assert.Equal(t, "I love it", labeled[0].Payload.Text)
	assert.Equal(t, "negative", labeled[0].Latest.Value)

	n, err := s.CountLabels("sentiment")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRelabelKeepsModelHistory(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	_, err = s.AddLabel("sentiment", "meh", "neutral", dataset.SourceHuman, nil, "")
	require.NoError(t, err)
	_, err = s.AddLabel("sentiment", "meh", "negative", dataset.SourceModel, fptr(0.6), "weak tone")
	require.NoError(t, err)
	_, err = s.AddLabel("sentiment", "meh", "neutral", dataset.SourceHuman, nil, "")
	require.NoError(t, err)

	labeled, err := s.ListLabeledPayloads("sentiment", false)
	require.NoError(t, err)
	require.Len(t, labeled, 1)
	assert.Equal(t, "neutral", labeled[0].Latest.Value)
	assert.Equal(t, dataset.SourceHuman, labeled[0].Latest.Source)

	// History is additive: all three rows remain.
	n, err := s.CountLabels("sentiment")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListLabeledPayloadsHumanOnly(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	_, err = s.AddLabel("sentiment", "great", "positive", dataset.SourceHuman, nil, "")
	require.NoError(t, err)
	_, err = s.AddLabel("sentiment", "awful", "negative", dataset.SourceModel, fptr(0.9), "")
	require.NoError(t, err)

	all, err := s.ListLabeledPayloads("sentiment", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	human, err := s.ListLabeledPayloads("sentiment", true)
	require.NoError(t, err)
	require.Len(t, human, 1)
	assert.Equal(t, "great", human[0].Payload.Text)
}

func TestHumanOnlyExcludesModelSupersededPayloads(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	// Human label first, then a model label on the same payload: the
	// LATEST label is model-sourced, so humanOnly must drop it.
	_, err = s.AddLabel("sentiment", "fine", "neutral", dataset.SourceHuman, nil, "")
	require.NoError(t, err)
	_, err = s.AddLabel("sentiment", "fine", "positive", dataset.SourceModel, fptr(0.5), "")
	require.NoError(t, err)

	human, err := s.ListLabeledPayloads("sentiment", true)
	require.NoError(t, err)
	assert.Empty(t, human)
}

func TestPayloadsScopedPerTopic(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"a", "b"} {
		_, err := s.CreateTopic(name, "")
		require.NoError(t, err)
	}

	_, err := s.AddLabel("a", "same text", "x", dataset.SourceHuman, nil, "")
	require.NoError(t, err)
	_, err = s.AddLabel("b", "same text", "y", dataset.SourceHuman, nil, "")
	require.NoError(t, err)

	la, err := s.ListLabeledPayloads("a", false)
	require.NoError(t, err)
	lb, err := s.ListLabeledPayloads("b", false)
	require.NoError(t, err)
	require.Len(t, la, 1)
	require.Len(t, lb, 1)
	assert.NotEqual(t, la[0].Payload.ID, lb[0].Payload.ID)
	assert.Equal(t, "x", la[0].Latest.Value)
	assert.Equal(t, "y", lb[0].Latest.Value)
}

func TestListLabelValues(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	for _, pair := range [][2]string{
		{"I love it", "positive"},
		{"It's terrible", "negative"},
		{"Best ever", "positive"},
	} {
		_, err := s.AddLabel("sentiment", pair[0], pair[1], dataset.SourceHuman, nil, "")
		require.NoError(t, err)
	}

	values, err := s.ListLabelValues("sentiment")
	require.NoError(t, err)
	assert.Equal(t, []string{"positive", "negative"}, values)
}

func TestLabelStats(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTopic("sentiment", "")
	require.NoError(t, err)

	for _, pair := range [][2]string{
		{"a", "positive"},
		{"b", "positive"},
		{"c", "negative"},
	} {
		_, err := s.AddLabel("sentiment", pair[0], pair[1], dataset.SourceHuman, nil, "")
		require.NoError(t, err)
	}

	stats, err := s.LabelStats("sentiment")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"positive": 2, "negative": 1}, stats)
}
