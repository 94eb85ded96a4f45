package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayhangulbjk/ebs-insight/pkg/catalog"
	"github.com/ayhangulbjk/ebs-insight/pkg/config"
)

func testSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot("snap-intent", []*catalog.Control{
		{
			ControlID: "concurrent_mgr_health",
			Intent:    catalog.IntentConcMgr,
			Keywords: catalog.Keywords{
				EN: []string{"concurrent manager", "pending requests"},
				TR: []string{"sağlık durumu", "bekleyen istekler"},
			},
			Queries: []catalog.QueryDef{{Name: "q", SQL: "SELECT 1 FROM dual"}},
		},
		{
			ControlID: "invalid_objects_list",
			Intent:    catalog.IntentInvalidObjects,
			Keywords:  catalog.Keywords{EN: []string{"invalid objects"}},
			Queries:   []catalog.QueryDef{{Name: "q", SQL: "SELECT 1 FROM dual"}},
		},
	})
}

func newTestClassifier() *Classifier {
	model := TrainModel(testSnapshot(), nil)
	return NewClassifier(model, config.Default().Classifier)
}

func TestClassifyStaircase(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name       string
		prompt     string
		wantIntent string
	}{
		{"turkish greeting", "merhaba", ChitChat},
		{"english greeting", "good morning", ChitChat},
		{"turkish diagnostic prompt", "concurrent manager sağlık durumu nedir?", EBSControl},
		{"english diagnostic prompt", "show pending requests for concurrent manager", EBSControl},
		{"partial vocabulary overlap", "durumu göster lütfen", Ambiguous},
		{"gibberish", "xyzq qwop florb", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.prompt)
			assert.Equal(t, tt.wantIntent, res.Intent, "prompt: %q (scores: %v)", tt.prompt, res.PerClassScores)
		})
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify("merhaba")
	assert.Equal(t, ChitChat, res.Intent)
	assert.Greater(t, res.Confidence, config.DefaultChitChatThreshold)

	res = c.Classify("concurrent manager sağlık durumu nedir?")
	assert.Equal(t, EBSControl, res.Intent)
	assert.Greater(t, res.Confidence, config.DefaultEBSThreshold)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestClassifyEmptyPrompt(t *testing.T) {
	c := newTestClassifier()

	for _, prompt := range []string{"", "   ", "\t\n"} {
		res := c.Classify(prompt)
		assert.Equal(t, Unknown, res.Intent)
		assert.Zero(t, res.Confidence)
	}
}

func TestClassifyExposesPerClassScores(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify("concurrent manager sağlık durumu")
	require.Contains(t, res.PerClassScores, ChitChat)
	require.Contains(t, res.PerClassScores, EBSControl)
	assert.Greater(t, res.PerClassScores[EBSControl], res.PerClassScores[ChitChat])
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTestClassifier()

	first := c.Classify("concurrent manager sağlık durumu nedir?")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify("concurrent manager sağlık durumu nedir?"))
	}
}

func TestReplaceModelPicksUpNewVocabulary(t *testing.T) {
	c := newTestClassifier()

	// Not in the original vocabulary in any match class.
	res := c.Classify("tablespace doluluk oranı")
	require.Equal(t, Unknown, res.Intent)

	retrained := catalog.NewSnapshot("snap-intent-2", []*catalog.Control{
		{
			ControlID: "tablespace_usage",
			Intent:    catalog.IntentPerformance,
			Keywords:  catalog.Keywords{TR: []string{"tablespace doluluk oranı"}},
			Queries:   []catalog.QueryDef{{Name: "q", SQL: "SELECT 1 FROM dual"}},
		},
	})
	c.ReplaceModel(TrainModel(retrained, nil))

	res = c.Classify("tablespace doluluk oranı")
	assert.Equal(t, EBSControl, res.Intent)
}

func TestTrainModelExtraNegatives(t *testing.T) {
	model := TrainModel(testSnapshot(), []string{"hayırlı işler"})
	c := NewClassifier(model, config.Default().Classifier)

	res := c.Classify("hayırlı işler")
	assert.Equal(t, ChitChat, res.Intent)
}
