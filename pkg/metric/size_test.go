package metric

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mltrust/mltrust/pkg/hub"
	"github.com/mltrust/mltrust/pkg/resource"
)

// fakeSource is a canned metadata source for provider tests.
type fakeSource struct {
	info    *hub.Info
	files   []hub.FileEntry
	readme  string
	infoErr error
	listErr error
	rdmeErr error
}

func (f *fakeSource) Info(_ context.Context, _ resource.Resource) (*hub.Info, error) {
	return f.info, f.infoErr
}

func (f *fakeSource) ListFiles(_ context.Context, _ resource.Resource) ([]hub.FileEntry, error) {
	return f.files, f.listErr
}

func (f *fakeSource) Readme(_ context.Context, _ resource.Resource) (string, error) {
	return f.readme, f.rdmeErr
}

func modelRes() resource.Resource {
	return resource.Resource{ID: "acme/model", Name: "model", Kind: resource.KindModel}
}

func TestMinViableFamilyBytes_PicksSmallest(t *testing.T) {
	files := []hub.FileEntry{
		{Path: "model.safetensors", Size: 200},
		{Path: "model.onnx", Size: 50},
	}
	assert.Equal(t, int64(50), minViableFamilyBytes(files))
}

func TestMinViableFamilyBytes_TieBreaksOnFormat(t *testing.T) {
	files := []hub.FileEntry{
		{Path: "pytorch_model.bin", Size: 100},
		{Path: "model.safetensors", Size: 100},
	}
	// equal totals: safetensors preferred, total unchanged
	assert.Equal(t, int64(100), minViableFamilyBytes(files))

	families := map[string]int64{}
	for _, f := range files {
		families[familyKey(f.Path)] += f.Size
	}
	assert.Len(t, families, 2)
}

func TestMinViableFamilyBytes_ShardsCollapse(t *testing.T) {
	files := []hub.FileEntry{
		{Path: "model-00001-of-00003.safetensors", Size: 100},
		{Path: "model-00002-of-00003.safetensors", Size: 100},
		{Path: "model-00003-of-00003.safetensors", Size: 50},
		{Path: "model.onnx", Size: 300},
	}
	// shard family totals 250, onnx 300
	assert.Equal(t, int64(250), minViableFamilyBytes(files))
}

func TestMinViableFamilyBytes_NoWeightsFallsBackToSum(t *testing.T) {
	files := []hub.FileEntry{
		{Path: "README.md", Size: 10},
		{Path: "config.json", Size: 5},
	}
	assert.Equal(t, int64(15), minViableFamilyBytes(files))
}

func TestLooksLikeWeightFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"model.safetensors", true},
		{"pytorch_model.bin", true},
		{"weights/model.pt", true},
		{"model.onnx", true},
		{"optimizer.pt", false},
		{"training_state.bin", false},
		{"adam_state.pt", false},
		{"README.md", false},
		{"config.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeWeightFile(tt.path))
		})
	}
}

func TestFamilyKey(t *testing.T) {
	assert.Equal(t, "model.safetensors", familyKey("model-00001-of-00005.safetensors"))
	assert.Equal(t, "model.safetensors", familyKey("model-00005-of-00005.safetensors"))
	assert.Equal(t, "pytorch_model.bin", familyKey("some/dir/pytorch_model.bin"))
}

func TestScoreUtilization(t *testing.T) {
	assert.Equal(t, 1.0, scoreUtilization(0))
	assert.Equal(t, 1.0, scoreUtilization(-1))
	assert.InDelta(t, 1.0-1.9*0.5, scoreUtilization(0.5), 1e-9)
	assert.Equal(t, 0.0, scoreUtilization(1.0))
	assert.Equal(t, 0.0, scoreUtilization(2.0))
}

func TestScoreOnTier_ZeroBytesIsPerfect(t *testing.T) {
	for tier := range hardwareLimits {
		assert.Equal(t, 1.0, scoreOnTier(0, tier), tier)
	}
}

func TestScoreOnTier_NonIncreasing(t *testing.T) {
	sizes := []int64{0, 1_000_000, 500_000_000, 2_000_000_000, 40_000_000_000, 600_000_000_000}
	for tier := range hardwareLimits {
		prev := 1.1
		for _, sz := range sizes {
			score := scoreOnTier(sz, tier)
			assert.LessOrEqual(t, score, prev, "tier %s size %d", tier, sz)
			assert.GreaterOrEqual(t, score, 0.0)
			prev = score
		}
	}
}

func TestSizeFit_Evaluate(t *testing.T) {
	src := &fakeSource{files: []hub.FileEntry{
		{Path: "model.safetensors", Size: 500_000_000},
	}}
	m := NewSizeFit(src)

	r := m.Evaluate(context.Background(), modelRes())
	require.False(t, r.Failed())
	require.Len(t, r.Breakdown, 4)
	for _, tier := range []string{"raspberry_pi", "jetson_nano", "desktop_pc", "aws_server"} {
		assert.Contains(t, r.Breakdown, tier)
	}
	// 500MB fits loosely on a server, tightly on a pi
	assert.Greater(t, r.Breakdown["aws_server"], r.Breakdown["raspberry_pi"])
	assert.GreaterOrEqual(t, r.LatencyMS, int64(0))
}

func TestSizeFit_EvaluateFailure(t *testing.T) {
	src := &fakeSource{listErr: errors.New("boom")}
	m := NewSizeFit(src)

	r := m.Evaluate(context.Background(), modelRes())
	assert.True(t, r.Failed())
	assert.GreaterOrEqual(t, r.LatencyMS, int64(0))
}

func TestSizeFit_Applies(t *testing.T) {
	m := NewSizeFit(&fakeSource{})
	assert.True(t, m.Applies(resource.KindModel))
	assert.True(t, m.Applies(resource.KindDataset))
	assert.False(t, m.Applies(resource.KindCode))
}
