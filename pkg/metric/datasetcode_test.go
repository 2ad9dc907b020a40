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

func TestDatasetCodeLinkage_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		readme string
		files  []hub.FileEntry
		want   float64
	}{
		{
			name:   "documented and with code",
			readme: "Trained on the C4 corpus.",
			files:  []hub.FileEntry{{Path: "train.py"}},
			want:   1.0,
		},
		{
			name:   "documented only",
			readme: "Evaluated on the GLUE benchmark.",
			files:  []hub.FileEntry{{Path: "model.safetensors"}},
			want:   0.5,
		},
		{
			name:   "code only",
			readme: "A model.",
			files:  []hub.FileEntry{{Path: "example.ipynb"}},
			want:   0.5,
		},
		{
			name:   "neither",
			readme: "A model.",
			files:  []hub.FileEntry{{Path: "model.safetensors"}},
			want:   0.0,
		},
		{
			name:   "requirements counts as code",
			readme: "",
			files:  []hub.FileEntry{{Path: "requirements.txt"}},
			want:   0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDatasetCodeLinkage(&fakeSource{readme: tt.readme, files: tt.files})
			r := m.Evaluate(context.Background(), modelRes())
			require.False(t, r.Failed())
			assert.Equal(t, tt.want, r.Value)
		})
	}
}

func TestDatasetCodeLinkage_Failure(t *testing.T) {
	m := NewDatasetCodeLinkage(&fakeSource{rdmeErr: errors.New("no readme service")})
	r := m.Evaluate(context.Background(), modelRes())
	assert.True(t, r.Failed())

	m = NewDatasetCodeLinkage(&fakeSource{listErr: errors.New("no listing")})
	r = m.Evaluate(context.Background(), modelRes())
	assert.True(t, r.Failed())
}

func TestDatasetCodeLinkage_Applies(t *testing.T) {
	m := NewDatasetCodeLinkage(&fakeSource{})
	assert.True(t, m.Applies(resource.KindModel))
	assert.True(t, m.Applies(resource.KindDataset))
	assert.False(t, m.Applies(resource.KindCode))
}
