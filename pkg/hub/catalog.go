package hub

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mltrust/mltrust/pkg/resource"
)

// Catalog routes metadata reads to the host matching the resource
// kind. It is the single metadata surface the metric providers see.
type Catalog struct {
	HF *Client
	GH *GitHub
}

func NewCatalog(hf *Client, gh *GitHub) *Catalog {
	return &Catalog{HF: hf, GH: gh}
}

// Info returns normalized repository metadata for the resource.
func (c *Catalog) Info(ctx context.Context, res resource.Resource) (*Info, error) {
	switch res.Kind {
	case resource.KindModel:
		return c.HF.Model(ctx, res.ID)
	case resource.KindDataset:
		return c.HF.Dataset(ctx, res.ID)
	case resource.KindCode:
		return c.GH.Info(ctx, res.ID)
	}
	return nil, errors.Errorf("no metadata source for kind: %s", res.Kind)
}

// ListFiles returns the artifact file listing with sizes.
func (c *Catalog) ListFiles(ctx context.Context, res resource.Resource) ([]FileEntry, error) {
	switch res.Kind {
	case resource.KindModel, resource.KindDataset:
		info, err := c.Info(ctx, res)
		if err != nil {
			return nil, err
		}
		return info.Files, nil
	case resource.KindCode:
		return c.GH.ListFiles(ctx, res.ID)
	}
	return nil, errors.Errorf("no file listing for kind: %s", res.Kind)
}

// Readme returns the resource README text, empty when absent.
func (c *Catalog) Readme(ctx context.Context, res resource.Resource) (string, error) {
	switch res.Kind {
	case resource.KindModel, resource.KindDataset:
		return c.HF.Readme(ctx, res)
	case resource.KindCode:
		return c.GH.Readme(ctx, res.ID)
	}
	return "", errors.Errorf("no readme source for kind: %s", res.Kind)
}
