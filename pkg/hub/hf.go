package hub

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/mltrust/mltrust/pkg/net"
	"github.com/mltrust/mltrust/pkg/resource"
)

const hfBaseURLDefault = "https://huggingface.co"

// Client talks to the Hugging Face Hub REST API.
type Client struct {
	BaseURL string
	Token   string
}

// NewClient returns a hub client. The token is optional; gated
// repos simply fail and the owning metric degrades to its neutral
// default.
func NewClient(token string) *Client {
	return &Client{
		BaseURL: hfBaseURLDefault,
		Token:   token,
	}
}

type hfSibling struct {
	Rfilename string `json:"rfilename"`
	Size      int64  `json:"size"`
}

type hfRepoInfo struct {
	ID        string         `json:"id"`
	Downloads int64          `json:"downloads"`
	Likes     int64          `json:"likes"`
	CardData  map[string]any `json:"cardData"`
	Tags      []string       `json:"tags"`
	Siblings  []hfSibling    `json:"siblings"`
}

// Model fetches model repo metadata with per-file sizes.
func (c *Client) Model(ctx context.Context, id string) (*Info, error) {
	return c.repoInfo(ctx, c.BaseURL+"/api/models/"+id+"?blobs=true")
}

// Dataset fetches dataset repo metadata with per-file sizes.
func (c *Client) Dataset(ctx context.Context, id string) (*Info, error) {
	return c.repoInfo(ctx, c.BaseURL+"/api/datasets/"+id+"?blobs=true")
}

func (c *Client) repoInfo(ctx context.Context, url string) (*Info, error) {
	var raw hfRepoInfo
	if err := net.GetJSON(ctx, url, c.Token, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to get repo info: %s", url)
	}

	info := &Info{
		ID:        raw.ID,
		Downloads: raw.Downloads,
		Likes:     raw.Likes,
		Card:      raw.CardData,
		License:   hfLicense(raw),
	}
	for _, s := range raw.Siblings {
		info.Files = append(info.Files, FileEntry{Path: s.Rfilename, Size: s.Size})
	}
	return info, nil
}

// Readme fetches the raw README text for a model or dataset repo.
// Missing README yields an empty string.
func (c *Client) Readme(ctx context.Context, res resource.Resource) (string, error) {
	prefix := ""
	if res.Kind == resource.KindDataset {
		prefix = "datasets/"
	}
	url := c.BaseURL + "/" + prefix + res.ID + "/raw/main/README.md"
	text, err := net.GetText(ctx, url, c.Token)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get readme for: %s", res.ID)
	}
	return text, nil
}

func hfLicense(raw hfRepoInfo) string {
	if raw.CardData != nil {
		switch v := raw.CardData["license"].(type) {
		case string:
			return v
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	for _, tag := range raw.Tags {
		if strings.HasPrefix(tag, "license:") {
			return strings.TrimPrefix(tag, "license:")
		}
	}
	return ""
}
