package resource

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the classified type of a scored resource.
type Kind string

const (
	KindModel   Kind = "model"
	KindDataset Kind = "dataset"
	KindCode    Kind = "code"
	KindUnknown Kind = "unknown"
)

// ErrUnresolvable indicates the resource cannot be mapped to a
// canonical identifier or clonable location. Callers substitute
// their neutral default instead of failing the run.
var ErrUnresolvable = errors.New("resource not resolvable")

// Resource is an immutable, classified scoring target.
type Resource struct {
	URL  string
	ID   string
	Name string
	Kind Kind
}

// Category returns the upper-case kind used in the output record.
func (r Resource) Category() string {
	return strings.ToUpper(string(r.Kind))
}

func (r Resource) String() string {
	return fmt.Sprintf("%s (%s)", r.ID, r.Kind)
}

var codeHosts = []string{
	"github.com", "gitlab.com", "bitbucket.org", "sourceforge.net",
	"codeberg.org", "gitee.com", "dev.azure.com", "azure.microsoft.com",
	"visualstudio.com",
}

var datasetHosts = []string{
	"huggingface.co", "kaggle.com", "zenodo.org", "figshare.com",
	"osf.io", "openml.org", "archive.ics.uci.edu", "data.mendeley.com",
	"dataverse.org", "doi.org", "data.gov", "data.gov.uk",
}

var storageHosts = []string{
	"s3.amazonaws.com",
	"storage.googleapis.com",
	"blob.core.windows.net",
	"drive.google.com",
	"dropbox.com", "dl.dropboxusercontent.com",
	"onedrive.live.com", "1drv.ms",
}

var modelHosts = []string{
	"tfhub.dev",
	"modelscope.cn",
}

var dataExts = []string{
	".zip", ".tar", ".tar.gz", ".tgz", ".7z",
	".csv", ".tsv", ".jsonl", ".json", ".parquet", ".feather",
	".xlsx", ".xls", ".npz", ".npy", ".h5", ".hdf5", ".mat",
	".wav", ".flac", ".mp3", ".jpg", ".jpeg", ".png", ".tiff",
}

var codeExts = []string{
	".py", ".ipynb", ".c", ".cpp", ".h", ".hpp", ".java", ".js", ".ts",
	".m", ".go", ".rb", ".rs", ".php", ".scala", ".kt", ".sh",
}

var datasetPathHints = []string{
	"/dataset", "/datasets", "/data/", "/download", "/files", "/record", "/records",
}

func hostMatches(host string, candidates []string) bool {
	for _, c := range candidates {
		if host == c || strings.HasSuffix(host, "."+c) {
			return true
		}
	}
	return false
}

func endsWithAny(s string, suffixes []string) bool {
	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx) {
			return true
		}
	}
	return false
}

// Classify maps a raw URL to a resource kind using host and
// extension heuristics, in fixed priority order: code hosts, the
// Hugging Face path layout, model hosts, dataset hosts, storage
// hosts and data-like extensions, code-like extensions, dataset
// path keywords, then a dataset fallback.
func Classify(rawURL string) Kind {
	if rawURL == "" {
		return KindUnknown
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return KindUnknown
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return KindUnknown
	}

	host := strings.ToLower(u.Host)
	path := strings.ToLower(u.Path)

	if hostMatches(host, codeHosts) {
		return KindCode
	}

	if host == "huggingface.co" || strings.HasSuffix(host, ".huggingface.co") {
		if strings.HasPrefix(path, "/datasets") {
			return KindDataset
		}
		// Spaces are apps, not models
		if strings.HasPrefix(path, "/spaces") {
			return KindDataset
		}
		return KindModel
	}

	if hostMatches(host, modelHosts) {
		return KindModel
	}

	if hostMatches(host, datasetHosts) {
		return KindDataset
	}

	if hostMatches(host, storageHosts) {
		return KindDataset
	}
	if endsWithAny(path, dataExts) {
		return KindDataset
	}

	if endsWithAny(path, codeExts) {
		return KindCode
	}

	for _, hint := range datasetPathHints {
		if strings.Contains(path, hint) {
			return KindDataset
		}
	}

	return KindDataset
}

// Parse resolves a raw URL of a known kind into a Resource with a
// canonical identifier (owner/repo for GitHub, namespace/name for
// the Hugging Face hub).
func Parse(rawURL string, kind Kind) (Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Resource{}, errors.Wrapf(ErrUnresolvable, "parsing %q", rawURL)
	}

	host := strings.ToLower(u.Host)
	parts := splitPath(u.Path)

	res := Resource{URL: rawURL, Kind: kind}

	switch {
	case strings.Contains(host, "github.com"):
		if len(parts) < 2 {
			return Resource{}, errors.Wrapf(ErrUnresolvable, "GitHub URL must be /owner/repo: %q", rawURL)
		}
		res.ID = parts[0] + "/" + parts[1]
		res.Name = parts[1]

	case strings.Contains(host, "huggingface.co"):
		if len(parts) > 0 && strings.EqualFold(parts[0], "datasets") {
			if len(parts) < 3 {
				return Resource{}, errors.Wrapf(ErrUnresolvable, "HF dataset URL must be /datasets/<ns>/<name>: %q", rawURL)
			}
			res.ID = parts[1] + "/" + parts[2]
			res.Name = parts[2]
		} else {
			if len(parts) < 2 {
				return Resource{}, errors.Wrapf(ErrUnresolvable, "HF URL must be /<ns>/<name>: %q", rawURL)
			}
			res.ID = parts[0] + "/" + parts[1]
			res.Name = parts[1]
		}

	default:
		if len(parts) == 0 {
			return Resource{}, errors.Wrapf(ErrUnresolvable, "no path in %q", rawURL)
		}
		res.ID = strings.Join(parts, "/")
		res.Name = parts[len(parts)-1]
	}

	return res, nil
}

// CloneTarget returns a normalized clonable URL for the resource:
// a .git URL for GitHub, the repo root (no /tree/main suffix) for
// the Hugging Face hub.
func CloneTarget(res Resource) (string, error) {
	u, err := url.Parse(res.URL)
	if err != nil {
		return "", errors.Wrapf(ErrUnresolvable, "parsing %q", res.URL)
	}

	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "github.com"):
		return "https://github.com/" + res.ID + ".git", nil
	case strings.Contains(host, "huggingface.co"):
		if res.Kind == KindDataset {
			return "https://huggingface.co/datasets/" + res.ID, nil
		}
		return "https://huggingface.co/" + res.ID, nil
	}

	// unknown host: pass through, plain git may still handle it
	return res.URL, nil
}

// NormalizeGitHubClone converts any GitHub URL into its canonical
// .git clone form.
func NormalizeGitHubClone(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(ErrUnresolvable, "parsing %q", rawURL)
	}
	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return "", errors.Wrapf(ErrUnresolvable, "GitHub URL must be /owner/repo: %q", rawURL)
	}
	repo := strings.TrimSuffix(parts[1], ".git")
	return "https://github.com/" + parts[0] + "/" + repo + ".git", nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
