package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mltrust/mltrust/pkg/config"
	"github.com/mltrust/mltrust/pkg/engine"
	"github.com/mltrust/mltrust/pkg/hub"
	"github.com/mltrust/mltrust/pkg/metric"
	"github.com/mltrust/mltrust/pkg/resource"
)

var scoreCmd = &urfave.Command{
	Name:            "score",
	HideHelpCommand: true,
	Usage:           "Score every resource in a newline-delimited URL file",
	ArgsUsage:       "URL_FILE",
	Action:          cmdScore,
}

func cmdScore(c *urfave.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one URL file argument, got %d", c.NArg())
	}

	cfg := getConfig(c)
	if cfg.Conf.GitHubToken == "" {
		slog.Warn("no GitHub token configured, API access will be rate limited; run 'mltrust auth' or set GITHUB_TOKEN")
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("opening URL file: %w", err)
	}
	defer f.Close()

	d := engine.NewDispatcher(
		buildProviders(c.Context, cfg.Conf),
		cfg.Conf.Workers,
		cfg.Conf.MetricTimeout,
	)

	return scoreLines(c.Context, d, f, os.Stdout, cfg.Format)
}

// scoreLines evaluates each URL line and streams one record per
// line to out. Blank lines and # comments are skipped; a line that
// cannot be classified still produces a complete zeroed record.
func scoreLines(ctx context.Context, d *engine.Dispatcher, in io.Reader, out io.Writer, format string) error {
	enc := newEncoder(out, format)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		group := parseLine(line)
		if len(group) == 0 {
			continue
		}

		rec := d.Score(ctx, group)
		if err := enc(rec); err != nil {
			return fmt.Errorf("encoding record for %q: %w", line, err)
		}
	}
	return scanner.Err()
}

// parseLine splits a comma-separated URL group into resources. The
// last entry is the line's subject. Entries that cannot be resolved
// stay in the group as unknowns so the record surface is preserved.
func parseLine(line string) []resource.Resource {
	var group []resource.Resource
	for _, raw := range strings.Split(line, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		kind := resource.Classify(raw)
		if kind == resource.KindUnknown {
			slog.Warn("unrecognized URL, scoring as unknown", "url", raw)
			group = append(group, unknownResource(raw))
			continue
		}

		res, err := resource.Parse(raw, kind)
		if err != nil {
			slog.Warn("unresolvable URL, scoring as unknown", "url", raw, "error", err)
			group = append(group, unknownResource(raw))
			continue
		}
		group = append(group, res)
	}
	return group
}

func unknownResource(raw string) resource.Resource {
	name := raw
	if i := strings.LastIndex(strings.TrimRight(raw, "/"), "/"); i >= 0 {
		name = strings.TrimRight(raw, "/")[i+1:]
	}
	return resource.Resource{URL: raw, ID: raw, Name: name, Kind: resource.KindUnknown}
}

func buildProviders(ctx context.Context, conf *config.Context) []metric.Provider {
	catalog := hub.NewCatalog(
		hub.NewClient(conf.HFToken),
		hub.NewGitHub(ctx, conf.GitHubToken),
	)

	var judge metric.Judge
	if conf.Judge.Enabled() {
		judge = metric.NewGenAIJudge(
			conf.Judge.APIKey,
			conf.Judge.BaseURL+conf.Judge.Path,
			conf.Judge.Model,
		)
	}

	return []metric.Provider{
		metric.NewSizeFit(catalog),
		metric.NewLicenseCompat(catalog),
		metric.NewRampUp(catalog, judge),
		metric.NewBusFactor(catalog, conf.CloneDepth, conf.SinceDays),
		metric.NewDatasetQuality(catalog),
		metric.NewCodeQuality(conf.CloneDepth),
		metric.NewPerfClaims(catalog),
		metric.NewDatasetCodeLinkage(catalog),
	}
}

// newEncoder returns a per-record encoder: compact JSON lines by
// default, YAML documents when requested.
func newEncoder(out io.Writer, format string) func(any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(out)
		return func(v any) error {
			return enc.Encode(v)
		}
	}
	enc := json.NewEncoder(out)
	return enc.Encode
}
