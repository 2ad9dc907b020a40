package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mltrust/mltrust/pkg/engine"
	"github.com/mltrust/mltrust/pkg/resource"
)

func TestParseLine_SingleModel(t *testing.T) {
	group := parseLine("https://huggingface.co/google-bert/bert-base-uncased")
	require.Len(t, group, 1)
	assert.Equal(t, resource.KindModel, group[0].Kind)
	assert.Equal(t, "google-bert/bert-base-uncased", group[0].ID)
	assert.Equal(t, "bert-base-uncased", group[0].Name)
}

func TestParseLine_Group(t *testing.T) {
	line := "https://github.com/google-research/bert, " +
		"https://huggingface.co/datasets/bookcorpus/bookcorpus, " +
		"https://huggingface.co/google-bert/bert-base-uncased"

	group := parseLine(line)
	require.Len(t, group, 3)
	assert.Equal(t, resource.KindCode, group[0].Kind)
	assert.Equal(t, resource.KindDataset, group[1].Kind)
	assert.Equal(t, resource.KindModel, group[2].Kind, "subject is the last entry")
}

func TestParseLine_EmptySegmentsSkipped(t *testing.T) {
	group := parseLine(",,https://huggingface.co/acme/model,")
	require.Len(t, group, 1)
	assert.Equal(t, "acme/model", group[0].ID)
}

func TestParseLine_UnknownKept(t *testing.T) {
	group := parseLine("ftp://example.com/thing")
	require.Len(t, group, 1)
	assert.Equal(t, resource.KindUnknown, group[0].Kind)
	assert.Equal(t, "thing", group[0].Name)
}

func TestUnknownResource_Naming(t *testing.T) {
	assert.Equal(t, "repo", unknownResource("ftp://host/path/repo").Name)
	assert.Equal(t, "repo", unknownResource("ftp://host/path/repo/").Name)
	assert.Equal(t, "plainstring", unknownResource("plainstring").Name)
}

func TestScoreLines_NDJSON(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"# comment",
		"",
		"https://huggingface.co/acme/bert",
		"https://github.com/pallets/flask",
	}, "\n"))

	var out bytes.Buffer
	d := engine.NewDispatcher(nil, 2, time.Second)
	require.NoError(t, scoreLines(context.Background(), d, in, &out, formatJSON))

	var records []map[string]any
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), "each output line is standalone JSON")
		records = append(records, rec)
	}

	require.Len(t, records, 2, "comments and blanks skipped")
	assert.Equal(t, "bert", records[0]["name"])
	assert.Equal(t, "MODEL", records[0]["category"])
	assert.Equal(t, "flask", records[1]["name"])
	assert.Equal(t, "CODE", records[1]["category"])

	sizes, ok := records[0]["size_score"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, sizes, 4, "every hardware tier present even with no providers")
}

func TestScoreLines_YAML(t *testing.T) {
	in := strings.NewReader("https://huggingface.co/acme/bert\n")

	var out bytes.Buffer
	d := engine.NewDispatcher(nil, 2, time.Second)
	require.NoError(t, scoreLines(context.Background(), d, in, &out, formatYAML))

	assert.Contains(t, out.String(), "name: bert")
	assert.Contains(t, out.String(), "category: MODEL")
}

func TestScoreLines_UnresolvableStillEmitted(t *testing.T) {
	// a URL that classifies but cannot resolve to owner/repo
	in := strings.NewReader(strings.Join([]string{
		"https://github.com/onlyowner",
		"https://huggingface.co/acme/bert",
	}, "\n"))

	var out bytes.Buffer
	d := engine.NewDispatcher(nil, 2, time.Second)
	require.NoError(t, scoreLines(context.Background(), d, in, &out, formatJSON))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "every input line yields a record")

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "UNKNOWN", first["category"])
	assert.Equal(t, 0.0, first["net_score"])
}

func TestScoreLines_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	d := engine.NewDispatcher(nil, 2, time.Second)
	require.NoError(t, scoreLines(context.Background(), d, strings.NewReader(""), &out, formatJSON))
	assert.Empty(t, out.String())
}
