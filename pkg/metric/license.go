package metric

import (
	"context"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/resource"
)

// Licenses compatible with downstream LGPL-2.1 use.
var compatibleLicenses = map[string]bool{
	"apache-2.0":   true,
	"mit":          true,
	"bsd-2-clause": true,
	"bsd-3-clause": true,
	"lgpl-2.1":     true,
}

// LicenseCompat scores 1 when the declared license is compatible
// with LGPL-2.1, else 0.
type LicenseCompat struct {
	source Source
}

func NewLicenseCompat(source Source) *LicenseCompat {
	return &LicenseCompat{source: source}
}

func (m *LicenseCompat) Name() Name { return License }

func (m *LicenseCompat) Applies(kind resource.Kind) bool {
	return kind == resource.KindModel || kind == resource.KindCode
}

func (m *LicenseCompat) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	info, err := m.source.Info(ctx, res)
	if err != nil {
		return fail(License, start, err)
	}

	if isCompatible(info.License) {
		return succeed(License, 1.0, start)
	}
	return succeed(License, 0.0, start)
}

// isCompatible normalizes common spellings before matching the
// compatible set. Unknown or missing licenses are incompatible.
func isCompatible(license string) bool {
	if license == "" {
		return false
	}

	normalized := strings.ToLower(strings.TrimSpace(license))

	switch {
	case strings.HasPrefix(normalized, "apache"):
		normalized = "apache-2.0"
	case strings.HasPrefix(normalized, "mit"):
		normalized = "mit"
	case strings.HasPrefix(normalized, "bsd 2-clause"):
		normalized = "bsd-2-clause"
	case strings.HasPrefix(normalized, "bsd 3-clause"):
		normalized = "bsd-3-clause"
	case strings.HasPrefix(normalized, "lgpl v2.1"):
		normalized = "lgpl-2.1"
	}

	return compatibleLicenses[normalized]
}
