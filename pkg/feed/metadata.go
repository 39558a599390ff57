package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
)

// Defaults used when neither the source configuration nor its upstream feed
// declares a value.
const (
	DefaultTimestampPath = "dcterms:modified"
	DefaultVersionOfPath = "dcterms:isVersionOf"
	DefaultMemberType    = "skos:Concept"
)

// SourceTypeLDES marks sources that originate from an upstream event stream
// whose declared property paths should be mirrored in republication.
const SourceTypeLDES = "LDES"

const maxFeedDescriptionSize = 8 * 1024 * 1024

// FeedMetadata is the fully-resolved auxiliary metadata for one fragment.
type FeedMetadata struct {
	MemberTypes   []string
	TimestampPath string
	VersionOfPath string
}

// Resolver resolves feed metadata with a three-tier fallback: explicit source
// configuration, then the source's own published feed description, then
// hard-coded defaults. Failures at any tier are recovered locally and never
// surfaced as publication failures.
type Resolver struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewResolver creates a Resolver with a short-timeout HTTP client.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

var (
	timestampPathDecl = regexp.MustCompile(`ldes:timestampPath\s+(<[^>]+>|[A-Za-z][\w.-]*:[\w.-]+)`)
	versionOfPathDecl = regexp.MustCompile(`ldes:versionOfPath\s+(<[^>]+>|[A-Za-z][\w.-]*:[\w.-]+)`)
)

// Resolve returns the metadata for publishing the given source. It does not
// fail: malformed configuration is reported and skipped, and an unreachable
// or unparsable upstream feed silently falls through to defaults.
func (r *Resolver) Resolve(ctx context.Context, src db.Source) FeedMetadata {
	cfg, err := ParseSourceConfig(src.ID, src.TranslationConfig)
	if err != nil {
		r.Logger.Warn("ignoring malformed source configuration",
			slog.Int64("source", src.ID),
			slog.String("error", err.Error()))
		cfg = SourceConfig{}
	}

	var fetchedTS, fetchedVO string
	needFetch := src.SourceType == SourceTypeLDES && src.SourcePath != "" &&
		(cfg.TimestampPath == "" || cfg.VersionOfPath == "")
	if needFetch {
		fetchedTS, fetchedVO, err = r.fetchDeclaredPaths(ctx, src.SourcePath)
		if err != nil {
			r.Logger.Warn("could not read upstream feed description, using defaults",
				slog.Int64("source", src.ID),
				slog.String("path", src.SourcePath),
				slog.String("error", err.Error()))
		}
	}

	meta := FeedMetadata{
		MemberTypes:   cfg.MemberTypes,
		TimestampPath: firstNonEmpty(cfg.TimestampPath, fetchedTS, DefaultTimestampPath),
		VersionOfPath: firstNonEmpty(cfg.VersionOfPath, fetchedVO, DefaultVersionOfPath),
	}
	if len(meta.MemberTypes) == 0 {
		meta.MemberTypes = []string{DefaultMemberType}
	}
	return meta
}

// fetchDeclaredPaths fetches the source's published feed description once and
// extracts the two declared property paths from it.
func (r *Resolver) fetchDeclaredPaths(ctx context.Context, feedURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "text/turtle")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("feed description returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedDescriptionSize))
	if err != nil {
		return "", "", err
	}

	var ts, vo string
	if m := timestampPathDecl.FindSubmatch(body); m != nil {
		ts = string(m[1])
	}
	if m := versionOfPathDecl.FindSubmatch(body); m != nil {
		vo = string(m[1])
	}
	if ts == "" && vo == "" {
		return "", "", fmt.Errorf("feed description declares no property paths")
	}
	return ts, vo, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
