// Package classify tags contribution events with the categories that apply.
//
// Rules are evaluated independently: an event may receive zero, one, or
// multiple tags. Zero tags means the event is excluded from aggregation.
package classify

import (
	"strings"

	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/pkg/metrics"
)

// defaultMinFeatureSize guards against drive-by typo fixes inflating the
// feature count.
const defaultMinFeatureSize = 25

// defaultInfraPrefixes is the documented default infra/tooling path set.
var defaultInfraPrefixes = []string{
	".github/",
	"ci/",
	"build/",
	"docker/",
	"helm/",
	"infra/",
	"infrastructure/",
	"kubernetes/",
	"scripts/",
	"terraform/",
	"tools/",
}

// defaultInfraLabels marks pull requests as infra work by label even when the
// touched paths live outside the designated directories.
var defaultInfraLabels = []string{
	"infra",
	"infrastructure",
	"ci",
	"build",
	"tooling",
}

// defaultInfraTitleKeywords catch infra work the paths and labels miss, e.g.
// a refactor that only touches product directories.
var defaultInfraTitleKeywords = []string{
	"infra",
	"refactor",
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithInfraPathPrefixes sets the designated infra/tooling path prefix set.
func WithInfraPathPrefixes(prefixes []string) Option {
	return func(c *Classifier) {
		if len(prefixes) == 0 {
			return
		}
		c.infraPrefixes = make([]string, 0, len(prefixes))
		for _, p := range prefixes {
			p = normalizePath(p)
			if p != "" {
				c.infraPrefixes = append(c.infraPrefixes, p)
			}
		}
	}
}

// WithInfraLabels sets the label set that marks a pull request as infra work.
func WithInfraLabels(labels []string) Option {
	return func(c *Classifier) {
		if len(labels) == 0 {
			return
		}
		c.infraLabels = make(map[string]bool, len(labels))
		for _, l := range labels {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				c.infraLabels[l] = true
			}
		}
	}
}

// WithInfraTitleKeywords sets the title keywords that mark a pull request as
// infra work.
func WithInfraTitleKeywords(keywords []string) Option {
	return func(c *Classifier) {
		if len(keywords) == 0 {
			return
		}
		c.infraTitleKeywords = make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				c.infraTitleKeywords = append(c.infraTitleKeywords, kw)
			}
		}
	}
}

// WithMinFeatureSize sets the minimum non-trivial size for the feature tag.
func WithMinFeatureSize(size int) Option {
	return func(c *Classifier) {
		if size >= 0 {
			c.minFeatureSize = size
		}
	}
}

// Classifier applies the rule-based category heuristics.
type Classifier struct {
	infraPrefixes      []string
	infraLabels        map[string]bool
	infraTitleKeywords []string
	minFeatureSize     int
}

// New creates a Classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		infraPrefixes:      defaultInfraPrefixes,
		infraLabels:        make(map[string]bool, len(defaultInfraLabels)),
		infraTitleKeywords: defaultInfraTitleKeywords,
		minFeatureSize:     defaultMinFeatureSize,
	}
	for _, l := range defaultInfraLabels {
		c.infraLabels[l] = true
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify returns the set of category tags that apply to one event.
// Classification of one event never depends on another event.
func (c *Classifier) Classify(e model.ContributionEvent) model.CategorySet {
	tags := make(model.CategorySet)

	switch e.Type {
	case model.EventTypePullRequest:
		// Unmerged or closed-without-merge pull requests represent no
		// delivered impact and are excluded entirely.
		if !e.Merged {
			break
		}

		touchesInfra, exclusivelyInfra := c.inspectPaths(e.Paths)
		if touchesInfra || c.hasInfraLabel(e.Labels) || c.titleMentionsInfra(e.TitleText) {
			tags.Add(model.CategoryInfra)
		}
		// Only the path evidence can suppress the feature tag: a label or a
		// title keyword says what the work is about, not that it stayed out
		// of the product tree.
		if !exclusivelyInfra && e.SizeMetric >= c.minFeatureSize {
			tags.Add(model.CategoryFeature)
		}

	case model.EventTypeReview:
		// Self-reviews do not represent cross-engineer collaboration.
		if e.TargetAuthorID != "" && e.TargetAuthorID == e.EngineerID {
			break
		}
		// A review with neither a body nor an explicit verdict is noise and
		// is dropped rather than zero-weighted, to keep subscores
		// interpretable.
		if e.HasBody || e.Verdict.Explicit() {
			tags.Add(model.CategoryReview)
		}
	}

	for _, cat := range model.Categories() {
		if tags.Has(cat) {
			metrics.RecordEventTagged(string(cat))
		}
	}
	if tags.Empty() {
		metrics.RecordEventDiscarded()
	}

	return tags
}

// inspectPaths reports whether any touched path falls under an infra prefix,
// and whether all of them do. A pull request with no recorded paths is never
// "exclusively infra": acquisition may truncate path lists, and punishing the
// author for that would be wrong.
func (c *Classifier) inspectPaths(paths []string) (touches, exclusively bool) {
	if len(paths) == 0 {
		return false, false
	}
	exclusively = true
	for _, p := range paths {
		if c.isInfraPath(p) {
			touches = true
		} else {
			exclusively = false
		}
	}
	return touches, touches && exclusively
}

func (c *Classifier) hasInfraLabel(labels []string) bool {
	for _, l := range labels {
		if c.infraLabels[strings.ToLower(strings.TrimSpace(l))] {
			return true
		}
	}
	return false
}

func (c *Classifier) titleMentionsInfra(title string) bool {
	title = strings.ToLower(title)
	for _, kw := range c.infraTitleKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func (c *Classifier) isInfraPath(path string) bool {
	path = normalizePath(path)
	for _, prefix := range c.infraPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// normalizePath lowercases and strips a leading slash so prefix matching is
// stable regardless of how the acquisition side formats paths.
func normalizePath(p string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(p)), "/")
}
