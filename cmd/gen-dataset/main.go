// Command gen-dataset emits a synthetic contribution dataset for local
// exercising of the scoring pipeline.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// Default generation constants.
const (
	defaultEngineers  = 12
	defaultPRs        = 200
	defaultReviews    = 400
	defaultWindowDays = 90

	maxLinesChanged = 1500
	mergeChance     = 0.8
	verdictChance   = 0.6
	bodyChance      = 0.7
	infraChance     = 0.2
)

var featurePaths = []string{
	"internal/service/handler.go",
	"internal/domain/order.go",
	"pkg/client/client.go",
	"web/src/app.ts",
	"api/v1/routes.go",
}

var infraPaths = []string{
	".github/workflows/ci.yml",
	"terraform/main.tf",
	"scripts/release.sh",
	"docker/Dockerfile",
	"helm/values.yaml",
}

func main() {
	var (
		engineers  = flag.Int("engineers", defaultEngineers, "Number of distinct engineers")
		prs        = flag.Int("prs", defaultPRs, "Number of pull requests to generate")
		reviews    = flag.Int("reviews", defaultReviews, "Number of reviews to generate")
		windowDays = flag.Int("window-days", defaultWindowDays, "Analysis window length in days")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "RNG seed for reproducible datasets")
		outputFile = flag.String("output", "", "Output file (default: stdout)")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	ds := generate(rng, *engineers, *prs, *reviews, *windowDays)

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			os.Stderr.WriteString("failed to create output file: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		os.Stderr.WriteString("failed to encode dataset: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func generate(rng *rand.Rand, engineers, prs, reviews, windowDays int) model.Dataset {
	end := time.Now().UTC().Truncate(time.Hour)
	start := end.AddDate(0, 0, -windowDays)

	ids := make([]string, engineers)
	for i := range ids {
		ids[i] = fmt.Sprintf("eng-%02d", i+1)
	}

	ds := model.Dataset{
		WindowStart: start,
		WindowEnd:   end,
	}

	for i := 0; i < prs; i++ {
		created := randomTime(rng, start, end)
		pr := model.RawPullRequest{
			ID:           uuid.NewString(),
			AuthorID:     ids[rng.Intn(len(ids))],
			CreatedAt:    created,
			LinesChanged: 1 + rng.Intn(maxLinesChanged),
			Title:        fmt.Sprintf("change %d", i+1),
			PathsTouched: randomPaths(rng),
		}
		if rng.Float64() < mergeChance {
			merged := created.Add(time.Duration(1+rng.Intn(72)) * time.Hour)
			if merged.After(end) {
				merged = end
			}
			pr.MergedAt = &merged
		}
		ds.PullRequests = append(ds.PullRequests, pr)
	}

	for i := 0; i < reviews; i++ {
		target := ds.PullRequests[rng.Intn(len(ds.PullRequests))]
		rv := model.RawReview{
			ID:            uuid.NewString(),
			ReviewerID:    ids[rng.Intn(len(ids))],
			PullRequestID: target.ID,
			SubmittedAt:   target.CreatedAt.Add(time.Duration(1+rng.Intn(96)) * time.Hour),
		}
		if rng.Float64() < verdictChance {
			if rng.Float64() < 0.5 {
				rv.Verdict = model.VerdictApprove
			} else {
				rv.Verdict = model.VerdictChangesRequested
			}
		}
		if rng.Float64() < bodyChance {
			rv.Body = fmt.Sprintf("review notes %d", i+1)
		}
		ds.Reviews = append(ds.Reviews, rv)
	}

	return ds
}

func randomTime(rng *rand.Rand, start, end time.Time) time.Time {
	span := end.Sub(start)
	return start.Add(time.Duration(rng.Int63n(int64(span))))
}

func randomPaths(rng *rand.Rand) []string {
	n := 1 + rng.Intn(4)
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if rng.Float64() < infraChance {
			paths = append(paths, infraPaths[rng.Intn(len(infraPaths))])
		} else {
			paths = append(paths, featurePaths[rng.Intn(len(featurePaths))])
		}
	}
	return paths
}
