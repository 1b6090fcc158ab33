package colour

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of observations handled by one assignment task.
// Partial sums are produced per chunk and merged in chunk order, so the
// result does not depend on how many workers ran the chunks.
const chunkSize = 4096

// KMeansConfig holds the parameters of a clustering run.
type KMeansConfig struct {
	// MaxIterations caps the number of assign/update rounds.
	MaxIterations int

	// Tolerance is the centroid displacement below which the run has converged.
	Tolerance float64

	// Seed drives k-means++ initialization.
	Seed int64

	// Workers bounds the goroutines used by the assignment step.
	// Zero or less means runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives per-iteration trace output. Nil disables logging.
	Logger hclog.Logger
}

// DefaultKMeansConfig returns the default clustering configuration.
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		MaxIterations: 100,
		Tolerance:     1e-4,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// Validate validates the clustering configuration.
func (c KMeansConfig) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("tolerance must be a positive number, got %g", c.Tolerance)
	}
	return nil
}

// Cluster is one centroid and the number of observations assigned to it.
type Cluster struct {
	// Centroid is the cluster mean clamped to [0,255].
	Centroid Observation
	// RGB is the centroid rounded to channel values.
	RGB   RGB
	Count int
}

// ClusterResult is the outcome of a clustering run.
type ClusterResult struct {
	// Clusters has exactly k entries, in centroid index order.
	Clusters []Cluster

	// Iterations is the number of assign/update rounds performed.
	Iterations int

	// Converged is false when the run stopped at MaxIterations.
	Converged bool
}

// Total returns the sum of all cluster counts.
func (r *ClusterResult) Total() int {
	total := 0
	for _, c := range r.Clusters {
		total += c.Count
	}
	return total
}

// KMeans clusters observations with Lloyd's algorithm.
type KMeans struct {
	cfg    KMeansConfig
	logger hclog.Logger
}

// NewKMeans creates a KMeans engine from cfg.
func NewKMeans(cfg KMeansConfig) (*KMeans, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid k-means configuration: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &KMeans{cfg: cfg, logger: logger.Named("kmeans")}, nil
}

// Cluster partitions obs into k clusters.
//
// Initial centroids are chosen with k-means++ from a generator seeded with
// the configured seed, so identical inputs always produce identical results.
// A centroid left without members is moved to the observation farthest from
// its own centroid.
func (km *KMeans) Cluster(obs []Observation, k int) (*ClusterResult, error) {
	if len(obs) == 0 {
		return nil, ErrEmptyInput
	}
	if k < 1 || k > len(obs) {
		return nil, invalidClusterCount(k, len(obs))
	}

	// #nosec G404 -- deterministic seeding is required for reproducible output
	rng := rand.New(rand.NewSource(km.cfg.Seed))
	centroids := seedPlusPlus(obs, k, rng)

	assignments := make([]int, len(obs))
	dists := make([]float64, len(obs))

	result := &ClusterResult{}
	for result.Iterations < km.cfg.MaxIterations {
		result.Iterations++

		sums, counts, err := km.assign(obs, centroids, assignments, dists)
		if err != nil {
			return nil, &ExtractionError{Iteration: result.Iterations, cause: err}
		}

		next, reseeded := updateCentroids(obs, centroids, sums, counts, dists)

		shift := 0.0
		for i := range centroids {
			if !finite(next[i]) {
				return nil, &ExtractionError{
					Iteration: result.Iterations,
					cause:     fmt.Errorf("centroid %d diverged to %v", i, next[i]),
				}
			}
			shift = max(shift, math.Sqrt(squaredDistance(centroids[i], next[i])))
		}
		centroids = next

		km.logger.Trace("iteration complete",
			"iteration", result.Iterations,
			"max_shift", shift,
			"reseeded", reseeded,
		)

		if shift < km.cfg.Tolerance {
			result.Converged = true
			break
		}
	}

	// Counts are taken against the final centroids so they agree with what is reported.
	_, counts, err := km.assign(obs, centroids, assignments, dists)
	if err != nil {
		return nil, &ExtractionError{Iteration: result.Iterations, cause: err}
	}

	result.Clusters = make([]Cluster, k)
	for i, c := range centroids {
		clamped := clampObservation(c)
		result.Clusters[i] = Cluster{
			Centroid: clamped,
			RGB:      roundRGB(clamped),
			Count:    counts[i],
		}
	}

	km.logger.Debug("clustering finished",
		"observations", len(obs),
		"k", k,
		"iterations", result.Iterations,
		"converged", result.Converged,
	)

	return result, nil
}

// seedPlusPlus picks k initial centroids with k-means++ weighting.
func seedPlusPlus(obs []Observation, k int, rng *rand.Rand) []Observation {
	centroids := make([]Observation, 0, k)
	centroids = append(centroids, obs[rng.Intn(len(obs))])

	minDist := make([]float64, len(obs))
	for i, o := range obs {
		minDist[i] = squaredDistance(o, centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range minDist {
			total += d
		}

		next := -1
		if total > 0 {
			target := rng.Float64() * total
			cumulative := 0.0
			for i, d := range minDist {
				if d == 0 {
					continue
				}
				cumulative += d
				next = i
				if cumulative >= target {
					break
				}
			}
		} else {
			// Every observation coincides with a chosen centroid.
			next = 0
		}

		chosen := obs[next]
		centroids = append(centroids, chosen)
		for i, o := range obs {
			if d := squaredDistance(o, chosen); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return centroids
}

// assign labels every observation with its nearest centroid, records the
// squared distance to it, and returns per-cluster coordinate sums and counts.
func (km *KMeans) assign(obs []Observation, centroids []Observation, assignments []int, dists []float64) ([]Observation, []int, error) {
	k := len(centroids)
	nChunks := (len(obs) + chunkSize - 1) / chunkSize
	partialSums := make([][]Observation, nChunks)
	partialCounts := make([][]int, nChunks)

	run := func(c int) error {
		lo := c * chunkSize
		hi := min(lo+chunkSize, len(obs))
		sums := make([]Observation, k)
		counts := make([]int, k)
		for i := lo; i < hi; i++ {
			o := obs[i]
			if !finite(o) {
				return fmt.Errorf("observation %d is not finite: %v", i, o)
			}
			nearest, d := nearestCentroid(o, centroids)
			assignments[i] = nearest
			dists[i] = d
			sums[nearest][0] += o[0]
			sums[nearest][1] += o[1]
			sums[nearest][2] += o[2]
			counts[nearest]++
		}
		partialSums[c] = sums
		partialCounts[c] = counts
		return nil
	}

	if nChunks == 1 || km.cfg.Workers == 1 {
		for c := range nChunks {
			if err := run(c); err != nil {
				return nil, nil, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(km.cfg.Workers)
		for c := range nChunks {
			g.Go(func() error { return run(c) })
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	sums := make([]Observation, k)
	counts := make([]int, k)
	for c := range nChunks {
		for j := range k {
			sums[j][0] += partialSums[c][j][0]
			sums[j][1] += partialSums[c][j][1]
			sums[j][2] += partialSums[c][j][2]
			counts[j] += partialCounts[c][j]
		}
	}
	return sums, counts, nil
}

// updateCentroids returns the new centroid positions and the number of
// empty clusters that were re-seeded.
func updateCentroids(obs []Observation, centroids []Observation, sums []Observation, counts []int, dists []float64) ([]Observation, int) {
	next := make([]Observation, len(centroids))
	var used map[int]bool
	reseeded := 0

	for i := range centroids {
		if counts[i] > 0 {
			n := float64(counts[i])
			next[i] = Observation{sums[i][0] / n, sums[i][1] / n, sums[i][2] / n}
			continue
		}

		if used == nil {
			used = make(map[int]bool)
		}
		far := farthestObservation(dists, used)
		used[far] = true
		next[i] = obs[far]
		reseeded++
	}

	return next, reseeded
}

// farthestObservation returns the lowest index with the largest distance
// to its assigned centroid, skipping indices already used.
func farthestObservation(dists []float64, used map[int]bool) int {
	best := -1
	bestDist := -1.0
	for i, d := range dists {
		if used[i] {
			continue
		}
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// nearestCentroid returns the index of the closest centroid and the squared
// distance to it. Ties go to the lowest index.
func nearestCentroid(o Observation, centroids []Observation) (int, float64) {
	nearest := 0
	minDist := math.Inf(1)
	for i, c := range centroids {
		if d := squaredDistance(o, c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest, minDist
}

func squaredDistance(a, b Observation) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}

func finite(o Observation) bool {
	for _, v := range o {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampObservation(o Observation) Observation {
	for i, v := range o {
		o[i] = math.Max(0, math.Min(255, v))
	}
	return o
}

func roundRGB(o Observation) RGB {
	return RGB{
		R: uint8(math.Round(o[0])),
		G: uint8(math.Round(o[1])),
		B: uint8(math.Round(o[2])),
	}
}
