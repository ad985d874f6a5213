package prestashop

import (
	"context"
	"fmt"
	"time"

	"tiendabot/internal/logger"
	"tiendabot/internal/models"

	"golang.org/x/time/rate"
)

// ProgressInfo is the optional detail attached to a progress report.
type ProgressInfo struct {
	ProductsObtained int    `json:"products_obtained"`
	ProductsTotal    int    `json:"products_total"`
	CurrentProduct   string `json:"current_product,omitempty"`
}

// ProgressFunc receives progress reports synchronously from the scan loop.
// Percent is non-decreasing within one scan.
type ProgressFunc func(percent int, info *ProgressInfo)

// ScanOptions tune one scan run.
type ScanOptions struct {
	// PageSize is the initial page size. Small on purpose: large pages are
	// what trip the upstream's payload limits in the first place.
	PageSize int
	// PageDelay paces successive page fetches so the upstream is not
	// hammered. Zero disables pacing.
	PageDelay time.Duration
	Policy    RetryPolicy
}

func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		PageSize:  10,
		PageDelay: 500 * time.Millisecond,
		Policy:    DefaultRetryPolicy(),
	}
}

// Scanner drives the webservice page by page, normalizing each product and
// enriching it with its combinations. Pages are fetched strictly one at a
// time, and combinations within a page strictly in list order: the upstream
// rate limit is respected by not being concurrent at all.
type Scanner struct {
	client     *Client
	normalizer *Normalizer
	opts       ScanOptions
	limiter    *rate.Limiter
	logger     *logger.Logger
}

func NewScanner(client *Client, normalizer *Normalizer, opts ScanOptions, logger *logger.Logger) *Scanner {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Policy.MaxConsecutiveFailures <= 0 {
		opts.Policy = DefaultRetryPolicy()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.PageDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PageDelay), 1)
	}

	return &Scanner{
		client:     client,
		normalizer: normalizer,
		opts:       opts,
		limiter:    limiter,
		logger:     logger,
	}
}

// Scan retrieves and normalizes the whole catalog. It returns the full
// product list or the terminal error that aborted the scan; there are no
// partial-success results.
func (s *Scanner) Scan(ctx context.Context, progress ProgressFunc) ([]ScannedProduct, error) {
	lastPercent := 0
	report := func(percent int, info *ProgressInfo) {
		if progress == nil {
			return
		}
		if percent < lastPercent {
			percent = lastPercent
		}
		lastPercent = percent
		progress(percent, info)
	}

	report(10, nil)

	var (
		products  []ScannedProduct
		seen      = map[int64]bool{}
		offset    = 0
		pageSize  = s.opts.PageSize
		failures  = 0
		estimated = 0
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raws, err := s.client.GetProducts(ctx, offset, pageSize)
		if err != nil {
			if !Retryable(err) {
				return nil, err
			}
			failures++
			if s.opts.Policy.Exhausted(failures) {
				return nil, fmt.Errorf("scan aborted after %d consecutive failures: %w", failures, err)
			}
			if shrunk := s.opts.Policy.Shrink(pageSize); shrunk != pageSize {
				s.logger.Warn("page fetch failed at offset %d, shrinking page size %d -> %d", offset, pageSize, shrunk)
				pageSize = shrunk
			}
			time.Sleep(s.opts.Policy.Backoff(failures))
			continue
		}
		failures = 0

		currentName := ""
		for _, raw := range raws {
			p := s.normalizer.Normalize(raw)
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			p.Combinations = s.fetchCombinations(ctx, p)
			products = append(products, p)
			currentName = p.Name
		}

		obtained := len(products)

		if len(raws) < pageSize {
			// Short page: the catalog is exhausted.
			report(50, &ProgressInfo{ProductsObtained: obtained, ProductsTotal: obtained})
			s.logger.Info("scan complete: %d products", obtained)
			return products, nil
		}

		// A full page means at least one more page exists; revise the
		// estimate upward so the interpolation never overshoots.
		estimated = obtained + pageSize
		percent := 10 + int(float64(obtained)/float64(estimated)*40)
		report(percent, &ProgressInfo{
			ProductsObtained: obtained,
			ProductsTotal:    estimated,
			CurrentProduct:   currentName,
		})

		offset += pageSize
	}
}

// fetchCombinations enriches one product with its variants. Combinations
// are enrichment, not required data: any failure degrades to an empty list
// and never aborts the scan.
func (s *Scanner) fetchCombinations(ctx context.Context, p ScannedProduct) []models.Combination {
	raws, err := s.client.GetCombinations(ctx, p.ID)
	if err != nil {
		s.logger.Warn("combinations fetch failed for product %d: %v", p.ID, err)
		return []models.Combination{}
	}

	combos := make([]models.Combination, 0, len(raws))
	for _, raw := range raws {
		combos = append(combos, s.normalizer.NormalizeCombination(raw, p.Price))
	}
	return combos
}
