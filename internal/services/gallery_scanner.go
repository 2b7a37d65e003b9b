package services

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"time"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/metrics"
	"nft-backend/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxConsecutiveFailures = 100
	DefaultMaxAttempts            = 1000
)

// MetadataResolver reads the metadata document behind a content reference
type MetadataResolver interface {
	ResolveMetadata(ctx context.Context, contentRef string) (*models.MetadataRecord, error)
}

// HistorySource transfer history of one record, oldest first
type HistorySource interface {
	Fetch(ctx context.Context, recordID *big.Int) []models.TransferEvent
}

// RecordIDSource identifiers known outside the ledger, e.g. from recorded mappings.
// Needed for UUID-space ids, which neither counting nor probing from 1 can discover.
type RecordIDSource interface {
	RecordIDs(ctx context.Context) ([]*big.Int, error)
}

// GalleryOptions scan bounds
type GalleryOptions struct {
	MaxConsecutiveFailures uint64
	MaxAttempts            uint64
	FastPathConcurrency    int
	StartID                uint64
}

// GalleryScanner rebuilds the list of minted records
type GalleryScanner struct {
	resolver interfaces.LedgerResolver
	metadata MetadataResolver
	history  HistorySource
	mappings MappingRecorder // optional content ref fallback
	knownIDs RecordIDSource  // optional
	opts     GalleryOptions
}

func NewGalleryScanner(resolver interfaces.LedgerResolver, metadata MetadataResolver, history HistorySource, opts GalleryOptions) *GalleryScanner {
	if opts.MaxConsecutiveFailures == 0 {
		opts.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.FastPathConcurrency <= 0 {
		opts.FastPathConcurrency = 8
	}
	if opts.StartID == 0 {
		opts.StartID = 1
	}
	return &GalleryScanner{resolver: resolver, metadata: metadata, history: history, opts: opts}
}

// WithMappings uses recorded mappings for content refs the ledger does not return
func (s *GalleryScanner) WithMappings(recorder MappingRecorder) *GalleryScanner {
	s.mappings = recorder
	return s
}

// WithKnownIDs also fetches ids from source that the scan did not reach
func (s *GalleryScanner) WithKnownIDs(source RecordIDSource) *GalleryScanner {
	s.knownIDs = source
	return s
}

// Scan records in identifier order
func (s *GalleryScanner) Scan(ctx context.Context) ([]models.TokenRecord, error) {
	report, err := s.ScanWithReport(ctx)
	if report == nil {
		return nil, err
	}
	return report.Records, err
}

// ScanWithReport picks the ledger variant once and runs the matching path.
// On cancellation the records found so far are returned with ctx.Err().
func (s *GalleryScanner) ScanWithReport(ctx context.Context) (*models.GalleryReport, error) {
	start := time.Now()
	reader, err := s.resolver.ResolveReader(ctx)
	if err != nil {
		return nil, err
	}

	var report *models.GalleryReport
	if countable, ok := reader.(interfaces.CountableLedger); ok {
		count, countErr := countable.TotalSupply(ctx)
		switch {
		case countErr != nil:
			logrus.Warnf("⚠️ [Gallery] totalSupply failed, probing instead: %v", countErr)
			report, err = s.scanProbe(ctx, reader)
		case !count.IsUint64() || count.Uint64() > s.opts.MaxAttempts:
			logrus.Warnf("⚠️ [Gallery] totalSupply %s exceeds the %d attempt limit, probing instead", count, s.opts.MaxAttempts)
			report, err = s.scanProbe(ctx, reader)
		default:
			report, err = s.scanFast(ctx, countable, count)
		}
	} else {
		report, err = s.scanProbe(ctx, reader)
	}
	if err == nil && s.knownIDs != nil {
		err = s.addKnown(ctx, reader, report)
	}

	report.Duration = time.Since(start)
	metrics.GalleryScansTotal.WithLabelValues(string(report.Path)).Inc()
	metrics.GalleryRecordsFound.Set(float64(len(report.Records)))
	logrus.WithFields(logrus.Fields{
		"component": "GalleryScanner",
		"path":      report.Path,
		"attempts":  report.State.TotalAttempts,
		"skipped":   len(report.Skipped),
	}).Infof("🖼️ [Gallery] Scan found %d records in %v", len(report.Records), report.Duration)
	return report, err
}

// scanFast fetches ids 1..count in parallel; failed fetches are skipped.
// Callers keep count within MaxAttempts.
func (s *GalleryScanner) scanFast(ctx context.Context, reader interfaces.CountableLedger, count *big.Int) (*models.GalleryReport, error) {
	report := &models.GalleryReport{Path: models.ScanPathFast, Count: new(big.Int).Set(count), Records: []models.TokenRecord{}}
	if count.Sign() <= 0 {
		return report, nil
	}
	n := count.Uint64()

	results := make([]*models.TokenRecord, n)
	failures := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FastPathConcurrency)
	for i := uint64(0); i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id := new(big.Int).SetUint64(i + 1)
			record, err := s.FetchSingle(gctx, reader, id)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = record
			return nil
		})
	}
	err := g.Wait()

	report.State = models.ScanState{Cursor: n + 1, TotalAttempts: n}
	for i := uint64(0); i < n; i++ {
		switch {
		case results[i] != nil:
			report.Records = append(report.Records, *results[i])
		case failures[i] != nil:
			id := new(big.Int).SetUint64(i + 1).String()
			logrus.Warnf("⚠️ [Gallery] Skipping record %s: %v", id, failures[i])
			report.Skipped = append(report.Skipped, id)
		}
	}
	return report, err
}

// scanProbe walks ids upward until one of the two bounds is hit.
// Not-found and transient failures both count toward the consecutive bound; only a found record resets it.
func (s *GalleryScanner) scanProbe(ctx context.Context, reader interfaces.ProbeOnlyLedger) (*models.GalleryReport, error) {
	report := &models.GalleryReport{Path: models.ScanPathProbe, Records: []models.TokenRecord{}}
	state := &report.State
	state.Cursor = s.opts.StartID

	for state.ConsecutiveFailures < s.opts.MaxConsecutiveFailures && state.TotalAttempts < s.opts.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id := new(big.Int).SetUint64(state.Cursor)
		record, err := s.FetchSingle(ctx, reader, id)
		state.TotalAttempts++
		state.Cursor++

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logrus.Debugf("[Gallery] Probe %s failed: %v", id, err)
			report.Skipped = append(report.Skipped, id.String())
			state.ConsecutiveFailures++
		case record == nil:
			state.ConsecutiveFailures++
		default:
			report.Records = append(report.Records, *record)
			state.ConsecutiveFailures = 0
		}
	}
	metrics.GalleryProbeAttempts.Observe(float64(state.TotalAttempts))
	return report, nil
}

func (s *GalleryScanner) addKnown(ctx context.Context, reader interfaces.ProbeOnlyLedger, report *models.GalleryReport) error {
	ids, err := s.knownIDs.RecordIDs(ctx)
	if err != nil {
		logrus.Warnf("⚠️ [Gallery] Failed to list known record ids: %v", err)
		return nil
	}
	seen := make(map[string]bool, len(report.Records))
	for _, r := range report.Records {
		seen[r.RecordID.String()] = true
	}
	added := false
	for _, id := range ids {
		if seen[id.String()] {
			continue
		}
		seen[id.String()] = true
		record, err := s.FetchSingle(ctx, reader, id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.Skipped = append(report.Skipped, id.String())
			continue
		}
		if record != nil {
			report.Records = append(report.Records, *record)
			added = true
		}
	}
	if added {
		sort.SliceStable(report.Records, func(i, j int) bool {
			return report.Records[i].RecordID.Cmp(report.Records[j].RecordID) < 0
		})
	}
	return nil
}

// Get resolves the ledger reader and fetches one record; nil when it does not exist
func (s *GalleryScanner) Get(ctx context.Context, recordID *big.Int) (*models.TokenRecord, error) {
	reader, err := s.resolver.ResolveReader(ctx)
	if err != nil {
		return nil, err
	}
	return s.FetchSingle(ctx, reader, recordID)
}

// FetchSingle owner, content ref (+metadata) and history of one id, fetched concurrently.
// Returns nil, nil when the id does not exist and *TransientReadError when the owner lookup fails otherwise.
// Metadata and history failures only leave their fields empty.
func (s *GalleryScanner) FetchSingle(ctx context.Context, reader interfaces.ProbeOnlyLedger, recordID *big.Int) (*models.TokenRecord, error) {
	var (
		ownerErr   error
		record     = models.TokenRecord{RecordID: new(big.Int).Set(recordID), History: []models.TransferEvent{}}
		contentRef *string
		metadata   *models.MetadataRecord
		history    []models.TransferEvent
	)

	var g errgroup.Group
	g.Go(func() error {
		owner, err := reader.OwnerOf(ctx, recordID)
		if err != nil {
			ownerErr = err
			return nil
		}
		record.Owner = owner.Hex()
		return nil
	})
	g.Go(func() error {
		contentRef, metadata = s.fetchContent(ctx, reader, recordID)
		return nil
	})
	if s.history != nil {
		g.Go(func() error {
			history = s.history.Fetch(ctx, recordID)
			return nil
		})
	}
	_ = g.Wait()

	if ownerErr != nil {
		if errors.Is(ownerErr, interfaces.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &TransientReadError{Op: "ownerOf", RecordID: recordID, Err: ownerErr}
	}

	record.ContentRef = contentRef
	record.Metadata = metadata
	if history != nil {
		record.History = history
	}
	return &record, nil
}

func (s *GalleryScanner) fetchContent(ctx context.Context, reader interfaces.ProbeOnlyLedger, recordID *big.Int) (*string, *models.MetadataRecord) {
	ref, err := reader.TokenURI(ctx, recordID)
	if (err != nil || ref == "") && s.mappings != nil {
		if mapped, ok, lookupErr := s.mappings.Lookup(ctx, recordID); lookupErr == nil && ok {
			ref, err = mapped, nil
		}
	}
	if err != nil || ref == "" {
		return nil, nil
	}
	if s.metadata == nil {
		return &ref, nil
	}
	metadata, err := s.metadata.ResolveMetadata(ctx, ref)
	if err != nil {
		logrus.Debugf("[Gallery] Metadata for %s unavailable: %v", recordID, err)
		return &ref, nil
	}
	return &ref, metadata
}
