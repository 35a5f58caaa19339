package crm

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/model"
	"github.com/harborview-living/directory-cli/internal/resilience"
	"github.com/harborview-living/directory-cli/internal/store"
	"github.com/harborview-living/directory-cli/pkg/salesforce"
)

// Syncer pushes pending leads from the store into Salesforce.
type Syncer struct {
	store  store.Store
	client salesforce.Client
	retry  resilience.RetryConfig
}

// Report summarizes a sync run.
type Report struct {
	Synced  int
	Skipped int
	Failed  int
}

func NewSyncer(st store.Store, client salesforce.Client) *Syncer {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("salesforce", "insert_leads")
	return &Syncer{store: st, client: client, retry: cfg}
}

// SyncPending delivers leads with status "new". Leads whose email already
// exists in Salesforce are not inserted again: the existing Lead's
// Description is refreshed with the latest assessment result and the local
// lead is marked synced. The rest go out as one Lead collection insert. A
// per-record failure marks that lead failed and the run continues.
func (s *Syncer) SyncPending(ctx context.Context, limit int) (Report, error) {
	var report Report

	leads, err := s.store.ListLeads(ctx, store.LeadFilter{Status: model.LeadStatusNew, Limit: limit})
	if err != nil {
		return report, eris.Wrap(err, "crm: list pending leads")
	}
	if len(leads) == 0 {
		return report, nil
	}

	communityNames, err := s.communityNames(ctx)
	if err != nil {
		return report, err
	}

	var (
		pending []model.Lead
		records []map[string]any
	)
	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrap(err, "crm: sync cancelled")
		}

		dup, err := s.isDuplicate(ctx, lead, communityNames)
		switch {
		case err != nil:
			report.Failed++
			s.markFailed(ctx, lead.ID, err)
			continue
		case dup:
			report.Skipped++
			continue
		}

		pending = append(pending, lead)
		records = append(records, LeadRecord(lead, communityNames))
	}

	if len(pending) > 0 {
		results, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]salesforce.CollectionResult, error) {
			return s.client.InsertCollection(ctx, "Lead", records)
		})
		switch {
		case err != nil:
			// The whole collection call failed; every pending lead stays
			// re-runnable as failed.
			for _, lead := range pending {
				report.Failed++
				s.markFailed(ctx, lead.ID, err)
			}
		case len(results) != len(pending):
			return report, eris.Errorf("crm: %d results for %d leads", len(results), len(pending))
		default:
			for i, res := range results {
				lead := pending[i]
				if !res.Success {
					report.Failed++
					s.markFailed(ctx, lead.ID, eris.New("crm: "+strings.Join(res.Errors, "; ")))
					continue
				}
				if err := s.store.MarkLeadSynced(ctx, lead.ID, time.Now()); err != nil {
					return report, eris.Wrapf(err, "crm: mark lead synced %s", lead.ID)
				}
				report.Synced++
				zap.L().Info("lead delivered to salesforce",
					zap.String("lead_id", lead.ID),
					zap.String("sf_id", res.ID),
				)
			}
		}
	}

	zap.L().Info("lead sync complete",
		zap.Int("synced", report.Synced),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// isDuplicate checks Salesforce for an existing Lead with the same email.
// When one is found, a re-assessment refreshes its Description and the
// local lead is marked synced.
func (s *Syncer) isDuplicate(ctx context.Context, lead model.Lead, communityNames map[string]string) (bool, error) {
	if lead.Email == "" {
		return false, nil
	}

	existing, err := salesforce.FindLeadByEmail(ctx, s.client, lead.Email)
	if err != nil {
		return false, eris.Wrapf(err, "crm: dedupe lead %s", lead.ID)
	}
	if existing == nil {
		return false, nil
	}

	if desc := describeLead(lead, communityNames); desc != "" && desc != existing.Description {
		if err := salesforce.UpdateLead(ctx, s.client, existing.ID, map[string]any{"Description": desc}); err != nil {
			return false, eris.Wrapf(err, "crm: refresh duplicate %s", lead.ID)
		}
		zap.L().Info("refreshed existing salesforce lead",
			zap.String("lead_id", lead.ID),
			zap.String("sf_id", existing.ID),
		)
	} else {
		zap.L().Info("lead already in salesforce, skipping",
			zap.String("lead_id", lead.ID),
			zap.String("sf_id", existing.ID),
		)
	}
	if err := s.store.MarkLeadSynced(ctx, lead.ID, time.Now()); err != nil {
		return false, eris.Wrapf(err, "crm: mark duplicate synced %s", lead.ID)
	}
	return true, nil
}

func (s *Syncer) markFailed(ctx context.Context, leadID string, cause error) {
	zap.L().Error("lead sync failed",
		zap.String("lead_id", leadID),
		zap.Error(cause),
	)
	if err := s.store.MarkLeadFailed(ctx, leadID); err != nil {
		zap.L().Error("mark lead failed", zap.String("lead_id", leadID), zap.Error(err))
	}
}

func (s *Syncer) communityNames(ctx context.Context) (map[string]string, error) {
	communities, err := s.store.ListCommunities(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "crm: list communities")
	}
	names := make(map[string]string, len(communities))
	for _, c := range communities {
		names[c.ID] = c.Name
	}
	return names, nil
}
