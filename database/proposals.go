package database

import (
	"context"
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
)

// ProposalRepo persists proposal documents
type ProposalRepo struct {
	db DBConnection
}

// NewProposalRepo creates a proposal repository on top of the connection
func NewProposalRepo(db DBConnection) *ProposalRepo {
	return &ProposalRepo{db: db}
}

// ListByOrg returns every proposal of the org joined with its opportunity
func (r *ProposalRepo) ListByOrg(ctx context.Context, orgKey string) ([]model.ProposalWithOpportunity, error) {
	return queryAll[model.ProposalWithOpportunity](ctx, r.db.Database, `
		FOR p IN proposals
			FILTER p.org == @org
			LET opp = DOCUMENT("opportunities", p.opportunity)
			RETURN {
				proposal: p,
				opportunity: opp == null ? {} : opp
			}
	`, map[string]interface{}{"org": orgKey})
}

// SaveProposal writes the status and phase teams of the proposal
func (r *ProposalRepo) SaveProposal(ctx context.Context, p *model.Proposal) error {
	p.Updated = time.Now()
	var key string
	found, err := queryOne(ctx, r.db.Database, `
		UPDATE @key WITH { status: @status, phases: @phases, updated: @updated } IN proposals
		RETURN NEW._key
	`, map[string]interface{}{
		"key":     p.Key,
		"status":  p.Status,
		"phases":  p.Phases,
		"updated": p.Updated,
	}, &key)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
