package data

import (
	"context"
	"fmt"

	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/types"
	"gorm.io/gorm"
)

// ProposalStore is the MySQL-backed consensus.Store.
type ProposalStore struct {
	db *gorm.DB
}

func NewProposalStore(db *gorm.DB) *ProposalStore {
	return &ProposalStore{db: db}
}

func (s *ProposalStore) ActiveProposals(ctx context.Context) ([]types.Proposal, error) {
	var proposals []types.Proposal
	err := s.db.WithContext(ctx).Preload("Voters").Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	return proposals, nil
}

func (s *ProposalStore) CreateProposal(ctx context.Context, p *types.Proposal) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ProposalStore) AddVoter(ctx context.Context, v *types.Voter) error {
	return s.db.WithContext(ctx).Create(v).Error
}

func (s *ProposalStore) DeleteVoter(ctx context.Context, voterID uint64) error {
	return s.db.WithContext(ctx).Delete(&types.Voter{}, voterID).Error
}

// Archive commits the terminal transition. The cascade is spelled out as
// explicit deletes inside one transaction rather than relying on the FK
// cascade, so the invariant holds on any storage engine. A pre-existing
// history row for the same proposal is a programming error.
func (s *ProposalStore) Archive(ctx context.Context, p *types.Proposal, h *types.ProposalHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&types.ProposalHistory{}).Where("id = ?", p.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: history row already exists for proposal %d",
				consensus.ErrInvariantViolation, p.ID)
		}
		if err := tx.Create(h).Error; err != nil {
			return err
		}
		if err := tx.Where("proposal_id = ?", p.ID).Delete(&types.Voter{}).Error; err != nil {
			return err
		}
		return tx.Delete(&types.Proposal{}, p.ID).Error
	})
}

// ListHistory returns closed proposals, optionally filtered by result.
// Hits the index on proposal_histories.result.
func (s *ProposalStore) ListHistory(ctx context.Context, result *types.ProposalResult) ([]types.ProposalHistory, error) {
	var rows []types.ProposalHistory
	q := s.db.WithContext(ctx).Order("closed_at DESC")
	if result != nil {
		q = q.Where("result = ?", *result)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return rows, nil
}
