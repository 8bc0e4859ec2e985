package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"vendoreval/internal/consensus"
)

// Vote values.
const (
	VoteAccept = "ACCEPT"
	VoteReject = "REJECT"
)

// VendorVote (Голос): one per (vendor, user), re-voting overwrites.
type VendorVote struct {
	ID        int64     `db:"id" json:"id"`
	VendorID  int64     `db:"vendor_id" json:"vendorId"`
	UserID    int64     `db:"user_id" json:"userId"`
	Vote      string    `db:"vote" json:"vote"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type VoterInfo struct {
	Name string `db:"name" json:"name"`
	Role string `db:"role" json:"role"`
	Vote string `db:"vote" json:"vote"`
}

type VoteStats struct {
	TotalVotes    int         `json:"totalVotes"`
	AcceptVotes   int         `json:"acceptVotes"`
	RejectVotes   int         `json:"rejectVotes"`
	UserVote      *string     `json:"userVote"`
	FinalDecision *string     `json:"finalDecision"`
	Voters        []VoterInfo `json:"voters"`
}

// CastVote upserts the user's vote and recomputes the vendor's final
// decision in the same transaction, so concurrent votes serialize at the
// store instead of racing on the tally.
func (s *Storage) CastVote(ctx context.Context, vendorID, userID int64, vote string) (*VoteStats, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO vendor_votes (vendor_id, user_id, vote)
        VALUES ($1, $2, $3)
        ON CONFLICT (vendor_id, user_id)
            DO UPDATE SET vote = EXCLUDED.vote, updated_at = NOW()`
	if _, err := tx.ExecContext(ctx, query, vendorID, userID, vote); err != nil {
		return nil, err
	}

	stats, err := s.recomputeDecision(ctx, tx, vendorID, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stats, nil
}

// ClearVote removes the user's vote and recomputes; dropping below the
// quorum reverts the decision to undecided.
func (s *Storage) ClearVote(ctx context.Context, vendorID, userID int64) (*VoteStats, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `DELETE FROM vendor_votes WHERE vendor_id = $1 AND user_id = $2`
	if _, err := tx.ExecContext(ctx, query, vendorID, userID); err != nil {
		return nil, err
	}

	stats, err := s.recomputeDecision(ctx, tx, vendorID, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Storage) recomputeDecision(ctx context.Context, tx *sqlx.Tx, vendorID, userID int64) (*VoteStats, error) {
	stats, err := tallyVotes(ctx, tx, vendorID, userID)
	if err != nil {
		return nil, err
	}

	if decision, decided := consensus.Outcome(stats.AcceptVotes, stats.TotalVotes); decided {
		d := string(decision)
		stats.FinalDecision = &d
		_, err = tx.ExecContext(ctx, `
            UPDATE vendors
            SET final_decision = $1, rfi_status = $2, updated_at = NOW()
            WHERE id = $3`, d, RFICompleted, vendorID)
	} else {
		stats.FinalDecision = nil
		_, err = tx.ExecContext(ctx, `
            UPDATE vendors
            SET final_decision = NULL, rfi_status = $1, updated_at = NOW()
            WHERE id = $2`, RFIInProgress, vendorID)
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetVoteStats returns the aggregate tally, the caller's own vote, the
// voter list and the vendor's current final decision.
func (s *Storage) GetVoteStats(ctx context.Context, vendorID, userID int64) (*VoteStats, error) {
	stats, err := tallyVotes(ctx, s.db, vendorID, userID)
	if err != nil {
		return nil, err
	}

	var decision *string
	query := `SELECT final_decision FROM vendors WHERE id = $1`
	if err := s.db.GetContext(ctx, &decision, query, vendorID); err != nil {
		return nil, err
	}
	stats.FinalDecision = decision
	return stats, nil
}

// queryer covers both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
}

func tallyVotes(ctx context.Context, q queryer, vendorID, userID int64) (*VoteStats, error) {
	stats := &VoteStats{Voters: []VoterInfo{}}

	rows, err := q.QueryxContext(ctx, `
        SELECT u.name, u.role, vv.vote, vv.user_id
        FROM vendor_votes vv
        JOIN users u ON u.id = vv.user_id
        WHERE vv.vendor_id = $1
        ORDER BY vv.created_at ASC`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var voter VoterInfo
		var voterID int64
		if err := rows.Scan(&voter.Name, &voter.Role, &voter.Vote, &voterID); err != nil {
			return nil, err
		}
		stats.Voters = append(stats.Voters, voter)
		stats.TotalVotes++
		if voter.Vote == VoteAccept {
			stats.AcceptVotes++
		} else {
			stats.RejectVotes++
		}
		if voterID == userID {
			v := voter.Vote
			stats.UserVote = &v
		}
	}
	return stats, rows.Err()
}
