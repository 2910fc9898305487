package service

import (
	"go-fairway/internal/apperr"
	"go-fairway/internal/repository"
)

// StatsService computes read-side statistics for a round. Nothing
// here is stored: every read rescans the Score+Hole join, so the
// numbers can never drift from the source rows.
type StatsService struct {
	roundRepo *repository.RoundRepository
	scoreRepo *repository.ScoreRepository
}

func NewStatsService(roundRepo *repository.RoundRepository, scoreRepo *repository.ScoreRepository) *StatsService {
	return &StatsService{roundRepo: roundRepo, scoreRepo: scoreRepo}
}

// ScoreBreakdown buckets holes by strokes relative to par.
type ScoreBreakdown struct {
	Eagles          int `json:"eagles"`  // <= -2 vs par
	Birdies         int `json:"birdies"` // -1
	Pars            int `json:"pars"`    // 0
	Bogeys          int `json:"bogeys"`  // +1
	DoubleBogeys    int `json:"double_bogeys"`
	WorseThanDouble int `json:"worse_than_double"`
}

type RoundStats struct {
	RoundID     uint           `json:"round_id"`
	HolesPlayed int            `json:"holes_played"`
	TotalScore  int            `json:"total_score"`
	ToPar       int            `json:"to_par"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	// AvgByPar maps par value (3/4/5) to the average strokes taken
	// on holes of that par.
	AvgByPar       map[int]float64 `json:"avg_by_par"`
	FairwayPct     float64         `json:"fairway_pct"`
	GreensInRegPct float64         `json:"greens_in_reg_pct"`
	PuttsPerHole   float64         `json:"putts_per_hole"`
	TotalPenalties int             `json:"total_penalties"`
}

// RoundStats computes the full breakdown for one round. Only the
// round's owner may read it.
func (s *StatsService) RoundStats(roundID, userID uint) (*RoundStats, error) {
	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.New(apperr.NotFound, "round not found")
	}
	if round.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "not your round")
	}

	scores, err := s.scoreRepo.FindByRound(roundID)
	if err != nil {
		return nil, err
	}

	stats := &RoundStats{
		RoundID:     roundID,
		HolesPlayed: len(scores),
		AvgByPar:    make(map[int]float64),
	}

	strokesByPar := make(map[int]int)
	holesByPar := make(map[int]int)
	parTotal := 0
	puttsRecorded := 0
	holesWithPutts := 0
	fairwayChances := 0
	fairwayHits := 0
	greensHit := 0

	for _, sc := range scores {
		diff := sc.Strokes - sc.Hole.Par
		switch {
		case diff <= -2:
			stats.Breakdown.Eagles++
		case diff == -1:
			stats.Breakdown.Birdies++
		case diff == 0:
			stats.Breakdown.Pars++
		case diff == 1:
			stats.Breakdown.Bogeys++
		case diff == 2:
			stats.Breakdown.DoubleBogeys++
		default:
			stats.Breakdown.WorseThanDouble++
		}

		stats.TotalScore += sc.Strokes
		parTotal += sc.Hole.Par
		strokesByPar[sc.Hole.Par] += sc.Strokes
		holesByPar[sc.Hole.Par]++
		stats.TotalPenalties += sc.Penalties

		if sc.Putts != nil {
			puttsRecorded += *sc.Putts
			holesWithPutts++
		}
		if sc.Hole.Par >= 4 && sc.FairwayHit != nil {
			fairwayChances++
			if *sc.FairwayHit {
				fairwayHits++
			}
		}
		if sc.GreenInReg != nil && *sc.GreenInReg {
			greensHit++
		}
	}

	stats.ToPar = stats.TotalScore - parTotal
	for par, strokes := range strokesByPar {
		stats.AvgByPar[par] = float64(strokes) / float64(holesByPar[par])
	}
	if fairwayChances > 0 {
		stats.FairwayPct = 100 * float64(fairwayHits) / float64(fairwayChances)
	}
	if len(scores) > 0 {
		stats.GreensInRegPct = 100 * float64(greensHit) / float64(len(scores))
	}
	if holesWithPutts > 0 {
		stats.PuttsPerHole = float64(puttsRecorded) / float64(holesWithPutts)
	}

	return stats, nil
}
