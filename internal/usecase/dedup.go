package usecase

import (
	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/pkg/utils"
)

// DedupeTargets keeps the first occurrence of every URL in input order. Direct
// and discovered targets must be concatenated before calling it so duplicates
// across sources collapse.
func DedupeTargets(targets []entity.CandidateTarget) []entity.CandidateTarget {
	return utils.UniqueBy(targets, entity.CandidateTarget.Key)
}
