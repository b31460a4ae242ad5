package settle

import (
	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// SplitDriftTolerance is the accepted gap, in minor units, between the sum of
// a manual split set and the expense total. It absorbs the one-cent rounding
// drift of dividing an amount among an odd number of participants.
const SplitDriftTolerance = 1

// computeSplits produces the full split set for an expense according to its
// mode. The returned splits always satisfy the conservation rule: their sum
// equals the expense amount exactly for EQUAL and FULL_REIMBURSE, and within
// SplitDriftTolerance for MANUAL.
func computeSplits(p ExpenseParams, members []model.GroupMember) ([]model.ExpenseSplit, error) {
	memberSet := make(map[int64]bool, len(members))
	for _, m := range members {
		memberSet[m.ID] = true
	}
	if !memberSet[p.PaidByID] {
		return nil, common.NotFoundf("member %d in group %d", p.PaidByID, p.GroupID)
	}

	switch p.Mode {
	case model.SplitEqual:
		participants := p.ParticipantIDs
		if len(participants) == 0 {
			participants = make([]int64, 0, len(members))
			for _, m := range members {
				participants = append(participants, m.ID)
			}
		}
		if len(participants) == 0 {
			return nil, common.InvalidArgumentf("expense needs at least one participant")
		}
		seen := make(map[int64]bool, len(participants))
		for _, id := range participants {
			if !memberSet[id] {
				return nil, common.NotFoundf("member %d in group %d", id, p.GroupID)
			}
			if seen[id] {
				return nil, common.InvalidArgumentf("member %d appears twice in the split", id)
			}
			seen[id] = true
		}

		// Remainder cents go to the earliest participants, one each,
		// so the shares always sum back to the total.
		shares := p.Amount.SplitEvenly(len(participants))
		splits := make([]model.ExpenseSplit, len(participants))
		for i, id := range participants {
			splits[i] = model.ExpenseSplit{MemberID: id, Amount: shares[i]}
		}
		return splits, nil

	case model.SplitManual:
		if len(p.ManualSplits) == 0 {
			return nil, common.InvalidArgumentf("manual split needs at least one share")
		}

		seen := make(map[int64]bool, len(p.ManualSplits))
		var sum model.Money
		splits := make([]model.ExpenseSplit, len(p.ManualSplits))
		for i, in := range p.ManualSplits {
			if !memberSet[in.MemberID] {
				return nil, common.NotFoundf("member %d in group %d", in.MemberID, p.GroupID)
			}
			if seen[in.MemberID] {
				return nil, common.InvalidArgumentf("member %d appears twice in the split", in.MemberID)
			}
			seen[in.MemberID] = true
			sum = sum.Add(in.Amount)
			splits[i] = model.ExpenseSplit{MemberID: in.MemberID, Amount: in.Amount}
		}

		if drift := sum.Sub(p.Amount).Abs(); drift.Cents > SplitDriftTolerance {
			return nil, common.InvalidArgumentf(
				"split sum mismatch: shares total %s but the expense is %s", sum, p.Amount)
		}
		return splits, nil

	case model.SplitFullReimburse:
		debtors := make([]int64, 0, len(members))
		for _, m := range members {
			if m.ID != p.PaidByID {
				debtors = append(debtors, m.ID)
			}
		}
		if len(debtors) == 0 {
			return nil, common.InvalidArgumentf("settlement needs at least one member besides the payer")
		}

		shares := p.Amount.SplitEvenly(len(debtors))
		splits := make([]model.ExpenseSplit, 0, len(debtors)+1)
		splits = append(splits, model.ExpenseSplit{MemberID: p.PaidByID, Amount: model.Money{}})
		for i, id := range debtors {
			splits = append(splits, model.ExpenseSplit{MemberID: id, Amount: shares[i]})
		}
		return splits, nil

	default:
		return nil, common.InvalidArgumentf("split mode %q", p.Mode)
	}
}
