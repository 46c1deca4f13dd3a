// Package loyalty recalculates reward points, lifetime spend and membership
// tier for a user. Callers decide when a completed order is applied (cash
// orders at placement, online orders on verified payment) and must guard
// against applying the same order twice.
package loyalty

import (
	"fmt"
	"time"

	"github.com/kvvPro/foodcourt/internal/model"
)

// tier thresholds in paise: 1 point per 10 rupees, tiers at 10k/25k/50k rupees
const (
	silverThreshold   = 10000 * 100
	goldThreshold     = 25000 * 100
	platinumThreshold = 50000 * 100
)

var tierRank = map[string]int{
	model.TierBronze:   0,
	model.TierSilver:   1,
	model.TierGold:     2,
	model.TierPlatinum: 3,
}

// EarnedPoints is floor(total in rupees / 10) for a total given in paise.
func EarnedPoints(totalPaise int64) int64 {
	return totalPaise / 1000
}

// TierFor maps lifetime spend to a membership tier.
func TierFor(totalSpentPaise int64) string {
	switch {
	case totalSpentPaise >= platinumThreshold:
		return model.TierPlatinum
	case totalSpentPaise >= goldThreshold:
		return model.TierGold
	case totalSpentPaise >= silverThreshold:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

// ApplyCompletedOrder credits earned points, bumps counters and recomputes the
// tier. The tier never downgrades on this path.
func ApplyCompletedOrder(user *model.User, orderTotal int64, orderID string) model.PointEntry {
	earned := EarnedPoints(orderTotal)

	user.RewardPoints += earned
	user.TotalSpent += orderTotal
	user.OrderCount++

	newTier := TierFor(user.TotalSpent)
	if tierRank[newTier] > tierRank[user.Tier] {
		user.Tier = newTier
	}

	return model.PointEntry{
		Points:      earned,
		Kind:        model.PointsEarned,
		OrderID:     orderID,
		Description: fmt.Sprintf("Earned points for order total of %d", orderTotal),
		CreatedAt:   time.Now(),
	}
}

// Redeem decrements the balance, failing if the requested points exceed it.
func Redeem(user *model.User, points int64, orderID string) (model.PointEntry, error) {
	if points <= 0 {
		return model.PointEntry{}, fmt.Errorf("%w: points must be positive", model.ErrInvalidRequest)
	}
	if points > user.RewardPoints {
		return model.PointEntry{}, model.ErrInsufficientPoints
	}

	user.RewardPoints -= points
	return model.PointEntry{
		Points:      points,
		Kind:        model.PointsRedeemed,
		OrderID:     orderID,
		Description: fmt.Sprintf("Redeemed points for order %s", orderID),
		CreatedAt:   time.Now(),
	}, nil
}
