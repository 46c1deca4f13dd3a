package app

import (
	"context"
	"fmt"

	"github.com/kvvPro/foodcourt/internal/loyalty"
	"github.com/kvvPro/foodcourt/internal/model"
	"github.com/kvvPro/foodcourt/internal/retry"
)

type LoyaltyInfo struct {
	RewardPoints int64              `json:"rewardPoints"`
	Tier         string             `json:"membershipTier"`
	TotalSpent   int64              `json:"totalSpent"`
	PointHistory []model.PointEntry `json:"pointHistory"`
}

func (srv *Server) GetLoyaltyInfo(ctx context.Context, login string) (*LoyaltyInfo, error) {
	user, err := srv.getUser(ctx, login)
	if err != nil {
		return nil, err
	}

	var history []model.PointEntry
	err = retry.Do(func() error {
		history, err = srv.storage.GetPointHistory(ctx, login)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return nil, err
	}

	return &LoyaltyInfo{
		RewardPoints: user.RewardPoints,
		Tier:         user.Tier,
		TotalSpent:   user.TotalSpent,
		PointHistory: history,
	}, nil
}

// RedeemPoints burns points against an order. InsufficientPoints leaves the
// balance untouched.
func (srv *Server) RedeemPoints(ctx context.Context, login string, points int64, orderID string) (*model.User, error) {
	unlock := srv.locks.Lock("user:" + login)
	defer unlock()

	user, err := srv.getUser(ctx, login)
	if err != nil {
		return nil, err
	}

	entry, err := loyalty.Redeem(user, points, orderID)
	if err != nil {
		return nil, err
	}

	err = retry.Do(func() error {
		return srv.storage.UpdateUserLoyalty(ctx, user, entry)
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return nil, err
	}

	srv.notifyUser(ctx, login,
		fmt.Sprintf("Successfully redeemed %v points for order %v", points, orderID),
		model.NotifySystem)

	return user, nil
}

type TierBenefits struct {
	PointsMultiplier float64  `json:"pointsMultiplier"`
	Benefits         []string `json:"benefits"`
}

var tierBenefits = map[string]TierBenefits{
	model.TierBronze: {
		PointsMultiplier: 1,
		Benefits:         []string{"Basic reward points earning"},
	},
	model.TierSilver: {
		PointsMultiplier: 1.2,
		Benefits: []string{
			"20% extra reward points",
			"Priority customer support",
		},
	},
	model.TierGold: {
		PointsMultiplier: 1.5,
		Benefits: []string{
			"50% extra reward points",
			"Priority customer support",
			"Free delivery on orders above 500",
		},
	},
	model.TierPlatinum: {
		PointsMultiplier: 2,
		Benefits: []string{
			"Double reward points",
			"Priority customer support",
			"Free delivery on all orders",
			"Exclusive early access to promotions",
		},
	},
}

func (srv *Server) GetTierBenefits(ctx context.Context, login string) (string, *TierBenefits, error) {
	user, err := srv.getUser(ctx, login)
	if err != nil {
		return "", nil, err
	}

	benefits := tierBenefits[user.Tier]
	return user.Tier, &benefits, nil
}

func (srv *Server) Notifications(ctx context.Context, login string) ([]model.Notification, error) {
	var err error
	var notifications []model.Notification

	err = retry.Do(func() error {
		notifications, err = srv.storage.GetNotifications(ctx, login)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return nil, err
	}

	return notifications, nil
}
