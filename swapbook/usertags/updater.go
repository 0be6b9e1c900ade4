package usertags

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
)

// Updater promotes user classification tags from swap and subname activity.
// All methods run on the caller's repositories so they join its transaction.
type Updater struct{}

func NewUpdater() *Updater {
	return &Updater{}
}

// OnFirstTradeCompleted promotes each party from new_user to trader when the
// just-committed completion is their first. It returns the number of users
// changed; repeated calls change nothing.
func (u *Updater) OnFirstTradeCompleted(ctx context.Context, repos *repositories.Repos, parties ...string) (int, error) {
	mutations := 0
	seen := make(map[string]struct{}, len(parties))

	for _, party := range parties {
		if party == "" {
			continue
		}
		if _, dup := seen[party]; dup {
			continue
		}
		seen[party] = struct{}{}

		completed, err := repos.Swaps.CountCompletedNegotiations(ctx, party)
		if err != nil {
			return mutations, fmt.Errorf("failed to count completed swaps for %s: %w", party, err)
		}
		if completed > 1 {
			continue
		}

		changed, err := u.replaceTag(ctx, repos, party, config.TagNewUser, config.TagTrader, "")
		if err != nil {
			return mutations, err
		}
		if changed {
			mutations++
		}
	}
	return mutations, nil
}

// OnFirstSubnameMinted records the subname and promotes new_user to
// community_member.
func (u *Updater) OnFirstSubnameMinted(ctx context.Context, repos *repositories.Repos, party, subname string) (int, error) {
	if err := repos.Users.Ensure(ctx, party); err != nil {
		return 0, err
	}
	changed, err := u.replaceTag(ctx, repos, party, config.TagNewUser, config.TagCommunityMember, subname)
	if err != nil || !changed {
		return 0, err
	}
	return 1, nil
}

func (u *Updater) replaceTag(ctx context.Context, repos *repositories.Repos, party, from, to, subname string) (bool, error) {
	user, err := repos.Users.LockByAddress(ctx, party)
	if err != nil {
		if repositories.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	changed := user.ReplaceTag(from, to)
	if subname != "" && user.Subname == "" {
		user.Subname = subname
		changed = true
	}
	if !changed {
		return false, nil
	}

	if err := repos.Users.Update(ctx, user); err != nil {
		return false, err
	}
	slog.Info("User tags updated",
		slog.String("type", "db"),
		slog.String("address", party),
		slog.Any("tags", user.Tags),
	)
	return true, nil
}
