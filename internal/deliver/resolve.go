package deliver

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/themadorg/maildrop/internal/db"
)

// Resolver maps candidate addresses to local accounts.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(gdb *gorm.DB) *Resolver {
	return &Resolver{db: gdb}
}

// Resolve returns the accounts whose address is in the candidate set. One
// batched query regardless of candidate count. An empty result is not an
// error: the message is simply not for anyone on this system.
func (r *Resolver) Resolve(ctx context.Context, candidates []Candidate) ([]db.User, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	addrs := make([]string, len(candidates))
	for i, c := range candidates {
		addrs[i] = c.Address
	}

	var users []db.User
	if err := r.db.WithContext(ctx).Where("email IN ?", addrs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to look up accounts: %w", err)
	}
	return users, nil
}
