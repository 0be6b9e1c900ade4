package models

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Address   string    `bun:"address,notnull,unique" json:"address"`
	Tags      []string  `bun:"tags,type:jsonb" json:"tags"`
	Subname   string    `bun:"subname,nullzero" json:"subname,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (u *User) HasTag(tag string) bool {
	return slices.Contains(u.Tags, tag)
}

// ReplaceTag swaps from for to and reports whether anything changed.
func (u *User) ReplaceTag(from, to string) bool {
	idx := slices.Index(u.Tags, from)
	if idx < 0 {
		return false
	}
	tags := slices.Clone(u.Tags)
	if slices.Contains(tags, to) {
		tags = slices.Delete(tags, idx, idx+1)
	} else {
		tags[idx] = to
	}
	u.Tags = tags
	return true
}
