// Package store implements the persistence ports on top of GORM.
package store

import (
	"errors"
	"fmt"
	"strings"

	"lessons/backend/errs"

	"gorm.io/gorm"
)

// Store bundles the repositories over one connection pool.
type Store struct {
	Users     *Users
	Lessons   *Lessons
	Reactions *Reactions
	Reports   *Reports
	Payments  *Payments
	Comments  *Comments
	Analytics *Analytics
}

func New(db *gorm.DB) *Store {
	lessons := NewLessons(db)
	return &Store{
		Users:     NewUsers(db),
		Lessons:   lessons,
		Reactions: NewReactions(db),
		Reports:   NewReports(db, lessons),
		Payments:  NewPayments(db),
		Comments:  NewComments(db),
		Analytics: NewAnalytics(db),
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(errs.KindNotFound, err, "%s not found", what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
