// Package dummydb is a complete in-memory implementation of the storage
// contracts. It backs the test suites and local development without postgres.
//
// A single coarse lock spans every mutating operation, so each link op's
// existence check, membership check and write happen atomically; two
// concurrent adds of the same pair serialize and the loser observes
// core.ErrAlreadyPresent, matching the transactional discipline of the
// postgres store.
package dummydb

import (
	"sync"

	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/matter"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
)

type DB struct {
	mu sync.RWMutex

	users       map[int]*user.User
	matters     map[int]*matter.Matter
	commissions map[int]*commission.Commission
	groups      map[int]*group.Group
	projects    map[int]*project.Project
	deploys     map[int]*project.DeployInstance
	repos       map[int]*repo.Repo
	comments    map[int]*repo.Comment

	pkCount int
}

func Open() (*DB, error) {
	return &DB{
		users:       make(map[int]*user.User),
		matters:     make(map[int]*matter.Matter),
		commissions: make(map[int]*commission.Commission),
		groups:      make(map[int]*group.Group),
		projects:    make(map[int]*project.Project),
		deploys:     make(map[int]*project.DeployInstance),
		repos:       make(map[int]*repo.Repo),
		comments:    make(map[int]*repo.Comment),
	}, nil
}

// Reset drops every stored record. Test suites call it between cases.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.users = make(map[int]*user.User)
	db.matters = make(map[int]*matter.Matter)
	db.commissions = make(map[int]*commission.Commission)
	db.groups = make(map[int]*group.Group)
	db.projects = make(map[int]*project.Project)
	db.deploys = make(map[int]*project.DeployInstance)
	db.repos = make(map[int]*repo.Repo)
	db.comments = make(map[int]*repo.Comment)
	db.pkCount = 0
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

func intsContain(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func intsRemove(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
