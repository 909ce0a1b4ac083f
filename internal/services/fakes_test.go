package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/devexchange/orgs-backend/v1/util"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory stand-in for the ArangoDB repositories
type memStore struct {
	mu        sync.Mutex
	orgs      map[string]model.Org
	users     map[string]model.User
	proposals map[string]model.ProposalWithOpportunity
	caps      map[string]model.Capability
	seq       int

	failSaveUser     bool
	failSaveOrg      bool
	failListProposal bool
	failProposalKeys map[string]bool

	writes []string
}

func newMemStore() *memStore {
	return &memStore{
		orgs:             map[string]model.Org{},
		users:            map[string]model.User{},
		proposals:        map[string]model.ProposalWithOpportunity{},
		caps:             map[string]model.Capability{},
		failProposalKeys: map[string]bool{},
	}
}

func (m *memStore) addUser(u model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Key] = u
	return &u
}

func (m *memStore) addOrg(o model.Org) *model.Org {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[o.Key] = o
	return &o
}

func (m *memStore) addProposal(p model.ProposalWithOpportunity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[p.Proposal.Key] = p
}

func (m *memStore) org(key string) model.Org {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orgs[key]
}

func (m *memStore) user(key string) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[key]
}

func (m *memStore) proposal(key string) model.Proposal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proposals[key].Proposal
}

func (m *memStore) GetOrg(_ context.Context, key string) (*model.Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &o, nil
}

func (m *memStore) CreateOrg(_ context.Context, org *model.Org) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	org.Key = fmt.Sprintf("org%d", m.seq)
	m.orgs[org.Key] = *org
	m.writes = append(m.writes, "org:"+org.Key)
	return nil
}

func (m *memStore) SaveOrg(_ context.Context, org *model.Org) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveOrg {
		return errStoreDown
	}
	m.orgs[org.Key] = *org
	m.writes = append(m.writes, "org:"+org.Key)
	return nil
}

func (m *memStore) DeleteOrg(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orgs, key)
	return nil
}

func (m *memStore) publicView(o model.Org) model.PublicOrg {
	caps := []model.Capability{}
	for _, k := range o.Capabilities {
		if c, ok := m.caps[k]; ok {
			caps = append(caps, c)
		}
	}
	return model.PublicOrg{Key: o.Key, Name: o.Name, Website: o.Website, OrgImageURL: o.OrgImageURL, Capabilities: caps}
}

func (m *memStore) ListPublic(_ context.Context) ([]model.PublicOrg, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PublicOrg{}
	for _, o := range m.orgs {
		out = append(out, m.publicView(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ResolvePublic(_ context.Context, key string) (*model.PublicOrg, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	v := m.publicView(o)
	return &v, nil
}

func (m *memStore) ResolveFull(_ context.Context, key string) (*model.FullOrg, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	lookup := func(k string) *model.User {
		if u, ok := m.users[k]; ok {
			return &u
		}
		return nil
	}
	users := func(keys []string) []model.User {
		out := []model.User{}
		for _, k := range keys {
			if u := lookup(k); u != nil {
				out = append(out, *u)
			}
		}
		return out
	}
	views := func(keys []string) []model.MemberView {
		out := []model.MemberView{}
		for _, u := range users(keys) {
			out = append(out, model.MemberView{Key: u.Key, Username: u.Username, Email: u.Email})
		}
		return out
	}
	return &model.FullOrg{
		Key:             o.Key,
		Name:            o.Name,
		Owner:           lookup(o.Owner),
		CreatedBy:       lookup(o.CreatedBy),
		UpdatedBy:       lookup(o.UpdatedBy),
		Admins:          users(o.Admins),
		Members:         views(o.Members),
		JoinRequests:    views(o.JoinRequests),
		InvitedUsers:    users(o.InvitedUsers),
		InvitedNonUsers: o.InvitedNonUsers,
		Capabilities:    m.publicView(o).Capabilities,
	}, nil
}

func (m *memStore) ListByMember(_ context.Context, userKey string) ([]model.Org, error) {
	return m.filterOrgs(func(o model.Org) bool { return util.Contains(o.Members, userKey) }), nil
}

func (m *memStore) ListByAdmin(_ context.Context, userKey string) ([]model.Org, error) {
	return m.filterOrgs(func(o model.Org) bool { return util.Contains(o.Admins, userKey) }), nil
}

func (m *memStore) filterOrgs(keep func(model.Org) bool) []model.Org {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Org{}
	for _, o := range m.orgs {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memStore) GetUser(_ context.Context, key string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if util.NormalizeEmail(u.Email) == email {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) GetUsers(_ context.Context, keys []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, k := range keys {
		if u, ok := m.users[k]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) SaveUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveUser {
		return errStoreDown
	}
	m.users[user.Key] = *user
	m.writes = append(m.writes, "user:"+user.Key)
	return nil
}

func (m *memStore) ListByOrg(_ context.Context, orgKey string) ([]model.ProposalWithOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListProposal {
		return nil, errStoreDown
	}
	out := []model.ProposalWithOpportunity{}
	for _, p := range m.proposals {
		if p.Proposal.Org == orgKey {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Proposal.Key < out[j].Proposal.Key })
	return out, nil
}

func (m *memStore) SaveProposal(_ context.Context, p *model.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProposalKeys[p.Key] {
		return errStoreDown
	}
	entry := m.proposals[p.Key]
	entry.Proposal = *p
	m.proposals[p.Key] = entry
	m.writes = append(m.writes, "proposal:"+p.Key)
	return nil
}

type sentMessage struct {
	event      string
	recipients []string
	data       model.MessageData
}

// recordingNotifier captures dispatched messages
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) SendMessages(_ context.Context, event string, recipients []model.User, data model.MessageData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var to []string
	for _, r := range recipients {
		if r.Key != "" {
			to = append(to, r.Key)
		} else {
			to = append(to, r.Email)
		}
	}
	n.sent = append(n.sent, sentMessage{event: event, recipients: to, data: data})
	return n.err
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.event)
	}
	return out
}

// countingCache is an in-memory OrgListCache
type countingCache struct {
	list        []model.PublicOrg
	ok          bool
	hits        int
	invalidated int
}

func (c *countingCache) GetPublicList(context.Context) ([]model.PublicOrg, bool) {
	if c.ok {
		c.hits++
	}
	return c.list, c.ok
}

func (c *countingCache) SetPublicList(_ context.Context, orgs []model.PublicOrg) {
	c.list, c.ok = orgs, true
}

func (c *countingCache) Invalidate(context.Context) {
	c.list, c.ok = nil, false
	c.invalidated++
}
