// Package certificate issues completion certificates to workers and runs a
// small fixed-price market for them.
package certificate

import (
	"sort"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/guard"
	"github.com/sebdeveloper6952/gojobs/token"
)

// Market is not safe for concurrent use.
type Market struct {
	domain.Ownable

	vt    token.ValueTransfer
	guard *guard.Guard
	emit  events.Emitter

	// self is the collection address and the custodian of vt.
	self        domain.Address
	jobRegistry domain.Address

	lastID   uint64
	owners   map[uint64]domain.Address
	balances map[domain.Address]int
	listings map[uint64]domain.Amount
}

var (
	_ domain.Authorizable = (*Market)(nil)
	_ domain.Checkpointer = (*Market)(nil)
)

// New fails with ErrInvalidDecimals unless the payment asset uses 18
// decimals. self must be the address vt pulls payments into.
func New(vt token.ValueTransfer, self, owner domain.Address, emit events.Emitter) (*Market, error) {
	if vt.Decimals() != domain.Decimals {
		return nil, domain.Fail("newMarket", domain.ErrInvalidDecimals,
			"asset %s has %d decimals, want %d", vt.Asset(), vt.Decimals(), domain.Decimals)
	}
	if emit == nil {
		emit = events.Nop
	}
	return &Market{
		Ownable:  domain.NewOwnable(owner),
		vt:       vt,
		guard:    guard.New(),
		emit:     emit,
		self:     self,
		owners:   make(map[uint64]domain.Address),
		balances: make(map[domain.Address]int),
		listings: make(map[uint64]domain.Amount),
	}, nil
}

// Address identifies the certificate collection.
func (m *Market) Address() domain.Address {
	return m.self
}

func (m *Market) SetJobRegistry(caller, registry domain.Address) error {
	if err := m.RequireOwner("setJobRegistry", caller); err != nil {
		return err
	}
	m.jobRegistry = registry
	m.emit.Emit(domain.JobRegistryUpdated{Registry: registry})
	return nil
}

// Mint issues a new certificate to to. Only the job registry mints.
func (m *Market) Mint(caller, to domain.Address) (uint64, error) {
	const op = "mint"
	if m.jobRegistry.IsZero() || caller != m.jobRegistry {
		return 0, domain.Fail(op, domain.ErrNotAuthorized, "not job registry")
	}
	if to.IsZero() {
		return 0, domain.Fail(op, domain.ErrInvalidAmount, "mint to the zero address")
	}
	m.lastID++
	id := m.lastID
	m.owners[id] = to
	m.balances[to]++
	m.emit.Emit(domain.CertificateMinted{ID: id, To: to})
	return id, nil
}

func (m *Market) List(caller domain.Address, id uint64, price domain.Amount) error {
	const op = "list"
	if err := m.requireHolder(op, caller, id); err != nil {
		return err
	}
	if price.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "price must be positive")
	}
	m.listings[id] = price
	m.emit.Emit(domain.CertificateListed{ID: id, Owner: caller, Price: price})
	return nil
}

func (m *Market) Delist(caller domain.Address, id uint64) error {
	const op = "delist"
	if err := m.requireHolder(op, caller, id); err != nil {
		return err
	}
	if _, ok := m.listings[id]; !ok {
		return domain.Fail(op, domain.ErrInvalidStatus, "certificate %d is not listed", id)
	}
	delete(m.listings, id)
	m.emit.Emit(domain.CertificateDelisted{ID: id})
	return nil
}

// Purchase pulls the listed price from buyer, pays the seller and hands
// the certificate over. Nothing changes if any transfer fails.
func (m *Market) Purchase(buyer domain.Address, id uint64) error {
	const op = "purchase"
	price, ok := m.listings[id]
	if !ok {
		return domain.Fail(op, domain.ErrInvalidStatus, "certificate %d is not listed", id)
	}
	seller := m.owners[id]
	if buyer.IsZero() || buyer == seller {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s cannot buy certificate %d", buyer, id)
	}

	release, err := m.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	revert := domain.Checkpoint(m.vt)
	if err := m.vt.Pull(buyer, price); err != nil {
		revert()
		return domain.Wrap(op, err)
	}
	if err := m.vt.Push(seller, price); err != nil {
		revert()
		return domain.Wrap(op, err)
	}
	delete(m.listings, id)
	m.owners[id] = buyer
	m.balances[seller]--
	if m.balances[seller] == 0 {
		delete(m.balances, seller)
	}
	m.balances[buyer]++

	m.emit.Emit(domain.CertificatePurchased{ID: id, Seller: seller, Buyer: buyer, Price: price})
	return nil
}

func (m *Market) OwnerOf(id uint64) (domain.Address, bool) {
	o, ok := m.owners[id]
	return o, ok
}

func (m *Market) BalanceOf(owner domain.Address) int {
	return m.balances[owner]
}

// Listing returns the asking price of id.
func (m *Market) Listing(id uint64) (domain.Amount, bool) {
	p, ok := m.listings[id]
	return p, ok
}

// Listed returns the ids of every listed certificate, ascending.
func (m *Market) Listed() []uint64 {
	ids := make([]uint64, 0, len(m.listings))
	for id := range m.listings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Holds reports whether owner has a certificate of this collection.
func (m *Market) Holds(collection, owner domain.Address) bool {
	return collection == m.self && m.balances[owner] > 0
}

func (m *Market) Checkpoint() (revert func()) {
	owners := make(map[uint64]domain.Address, len(m.owners))
	for k, v := range m.owners {
		owners[k] = v
	}
	balances := make(map[domain.Address]int, len(m.balances))
	for k, v := range m.balances {
		balances[k] = v
	}
	listings := make(map[uint64]domain.Amount, len(m.listings))
	for k, v := range m.listings {
		listings[k] = v
	}
	lastID := m.lastID
	revertVT := domain.Checkpoint(m.vt)
	return func() {
		revertVT()
		m.owners, m.balances, m.listings, m.lastID = owners, balances, listings, lastID
	}
}

func (m *Market) requireHolder(op string, caller domain.Address, id uint64) error {
	owner, ok := m.owners[id]
	if !ok {
		return domain.Fail(op, domain.ErrNotFound, "certificate %d", id)
	}
	if caller != owner {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s does not own certificate %d", caller, id)
	}
	return nil
}
