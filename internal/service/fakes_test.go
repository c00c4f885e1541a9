package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/mailer"
	"github.com/mishasvintus/delivery_team_backend/internal/payment"
)

var errTestStore = errors.New("store failure")

type memberRow struct {
	userID string
	role   domain.MemberRole
	status domain.InvitationStatus
}

type teamRow struct {
	team    domain.Team
	members []memberRow
}

type memState struct {
	users         map[string]domain.User
	teams         map[string]*teamRow
	bookings      map[string]domain.Booking
	notifications []domain.Notification
}

func (s *memState) clone() *memState {
	c := &memState{
		users:         make(map[string]domain.User, len(s.users)),
		teams:         make(map[string]*teamRow, len(s.teams)),
		bookings:      make(map[string]domain.Booking, len(s.bookings)),
		notifications: append([]domain.Notification(nil), s.notifications...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.teams {
		c.teams[k] = &teamRow{team: v.team, members: append([]memberRow(nil), v.members...)}
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	return c
}

// memStore is an in-memory stand-in for the Postgres store. A failed
// transaction restores the state it started from.
type memStore struct {
	mu    sync.Mutex
	state *memState

	// failOn makes the named tx operation fail once it is reached.
	failOn string
	// markPaidErr is returned by MarkBookingPaid.
	markPaidErr error
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		users:    make(map[string]domain.User),
		teams:    make(map[string]*teamRow),
		bookings: make(map[string]domain.Booking),
	}}
}

func strPtr(s string) *string { return &s }

func (m *memStore) addUser(id, email, name string, profileRef *string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.users[id] = domain.User{
		UserID:            id,
		Email:             email,
		Name:              name,
		InvitationStatus:  domain.InvitationNone,
		PaymentProfileRef: profileRef,
	}
}

// seedTeam stores a consistent team: every member row gets a matching
// back-reference on its user.
func (m *memStore) seedTeam(id, name, ownerID string, members ...memberRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]memberRow{{userID: ownerID, role: domain.RoleAdmin, status: domain.InvitationAccepted}}, members...)
	m.state.teams[id] = &teamRow{
		team:    domain.Team{TeamID: id, Name: name, OwnerID: ownerID, CreatedAt: time.Now()},
		members: rows,
	}
	for _, r := range rows {
		u := m.state.users[r.userID]
		teamID := id
		u.TeamID = &teamID
		u.InvitationStatus = r.status
		u.IsAdmin = r.role == domain.RoleAdmin && r.status == domain.InvitationAccepted
		m.state.users[r.userID] = u
	}
}

func (m *memStore) addBooking(id, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.bookings[id] = domain.Booking{
		BookingID:     id,
		UserID:        userID,
		PaymentStatus: domain.PaymentUnpaid,
		OrderStatus:   domain.OrderPending,
	}
}

func (m *memStore) user(id string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.users[id]
}

func (m *memStore) booking(id string) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.bookings[id]
}

func (m *memStore) hasTeam(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.state.teams[id]
	return ok
}

func (m *memStore) allTeams() []*domain.Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.state.teams))
	for id := range m.state.teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*domain.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.state.buildTeam(id))
	}
	return out
}

func (m *memStore) allUsers() []domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.state.users))
	for _, u := range m.state.users {
		out = append(out, u)
	}
	return out
}

func (s *memState) buildTeam(id string) *domain.Team {
	row, ok := s.teams[id]
	if !ok {
		return nil
	}
	t := row.team
	t.Members = make([]domain.TeamMember, 0, len(row.members))
	for _, mr := range row.members {
		u := s.users[mr.userID]
		t.Members = append(t.Members, domain.TeamMember{
			UserID:            mr.userID,
			Email:             u.Email,
			Name:              u.Name,
			Role:              mr.role,
			InvitationStatus:  mr.status,
			PaymentProfileRef: u.PaymentProfileRef,
		})
	}
	return &t
}

func (m *memStore) InTx(ctx context.Context, fn func(tx MembershipTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memTx{store: m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memStore) GetTeam(_ context.Context, teamID string) (*domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.state.buildTeam(teamID)
	if t == nil {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *memStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.state.users[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.userByEmail(email)
}

func (s *memState) userByEmail(email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) SetPaymentProfile(_ context.Context, userID, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.state.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.PaymentProfileRef = &ref
	m.state.users[userID] = u
	return nil
}

func (m *memStore) GetBooking(_ context.Context, bookingID string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.state.bookings[bookingID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (m *memStore) MarkBookingPaid(_ context.Context, bookingID string, p domain.BookingPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markPaidErr != nil {
		return m.markPaidErr
	}
	b, ok := m.state.bookings[bookingID]
	if !ok {
		return sql.ErrNoRows
	}
	paidAt := p.PaidAt
	b.PaymentIntentID = &p.PaymentIntentID
	b.PaymentMethodID = &p.PaymentMethodID
	b.PaymentStatus = domain.PaymentPaid
	b.IsPaid = true
	b.PaidAt = &paidAt
	b.OrderStatus = domain.OrderProcessing
	m.state.bookings[bookingID] = b
	return nil
}

func (m *memStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "CreateNotification" {
		return errTestStore
	}
	n.CreatedAt = time.Now().Add(time.Duration(len(m.state.notifications)) * time.Millisecond)
	m.state.notifications = append(m.state.notifications, *n)
	return nil
}

func (m *memStore) ListNotifications(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, 0)
	for i := len(m.state.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := m.state.notifications[i]; n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, notificationID, userID string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.state.notifications {
		n := &m.state.notifications[i]
		if n.NotificationID == notificationID && n.UserID == userID {
			n.Seen = true
			out := *n
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for i := range m.state.notifications {
		n := &m.state.notifications[i]
		if n.UserID == userID && !n.Seen {
			n.Seen = true
			count++
		}
	}
	return count, nil
}

func (m *memStore) CountUnreadNotifications(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.state.notifications {
		if n.UserID == userID && !n.Seen {
			count++
		}
	}
	return count, nil
}

func (m *memStore) notificationsFor(userID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.state.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// memTx runs with the store mutex already held by InTx.
type memTx struct {
	store *memStore
}

func (tx *memTx) fail(op string) error {
	if tx.store.failOn == op {
		return errTestStore
	}
	return nil
}

func (tx *memTx) LockTeam(_ context.Context, teamID string) (*domain.Team, error) {
	t := tx.store.state.buildTeam(teamID)
	if t == nil {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (tx *memTx) LockUser(_ context.Context, userID string) (*domain.User, error) {
	u, ok := tx.store.state.users[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (tx *memTx) LockUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return tx.store.state.userByEmail(email)
}

func (tx *memTx) CreateTeam(_ context.Context, t *domain.Team) error {
	if err := tx.fail("CreateTeam"); err != nil {
		return err
	}
	t.CreatedAt = time.Now()
	row := &teamRow{team: *t}
	row.team.Members = nil
	tx.store.state.teams[t.TeamID] = row
	return nil
}

func (tx *memTx) DeleteTeam(_ context.Context, teamID string) error {
	if err := tx.fail("DeleteTeam"); err != nil {
		return err
	}
	if _, ok := tx.store.state.teams[teamID]; !ok {
		return sql.ErrNoRows
	}
	delete(tx.store.state.teams, teamID)
	return nil
}

func (tx *memTx) AddMember(_ context.Context, teamID string, member domain.TeamMember) error {
	if err := tx.fail("AddMember"); err != nil {
		return err
	}
	row, ok := tx.store.state.teams[teamID]
	if !ok {
		return sql.ErrNoRows
	}
	row.members = append(row.members, memberRow{userID: member.UserID, role: member.Role, status: member.InvitationStatus})
	return nil
}

func (tx *memTx) SetMemberStatus(_ context.Context, teamID, userID string, status domain.InvitationStatus) error {
	if err := tx.fail("SetMemberStatus"); err != nil {
		return err
	}
	row, ok := tx.store.state.teams[teamID]
	if !ok {
		return sql.ErrNoRows
	}
	for i := range row.members {
		if row.members[i].userID == userID {
			row.members[i].status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (tx *memTx) RemoveMember(_ context.Context, teamID, userID string) error {
	if err := tx.fail("RemoveMember"); err != nil {
		return err
	}
	row, ok := tx.store.state.teams[teamID]
	if !ok {
		return sql.ErrNoRows
	}
	for i := range row.members {
		if row.members[i].userID == userID {
			row.members = append(row.members[:i], row.members[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (tx *memTx) SetUserMembership(_ context.Context, userID string, um domain.UserMembership) error {
	if err := tx.fail("SetUserMembership"); err != nil {
		return err
	}
	u, ok := tx.store.state.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.TeamID = um.TeamID
	u.InvitationStatus = um.InvitationStatus
	u.IsAdmin = um.IsAdmin
	tx.store.state.users[userID] = u
	return nil
}

func (tx *memTx) ClearTeamMemberships(_ context.Context, teamID string) ([]string, error) {
	if err := tx.fail("ClearTeamMemberships"); err != nil {
		return nil, err
	}
	var ids []string
	for id, u := range tx.store.state.users {
		if u.TeamID != nil && *u.TeamID == teamID {
			u.TeamID = nil
			u.InvitationStatus = domain.InvitationNone
			u.IsAdmin = false
			tx.store.state.users[id] = u
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type published struct {
	groupID string
	event   string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, groupID, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{groupID: groupID, event: event, payload: payload})
	return nil
}

// fakeProvider serves cards per customer reference.
type fakeProvider struct {
	mu sync.Mutex

	cards      map[string][]domain.PaymentMethod
	listErr    map[string]error
	listed     []string
	customers  int
	createErr  error
	charges    []domain.ProviderChargeRequest
	chargeErr  error
	status     domain.ChargeStatus
	blockUntil <-chan struct{}

	stored      map[string]*domain.ProviderCharge
	retrieveErr error

	defaults  map[string]string
	detached  []string
	updateErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		cards:    make(map[string][]domain.PaymentMethod),
		listErr:  make(map[string]error),
		status:   domain.ChargeSucceeded,
		stored:   make(map[string]*domain.ProviderCharge),
		defaults: make(map[string]string),
	}
}

func (f *fakeProvider) ListCardMethods(_ context.Context, customerRef string) ([]domain.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, customerRef)
	if err := f.listErr[customerRef]; err != nil {
		return nil, err
	}
	return f.cards[customerRef], nil
}

func (f *fakeProvider) CreateCustomer(_ context.Context, profile domain.CustomerProfile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.customers++
	return "cus_" + profile.UserID, nil
}

func (f *fakeProvider) SetDefaultMethod(_ context.Context, customerRef, methodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.defaults[customerRef] = methodID
	return nil
}

func (f *fakeProvider) DetachMethod(_ context.Context, methodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.detached = append(f.detached, methodID)
	for ref, cards := range f.cards {
		kept := cards[:0:0]
		for _, c := range cards {
			if c.ID != methodID {
				kept = append(kept, c)
			}
		}
		f.cards[ref] = kept
	}
	return nil
}

func (f *fakeProvider) CreateCharge(ctx context.Context, req domain.ProviderChargeRequest) (*domain.ProviderCharge, error) {
	if f.blockUntil != nil {
		select {
		case <-f.blockUntil:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	f.charges = append(f.charges, req)
	c := &domain.ProviderCharge{
		ID:       "pi_1",
		Status:   f.status,
		Amount:   req.Amount,
		MethodID: req.MethodID,
		Metadata: req.Metadata,
	}
	f.stored[c.ID] = c
	return c, nil
}

func (f *fakeProvider) RetrieveCharge(_ context.Context, chargeID string) (*domain.ProviderCharge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	c, ok := f.stored[chargeID]
	if !ok {
		return nil, &payment.Error{Code: "resource_missing", Message: "No such payment_intent: '" + chargeID + "'"}
	}
	return c, nil
}
