//go:build unit || e2e

// Package memstore is an in-memory shared.UnitOfWork for command tests. It
// enforces the same uniqueness and check-and-set rules as the SQL schema.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/review"
	"courier-escrow/internal/infra"
	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
)

// Operation names accepted by FailOn.
const (
	OpBookingCreate  = "bookings.create"
	OpBookingUpdate  = "bookings.update"
	OpEventAppend    = "events.append"
	OpRefundCreate   = "refunds.create"
	OpReviewCreate   = "reviews.create"
	OpStatsUpsert    = "stats.upsert"
	OpWebhookRecord  = "webhooks.record"
	OpListingLookup  = "listings.find"
	OpRatingsForRead = "reviews.ratings"
)

type Store struct {
	mu       sync.Mutex
	listings map[uuid.UUID]shared.ListingSnapshot
	bookings map[uuid.UUID]booking.Record
	events   []booking.Event
	refunds  map[uuid.UUID]shared.RefundRecord
	reviews  map[uuid.UUID]*review.Review
	stats    map[uuid.UUID]review.Stats
	webhooks map[string]shared.WebhookEventRecord
	failures map[string]error

	// BeforeUpdateState runs before each guarded update, outside the store lock.
	// Tests use it to slip in a competing writer.
	BeforeUpdateState func(id uuid.UUID)
}

func New() *Store {
	return &Store{
		listings: make(map[uuid.UUID]shared.ListingSnapshot),
		bookings: make(map[uuid.UUID]booking.Record),
		refunds:  make(map[uuid.UUID]shared.RefundRecord),
		reviews:  make(map[uuid.UUID]*review.Review),
		stats:    make(map[uuid.UUID]review.Stats),
		webhooks: make(map[string]shared.WebhookEventRecord),
		failures: make(map[string]error),
	}
}

func (s *Store) AddListing(l shared.ListingSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

// FailOn makes every later call of op return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// PutBooking stores b as is, bypassing the check-and-set.
func (s *Store) PutBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := b.Snapshot()
	if rec.Version == 0 {
		rec.Version = 1
		b.MarkPersisted(1)
	}
	s.bookings[rec.ID] = rec
}

func (s *Store) Booking(id uuid.UUID) (*booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	return booking.Reconstruct(rec), true
}

func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) Events(bookingID uuid.UUID) []booking.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Event
	for _, ev := range s.events {
		if ev.BookingID == bookingID {
			out = append(out, ev)
		}
	}
	return out
}

func (s *Store) Refunds(bookingID uuid.UUID) []shared.RefundRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refundsFor(bookingID)
}

func (s *Store) Stats(reviewedID uuid.UUID) (review.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[reviewedID]
	return st, ok
}

func (s *Store) ReviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

func (s *Store) WebhookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.webhooks)
}

// Within runs fn against the live maps and undoes its writes if fn fails.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	t := &txn{s: s}
	if err := fn(ctx, t); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return reads{s: s}
}

// failure must be called with mu held.
func (s *Store) failure(op string) error {
	return s.failures[op]
}

func (s *Store) refundsFor(bookingID uuid.UUID) []shared.RefundRecord {
	var rows []shared.RefundRecord
	for _, r := range s.refunds {
		if r.BookingID == bookingID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })
	return rows
}

type txn struct {
	s    *Store
	mu   sync.Mutex
	undo []func()
}

func (t *txn) onRollback(fn func()) {
	t.mu.Lock()
	t.undo = append(t.undo, fn)
	t.mu.Unlock()
}

func (t *txn) rollback() {
	t.mu.Lock()
	undo := t.undo
	t.undo = nil
	t.mu.Unlock()

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

func (t *txn) Bookings() shared.BookingRepository           { return bookingRepo{t} }
func (t *txn) BookingEvents() shared.BookingEventRepository { return eventRepo{t} }
func (t *txn) Refunds() shared.RefundRepository             { return refundRepo{t} }
func (t *txn) Reviews() shared.ReviewRepository             { return reviewRepo{t} }
func (t *txn) RatingStats() shared.RatingStatsRepository    { return statsRepo{t} }
func (t *txn) WebhookEvents() shared.WebhookEventRepository { return webhookRepo{t} }
func (t *txn) Reads() shared.CommandReads                   { return reads{s: t.s} }

type reads struct{ s *Store }

func (r reads) ListingByID(_ context.Context, id uuid.UUID) (*shared.ListingSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(OpListingLookup); err != nil {
		return nil, infra.WrapRepoErr("failed to find listing", err, infra.KindDBFailure)
	}
	l, ok := r.s.listings[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "listing not found")
	}
	return &l, nil
}

type bookingRepo struct{ t *txn }

func (r bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpBookingCreate); err != nil {
		return infra.WrapRepoErr("failed to create booking", err, infra.KindDBFailure)
	}

	rec := b.Snapshot()
	if _, exists := s.bookings[rec.ID]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "booking already exists")
	}
	if rec.PaymentReference != "" {
		for _, other := range s.bookings {
			if other.PaymentReference == rec.PaymentReference {
				return infra.NewRepoErr(infra.KindDuplicateKey, "payment reference already used")
			}
		}
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	s.bookings[rec.ID] = rec
	r.t.onRollback(func() { delete(s.bookings, rec.ID) })
	b.MarkPersisted(rec.Version)
	return nil
}

func (r bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return booking.Reconstruct(rec), nil
}

func (r bookingRepo) FindByPaymentReference(_ context.Context, ref string) (*booking.Booking, error) {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.bookings {
		if rec.PaymentReference != "" && rec.PaymentReference == ref {
			return booking.Reconstruct(rec), nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
}

func (r bookingRepo) UpdateState(_ context.Context, b *booking.Booking, expected booking.State) error {
	s := r.t.s
	if hook := s.BeforeUpdateState; hook != nil {
		hook(b.ID())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpBookingUpdate); err != nil {
		return infra.WrapRepoErr("failed to update booking state", err, infra.KindDBFailure)
	}

	cur, ok := s.bookings[b.ID()]
	if !ok ||
		cur.Status != expected.Status ||
		cur.PaymentStatus != expected.PaymentStatus ||
		cur.Version != expected.Version {
		return infra.NewRepoErr(infra.KindConflict, "booking was modified concurrently")
	}

	next := b.Snapshot()
	next.Version = expected.Version + 1
	s.bookings[next.ID] = next
	r.t.onRollback(func() { s.bookings[cur.ID] = cur })
	b.MarkPersisted(next.Version)
	return nil
}

type eventRepo struct{ t *txn }

func (r eventRepo) Append(_ context.Context, ev booking.Event) error {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpEventAppend); err != nil {
		return infra.WrapRepoErr("failed to append booking event", err, infra.KindDBFailure)
	}
	s.events = append(s.events, ev)
	r.t.onRollback(func() {
		for i := range s.events {
			if s.events[i].ID == ev.ID {
				s.events = append(s.events[:i], s.events[i+1:]...)
				return
			}
		}
	})
	return nil
}

type refundRepo struct{ t *txn }

func (r refundRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]shared.RefundRecord, error) {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refundsFor(bookingID), nil
}

func (r refundRepo) Create(_ context.Context, rec shared.RefundRecord) error {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpRefundCreate); err != nil {
		return infra.WrapRepoErr("failed to create refund", err, infra.KindDBFailure)
	}
	for _, other := range s.refunds {
		if other.IdempotencyKey == rec.IdempotencyKey ||
			(other.BookingID == rec.BookingID && other.Sequence == rec.Sequence) {
			return infra.NewRepoErr(infra.KindDuplicateKey, "refund already recorded")
		}
	}
	s.refunds[rec.ID] = rec
	r.t.onRollback(func() { delete(s.refunds, rec.ID) })
	return nil
}

func (r refundRepo) AttachGatewayID(_ context.Context, id uuid.UUID, gatewayRefundID string) error {
	return r.modify(id, func(rec *shared.RefundRecord) { rec.GatewayRefundID = gatewayRefundID })
}

func (r refundRepo) MarkSucceeded(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.modify(id, func(rec *shared.RefundRecord) {
		rec.Status = shared.RefundSucceeded
		rec.UpdatedAt = at
	})
}

func (r refundRepo) modify(id uuid.UUID, fn func(*shared.RefundRecord)) error {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.refunds[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "refund not found")
	}
	next := cur
	fn(&next)
	s.refunds[id] = next
	r.t.onRollback(func() { s.refunds[id] = cur })
	return nil
}

type reviewRepo struct{ t *txn }

func (r reviewRepo) Create(_ context.Context, rev *review.Review) error {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpReviewCreate); err != nil {
		return infra.WrapRepoErr("failed to create review", err, infra.KindDBFailure)
	}
	for _, other := range s.reviews {
		if other.BookingID() == rev.BookingID() {
			return infra.NewRepoErr(infra.KindDuplicateKey, "review already exists for booking")
		}
	}
	s.reviews[rev.ID()] = rev
	r.t.onRollback(func() { delete(s.reviews, rev.ID()) })
	return nil
}

func (r reviewRepo) RatingsFor(_ context.Context, reviewedID uuid.UUID) ([]review.Rating, error) {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpRatingsForRead); err != nil {
		return nil, infra.WrapRepoErr("failed to load ratings", err, infra.KindDBFailure)
	}
	var out []review.Rating
	for _, rev := range s.reviews {
		if rev.ReviewedID() == reviewedID {
			out = append(out, rev.Rating())
		}
	}
	return out, nil
}

type statsRepo struct{ t *txn }

func (r statsRepo) Upsert(_ context.Context, stats review.Stats) error {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpStatsUpsert); err != nil {
		return infra.WrapRepoErr("failed to upsert rating stats", err, infra.KindDBFailure)
	}
	prev, existed := s.stats[stats.ReviewedID]
	s.stats[stats.ReviewedID] = stats
	r.t.onRollback(func() {
		if existed {
			s.stats[stats.ReviewedID] = prev
			return
		}
		delete(s.stats, stats.ReviewedID)
	})
	return nil
}

type webhookRepo struct{ t *txn }

func (r webhookRepo) Exists(_ context.Context, eventID string) (bool, error) {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.webhooks[eventID]
	return ok, nil
}

func (r webhookRepo) Record(_ context.Context, rec shared.WebhookEventRecord) (bool, error) {
	s := r.t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpWebhookRecord); err != nil {
		return false, infra.WrapRepoErr("failed to record webhook event", err, infra.KindDBFailure)
	}
	if _, ok := s.webhooks[rec.EventID]; ok {
		return false, nil
	}
	s.webhooks[rec.EventID] = rec
	r.t.onRollback(func() { delete(s.webhooks, rec.EventID) })
	return true, nil
}

var _ shared.UnitOfWork = (*Store)(nil)
