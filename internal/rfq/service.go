// Package rfq orchestrates the RFQ lifecycle: ownership-gated mutation,
// id generation, signature binding, and query mapping over the entity store.
package rfq

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/internal/entitystore"
	"github.com/quotedesk/rfq-client/internal/metrics"
	"github.com/quotedesk/rfq-client/internal/query"
	"github.com/quotedesk/rfq-client/internal/retry"
	"github.com/quotedesk/rfq-client/internal/signer"
	"github.com/quotedesk/rfq-client/internal/validate"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// Service is the RFQ lifecycle manager. The signer is fixed at
// construction; a Service without one can read and query but fails every
// mutating call with a SignatureError before touching the store.
type Service struct {
	logger *zap.Logger
	store  entitystore.Store
	signer signer.Signer
	exec   *retry.Executor
}

// NewService wires a lifecycle manager over the given store. sig may be
// nil for a read-only client.
func NewService(logger *zap.Logger, store entitystore.Store, sig signer.Signer, retryCfg retry.Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger: logger,
		store:  store,
		signer: sig,
		exec:   retry.New(retryCfg, logger),
	}
}

// newID builds a collision-resistant identifier from the lower-cased
// creator, the current timestamp, and a random suffix. Uniqueness is
// probabilistic; the store does not enforce it.
func newID(creator string, now int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "rfq-" + strings.ToLower(creator) + "-" + strconv.FormatInt(now, 10) + "-" + suffix
}

func (s *Service) signerAddress(ctx context.Context) (string, error) {
	if s.signer == nil {
		return "", &model.SignatureError{Reason: "no signer configured"}
	}
	addr, err := s.signer.Address(ctx)
	if err != nil {
		return "", &model.SignatureError{Reason: "failed to resolve signer address", Err: err}
	}
	return addr, nil
}

func (s *Service) sign(ctx context.Context, r model.RFQ) (string, error) {
	payload, err := Payload(r)
	if err != nil {
		return "", &model.SignatureError{Reason: "failed to serialize payload", Err: err}
	}
	sig, err := s.signer.SignPayload(ctx, payload)
	if err != nil {
		return "", &model.SignatureError{Reason: "signing failed", Err: err}
	}
	return sig, nil
}

// Create validates the input, assembles a fresh OPEN record signed by the
// configured account, and persists it.
func (s *Service) Create(ctx context.Context, input model.CreateRFQInput) (*model.RFQ, error) {
	if err := validate.CreateInput(input); err != nil {
		metrics.IncOperation("create", "invalid")
		return nil, err
	}

	creator, err := s.signerAddress(ctx)
	if err != nil {
		metrics.IncOperation("create", "error")
		return nil, err
	}

	now := time.Now().Unix()
	r := model.RFQ{
		ID:                       newID(creator, now),
		Creator:                  creator,
		BaseToken:                input.BaseToken,
		QuoteToken:               input.QuoteToken,
		BaseAmount:               input.BaseAmount,
		QuoteAmount:              input.QuoteAmount,
		ExpiresIn:                input.ExpiresIn,
		Status:                   model.StatusOpen,
		CreatedAt:                now,
		UpdatedAt:                now,
		MinFillAmount:            input.MinFillAmount,
		CounterpartyRestrictions: input.CounterpartyRestrictions,
	}

	s.logger.Info("rfq.create.start",
		zap.String("id", r.ID),
		zap.String("creator", creator),
		zap.String("base_amount", r.BaseAmount),
		zap.String("quote_amount", r.QuoteAmount))

	stored, err := s.persist(ctx, "store.write", r)
	if err != nil {
		metrics.IncOperation("create", "error")
		return nil, err
	}

	metrics.IncOperation("create", "ok")
	s.logger.Info("rfq.created", zap.String("id", stored.ID))
	return stored, nil
}

// Get returns the RFQ, or (nil, nil) when the id has no record.
func (s *Service) Get(ctx context.Context, id string) (*model.RFQ, error) {
	if err := validate.RFQID(id); err != nil {
		return nil, err
	}

	ent, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, nil
	}

	r, err := FromEntity(*ent)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Update merges the partial input over the current record after ownership
// and OPEN-state checks, re-signs, and persists.
func (s *Service) Update(ctx context.Context, id string, input model.UpdateRFQInput) (*model.RFQ, error) {
	if err := validate.RFQID(id); err != nil {
		metrics.IncOperation("update", "invalid")
		return nil, err
	}

	current, err := s.requireOwned(ctx, id)
	if err != nil {
		metrics.IncOperation("update", "error")
		return nil, err
	}
	if current.Status != model.StatusOpen {
		metrics.IncOperation("update", "error")
		return nil, &model.OwnershipError{ID: id, Reason: "rfq is " + string(current.Status) + ", only OPEN rfqs can be modified"}
	}

	merged := merge(*current, input)

	// updatedAt advances strictly, even within the same second.
	now := time.Now().Unix()
	if now <= current.UpdatedAt {
		now = current.UpdatedAt + 1
	}
	merged.UpdatedAt = now

	stored, err := s.persist(ctx, "store.write", merged)
	if err != nil {
		metrics.IncOperation("update", "error")
		return nil, err
	}

	metrics.IncOperation("update", "ok")
	s.logger.Info("rfq.updated",
		zap.String("id", id),
		zap.String("status", string(stored.Status)))
	return stored, nil
}

// Cancel marks the RFQ CANCELLED. Sugar for Update with a status change.
func (s *Service) Cancel(ctx context.Context, id string) (*model.RFQ, error) {
	status := model.StatusCancelled
	return s.Update(ctx, id, model.UpdateRFQInput{Status: &status})
}

// Delete removes the RFQ. Owner-only, permitted regardless of status.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validate.RFQID(id); err != nil {
		metrics.IncOperation("delete", "invalid")
		return err
	}

	if _, err := s.requireOwned(ctx, id); err != nil {
		metrics.IncOperation("delete", "error")
		return err
	}

	err := s.exec.Do(ctx, "store.delete", func(ctx context.Context) error {
		start := time.Now()
		defer metrics.ObserveStoreCall("delete", start)
		return s.store.Delete(ctx, query.EntityTypeRFQ, id)
	})
	if err != nil {
		metrics.IncOperation("delete", "error")
		return err
	}

	metrics.IncOperation("delete", "ok")
	s.logger.Info("rfq.deleted", zap.String("id", id))
	return nil
}

// Query returns a filtered, sorted page of RFQs.
func (s *Service) Query(ctx context.Context, filters model.QueryFilters, sort *model.SortOptions, pagination *model.PaginationOptions) (*model.QueryResult, error) {
	q := query.Translate(filters, sort, pagination)

	res, err := retry.Value(ctx, s.exec, "store.query", func(ctx context.Context) (*entitystore.Result, error) {
		start := time.Now()
		defer metrics.ObserveStoreCall("query", start)
		return s.store.Query(ctx, q)
	})
	if err != nil {
		metrics.IncOperation("query", "error")
		return nil, err
	}

	out := &model.QueryResult{
		RFQs:       make([]model.RFQ, 0, len(res.Entities)),
		Total:      res.Total,
		HasMore:    res.NextCursor != "",
		NextCursor: res.NextCursor,
	}
	for _, e := range res.Entities {
		r, err := FromEntity(e)
		if err != nil {
			return nil, err
		}
		out.RFQs = append(out.RFQs, r)
	}

	metrics.IncOperation("query", "ok")
	return out, nil
}

// fetch reads the stored entity, retried.
func (s *Service) fetch(ctx context.Context, id string) (*entitystore.Entity, error) {
	return retry.Value(ctx, s.exec, "store.get", func(ctx context.Context) (*entitystore.Entity, error) {
		start := time.Now()
		defer metrics.ObserveStoreCall("get", start)
		return s.store.Get(ctx, query.EntityTypeRFQ, id)
	})
}

// requireOwned loads the record and verifies the configured signer is its
// creator. Returns RFQNotFoundError when absent.
func (s *Service) requireOwned(ctx context.Context, id string) (*model.RFQ, error) {
	caller, err := s.signerAddress(ctx)
	if err != nil {
		return nil, err
	}

	ent, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, &model.RFQNotFoundError{ID: id}
	}

	current, err := FromEntity(*ent)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(caller, current.Creator) {
		s.logger.Warn("rfq.ownership_denied",
			zap.String("id", id),
			zap.String("caller", caller),
			zap.String("creator", current.Creator))
		return nil, &model.OwnershipError{ID: id, Reason: "caller is not the creator"}
	}
	return &current, nil
}

// persist signs the full record and writes it, retried; the stored entity
// is mapped back to the domain RFQ.
func (s *Service) persist(ctx context.Context, op string, r model.RFQ) (*model.RFQ, error) {
	sig, err := s.sign(ctx, r)
	if err != nil {
		return nil, err
	}

	ent, err := ToEntity(r, sig)
	if err != nil {
		return nil, err
	}

	stored, err := retry.Value(ctx, s.exec, op, func(ctx context.Context) (entitystore.Entity, error) {
		start := time.Now()
		defer metrics.ObserveStoreCall("write", start)
		return s.store.Write(ctx, ent)
	})
	if err != nil {
		return nil, err
	}

	out, err := FromEntity(stored)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// merge applies the partial update over the current record. Identity,
// tokens, and the creation timestamp are immutable.
func merge(current model.RFQ, input model.UpdateRFQInput) model.RFQ {
	out := current
	if input.BaseAmount != nil {
		out.BaseAmount = *input.BaseAmount
	}
	if input.QuoteAmount != nil {
		out.QuoteAmount = *input.QuoteAmount
	}
	if input.ExpiresIn != nil {
		out.ExpiresIn = *input.ExpiresIn
	}
	if input.Status != nil {
		out.Status = *input.Status
	}
	if input.MinFillAmount != nil {
		out.MinFillAmount = *input.MinFillAmount
	}
	if input.CounterpartyRestrictions != nil {
		out.CounterpartyRestrictions = input.CounterpartyRestrictions
	}
	return out
}
