package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// Publisher announces committed ledger changes.
type Publisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error
}

// LedgerService runs ledger mutations and, once they are saved, logs and
// publishes them. Publishing is best effort: the local save is the source
// of truth and a publish failure never fails the operation.
type LedgerService struct {
	ledger    *ledger.Ledger
	publisher Publisher
	log       *log.Logger
	events    *log.StructuredLogger
}

// NewLedgerService wraps l. publisher and logger may be nil.
func NewLedgerService(l *ledger.Ledger, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.Config{Handler: slog.Default().Handler(), Component: log.ComponentLedger})
	}
	return &LedgerService{
		ledger:    l,
		publisher: publisher,
		log:       logger.WithComponent(log.ComponentLedger),
		events:    log.NewStructuredLogger(logger),
	}
}

func (s *LedgerService) Owner() string {
	return s.ledger.Owner()
}

// AddExpense records a new expense under category.
func (s *LedgerService) AddExpense(ctx context.Context, category string, amount core.Money, description string) error {
	if err := s.ledger.Add(ctx, category, amount, description); err != nil {
		s.logFailure(ctx, log.OpAdd, category, -1, err)
		return err
	}
	recs, _ := s.ledger.ListExpenses().Records(category)
	s.committed(ctx, amqp.OpAdd, category, len(recs)-1, amount, description)
	return nil
}

// EditExpense replaces the record at index in category.
func (s *LedgerService) EditExpense(ctx context.Context, category string, index int, amount core.Money, description string) error {
	if err := s.ledger.Edit(ctx, category, index, amount, description); err != nil {
		s.logFailure(ctx, log.OpEdit, category, index, err)
		return err
	}
	s.committed(ctx, amqp.OpEdit, category, index, amount, description)
	return nil
}

// DeleteExpense removes the record at index in category.
func (s *LedgerService) DeleteExpense(ctx context.Context, category string, index int) error {
	var removed core.ExpenseRecord
	if recs, ok := s.ledger.ListExpenses().Records(category); ok && index >= 0 && index < len(recs) {
		removed = recs[index]
	}
	if err := s.ledger.Delete(ctx, category, index); err != nil {
		s.logFailure(ctx, log.OpDelete, category, index, err)
		return err
	}
	s.committed(ctx, amqp.OpDelete, category, index, removed.Amount, removed.Description)
	return nil
}

func (s *LedgerService) TotalExpenses() core.Money {
	return s.ledger.TotalExpenses()
}

func (s *LedgerService) TotalsByCategory() []core.CategoryAmount {
	return s.ledger.TotalsByCategory()
}

func (s *LedgerService) ListExpenses() core.LedgerState {
	return s.ledger.ListExpenses()
}

func (s *LedgerService) Report(ctx context.Context, period core.Period) (core.Report, error) {
	rep, err := s.ledger.Report(period)
	if err != nil {
		s.logFailure(ctx, log.OpReport, "", -1, err)
		return core.Report{}, err
	}
	s.log.DebugContext(ctx, "Report generated",
		log.FieldOwner, rep.Owner,
		log.FieldOperation, log.OpReport,
		log.FieldPeriod, rep.Period.String())
	return rep, nil
}

func (s *LedgerService) committed(ctx context.Context, op amqp.Operation, category string, index int, amount core.Money, description string) {
	owner := s.ledger.Owner()
	s.events.LogLedgerChange(ctx, owner, string(op), category, index, amount.Cents)

	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangeMessage(owner, op, category, index, amount, description)
	if err := s.publisher.PublishLedgerChange(ctx, msg); err != nil {
		s.events.LogError(ctx, "Failed to publish ledger change", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithOwner(owner).WithRecord(category, index, amount.Cents))
	}
}

// logFailure reports storage failures as errors; rejected references are
// user mistakes and only show up at debug level.
func (s *LedgerService) logFailure(ctx context.Context, op, category string, index int, err error) {
	fields := log.NewFields().WithOwner(s.ledger.Owner()).WithRecord(category, index, 0)
	errorType := classify(err)
	if errorType == log.ErrorTypeStorage {
		s.events.LogError(ctx, "Ledger operation failed", err, log.ComponentLedger, op, fields.WithErrorType(errorType))
		return
	}
	s.log.DebugContext(ctx, "Ledger operation rejected",
		log.FieldOperation, op,
		log.FieldCategory, category,
		log.FieldIndex, index,
		log.FieldErrorType, errorType,
		log.FieldError, err)
}
