// internal/command/translator.go
package command

import (
	"errors"

	"go.uber.org/zap"

	"epos-bridge/pkg/driver"
)

// Status classifies what happened to one record
type Status string

const (
	StatusForwarded      Status = "forwarded"
	StatusMissingID      Status = "missing_id"
	StatusUnknownCommand Status = "unknown_command"
	StatusMalformed      Status = "malformed"
	StatusDecodeFailed   Status = "decode_failed"
	StatusUnmapped       Status = "unmapped"
	StatusNoPrinter      Status = "no_printer"
	StatusDriverError    Status = "driver_error"
)

// AllStatuses lists every status in reporting order
var AllStatuses = []Status{
	StatusForwarded,
	StatusMissingID,
	StatusUnknownCommand,
	StatusMalformed,
	StatusDecodeFailed,
	StatusUnmapped,
	StatusNoPrinter,
	StatusDriverError,
}

// Outcome is the diagnostic result of translating one record
type Outcome struct {
	Command string
	Status  Status
	Err     error
}

// Forwarded reports whether the driver accepted the operation
func (o Outcome) Forwarded() bool {
	return o.Status == StatusForwarded
}

// Translator converts records into driver calls. It holds no per-call
// state and is safe for concurrent use.
type Translator struct {
	logger *zap.Logger
}

// NewTranslator creates a translator
func NewTranslator(logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		logger: logger.With(zap.String("component", "translator")),
	}
}

// Interpret validates a record and returns the operation it describes
// without touching any driver.
func (t *Translator) Interpret(r Record) (Operation, error) {
	id, err := r.ID()
	if err != nil {
		return nil, err
	}

	parse, ok := rules[id]
	if !ok {
		return nil, ErrUnknownCommand
	}

	return parse(r)
}

// Translate forwards the operation described by r to p. Failures never
// propagate: the record is dropped and the returned outcome says why.
func (t *Translator) Translate(p driver.Printer, r Record) Outcome {
	id, _ := r.ID()
	outcome := Outcome{Command: id}

	if p == nil {
		outcome.Status = StatusNoPrinter
		return outcome
	}

	op, err := t.Interpret(r)
	if err != nil {
		outcome.Status = classify(err)
		outcome.Err = err
		t.logDropped(outcome)
		return outcome
	}

	if err := op.Apply(p); err != nil {
		outcome.Status = StatusDriverError
		outcome.Err = err
		t.logger.Error("Driver rejected operation",
			zap.String("command", id),
			zap.Error(err),
		)
		return outcome
	}

	outcome.Status = StatusForwarded
	return outcome
}

// TranslateAll translates records in order and returns one outcome per record
func (t *Translator) TranslateAll(p driver.Printer, records []Record) []Outcome {
	outcomes := make([]Outcome, 0, len(records))
	for _, r := range records {
		outcomes = append(outcomes, t.Translate(p, r))
	}
	return outcomes
}

func (t *Translator) logDropped(o Outcome) {
	switch o.Status {
	case StatusMissingID:
		t.logger.Debug("Record without command id ignored")
	case StatusUnknownCommand:
		t.logger.Warn("Command not supported", zap.String("command", o.Command))
	default:
		t.logger.Debug("Record dropped",
			zap.String("command", o.Command),
			zap.String("status", string(o.Status)),
			zap.Error(o.Err),
		)
	}
}

func classify(err error) Status {
	switch {
	case errors.Is(err, ErrMissingID):
		return StatusMissingID
	case errors.Is(err, ErrUnknownCommand):
		return StatusUnknownCommand
	case errors.Is(err, ErrImageDecode):
		return StatusDecodeFailed
	case errors.Is(err, ErrUnmappedToken):
		return StatusUnmapped
	default:
		return StatusMalformed
	}
}
