package temporal

import (
	"github.com/roach88/temporalq/internal/nullability"
	"github.com/roach88/temporalq/internal/pipeline"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/translate"
)

// TranslatorFactory creates a fresh top-level Visitor per compilation.
type TranslatorFactory struct {
	opts []Option
}

// NewTranslatorFactory creates a factory applying opts to every visitor.
func NewTranslatorFactory(opts ...Option) TranslatorFactory {
	return TranslatorFactory{opts: opts}
}

// Create implements translate.Factory.
func (f TranslatorFactory) Create(deps translate.Dependencies) translate.Visitor {
	return NewVisitor(translate.New(deps), f.opts...)
}

// ProcessorFactory creates nullability processors guarded by Guard.
type ProcessorFactory struct{}

// Create implements nullability.Factory.
func (ProcessorFactory) Create(useRelationalNulls bool) *nullability.Processor {
	return &nullability.Processor{
		UseRelationalNulls: useRelationalNulls,
		Tables:             Guard{Next: nullability.DefaultTableVisitor{}},
	}
}

// GeneratorFactory creates SQL generators that render stamped tables.
type GeneratorFactory struct{}

// Create implements sqlgen.Factory.
func (GeneratorFactory) Create(d sqlgen.Dialect) *sqlgen.Generator {
	return &sqlgen.Generator{
		Dialect: d,
		Tables:  TableWriter{Next: sqlgen.DefaultTableWriter{}},
	}
}

// Register replaces the translator, table, processor and generator slots
// of s with their temporal implementations.
func Register(s *pipeline.Services, opts ...Option) *pipeline.Services {
	s.Translators = NewTranslatorFactory(opts...)
	s.Tables = TableFactory{}
	s.Processors = ProcessorFactory{}
	s.Generators = GeneratorFactory{}
	return s
}
