package pipeline

import (
	"log/slog"

	"github.com/roach88/temporalq/internal/nullability"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/translate"
)

// Services holds the replaceable stage implementations.
type Services struct {
	Translators translate.Factory
	Tables      translate.TableFactory
	Processors  nullability.Factory
	Generators  sqlgen.Factory
	Logger      *slog.Logger
	IDs         IDGenerator
}

// DefaultServices returns the base implementation of every slot.
func DefaultServices() *Services {
	return &Services{
		Translators: translate.DefaultFactory{},
		Tables:      translate.DefaultTableFactory{},
		Processors:  nullability.DefaultFactory{},
		Generators:  sqlgen.DefaultFactory{},
		Logger:      slog.Default(),
		IDs:         UUIDv7Generator{},
	}
}

// withDefaults fills nil slots from DefaultServices.
func (s *Services) withDefaults() *Services {
	d := DefaultServices()
	out := *s
	if out.Translators == nil {
		out.Translators = d.Translators
	}
	if out.Tables == nil {
		out.Tables = d.Tables
	}
	if out.Processors == nil {
		out.Processors = d.Processors
	}
	if out.Generators == nil {
		out.Generators = d.Generators
	}
	if out.Logger == nil {
		out.Logger = d.Logger
	}
	if out.IDs == nil {
		out.IDs = d.IDs
	}
	return &out
}
