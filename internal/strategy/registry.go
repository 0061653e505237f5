package strategy

import (
	"errors"
	"fmt"
	"sort"
)

const (
	NameMeanReversion = "meanreversion"
	NameMomentum      = "momentum"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// UnknownStrategyError reports a name with no registered strategy.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy: %s", e.Name)
}

func (e *UnknownStrategyError) Is(target error) bool {
	return target == ErrUnknownStrategy
}

var registry = map[string]func() Strategy{
	NameMeanReversion: func() Strategy { return NewMeanReversion() },
	NameMomentum:      func() Strategy { return NewMomentum() },
}

// New builds the strategy registered under name. Names are matched exactly.
func New(name string) (Strategy, error) {
	build, ok := registry[name]
	if !ok {
		return nil, &UnknownStrategyError{Name: name}
	}
	return build(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
