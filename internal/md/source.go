package md

import "context"

type Bar struct {
	Symbol    string
	Timestamp int64
	Close     float64
}

type BarHandler func(Bar)

// Source delivers bars to a handler until it runs out, fails or ctx is done.
type Source interface {
	Run(ctx context.Context, handler BarHandler) error
}
