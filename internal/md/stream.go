package md

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
	"github.com/rs/zerolog"
)

// StreamSource forwards live Alpaca bars for a single symbol.
type StreamSource struct {
	APIKey    string
	APISecret string
	Feed      string
	Symbol    string
	Logger    zerolog.Logger
}

func (s StreamSource) Run(ctx context.Context, handler BarHandler) error {
	client := stream.NewStocksClient(
		parseFeed(s.Feed),
		stream.WithCredentials(s.APIKey, s.APISecret),
	)

	// Connect must happen before subscribing in this SDK version.
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect market data stream: %w", err)
	}
	s.Logger.Debug().Str("symbol", s.Symbol).Str("feed", s.Feed).Msg("connected to stream")

	if err := client.SubscribeToBars(func(bar stream.Bar) {
		s.Logger.Debug().
			Str("symbol", bar.Symbol).
			Time("timestamp", bar.Timestamp).
			Float64("close", bar.Close).
			Msg("received bar")
		handler(Bar{
			Symbol:    bar.Symbol,
			Timestamp: bar.Timestamp.Unix(),
			Close:     bar.Close,
		})
	}, s.Symbol); err != nil {
		return fmt.Errorf("subscribe to bars: %w", err)
	}
	s.Logger.Info().Str("symbol", s.Symbol).Msg("subscribed to bars")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-client.Terminated():
		if err != nil {
			return fmt.Errorf("market data stream terminated: %w", err)
		}
		return nil
	}
}

func parseFeed(feed string) marketdata.Feed {
	switch feed {
	case "sip":
		return marketdata.SIP
	case "test":
		return marketdata.Feed("test")
	default:
		return marketdata.IEX
	}
}
