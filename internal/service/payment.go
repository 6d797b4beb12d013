package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrPaymentDeclined = errors.New("payment declined by gateway")

// PaymentGateway charges the order total. The real integration would sit
// behind this interface; the storefront ships with a simulator.
type PaymentGateway interface {
	Charge(ctx context.Context, userID string, amount float64) error
}

// SimulatedGateway mimics an external payment provider: a fixed processing
// delay followed by a small random chance of a decline. The delay honors
// context cancellation so an abandoned request stops the in-flight charge.
type SimulatedGateway struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedGateway(delay time.Duration, failureRate float64) *SimulatedGateway {
	return &SimulatedGateway{
		delay:       delay,
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, _ string, _ float64) error {
	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll < g.failureRate {
		return ErrPaymentDeclined
	}
	return nil
}

// BreakerGateway wraps a gateway with a circuit breaker so a dead payment
// provider fails fast instead of eating the simulated delay on every request.
type BreakerGateway struct {
	next PaymentGateway
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerGateway(next PaymentGateway) *BreakerGateway {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
	}
	return &BreakerGateway{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *BreakerGateway) Charge(ctx context.Context, userID string, amount float64) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Charge(ctx, userID, amount)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrPaymentDeclined
	}
	return err
}
