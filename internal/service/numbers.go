package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/elgransazon/pos-backend/internal/repository"
)

// maxNumberAttempts bounds the uniqueness retry loop. Exhausting it means
// something is badly wrong with the counter, so the command fails loudly
// instead of spinning.
const maxNumberAttempts = 100

// NumberGenerator issues public order numbers of the form ORD-YYYYMMDD-NNN.
// The daily sequence lives in Redis when available; without Redis it is
// reseeded from the highest number already persisted, and the uniqueness
// check below absorbs any race between two generators.
type NumberGenerator struct {
	rdb    *redis.Client // nil when Redis is unavailable
	orders *repository.OrderRepo
}

// NewNumberGenerator wires the generator. rdb may be nil; the generator then
// works purely off the database.
func NewNumberGenerator(rdb *redis.Client, orders *repository.OrderRepo) *NumberGenerator {
	return &NumberGenerator{rdb: rdb, orders: orders}
}

// Next returns a fresh, unused order number for the given day. Each
// candidate is checked against the orders table; a collision advances the
// sequence and retries, up to maxNumberAttempts times.
func (g *NumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	day := now.Format("20060102")
	prefix := "ORD-" + day + "-"

	seq, err := g.nextSequence(ctx, day, prefix)
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := fmt.Sprintf("%s%03d", prefix, seq)
		taken, err := g.orders.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
		seq, err = g.bump(ctx, day, seq)
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("order number generation exhausted %d attempts for %s", maxNumberAttempts, prefix)
}

// nextSequence produces the first candidate sequence for today.
func (g *NumberGenerator) nextSequence(ctx context.Context, day, prefix string) (int, error) {
	if g.rdb != nil {
		key := "order_seq:" + day
		seq, err := g.rdb.Incr(ctx, key).Result()
		if err == nil {
			// Best effort; the key is day-scoped and harmless if it lingers.
			g.rdb.Expire(ctx, key, 48*time.Hour)
			return int(seq), nil
		}
		log.Printf("numbers: redis INCR failed, falling back to database: %v", err)
	}
	last, err := g.orders.LastSequenceForPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// bump advances the sequence after a collision, via Redis when possible so
// concurrent generators keep diverging.
func (g *NumberGenerator) bump(ctx context.Context, day string, seq int) (int, error) {
	if g.rdb != nil {
		if next, err := g.rdb.Incr(ctx, "order_seq:"+day).Result(); err == nil {
			return int(next), nil
		}
	}
	return seq + 1, nil
}
