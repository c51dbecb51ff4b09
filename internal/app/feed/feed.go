// Package feed pushes ledger and order change events to subscribed clients.
// It replaces implicit store-level realtime sync with explicit per-user redis
// channels bridged to browsers over server-sent events.
package feed

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
)

// AdminChannel carries every event, for the staff console firehose.
const AdminChannel = "admin"

func walletChannel(userID uuid.UUID) string {
	return "wallet:" + userID.String()
}

func ordersChannel(userID uuid.UUID) string {
	return "orders:" + userID.String()
}

type Event struct {
	Kind    string      `json:"kind"` // transaction | order
	Payload interface{} `json:"payload"`
}

type Publisher struct {
	rdb    *redis.Client
	logger logger.Logger
}

func (p *Publisher) LoggerComponent() string {
	return "Feed.Publisher"
}

func NewPublisher(rdb *redis.Client) *Publisher {
	p := &Publisher{rdb: rdb}
	p.logger = logger.Global().Component(p)
	return p
}

// NewNop returns a publisher that drops every event. Used in tests.
func NewNop() *Publisher {
	p := &Publisher{}
	p.logger = logger.Global().Component(p)
	return p
}

// WalletChanged announces a new or settled ledger entry. Best effort: a
// failed publish is logged and never fails the write path that triggered it.
func (p *Publisher) WalletChanged(ctx context.Context, t *model.Transaction) {
	e := Event{Kind: "transaction", Payload: t}
	p.publish(ctx, walletChannel(t.UserID), e)
	p.publish(ctx, AdminChannel, e)
}

// OrderChanged announces an order creation or status transition.
func (p *Publisher) OrderChanged(ctx context.Context, o *model.Order) {
	e := Event{Kind: "order", Payload: o}
	p.publish(ctx, ordersChannel(o.UserID), e)
	p.publish(ctx, AdminChannel, e)
}

// Subscribe opens a subscription covering one user's wallet and order
// channels. The caller owns the returned PubSub and must close it.
func (p *Publisher) Subscribe(ctx context.Context, userID uuid.UUID) *redis.PubSub {
	return p.rdb.Subscribe(ctx, walletChannel(userID), ordersChannel(userID))
}

// SubscribeAdmin opens a subscription to the firehose channel.
func (p *Publisher) SubscribeAdmin(ctx context.Context) *redis.PubSub {
	return p.rdb.Subscribe(ctx, AdminChannel)
}

func (p *Publisher) publish(ctx context.Context, channel string, e Event) {
	if p.rdb == nil {
		return
	}

	b, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Event encode failed")
		return
	}

	if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
		p.logger.Warn().Err(err).Str("channel", channel).Msg("Publish failed")
	}
}
