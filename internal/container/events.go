package container

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mailmetrics/shortlink/internal/analytics"
	analyticsstore "github.com/mailmetrics/shortlink/internal/analytics/store"
	"github.com/mailmetrics/shortlink/internal/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const consumerGroupName = "analytics"

// PublisherPackage provides the event publisher, typed publish functions, and
// the click relay. With Redis configured, events flow over Redis streams to
// the consumer process; without it, an in-process channel keeps dispatch
// best-effort (events are dropped when nothing subscribes).
func PublisherPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		var (
			publisher message.Publisher
			err       error
		)

		if client != nil {
			publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
				Client: client,
			}, watermill.NewStdLogger(false, false))
			if err != nil {
				return nil, err
			}
		} else {
			publisher = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.ClickEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.ClickEvent](group.Publisher(), analytics.TopicClick), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.TrackEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.TrackEvent](group.Publisher(), analytics.TopicTrack), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.RecipientMapping], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.RecipientMapping](group.Publisher(), analytics.TopicRecipientMapping), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Relay, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		publish := do.MustInvoke[messaging.Publish[analytics.ClickEvent]](i)

		return analytics.NewRelay(publish, logger), nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group for the consumer
// process. Events land in the Postgres sink when configured, otherwise in the
// logging no-op store.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		pool := do.MustInvoke[*pgxpool.Pool](i)
		if pool == nil {
			return analyticsstore.NewNoop(logger), nil
		}

		sink := analyticsstore.NewPostgres(pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := sink.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return sink, nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		sink := do.MustInvoke[analytics.Store](i)

		client := do.MustInvoke[*redis.Client](i)
		if client == nil {
			return nil, errors.New("redis is required to consume analytics events")
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroupName,
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicClick,
			func(ctx context.Context, event *analytics.ClickEvent) error {
				return sink.SaveClick(ctx, event)
			}, logger))

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicTrack,
			func(ctx context.Context, event *analytics.TrackEvent) error {
				return sink.SaveTrack(ctx, event)
			}, logger))

		group.Add(messaging.NewConsumer(subscriber, analytics.TopicRecipientMapping,
			func(ctx context.Context, mapping *analytics.RecipientMapping) error {
				return sink.SaveRecipientMapping(ctx, mapping)
			}, logger))

		return group, nil
	})
}
