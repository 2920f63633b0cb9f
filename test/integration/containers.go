// Package integration starts the throwaway Postgres and Kafka containers
// used by tests built with the integration tag.
package integration

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	platformpg "github.com/dmehra2102/eventia/internal/platform/postgres"
)

type Env struct {
	PG    *postgres.PostgresContainer
	Kafka *kafka.KafkaContainer
	PGURL string
	KAddr []string
	Pool  *pgxpool.Pool
}

// Setup starts Postgres, applies the schema, and starts Kafka when
// withKafka is set.
func Setup(ctx context.Context, withKafka bool) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	env := &Env{}
	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("eventia"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return nil, err
	}
	env.PG = pgC

	if env.PGURL, err = pgC.ConnectionString(ctx, "sslmode=disable"); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	if env.Pool, err = platformpg.Open(ctx, env.PGURL); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	if err := platformpg.EnsureSchema(ctx, env.Pool); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}

	if !withKafka {
		return env, nil
	}
	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("eventia-test"),
	)
	if err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	env.Kafka = kafkaC
	if env.KAddr, err = kafkaC.Brokers(ctx); err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	return env, nil
}

// Seed inserts a buyer, an organizer, a category and one event priced at
// price (empty for a free event).
func (e *Env) Seed(ctx context.Context, eventID, buyerID, price string) error {
	_, err := e.Pool.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, phone) VALUES
			($1, 'buyer@example.com', 'Asha', 'Rao', '9000000000'),
			('organizer-1', 'org@example.com', 'Dev', 'Iyer', '')
		ON CONFLICT (id) DO NOTHING`, buyerID)
	if err != nil {
		return err
	}
	_, err = e.Pool.Exec(ctx, `
		INSERT INTO categories (id, name) VALUES ('cat-music', 'Music') ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return err
	}
	_, err = e.Pool.Exec(ctx, `
		INSERT INTO events (id, title, description, location, image_url, start_date_time, end_date_time, price, is_free, url, category_id, organizer_id)
		VALUES ($1, 'Indie Night', 'Live sets', 'Pune', 'https://img.example.com/1.png',
		        now() + interval '7 days', now() + interval '7 days 4 hours', $2, $3, '', 'cat-music', 'organizer-1')
		ON CONFLICT (id) DO NOTHING`, eventID, price, price == "")
	return err
}

func (e *Env) Teardown(ctx context.Context) {
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.Kafka != nil {
		_ = e.Kafka.Terminate(ctx)
	}
	if e.PG != nil {
		_ = e.PG.Terminate(ctx)
	}
}
