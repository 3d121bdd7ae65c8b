package test

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcWait "github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgDefaultPort = "5432/tcp"
	pgUser        = "test"
	pgPassword    = "test"
	pgDatabase    = "test"
	pgSchema      = "public"

	envPostgresPortVariable = "PG_TEST_PORT"
)

//PostgresContainer is a Postgres testcontainer
type PostgresContainer struct {
	dbContainer

	Schema string
}

//NewPostgresContainer starts postgres:12-alpine container. If PG_TEST_PORT is set, the database at localhost:PG_TEST_PORT is used instead
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	pgc := &PostgresContainer{
		dbContainer: dbContainer{driver: "postgres", Context: ctx, Host: "localhost", Database: pgDatabase, Username: pgUser, Password: pgPassword},
		Schema:      pgSchema,
	}

	port, external, err := portFromEnv(envPostgresPortVariable)
	if err != nil {
		return nil, err
	}
	if external {
		pgc.Port = port
	} else {
		dbURL := func(port nat.Port) string {
			return fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", pgUser, pgPassword, port.Port(), pgDatabase)
		}
		if err := pgc.start(testcontainers.ContainerRequest{
			Image:        "postgres:12-alpine",
			ExposedPorts: []string{pgDefaultPort},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: tcWait.ForSQL(pgDefaultPort, "postgres", dbURL).Timeout(time.Second * 60),
		}, pgDefaultPort); err != nil {
			return nil, err
		}
	}

	if err := pgc.open(fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		pgc.Host, pgc.Port, pgDatabase, pgUser, pgPassword)); err != nil {
		pgc.Close()
		return nil, err
	}

	return pgc, nil
}

//CountRows returns row count in DB table with name = table
//or error if occurred
func (pgc *PostgresContainer) CountRows(table string) (int, error) {
	return pgc.countRows(fmt.Sprintf(`SELECT count(*) FROM "%s"."%s"`, pgc.Schema, table))
}

//SelectInts returns values of column ordered by it
func (pgc *PostgresContainer) SelectInts(table, column string) ([]int, error) {
	return pgc.selectInts(fmt.Sprintf(`SELECT "%s" FROM "%s"."%s" ORDER BY 1`, column, pgc.Schema, table))
}
