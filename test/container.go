package test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-connections/nat"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/testcontainers/testcontainers-go"
)

//dbContainer is a database in a docker container or an external one (CI environment)
type dbContainer struct {
	datasource *sql.DB
	driver     string

	Container testcontainers.Container
	Context   context.Context
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
}

//portFromEnv returns port of an external test database if variable is set
func portFromEnv(variable string) (int, bool, error) {
	value := os.Getenv(variable)
	if value == "" {
		return 0, false, nil
	}

	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a port number: %v", variable, err)
	}
	return port, true, nil
}

//start runs the container and fills Host and Port with its mapped address
func (dc *dbContainer) start(request testcontainers.ContainerRequest, port nat.Port) error {
	container, err := testcontainers.GenericContainer(dc.Context, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return err
	}
	dc.Container = container

	host, err := container.Host(dc.Context)
	if err != nil {
		dc.Close()
		return err
	}
	mapped, err := container.MappedPort(dc.Context, port)
	if err != nil {
		dc.Close()
		return err
	}

	dc.Host = host
	dc.Port = mapped.Int()
	return nil
}

//open connects to the database with connectionString
func (dc *dbContainer) open(connectionString string) error {
	dataSource, err := sql.Open(dc.driver, connectionString)
	if err != nil {
		return err
	}
	if err := dataSource.PingContext(dc.Context); err != nil {
		dataSource.Close()
		return err
	}

	dc.datasource = dataSource
	return nil
}

//Exec executes statements one by one directly (not through adapters)
func (dc *dbContainer) Exec(statements ...string) error {
	for _, statement := range statements {
		if _, err := dc.datasource.ExecContext(dc.Context, statement); err != nil {
			return fmt.Errorf("%s: %v", statement, err)
		}
	}

	return nil
}

func (dc *dbContainer) countRows(query string) (int, error) {
	var count int
	if err := dc.datasource.QueryRowContext(dc.Context, query).Scan(&count); err != nil {
		return -1, err
	}

	return count, nil
}

func (dc *dbContainer) selectInts(query string) ([]int, error) {
	rows, err := dc.datasource.QueryContext(dc.Context, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []int{}
	for rows.Next() {
		var value int
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

//Close terminates the docker container (if started) and closes the connection
func (dc *dbContainer) Close() error {
	if dc.datasource != nil {
		if err := dc.datasource.Close(); err != nil {
			logging.Errorf("failed to close %s datasource: %v", dc.driver, err)
		}
	}

	if dc.Container != nil {
		if err := dc.Container.Terminate(dc.Context); err != nil {
			logging.Errorf("Failed to stop %s container: %v", dc.driver, err)
		}
	}

	return nil
}
