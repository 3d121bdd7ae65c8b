package test

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	tcWait "github.com/testcontainers/testcontainers-go/wait"
)

const (
	mySQLDefaultPort  = "3306/tcp"
	mySQLRootPassword = "test_root_password"
	mySQLUser         = "test_user"
	mySQLPassword     = "test_password"
	mySQLDatabase     = "test_database"

	envMySQLPortVariable = "MYSQL_TEST_PORT"
)

//MySQLContainer is a MySQL testcontainer
type MySQLContainer struct {
	dbContainer
}

//NewMySQLContainer starts mysql-server:8.0 container. If MYSQL_TEST_PORT is set, the database at localhost:MYSQL_TEST_PORT is used instead
func NewMySQLContainer(ctx context.Context) (*MySQLContainer, error) {
	mc := &MySQLContainer{
		dbContainer: dbContainer{driver: "mysql", Context: ctx, Host: "localhost", Database: mySQLDatabase, Username: mySQLUser, Password: mySQLPassword},
	}

	port, external, err := portFromEnv(envMySQLPortVariable)
	if err != nil {
		return nil, err
	}
	if external {
		mc.Port = port
	} else if err := mc.start(testcontainers.ContainerRequest{
		Image:        "mysql/mysql-server:8.0",
		ExposedPorts: []string{mySQLDefaultPort},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mySQLRootPassword,
			"MYSQL_USER":          mySQLUser,
			"MYSQL_PASSWORD":      mySQLPassword,
			"MYSQL_DATABASE":      mySQLDatabase,
		},
		WaitingFor: tcWait.ForLog("port: 3306  MySQL Community Server - GPL").WithStartupTimeout(time.Second * 180),
	}, mySQLDefaultPort); err != nil {
		return nil, err
	}

	// [user[:password]@][net[(addr)]]/dbname[?param1=value1&paramN=valueN]
	if err := mc.open(fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", mySQLUser, mySQLPassword, mc.Host, mc.Port, mySQLDatabase)); err != nil {
		mc.Close()
		return nil, err
	}

	return mc, nil
}

func (mc *MySQLContainer) CountRows(table string) (int, error) {
	return mc.countRows(fmt.Sprintf("SELECT count(*) FROM `%s`.`%s`", mc.Database, table))
}

//SelectInts returns values of column ordered by it
func (mc *MySQLContainer) SelectInts(table, column string) ([]int, error) {
	return mc.selectInts(fmt.Sprintf("SELECT `%s` FROM `%s`.`%s` ORDER BY 1", column, mc.Database, table))
}
