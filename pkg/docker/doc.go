// Package docker runs throwaway ClickHouse servers for integration tests.
//
// Containers are managed by testcontainers-go. Each one starts from the
// official clickhouse-server alpine image with its data directory on tmpfs
// and is removed by Stop.
//
// # Usage Example
//
//	container := docker.NewWithOptions(docker.DockerOptions{Version: "24.3"})
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
//
//	dsn, _ := container.GetDSN(ctx)
//	client, err := clickhouse.NewClient(ctx, dsn)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
package docker
