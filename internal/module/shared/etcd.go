package shared

import (
	"log"
	"os"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// NewEtcdClient dials the endpoints in HUFFCODEC_ETCD_CONFIG_ENDPOINTS
// (space separated). It returns nil when none are set or the client
// cannot be created, and everything that reads etcd then falls back to
// local configuration.
func NewEtcdClient() *clientv3.Client {
	e := strings.Fields(os.Getenv(EnvPrefix + "ETCD_CONFIG_ENDPOINTS"))
	if len(e) == 0 {
		log.Print(EnvPrefix + "ETCD_CONFIG_ENDPOINTS is empty")
		return nil
	}

	timeout := 5 * time.Second
	if v, err := time.ParseDuration(os.Getenv(EnvPrefix + "ETCD_DIAL_TIMEOUT")); err == nil {
		timeout = v
	}

	// 创建 etcd 客户端
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   e,
		DialTimeout: timeout,
		Username:    os.Getenv(EnvPrefix + "ETCD_USERNAME"),
		Password:    os.Getenv(EnvPrefix + "ETCD_PASSWORD"),
	})
	if err != nil {
		log.Printf("Error create etcd client: %v", err)
		return nil
	}
	return client
}
