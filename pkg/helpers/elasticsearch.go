package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// usersIndexMapping keeps ids and emails exact and names/hobbies full-text searchable.
const usersIndexMapping = `{
  "mappings": {
    "properties": {
      "userId":   {"type": "long"},
      "username": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "email":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "age":      {"type": "integer"},
      "hobbies":  {"type": "text"},
      "fullName": {"properties": {"firstName": {"type": "text"}, "lastName": {"type": "text"}}},
      "address":  {"properties": {"street": {"type": "text"}, "city": {"type": "keyword"}, "country": {"type": "keyword"}}}
    }
  }
}`

// EnsureUsersIndex creates the users index with its mapping unless it already exists.
func EnsureUsersIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(c, es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(usersIndexMapping)}.Do(c, es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// 400 resource_already_exists_exception when another instance won the race
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
