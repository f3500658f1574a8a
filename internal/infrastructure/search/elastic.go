// Package search mirrors courses and users into Elasticsearch.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/sirupsen/logrus"
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

// Fields boosted per kind in multi_match queries.
var defaultFields = map[string][]string{
	"courses": {"title.en^2", "title.ar^2", "description.en", "description.ar"},
	"users":   {"name^2", "email^2", "phone"},
}

// Index stores one document per record in "<prefix>-<kind>".
type Index struct {
	ES      *elasticsearch.Client
	Prefix  string
	Fields  map[string][]string
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewIndex(es *elasticsearch.Client, prefix string, logger *logrus.Logger) *Index {
	return &Index{ES: es, Prefix: prefix, Fields: defaultFields, Timeout: 3 * time.Second, Logger: logger}
}

func (i *Index) name(kind string) string {
	return i.Prefix + "-" + kind
}

func (i *Index) Index(ctx context.Context, kind, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.name(kind), DocumentID: id, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s/%s: %s", i.name(kind), id, res.Status())
	}
	return nil
}

// IndexBatch sends docs, keyed by record id, through the bulk API. Every
// document is attempted; the error only reports how many were rejected.
func (i *Index) IndexBatch(ctx context.Context, kind string, docs map[string]any) error {
	if len(docs) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     i.ES,
		Index:      i.name(kind),
		NumWorkers: 1,
		Timeout:    i.Timeout,
		OnError: func(_ context.Context, err error) {
			i.Logger.WithError(err).WithField("index", i.name(kind)).Warn("es bulk request failed")
		},
	})
	if err != nil {
		return err
	}

	var skipped atomic.Int64
	for id, doc := range docs {
		b, err := json.Marshal(doc)
		if err != nil {
			skipped.Add(1)
			i.Logger.WithError(err).WithField("id", id).Warn("es bulk skipped unencodable document")
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: id,
			Body:       bytes.NewReader(b),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				entry := i.Logger.WithFields(logrus.Fields{"index": i.name(kind), "id": item.DocumentID, "status": res.Status})
				if err != nil {
					entry = entry.WithError(err)
				}
				entry.WithField("reason", res.Error.Reason).Warn("es bulk item rejected")
			},
		})
		if err != nil {
			skipped.Add(1)
			i.Logger.WithError(err).WithField("id", id).Warn("es bulk add failed")
		}
	}
	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("es bulk %s: %w", i.name(kind), err)
	}
	if failed := int64(bi.Stats().NumFailed) + skipped.Load(); failed > 0 {
		return fmt.Errorf("es bulk %s: %d of %d documents failed", i.name(kind), failed, len(docs))
	}
	return nil
}

func (i *Index) Remove(ctx context.Context, kind, id string) error {
	req := esapi.DeleteRequest{Index: i.name(kind), DocumentID: id}
	c, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// a document that was never indexed is already gone
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete %s/%s: %s", i.name(kind), id, res.Status())
	}
	return nil
}

// Search runs a multi_match query and returns matching ids in score order.
func (i *Index) Search(ctx context.Context, kind, term string, limit int) ([]string, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     term,
				"fields":    i.Fields[kind],
				"fuzziness": "AUTO",
			},
		},
		"_source": false,
		"size":    limit,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()

	res, err := i.ES.Search(i.ES.Search.WithContext(c), i.ES.Search.WithIndex(i.name(kind)), i.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search %s: %s", i.name(kind), res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}
