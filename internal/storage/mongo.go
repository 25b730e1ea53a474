// Package storage mirrors page results into MongoDB so they can be
// inspected while a live crawl is still running.
package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"sitecrawl/internal/audit"
	"sitecrawl/internal/crawler"
)

const (
	DefaultDatabase = "sitecrawl"
	collectionName  = "pages"
	writeTimeout    = 5 * time.Second
)

// PageDocument is the stored form of one result row. Documents are keyed
// by (site, row).
type PageDocument struct {
	Site        string     `bson:"site"`
	Row         int        `bson:"row"`
	URL         string     `bson:"url"`
	Depth       int        `bson:"depth"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	H1          string     `bson:"h1"`
	BodyPresent *bool      `bson:"body_present,omitempty"`
	Verdict     string     `bson:"verdict"`
	Issues      []IssueDoc `bson:"issues"`
	Error       string     `bson:"error,omitempty"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

type IssueDoc struct {
	Kind      string `bson:"kind"`
	Text      string `bson:"text"`
	LoadError bool   `bson:"load_error,omitempty"`
}

// Store is a crawler.Reporter writing results to MongoDB. A Store created
// without a URI does nothing.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	site       string
	logger     *zap.Logger
	now        func() time.Time
}

// New connects to uri. An empty uri returns a no-op Store.
func New(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	s := &Store{logger: logger, now: time.Now}
	if uri == "" {
		logger.Debug("MongoDB disabled, results are not persisted")
		return s, nil
	}
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s.client = client
	s.collection = client.Database(database).Collection(collectionName)
	logger.Info("MongoDB connected", zap.String("database", database))
	return s, nil
}

func (s *Store) Enabled() bool { return s.client != nil }

// Reset binds the store to site and drops results of a previous run of it.
func (s *Store) Reset(ctx context.Context, site string) error {
	s.site = site
	if !s.Enabled() {
		return nil
	}
	res, err := s.collection.DeleteMany(ctx, bson.M{"site": site})
	if err != nil {
		return err
	}
	if res.DeletedCount > 0 {
		s.logger.Info("cleared previous results", zap.String("site", site), zap.Int64("deleted", res.DeletedCount))
	}
	return nil
}

// PageQueued stores a placeholder row.
func (s *Store) PageQueued(row int, url string) {
	if !s.Enabled() {
		return
	}
	s.upsert(PageDocument{Site: s.site, Row: row, URL: url, UpdatedAt: s.now()})
}

func (s *Store) PageResult(res crawler.PageResult) {
	if !s.Enabled() {
		return
	}
	s.upsert(s.document(res))
}

func (s *Store) Progress(int, int) {}

func (s *Store) document(res crawler.PageResult) PageDocument {
	doc := PageDocument{
		Site:      s.site,
		Row:       res.Row,
		URL:       res.URL,
		Depth:     res.Depth,
		Verdict:   string(res.Verdict),
		Issues:    issueDocs(res.Issues),
		UpdatedAt: s.now(),
	}
	if res.Page != nil {
		doc.Title = res.Page.Title
		doc.Description = res.Page.Description
		doc.H1 = res.Page.H1
		doc.BodyPresent = res.Page.BodyPresent
	}
	if res.Err != nil {
		doc.Error = res.Err.Error()
	}
	return doc
}

func issueDocs(issues []audit.Issue) []IssueDoc {
	out := make([]IssueDoc, len(issues))
	for i, is := range issues {
		out[i] = IssueDoc{Kind: string(is.Kind), Text: is.Text, LoadError: is.LoadError}
	}
	return out
}

func (s *Store) upsert(doc PageDocument) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	filter := bson.M{"site": doc.Site, "row": doc.Row}
	_, err := s.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		s.logger.Warn("MongoDB write failed", zap.String("url", doc.URL), zap.Error(err))
	}
}

func (s *Store) Close(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Disconnect(ctx)
}
