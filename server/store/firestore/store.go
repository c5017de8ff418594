// Package firestore implements store.KV on top of Google Cloud Firestore.
// Every key is a document of one collection holding the value in a single field.
package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/profiq/open-poll/server/store"
)

const (
	// DefaultCollection is used if no collection is configured.
	DefaultCollection = "polls"
	// DefaultMaxAttempts is the number of times a transaction is tried before giving up.
	DefaultMaxAttempts = 5
)

var _ store.KV = (*Store)(nil)

// Config configures the connection to Firestore.
type Config struct {
	ProjectID string
	// Credentials is the JSON of a service account key. If empty, application default credentials
	// or the emulator given by FIRESTORE_EMULATOR_HOST are used.
	Credentials string
	Collection  string
	MaxAttempts int
}

type document struct {
	Value []byte `firestore:"value"`
}

// Store is a store.KV backed by a Firestore collection.
type Store struct {
	client      *firestore.Client
	collection  string
	maxAttempts int
}

// NewStore connects to Firestore.
func NewStore(ctx context.Context, config Config) (*Store, error) {
	if config.ProjectID == "" {
		return nil, errors.New("firestore project ID is not set")
	}

	var opts []option.ClientOption
	if config.Credentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(config.Credentials)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: config.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize firebase app")
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firestore client")
	}

	return newStore(client, config), nil
}

func newStore(client *firestore.Client, config Config) *Store {
	s := &Store{
		client:      client,
		collection:  config.Collection,
		maxAttempts: config.MaxAttempts,
	}
	if s.collection == "" {
		s.collection = DefaultCollection
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = DefaultMaxAttempts
	}
	return s
}

// Close closes the connection to Firestore.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(key)
}

func decodeSnapshot(snap *firestore.DocumentSnapshot, err error, key string) ([]byte, error) {
	if status.Code(err) == codes.NotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get document %s", key)
	}
	var d document
	if err := snap.DataTo(&d); err != nil {
		return nil, errors.Wrapf(err, "failed to decode document %s", key)
	}
	return d.Value, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.doc(key).Get(ctx)
	return decodeSnapshot(snap, err, key)
}

func (s *Store) Create(ctx context.Context, key string, value []byte) error {
	_, err := s.doc(key).Create(ctx, document{Value: value})
	if status.Code(err) == codes.AlreadyExists {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return errors.Wrapf(err, "failed to create document %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.doc(key).Delete(ctx); err != nil {
		return errors.Wrapf(err, "failed to delete document %s", key)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := s.client.Collection(s.collection).DocumentRefs(ctx)
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			return keys, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list documents")
		}
		if strings.HasPrefix(ref.ID, prefix) {
			keys = append(keys, ref.ID)
		}
	}
}

// RunTransaction runs fn in a Firestore transaction. Firestore reruns fn when a document it read
// was changed concurrently. Writes are handed to Firestore after fn returned, so all reads come first.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.KVTx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		tx := &transaction{store: s, tx: ftx, writes: map[string][]byte{}}
		if err := fn(tx); err != nil {
			return err
		}
		for _, key := range tx.order {
			if err := ftx.Set(s.doc(key), document{Value: tx.writes[key]}); err != nil {
				return errors.Wrapf(err, "failed to set document %s", key)
			}
		}
		return nil
	}, firestore.MaxAttempts(s.maxAttempts))

	if status.Code(errors.Cause(err)) == codes.Aborted {
		return errors.Wrap(store.ErrTransactionConflict, err.Error())
	}
	return err
}

type transaction struct {
	store  *Store
	tx     *firestore.Transaction
	writes map[string][]byte
	order  []string
}

func (t *transaction) Get(key string) ([]byte, error) {
	if b, ok := t.writes[key]; ok {
		return b, nil
	}
	snap, err := t.tx.Get(t.store.doc(key))
	return decodeSnapshot(snap, err, key)
}

func (t *transaction) Set(key string, value []byte) error {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = value
	return nil
}
