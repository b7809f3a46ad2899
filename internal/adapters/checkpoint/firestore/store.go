// Package firestore is the Firestore-backed checkpoint store: one document
// per thread under the agent_threads collection, holding the serialized
// conversation state.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore checkpoint store for the given project
// (AGENT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) threadsCol() *firestore.CollectionRef {
	return s.client.Collection("agent_threads")
}

func (s *Store) threadDoc(id domain.ThreadID) *firestore.DocumentRef {
	return s.threadsCol().Doc(string(id))
}

// The state is stored as one JSON blob instead of a mapped document: the
// message history is a tagged union that Firestore field mapping handles
// poorly, and the store never queries inside it.
type threadDoc struct {
	UserID    string    `firestore:"user_id"`
	State     string    `firestore:"state"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (s *Store) Save(ctx context.Context, id domain.ThreadID, state *domain.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	doc := threadDoc{
		UserID:    string(state.UserID),
		State:     string(b),
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := s.threadDoc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore Save: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id domain.ThreadID) (*domain.State, error) {
	snap, err := s.threadDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore Load: %w", err)
	}

	var doc threadDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore Load decode: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal([]byte(doc.State), &state); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &state, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
