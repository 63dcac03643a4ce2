package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/internal/database"
	"github.com/BaSui01/coachflow/types"
)

// memoryRow is the GORM model backing the memories table. Vector and set
// fields are serialized as JSON text so the same schema works on sqlite and
// postgres.
type memoryRow struct {
	ID                     string    `gorm:"primaryKey;size:36"`
	UserID                 string    `gorm:"index;size:64;not null"`
	Content                string    `gorm:"type:text;not null"`
	OccurredOn             time.Time `gorm:"index"`
	Embedding              string    `gorm:"type:text"`
	EmotionalResonance     float64
	DepthScore             float64
	Importance             float64
	PatternsMentioned      string `gorm:"type:text"`
	BreakthroughIndicators string `gorm:"type:text"`
	ContextTags            string `gorm:"type:text"`
	CreatedAt              time.Time
}

func (memoryRow) TableName() string { return "memories" }

// GormStore is the durable Store implementation over a GORM connection pool.
type GormStore struct {
	pool      *database.PoolManager
	dimension int
	now       func() time.Time
	logger    *zap.Logger
}

// GormStoreConfig configures the durable store.
type GormStoreConfig struct {
	// Dimension, when > 0, validates appended embeddings and read rows.
	Dimension int

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewGormStore creates the store and migrates its schema.
func NewGormStore(pool *database.PoolManager, config GormStoreConfig, logger *zap.Logger) (*GormStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	if err := pool.DB().AutoMigrate(&memoryRow{}); err != nil {
		return nil, fmt.Errorf("migrate memories table: %w", err)
	}

	return &GormStore{
		pool:      pool,
		dimension: config.Dimension,
		now:       now,
		logger:    logger.With(zap.String("component", "memory_store_gorm")),
	}, nil
}

// Append ingests one memory.
func (s *GormStore) Append(ctx context.Context, mem *types.Memory) error {
	if err := normalize(mem, s.dimension, s.now); err != nil {
		return err
	}

	row, err := toRow(mem)
	if err != nil {
		return err
	}

	if err := s.pool.DB().WithContext(ctx).Create(row).Error; err != nil {
		return types.NewTransient(types.ErrStoreUnavailable, "append memory").WithCause(err)
	}

	s.logger.Debug("memory appended",
		zap.String("id", mem.ID),
		zap.String("user_id", mem.UserID))
	return nil
}

// ListByUser returns every memory for the user ordered by occurrence date.
func (s *GormStore) ListByUser(ctx context.Context, userID string) ([]types.Memory, error) {
	var rows []memoryRow
	err := s.pool.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_on ASC").
		Find(&rows).Error
	if err != nil {
		return nil, types.NewTransient(types.ErrStoreUnavailable, "list memories").WithCause(err)
	}

	out := make([]types.Memory, 0, len(rows))
	for _, row := range rows {
		mem, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		if s.dimension > 0 && len(mem.Embedding) != 0 && len(mem.Embedding) != s.dimension {
			return nil, types.NewError(types.ErrDimensionMismatch,
				fmt.Sprintf("memory %s embedding length %d, want %d", mem.ID, len(mem.Embedding), s.dimension))
		}
		out = append(out, mem)
	}
	return out, nil
}

func toRow(mem *types.Memory) (*memoryRow, error) {
	embedding, err := json.Marshal(mem.Embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}
	patterns, err := json.Marshal(mem.PatternsMentioned)
	if err != nil {
		return nil, fmt.Errorf("marshal patterns: %w", err)
	}
	indicators, err := json.Marshal(mem.BreakthroughIndicators)
	if err != nil {
		return nil, fmt.Errorf("marshal indicators: %w", err)
	}
	tags, err := json.Marshal(mem.ContextTags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	return &memoryRow{
		ID:                     mem.ID,
		UserID:                 mem.UserID,
		Content:                mem.Content,
		OccurredOn:             mem.OccurredOn,
		Embedding:              string(embedding),
		EmotionalResonance:     mem.EmotionalResonance,
		DepthScore:             mem.DepthScore,
		Importance:             mem.Importance,
		PatternsMentioned:      string(patterns),
		BreakthroughIndicators: string(indicators),
		ContextTags:            string(tags),
		CreatedAt:              mem.CreatedAt,
	}, nil
}

func fromRow(row memoryRow) (types.Memory, error) {
	mem := types.Memory{
		ID:                 row.ID,
		UserID:             row.UserID,
		Content:            row.Content,
		OccurredOn:         row.OccurredOn,
		EmotionalResonance: row.EmotionalResonance,
		DepthScore:         row.DepthScore,
		Importance:         row.Importance,
		CreatedAt:          row.CreatedAt,
	}

	for _, field := range []struct {
		raw  string
		dest any
	}{
		{row.Embedding, &mem.Embedding},
		{row.PatternsMentioned, &mem.PatternsMentioned},
		{row.BreakthroughIndicators, &mem.BreakthroughIndicators},
		{row.ContextTags, &mem.ContextTags},
	} {
		if field.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(field.raw), field.dest); err != nil {
			return types.Memory{}, fmt.Errorf("decode memory %s: %w", row.ID, err)
		}
	}
	return mem, nil
}
